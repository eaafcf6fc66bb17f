package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot 账户资金快照, 每次存取款事件或定时轮询追加一行
// deposit_cash / withdraw_cash 为累计值, 随账本逐行递增
type BalanceSnapshot struct {
	Id           int64           `gorm:"primaryKey;autoIncrement"`
	AccountName  string          `gorm:"index"`
	Cash         decimal.Decimal `gorm:"type:decimal(32,8)"`
	MarginUsed   decimal.Decimal `gorm:"type:decimal(32,8)"`
	InitialCash  decimal.Decimal `gorm:"type:decimal(32,8)"`
	DepositCash  decimal.Decimal `gorm:"type:decimal(32,8)"`
	WithdrawCash decimal.Decimal `gorm:"type:decimal(32,8)"`
	Time         time.Time       `gorm:"index"`
}

// EquitySnapshot 账户权益快照(现金 + 已用保证金)
type EquitySnapshot struct {
	Id          int64           `gorm:"primaryKey;autoIncrement"`
	AccountName string          `gorm:"index"`
	Cash        decimal.Decimal `gorm:"type:decimal(32,8)"`
	MarginUsed  decimal.Decimal `gorm:"type:decimal(32,8)"`
	Time        time.Time       `gorm:"index"`
}

// MarginSnapshot 实时保证金余额快照
type MarginSnapshot struct {
	Id          int64           `gorm:"primaryKey;autoIncrement"`
	AccountName string          `gorm:"index"`
	TotalMargin decimal.Decimal `gorm:"type:decimal(32,8)"`
	UsedAmount  decimal.Decimal `gorm:"type:decimal(32,8)"`
	Time        time.Time       `gorm:"index"`
}

// PositionSnapshot 持仓快照, 每次轮询每个非零仓位一行
type PositionSnapshot struct {
	Id               int64           `gorm:"primaryKey;autoIncrement"`
	AccountName      string          `gorm:"index"`
	Symbol           string          `gorm:"index"`
	UnrealizedProfit decimal.Decimal `gorm:"type:decimal(32,8)"`
	EntryPrice       decimal.Decimal `gorm:"type:decimal(32,8)"`
	Notional         decimal.Decimal `gorm:"type:decimal(32,8)"`
	Side             int             // 1 多头, -1 空头
	TotalMargin      decimal.Decimal `gorm:"type:decimal(32,8)"`
	Time             time.Time       `gorm:"index"`
}
