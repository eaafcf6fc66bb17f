package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord 订单成交记录, 来自用户数据流或REST回补
type OrderRecord struct {
	Id             int64  `gorm:"primaryKey;autoIncrement"`
	Symbol         string `gorm:"index"`
	Side           string
	FilledPrice    decimal.Decimal `gorm:"type:decimal(32,8)"`
	OrderPrice     decimal.Decimal `gorm:"type:decimal(32,8)"`
	OrderQuantity  decimal.Decimal `gorm:"type:decimal(32,8)"`
	FilledQuantity decimal.Decimal `gorm:"type:decimal(32,8)"`
	OrderStatus    string          `gorm:"index"`
	OrderTime      time.Time       `gorm:"index"`
	Profit         decimal.Decimal `gorm:"type:decimal(32,8)"`
	Notional       decimal.Decimal `gorm:"type:decimal(32,8)"`
	Time           time.Time
}
