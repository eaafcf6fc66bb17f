package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

// https://developers.binance.com/docs/zh-CN/derivatives/usds-margined-futures/account/rest-api

// Equity 账户权益: USDT现金余额 + 已用保证金
// MarginUsed = Σ |positionAmt × entryPrice|, 多空对冲不抵消
type Equity struct {
	Cash       decimal.Decimal
	MarginUsed decimal.Decimal
}

// MarginBalance 实时保证金余额
type MarginBalance struct {
	Total decimal.Decimal
	Used  decimal.Decimal
}

type Position struct {
	Symbol           string
	PositionAmt      decimal.Decimal
	EntryPrice       decimal.Decimal
	UnrealizedProfit decimal.Decimal
	Notional         decimal.Decimal
}

// Side 1 多头, -1 空头, 以名义价值符号为准
func (p Position) Side() int {
	if p.Notional.IsNegative() {
		return -1
	}
	return 1
}

type AccountService interface {
	// AssetBalance 返回某币种的总资产数量
	AssetBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	// Equity 实时权益, 任一查询失败则整体失败, 不允许部分结果
	Equity(ctx context.Context) (Equity, error)
	MarginBalance(ctx context.Context) (MarginBalance, error)
	// Positions 仅返回非零仓位
	Positions(ctx context.Context) ([]Position, error)
}

type TradeService interface {
	// AccountTrades 全交易对的成交记录, 单个交易对查询失败跳过
	AccountTrades(ctx context.Context) ([]OrderFill, error)
}
