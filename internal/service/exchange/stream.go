package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransferDirection string

const (
	TransferDeposit  TransferDirection = "DEPOSIT"
	TransferWithdraw TransferDirection = "WITHDRAW"
)

// TransferEvent 存取款事件, 不落库, 折算进下一条资金快照的累计值
type TransferEvent struct {
	AccountName string
	Direction   TransferDirection
	Amount      decimal.Decimal // 非负
	Time        time.Time
}

// OrderFill 订单成交事件
type OrderFill struct {
	Symbol         string
	Side           string
	FilledPrice    decimal.Decimal
	OrderPrice     decimal.Decimal
	OrderQuantity  decimal.Decimal
	FilledQuantity decimal.Decimal
	Status         string
	OrderTime      time.Time
	Profit         decimal.Decimal
	Notional       decimal.Decimal
}

type UserEventType string

const (
	UserEventAccountUpdate UserEventType = "ACCOUNT_UPDATE"
	UserEventOrderUpdate   UserEventType = "ORDER_TRADE_UPDATE"
)

// UserEvent 用户数据流事件, Type决定哪个字段有效
type UserEvent struct {
	Type     UserEventType
	Transfer *TransferEvent
	Fill     *OrderFill
	Time     time.Time
}

// UserStreamService 账户用户数据流
// 实现负责listen key的申请与保活, 畸形或空消息直接跳过
type UserStreamService interface {
	Events(ctx context.Context) (<-chan UserEvent, <-chan error, error)
}
