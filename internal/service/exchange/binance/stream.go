package binance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"github.com/psyns/account-monitor/internal/service/exchange"
)

var _ exchange.UserStreamService = (*UserStreamService)(nil)

const (
	defaultKeepalive = 25 * time.Minute
	closeKeyTimeout  = 5 * time.Second
)

// userStreamAPI listen key的申请/保活/注销
type userStreamAPI interface {
	Start(ctx context.Context) (string, error)
	Keepalive(ctx context.Context, listenKey string) error
	Close(ctx context.Context, listenKey string) error
}

type futuresStreamAPI struct {
	cli *futures.Client
}

func (a futuresStreamAPI) Start(ctx context.Context) (string, error) {
	return a.cli.NewStartUserStreamService().Do(ctx)
}

func (a futuresStreamAPI) Keepalive(ctx context.Context, listenKey string) error {
	return a.cli.NewKeepaliveUserStreamService().ListenKey(listenKey).Do(ctx)
}

func (a futuresStreamAPI) Close(ctx context.Context, listenKey string) error {
	return a.cli.NewCloseUserStreamService().ListenKey(listenKey).Do(ctx)
}

type serveFunc func(listenKey string, handler futures.WsUserDataHandler,
	errHandler futures.ErrHandler) (chan struct{}, chan struct{}, error)

type UserStreamService struct {
	api         userStreamAPI
	serve       serveFunc
	accountName string
	keepalive   time.Duration
}

func NewUserStreamService(cli *futures.Client, accountName string) *UserStreamService {
	return &UserStreamService{
		api:         futuresStreamAPI{cli: cli},
		serve:       futures.WsUserDataServe,
		accountName: accountName,
		keepalive:   defaultKeepalive,
	}
}

// Events 申请listen key并订阅用户数据流
// listen key 有效期60分钟, 每25分钟保活一次; 退出或订阅失败时注销
func (s *UserStreamService) Events(ctx context.Context) (<-chan exchange.UserEvent, <-chan error, error) {
	listenKey, err := s.api.Start(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start user stream: %w", err)
	}

	events := make(chan exchange.UserEvent)
	errs := make(chan error, 4)

	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case errs <- err:
		default:
		}
	}

	wsHandler := func(raw *futures.WsUserDataEvent) {
		ev, ok := convertUserEvent(s.accountName, raw)
		if !ok {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	doneC, stopC, err := s.serve(listenKey, wsHandler, reportErr)
	if err != nil {
		s.closeKey(listenKey)
		return nil, nil, fmt.Errorf("failed to subscribe user stream: %w", err)
	}

	go func() {
		select {
		case <-ctx.Done():
			close(stopC)
			<-doneC
			s.closeKey(listenKey)
		case <-doneC:
			// 服务端断开, listen key已随连接失效, 不再注销
		}
		close(events)
	}()

	go func() {
		ticker := time.NewTicker(s.keepalive)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.api.Keepalive(ctx, listenKey); err != nil {
					slog.Warn("listen key keepalive failed", "account", s.accountName, "error", err)
					reportErr(err)
				}
			case <-doneC:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, errs, nil
}

// closeKey 注销listen key, 外层ctx可能已取消, 单独给注销留一个超时
func (s *UserStreamService) closeKey(listenKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), closeKeyTimeout)
	defer cancel()
	if err := s.api.Close(ctx, listenKey); err != nil {
		slog.Warn("failed to close listen key", "account", s.accountName, "error", err)
	}
}

// convertUserEvent 将SDK事件转为领域事件
// 畸形消息(缺余额、数字解析失败)返回 ok=false 跳过, 不中断流
func convertUserEvent(accountName string, raw *futures.WsUserDataEvent) (exchange.UserEvent, bool) {
	if raw == nil {
		return exchange.UserEvent{}, false
	}

	switch raw.Event {
	case futures.UserDataEventTypeAccountUpdate:
		return convertAccountUpdate(accountName, raw)
	case futures.UserDataEventTypeOrderTradeUpdate:
		return convertOrderUpdate(raw)
	default:
		return exchange.UserEvent{}, false
	}
}

func convertAccountUpdate(accountName string, raw *futures.WsUserDataEvent) (exchange.UserEvent, bool) {
	var direction exchange.TransferDirection
	switch raw.AccountUpdate.Reason {
	case futures.UserDataEventReasonTypeDeposit:
		direction = exchange.TransferDeposit
	case futures.UserDataEventReasonTypeWithdraw:
		direction = exchange.TransferWithdraw
	default:
		// 仅关心存取款, 其他原因(下单、资金费等)的账户更新忽略
		return exchange.UserEvent{}, false
	}

	if len(raw.AccountUpdate.Balances) == 0 {
		return exchange.UserEvent{}, false
	}
	amount, err := decimal.NewFromString(raw.AccountUpdate.Balances[0].ChangeBalance)
	if err != nil {
		slog.Warn("skip malformed account update", "account", accountName, "error", err)
		return exchange.UserEvent{}, false
	}

	eventTime := time.UnixMilli(raw.Time)
	return exchange.UserEvent{
		Type: exchange.UserEventAccountUpdate,
		Transfer: &exchange.TransferEvent{
			AccountName: accountName,
			Direction:   direction,
			Amount:      amount.Abs(),
			Time:        eventTime,
		},
		Time: eventTime,
	}, true
}

func convertOrderUpdate(raw *futures.WsUserDataEvent) (exchange.UserEvent, bool) {
	o := raw.OrderTradeUpdate

	avgPrice, err := decimal.NewFromString(o.AveragePrice)
	if err != nil {
		return exchange.UserEvent{}, false
	}
	orderPrice, err := decimal.NewFromString(o.OriginalPrice)
	if err != nil {
		return exchange.UserEvent{}, false
	}
	orderQty, err := decimal.NewFromString(o.OriginalQty)
	if err != nil {
		return exchange.UserEvent{}, false
	}
	filledQty, err := decimal.NewFromString(o.AccumulatedFilledQty)
	if err != nil {
		return exchange.UserEvent{}, false
	}
	profit, err := decimal.NewFromString(o.RealizedPnL)
	if err != nil {
		return exchange.UserEvent{}, false
	}

	eventTime := time.UnixMilli(raw.Time)
	return exchange.UserEvent{
		Type: exchange.UserEventOrderUpdate,
		Fill: &exchange.OrderFill{
			Symbol:         o.Symbol,
			Side:           string(o.Side),
			FilledPrice:    avgPrice,
			OrderPrice:     orderPrice,
			OrderQuantity:  orderQty,
			FilledQuantity: filledQty,
			Status:         string(o.Status),
			OrderTime:      time.UnixMilli(o.TradeTime),
			Profit:         profit,
			Notional:       avgPrice.Mul(filledQty),
		},
		Time: eventTime,
	}, true
}
