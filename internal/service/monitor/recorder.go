package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/psyns/account-monitor/internal/entity"
	"github.com/psyns/account-monitor/internal/repo"
	"github.com/psyns/account-monitor/internal/service/exchange"
	"github.com/psyns/account-monitor/internal/service/ledger"
	"github.com/psyns/account-monitor/internal/service/notification"
)

const defaultRetryDelay = 5 * time.Second

// AccountRecorder 消费单账户用户数据流并落库
// 单条事件处理失败: 通知 + 记日志 + 继续下一条, 不终止流
type AccountRecorder struct {
	accountName string
	stream      exchange.UserStreamService
	updater     *ledger.Updater
	ledgerRepo  repo.LedgerRepo
	notifier    notification.Notifier
	retryDelay  time.Duration
}

type RecorderOption func(r *AccountRecorder)

func WithNotifier(notifier notification.Notifier) RecorderOption {
	return func(r *AccountRecorder) {
		r.notifier = notifier
	}
}

func WithRetryDelay(d time.Duration) RecorderOption {
	return func(r *AccountRecorder) {
		r.retryDelay = d
	}
}

func NewAccountRecorder(accountName string, stream exchange.UserStreamService,
	updater *ledger.Updater, ledgerRepo repo.LedgerRepo, opts ...RecorderOption) *AccountRecorder {
	r := &AccountRecorder{
		accountName: accountName,
		stream:      stream,
		updater:     updater,
		ledgerRepo:  ledgerRepo,
		notifier:    notification.NopNotifier{},
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 消费用户数据流直到ctx取消
// 流断开(Binance约24小时强制断连)时告警并重新订阅
// 断开窗口内错过的存取款会让后续累计值失真, 绝不能静默停止采集
func (r *AccountRecorder) Run(ctx context.Context) error {
	for {
		err := r.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("user stream lost, resubscribing", "account", r.accountName, "error", err)
		r.notifier.SendError(ctx, fmt.Sprintf("account %s stream lost, resubscribing: %v", r.accountName, err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *AccountRecorder) consume(ctx context.Context) error {
	events, errs, err := r.stream.Events(ctx)
	if err != nil {
		return fmt.Errorf("failed to open user stream for %s: %w", r.accountName, err)
	}
	slog.Info("account recorder started", "account", r.accountName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errs:
			slog.Error("user stream error", "account", r.accountName, "error", err)
			r.notifier.SendError(ctx, fmt.Sprintf("account %s stream error: %v", r.accountName, err))
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("user stream for %s closed", r.accountName)
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *AccountRecorder) handle(ctx context.Context, ev exchange.UserEvent) {
	switch ev.Type {
	case exchange.UserEventOrderUpdate:
		if ev.Fill == nil {
			return
		}
		record := toOrderRecord(*ev.Fill, time.Now())
		if err := r.ledgerRepo.AppendOrder(ctx, r.accountName, record); err != nil {
			slog.Error("failed to append order record", "account", r.accountName,
				"symbol", ev.Fill.Symbol, "error", err)
			r.notifier.SendError(ctx, fmt.Sprintf("account %s order append failed: %v", r.accountName, err))
		}
	case exchange.UserEventAccountUpdate:
		if ev.Transfer == nil {
			return
		}
		snapshot, err := r.updater.Apply(ctx, *ev.Transfer)
		if err != nil {
			slog.Error("failed to apply transfer event", "account", r.accountName,
				"direction", ev.Transfer.Direction, "amount", ev.Transfer.Amount, "error", err)
			r.notifier.SendError(ctx, fmt.Sprintf("account %s balance update failed: %v", r.accountName, err))
			return
		}
		slog.Info("balance snapshot appended", "account", r.accountName,
			"direction", ev.Transfer.Direction, "amount", ev.Transfer.Amount,
			"deposit_cash", snapshot.DepositCash, "withdraw_cash", snapshot.WithdrawCash)
	}
}

func toOrderRecord(fill exchange.OrderFill, now time.Time) entity.OrderRecord {
	return entity.OrderRecord{
		Symbol:         fill.Symbol,
		Side:           fill.Side,
		FilledPrice:    fill.FilledPrice,
		OrderPrice:     fill.OrderPrice,
		OrderQuantity:  fill.OrderQuantity,
		FilledQuantity: fill.FilledQuantity,
		OrderStatus:    fill.Status,
		OrderTime:      fill.OrderTime,
		Profit:         fill.Profit,
		Notional:       fill.Notional,
		Time:           now,
	}
}
