package ledger

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/psyns/account-monitor/internal/entity"
	"github.com/psyns/account-monitor/internal/service/exchange"
)

// Reporter 只读报表: 每次都现查交易所, 不碰账本
type Reporter struct {
	accountName string
	accountSvc  exchange.AccountService
	now         func() time.Time
}

func NewReporter(accountName string, accountSvc exchange.AccountService, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		accountName: accountName,
		accountSvc:  accountSvc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type ReporterOption func(r *Reporter)

func WithReporterNow(now func() time.Time) ReporterOption {
	return func(r *Reporter) {
		r.now = now
	}
}

func (r *Reporter) Equity(ctx context.Context) (entity.EquitySnapshot, error) {
	equity, err := r.accountSvc.Equity(ctx)
	if err != nil {
		return entity.EquitySnapshot{}, err
	}
	return entity.EquitySnapshot{
		AccountName: r.accountName,
		Cash:        equity.Cash,
		MarginUsed:  equity.MarginUsed,
		Time:        r.now(),
	}, nil
}

func (r *Reporter) MarginBalance(ctx context.Context) (entity.MarginSnapshot, error) {
	margin, err := r.accountSvc.MarginBalance(ctx)
	if err != nil {
		return entity.MarginSnapshot{}, err
	}
	return entity.MarginSnapshot{
		AccountName: r.accountName,
		TotalMargin: margin.Total,
		UsedAmount:  margin.Used,
		Time:        r.now(),
	}, nil
}

// Positions 非零仓位快照, 每行都带整体保证金余额
func (r *Reporter) Positions(ctx context.Context) ([]entity.PositionSnapshot, error) {
	margin, err := r.accountSvc.MarginBalance(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := r.accountSvc.Positions(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	return lo.Map(positions, func(p exchange.Position, index int) entity.PositionSnapshot {
		return entity.PositionSnapshot{
			AccountName:      r.accountName,
			Symbol:           p.Symbol,
			UnrealizedProfit: p.UnrealizedProfit,
			EntryPrice:       p.EntryPrice,
			Notional:         p.Notional,
			Side:             p.Side(),
			TotalMargin:      margin.Total,
			Time:             now,
		}
	}), nil
}
