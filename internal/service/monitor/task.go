package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/psyns/account-monitor/internal/entity"
	"github.com/psyns/account-monitor/internal/repo"
	"github.com/psyns/account-monitor/internal/schedule"
	"github.com/psyns/account-monitor/internal/service/exchange"
	"github.com/psyns/account-monitor/internal/service/ledger"
)

// BalancePollTask 定时把资金快照前滚一行, 累计存取款不变
type BalancePollTask struct {
	accountName string
	updater     *ledger.Updater
}

func NewBalancePollTask(accountName string, updater *ledger.Updater) schedule.Task {
	return &BalancePollTask{
		accountName: accountName,
		updater:     updater,
	}
}

func (t *BalancePollTask) Run(ctx context.Context) error {
	_, err := t.updater.Record(ctx)
	return err
}

func (t *BalancePollTask) Name() string {
	return fmt.Sprintf("%s balance poll task", t.accountName)
}

// TradeBackfillTask REST回补全交易对成交记录
type TradeBackfillTask struct {
	accountName string
	tradeSvc    exchange.TradeService
	ledgerRepo  repo.LedgerRepo
}

func NewTradeBackfillTask(accountName string, tradeSvc exchange.TradeService,
	ledgerRepo repo.LedgerRepo) schedule.Task {
	return &TradeBackfillTask{
		accountName: accountName,
		tradeSvc:    tradeSvc,
		ledgerRepo:  ledgerRepo,
	}
}

func (t *TradeBackfillTask) Run(ctx context.Context) error {
	fills, err := t.tradeSvc.AccountTrades(ctx)
	if err != nil {
		return err
	}
	if len(fills) == 0 {
		return nil
	}
	now := time.Now()
	records := lo.Map(fills, func(fill exchange.OrderFill, index int) entity.OrderRecord {
		return toOrderRecord(fill, now)
	})
	return t.ledgerRepo.AppendOrders(ctx, t.accountName, records)
}

func (t *TradeBackfillTask) Name() string {
	return fmt.Sprintf("%s trade backfill task", t.accountName)
}

// EquityPollTask 定时落权益/保证金/持仓三张报表
type EquityPollTask struct {
	accountName string
	reporter    *ledger.Reporter
	ledgerRepo  repo.LedgerRepo
}

func NewEquityPollTask(accountName string, reporter *ledger.Reporter,
	ledgerRepo repo.LedgerRepo) schedule.Task {
	return &EquityPollTask{
		accountName: accountName,
		reporter:    reporter,
		ledgerRepo:  ledgerRepo,
	}
}

func (t *EquityPollTask) Run(ctx context.Context) error {
	equity, err := t.reporter.Equity(ctx)
	if err != nil {
		return err
	}
	if err := t.ledgerRepo.AppendEquity(ctx, t.accountName, equity); err != nil {
		return err
	}

	margin, err := t.reporter.MarginBalance(ctx)
	if err != nil {
		return err
	}
	if err := t.ledgerRepo.AppendMargin(ctx, t.accountName, margin); err != nil {
		return err
	}

	positions, err := t.reporter.Positions(ctx)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		slog.Info("no open positions", "account", t.accountName)
		return nil
	}
	return t.ledgerRepo.AppendPositions(ctx, t.accountName, positions)
}

func (t *EquityPollTask) Name() string {
	return fmt.Sprintf("%s equity poll task", t.accountName)
}
