package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psyns/account-monitor/internal/entity"
	"github.com/psyns/account-monitor/internal/repo"
	"github.com/psyns/account-monitor/internal/service/exchange"
)

// Updater 维护账户资金账本的累计存取款
// 每次调用只做一轮 读尾行 → 合并事件 → 查实时权益 → 追加一行
// 不加锁不开事务, 同一账户并发调用是已知风险, 由上游保证单写者
type Updater struct {
	accountName string
	initialCash decimal.Decimal
	accountSvc  exchange.AccountService
	ledger      repo.LedgerRepo
	now         func() time.Time
}

type Option func(u *Updater)

// WithNow 替换时钟, 测试用
func WithNow(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

func NewUpdater(accountName string, initialCash decimal.Decimal,
	accountSvc exchange.AccountService, ledger repo.LedgerRepo, opts ...Option) *Updater {
	u := &Updater{
		accountName: accountName,
		initialCash: initialCash,
		accountSvc:  accountSvc,
		ledger:      ledger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Apply 把一个存取款事件折算进账本并追加快照
// 尾行缺失或读取失败都从零累计; 实时权益查询失败则整次失败, 不追加任何行
func (u *Updater) Apply(ctx context.Context, event exchange.TransferEvent) (entity.BalanceSnapshot, error) {
	deposit, withdraw := u.runningTotals(ctx)

	switch event.Direction {
	case exchange.TransferDeposit:
		deposit = deposit.Add(event.Amount)
	case exchange.TransferWithdraw:
		withdraw = withdraw.Add(event.Amount)
	default:
		return entity.BalanceSnapshot{}, fmt.Errorf("unknown transfer direction %q", event.Direction)
	}

	return u.emit(ctx, deposit, withdraw)
}

// Record 追加一条快照, 累计值原样前滚, 定时轮询用
func (u *Updater) Record(ctx context.Context) (entity.BalanceSnapshot, error) {
	deposit, withdraw := u.runningTotals(ctx)
	return u.emit(ctx, deposit, withdraw)
}

// runningTotals 读账本尾行的累计存取款
// 表为空和读取出错同样回落到零: 新账户没有历史, 历史读不到也只能当作没有
// 出错时留一条告警, 数据库不可达不至于被完全吞掉
func (u *Updater) runningTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal) {
	tail, found, err := u.ledger.LastBalance(ctx, u.accountName)
	if err != nil {
		slog.Warn("balance tail read failed, totals restart from zero",
			"account", u.accountName, "error", err)
		return decimal.Zero, decimal.Zero
	}
	if !found {
		return decimal.Zero, decimal.Zero
	}
	return tail.DepositCash, tail.WithdrawCash
}

func (u *Updater) emit(ctx context.Context, deposit, withdraw decimal.Decimal) (entity.BalanceSnapshot, error) {
	equity, err := u.accountSvc.Equity(ctx)
	if err != nil {
		// 实时数据拿不到就不能写, 宁缺毋滥
		return entity.BalanceSnapshot{}, fmt.Errorf("failed to fetch live equity for %s: %w", u.accountName, err)
	}

	snapshot := entity.BalanceSnapshot{
		AccountName:  u.accountName,
		Cash:         equity.Cash,
		MarginUsed:   equity.MarginUsed,
		InitialCash:  u.initialCash,
		DepositCash:  deposit,
		WithdrawCash: withdraw,
		Time:         u.now(),
	}
	if err := u.ledger.AppendBalance(ctx, u.accountName, snapshot); err != nil {
		return entity.BalanceSnapshot{}, fmt.Errorf("failed to append balance snapshot for %s: %w", u.accountName, err)
	}
	return snapshot, nil
}
