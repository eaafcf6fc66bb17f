package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyns/account-monitor/internal/entity"
	"github.com/psyns/account-monitor/internal/service/exchange"
	"github.com/psyns/account-monitor/pkg/decimalx"
)

type fakeAccountService struct {
	equity    exchange.Equity
	equityErr error
}

func (f *fakeAccountService) AssetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return f.equity.Cash, f.equityErr
}

func (f *fakeAccountService) Equity(ctx context.Context) (exchange.Equity, error) {
	if f.equityErr != nil {
		return exchange.Equity{}, f.equityErr
	}
	return f.equity, nil
}

func (f *fakeAccountService) MarginBalance(ctx context.Context) (exchange.MarginBalance, error) {
	return exchange.MarginBalance{}, nil
}

func (f *fakeAccountService) Positions(ctx context.Context) ([]exchange.Position, error) {
	return nil, nil
}

// fakeLedger 内存账本, AppendBalance后尾行随之前移
type fakeLedger struct {
	tail      entity.BalanceSnapshot
	hasTail   bool
	readErr   error
	appendErr error
	appended  []entity.BalanceSnapshot
}

func (f *fakeLedger) LastBalance(ctx context.Context, accountName string) (entity.BalanceSnapshot, bool, error) {
	if f.readErr != nil {
		return entity.BalanceSnapshot{}, false, f.readErr
	}
	if !f.hasTail {
		return entity.BalanceSnapshot{}, false, nil
	}
	return f.tail, true, nil
}

func (f *fakeLedger) AppendBalance(ctx context.Context, accountName string, snapshot entity.BalanceSnapshot) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, snapshot)
	f.tail = snapshot
	f.hasTail = true
	return nil
}

func (f *fakeLedger) AppendOrder(ctx context.Context, accountName string, record entity.OrderRecord) error {
	return nil
}

func (f *fakeLedger) AppendOrders(ctx context.Context, accountName string, records []entity.OrderRecord) error {
	return nil
}

func (f *fakeLedger) AppendEquity(ctx context.Context, accountName string, snapshot entity.EquitySnapshot) error {
	return nil
}

func (f *fakeLedger) AppendMargin(ctx context.Context, accountName string, snapshot entity.MarginSnapshot) error {
	return nil
}

func (f *fakeLedger) AppendPositions(ctx context.Context, accountName string, snapshots []entity.PositionSnapshot) error {
	return nil
}

func newTestUpdater(accountSvc *fakeAccountService, store *fakeLedger) *Updater {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewUpdater("psy_ns", decimal.NewFromInt(10000), accountSvc, store,
		WithNow(func() time.Time { return fixed }))
}

func deposit(amount string) exchange.TransferEvent {
	return exchange.TransferEvent{
		AccountName: "psy_ns",
		Direction:   exchange.TransferDeposit,
		Amount:      decimalx.MustFromString(amount),
		Time:        time.Now(),
	}
}

func withdraw(amount string) exchange.TransferEvent {
	return exchange.TransferEvent{
		AccountName: "psy_ns",
		Direction:   exchange.TransferWithdraw,
		Amount:      decimalx.MustFromString(amount),
		Time:        time.Now(),
	}
}

func TestUpdater_FirstEventStartsFromZero(t *testing.T) {
	store := &fakeLedger{}
	svc := &fakeAccountService{equity: exchange.Equity{
		Cash:       decimalx.MustFromString("1000"),
		MarginUsed: decimalx.MustFromString("200"),
	}}
	u := newTestUpdater(svc, store)

	snapshot, err := u.Apply(context.Background(), withdraw("5"))
	require.NoError(t, err)

	assert.True(t, snapshot.DepositCash.IsZero())
	assert.Equal(t, "5", snapshot.WithdrawCash.String())
	assert.Equal(t, "1000", snapshot.Cash.String())
	assert.Equal(t, "200", snapshot.MarginUsed.String())
	assert.Equal(t, "10000", snapshot.InitialCash.String())
	assert.Len(t, store.appended, 1)
}

func TestUpdater_FoldsEventIntoTail(t *testing.T) {
	store := &fakeLedger{
		hasTail: true,
		tail: entity.BalanceSnapshot{
			AccountName:  "psy_ns",
			DepositCash:  decimalx.MustFromString("50"),
			WithdrawCash: decimalx.MustFromString("10"),
		},
	}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(900)}}
	u := newTestUpdater(svc, store)

	snapshot, err := u.Apply(context.Background(), deposit("25"))
	require.NoError(t, err)

	assert.Equal(t, "75", snapshot.DepositCash.String())
	assert.Equal(t, "10", snapshot.WithdrawCash.String())
}

func TestUpdater_CumulativeSum(t *testing.T) {
	store := &fakeLedger{}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(1)}}
	u := newTestUpdater(svc, store)

	events := []exchange.TransferEvent{
		deposit("100"), withdraw("30"), deposit("0.5"), deposit("19.5"), withdraw("70"),
	}
	for _, ev := range events {
		_, err := u.Apply(context.Background(), ev)
		require.NoError(t, err)
	}

	require.Len(t, store.appended, len(events))
	last := store.appended[len(store.appended)-1]
	assert.True(t, last.DepositCash.Equal(decimal.NewFromInt(120)), last.DepositCash.String())
	assert.True(t, last.WithdrawCash.Equal(decimal.NewFromInt(100)), last.WithdrawCash.String())

	// 累计值逐行单调不减
	for i := 1; i < len(store.appended); i++ {
		assert.True(t, store.appended[i].DepositCash.GreaterThanOrEqual(store.appended[i-1].DepositCash))
		assert.True(t, store.appended[i].WithdrawCash.GreaterThanOrEqual(store.appended[i-1].WithdrawCash))
	}
}

func TestUpdater_TailReadErrorRestartsFromZero(t *testing.T) {
	store := &fakeLedger{readErr: errors.New("table does not exist")}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(500)}}
	u := newTestUpdater(svc, store)

	snapshot, err := u.Apply(context.Background(), deposit("7"))
	require.NoError(t, err)

	assert.Equal(t, "7", snapshot.DepositCash.String())
	assert.True(t, snapshot.WithdrawCash.IsZero())
}

func TestUpdater_LiveFetchFailureAppendsNothing(t *testing.T) {
	store := &fakeLedger{
		hasTail: true,
		tail:    entity.BalanceSnapshot{DepositCash: decimal.NewFromInt(50)},
	}
	svc := &fakeAccountService{equityErr: errors.New("binance timeout")}
	u := newTestUpdater(svc, store)

	_, err := u.Apply(context.Background(), deposit("25"))
	require.Error(t, err)
	assert.Empty(t, store.appended)
}

func TestUpdater_AppendFailurePropagates(t *testing.T) {
	store := &fakeLedger{appendErr: errors.New("connection lost")}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(1)}}
	u := newTestUpdater(svc, store)

	_, err := u.Apply(context.Background(), deposit("25"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection lost")
}

func TestUpdater_ReplayIsNotIdempotent(t *testing.T) {
	store := &fakeLedger{}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(1)}}
	u := newTestUpdater(svc, store)

	ev := deposit("25")
	_, err := u.Apply(context.Background(), ev)
	require.NoError(t, err)
	snapshot, err := u.Apply(context.Background(), ev)
	require.NoError(t, err)

	// 重放同一事件会翻倍, 系统不去重
	assert.Len(t, store.appended, 2)
	assert.Equal(t, "50", snapshot.DepositCash.String())
}

func TestUpdater_CashAlwaysFreshlyFetched(t *testing.T) {
	store := &fakeLedger{}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(1000)}}
	u := newTestUpdater(svc, store)

	_, err := u.Apply(context.Background(), deposit("1"))
	require.NoError(t, err)

	svc.equity.Cash = decimal.NewFromInt(777)
	snapshot, err := u.Apply(context.Background(), deposit("1"))
	require.NoError(t, err)

	assert.Equal(t, "777", snapshot.Cash.String())
}

func TestUpdater_RecordCarriesTotalsForward(t *testing.T) {
	store := &fakeLedger{
		hasTail: true,
		tail: entity.BalanceSnapshot{
			DepositCash:  decimalx.MustFromString("120"),
			WithdrawCash: decimalx.MustFromString("40"),
		},
	}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(333)}}
	u := newTestUpdater(svc, store)

	snapshot, err := u.Record(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "120", snapshot.DepositCash.String())
	assert.Equal(t, "40", snapshot.WithdrawCash.String())
	assert.Equal(t, "333", snapshot.Cash.String())
}

func TestUpdater_UnknownDirectionRejected(t *testing.T) {
	store := &fakeLedger{}
	svc := &fakeAccountService{equity: exchange.Equity{Cash: decimal.NewFromInt(1)}}
	u := newTestUpdater(svc, store)

	_, err := u.Apply(context.Background(), exchange.TransferEvent{
		AccountName: "psy_ns",
		Direction:   "TRANSFER",
		Amount:      decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Empty(t, store.appended)
}
