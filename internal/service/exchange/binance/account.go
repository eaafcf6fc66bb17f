package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"github.com/psyns/account-monitor/internal/service/exchange"
)

var _ exchange.AccountService = (*AccountService)(nil)

type AccountService struct {
	cli *futures.Client
}

func NewAccountService(cli *futures.Client) *AccountService {
	return &AccountService{cli: cli}
}

func (s *AccountService) AssetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	balances, err := s.cli.NewGetBalanceService().Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch futures balances: %w", err)
	}
	asset = strings.ToUpper(asset)
	for _, b := range balances {
		if b.Asset != asset {
			continue
		}
		amount, err := decimal.NewFromString(b.Balance)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid balance %q for %s: %w", b.Balance, asset, err)
		}
		return amount, nil
	}
	return decimal.Zero, fmt.Errorf("asset %s not found in futures balances", asset)
}

// Equity 现金和已用保证金各查一次, 任一失败整体失败, 不允许写入半截数据
func (s *AccountService) Equity(ctx context.Context) (exchange.Equity, error) {
	cash, err := s.AssetBalance(ctx, "USDT")
	if err != nil {
		return exchange.Equity{}, err
	}

	account, err := s.cli.NewGetAccountService().Do(ctx)
	if err != nil {
		return exchange.Equity{}, fmt.Errorf("failed to fetch futures account: %w", err)
	}
	used, err := marginUsed(account.Positions)
	if err != nil {
		return exchange.Equity{}, err
	}

	return exchange.Equity{Cash: cash, MarginUsed: used}, nil
}

func (s *AccountService) MarginBalance(ctx context.Context) (exchange.MarginBalance, error) {
	account, err := s.cli.NewGetAccountService().Do(ctx)
	if err != nil {
		return exchange.MarginBalance{}, fmt.Errorf("failed to fetch futures account: %w", err)
	}
	total, err := decimal.NewFromString(account.TotalMarginBalance)
	if err != nil {
		return exchange.MarginBalance{}, fmt.Errorf("invalid totalMarginBalance %q: %w", account.TotalMarginBalance, err)
	}
	used, err := marginUsed(account.Positions)
	if err != nil {
		return exchange.MarginBalance{}, err
	}
	return exchange.MarginBalance{Total: total, Used: used}, nil
}

func (s *AccountService) Positions(ctx context.Context) ([]exchange.Position, error) {
	account, err := s.cli.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch futures account: %w", err)
	}

	positions := make([]exchange.Position, 0, len(account.Positions))
	for _, p := range account.Positions {
		position, err := fromAccountPosition(p)
		if err != nil {
			return nil, err
		}
		// 过滤零仓位
		if position.PositionAmt.IsZero() {
			continue
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// marginUsed 已用保证金 = Σ |positionAmt × entryPrice|
// 先取绝对值再求和, 多空对冲的仓位不能抵消为零
func marginUsed(positions []*futures.AccountPosition) (decimal.Decimal, error) {
	used := decimal.Zero
	for _, p := range positions {
		amt, err := decimal.NewFromString(p.PositionAmt)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid positionAmt %q for %s: %w", p.PositionAmt, p.Symbol, err)
		}
		entry, err := decimal.NewFromString(p.EntryPrice)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid entryPrice %q for %s: %w", p.EntryPrice, p.Symbol, err)
		}
		used = used.Add(amt.Mul(entry).Abs())
	}
	return used, nil
}

func fromAccountPosition(p *futures.AccountPosition) (exchange.Position, error) {
	amt, err := decimal.NewFromString(p.PositionAmt)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid positionAmt %q for %s: %w", p.PositionAmt, p.Symbol, err)
	}
	entry, err := decimal.NewFromString(p.EntryPrice)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid entryPrice %q for %s: %w", p.EntryPrice, p.Symbol, err)
	}
	unrealized, err := decimal.NewFromString(p.UnrealizedProfit)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid unrealizedProfit %q for %s: %w", p.UnrealizedProfit, p.Symbol, err)
	}
	notional, err := decimal.NewFromString(p.Notional)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid notional %q for %s: %w", p.Notional, p.Symbol, err)
	}
	return exchange.Position{
		Symbol:           p.Symbol,
		PositionAmt:      amt,
		EntryPrice:       entry,
		UnrealizedProfit: unrealized,
		Notional:         notional,
	}, nil
}
