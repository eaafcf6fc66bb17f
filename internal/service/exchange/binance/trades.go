package binance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/psyns/account-monitor/internal/service/exchange"
)

var _ exchange.TradeService = (*TradeService)(nil)

type TradeService struct {
	cli *futures.Client
}

func NewTradeService(cli *futures.Client) *TradeService {
	return &TradeService{cli: cli}
}

// AccountTrades 遍历全部交易对回补成交记录
// 单个交易对查询失败只记日志并跳过, 不中断整体回补
func (s *TradeService) AccountTrades(ctx context.Context) ([]exchange.OrderFill, error) {
	info, err := s.cli.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange info: %w", err)
	}
	symbols := lo.Map(info.Symbols, func(item futures.Symbol, index int) string {
		return item.Symbol
	})

	var fills []exchange.OrderFill
	for _, symbol := range symbols {
		trades, err := s.cli.NewListAccountTradeService().Symbol(symbol).Do(ctx)
		if err != nil {
			slog.Warn("failed to fetch account trades", "symbol", symbol, "error", err)
			continue
		}
		for _, trade := range trades {
			fill, err := fromAccountTrade(trade)
			if err != nil {
				slog.Warn("skip malformed account trade", "symbol", symbol, "error", err)
				continue
			}
			fills = append(fills, fill)
		}
	}
	return fills, nil
}

func fromAccountTrade(trade *futures.AccountTrade) (exchange.OrderFill, error) {
	price, err := decimal.NewFromString(trade.Price)
	if err != nil {
		return exchange.OrderFill{}, fmt.Errorf("invalid trade price %q: %w", trade.Price, err)
	}
	qty, err := decimal.NewFromString(trade.Quantity)
	if err != nil {
		return exchange.OrderFill{}, fmt.Errorf("invalid trade quantity %q: %w", trade.Quantity, err)
	}
	profit, err := decimal.NewFromString(trade.RealizedPnl)
	if err != nil {
		return exchange.OrderFill{}, fmt.Errorf("invalid realizedPnl %q: %w", trade.RealizedPnl, err)
	}
	return exchange.OrderFill{
		Symbol:         trade.Symbol,
		Side:           string(trade.Side),
		FilledPrice:    price,
		OrderPrice:     price,
		OrderQuantity:  qty,
		FilledQuantity: qty,
		Status:         string(futures.OrderStatusTypeFilled),
		OrderTime:      time.UnixMilli(trade.Time),
		Profit:         profit,
		Notional:       price.Mul(qty),
	}, nil
}
