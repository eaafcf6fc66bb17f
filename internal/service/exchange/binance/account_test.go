package binance

import (
	"testing"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarginUsed_AbsBeforeSum(t *testing.T) {
	// 多空对冲不抵消: |2×100| + |-2×100| = 400
	positions := []*futures.AccountPosition{
		{Symbol: "BTCUSDT", PositionAmt: "2", EntryPrice: "100"},
		{Symbol: "BTCUSDT", PositionAmt: "-2", EntryPrice: "100"},
	}
	used, err := marginUsed(positions)
	require.NoError(t, err)
	assert.Equal(t, "400", used.String())
}

func TestMarginUsed_Empty(t *testing.T) {
	used, err := marginUsed(nil)
	require.NoError(t, err)
	assert.True(t, used.IsZero())
}

func TestMarginUsed_MalformedAmount(t *testing.T) {
	positions := []*futures.AccountPosition{
		{Symbol: "BTCUSDT", PositionAmt: "not-a-number", EntryPrice: "100"},
	}
	_, err := marginUsed(positions)
	require.Error(t, err)
	assert.ErrorContains(t, err, "BTCUSDT")
}

func TestFromAccountPosition(t *testing.T) {
	p, err := fromAccountPosition(&futures.AccountPosition{
		Symbol:           "ETHUSDT",
		PositionAmt:      "-2",
		EntryPrice:       "3000",
		UnrealizedProfit: "-15.5",
		Notional:         "-6000",
	})
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", p.Symbol)
	assert.Equal(t, "-2", p.PositionAmt.String())
	assert.Equal(t, -1, p.Side())
}
