package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioSnapshotDerivedValues(t *testing.T) {
	snap := PortfolioSnapshot{
		BaseAmount:  decimal.NewFromInt(2),
		QuoteAmount: decimal.NewFromInt(10_000_000),
		BaseAvgCost: decimal.NewFromInt(55_000_000),
		Price:       decimal.NewFromInt(60_000_000),
	}

	assert.True(t, snap.BaseValueInQuote().Equal(decimal.NewFromInt(120_000_000)))
	assert.True(t, snap.TotalValueInQuote().Equal(decimal.NewFromInt(130_000_000)))
}

func TestPortfolioSnapshotDerivedValuesNotSerialized(t *testing.T) {
	snap := PortfolioSnapshot{
		BaseAmount:  decimal.NewFromFloat(0.5),
		QuoteAmount: decimal.NewFromInt(1000),
		Price:       decimal.NewFromInt(100),
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Contains(t, fields, "base_asset_amount")
	assert.Contains(t, fields, "quote_currency_amount")
	assert.Contains(t, fields, "price")
	assert.NotContains(t, fields, "base_value")
	assert.NotContains(t, fields, "total_value")

	// Derived values are recomputed from the stored fields after a round trip.
	var restored PortfolioSnapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, restored.BaseValueInQuote().Equal(decimal.NewFromInt(50)))
	assert.True(t, restored.TotalValueInQuote().Equal(decimal.NewFromInt(1050)))
}

func TestPairString(t *testing.T) {
	pair := Pair{Base: "BTC", Quote: "USDT"}
	assert.Equal(t, "BTC_USDT", pair.String())
	assert.Equal(t, "BTCUSDT", pair.Symbol())
}
