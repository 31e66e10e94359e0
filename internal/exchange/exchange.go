// Package exchange wraps spot exchange APIs behind a single interface used
// by the pipeline: balances, best ask, and at-most-one market order per call.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"tradepilot/internal/domain"
)

// OrderResult identifies a submitted market order.
type OrderResult struct {
	OrderID string
	Symbol  string
	Side    domain.Action
	// Amount order size as submitted: quote currency for buys,
	// base asset for sells.
	Amount decimal.Decimal
}

// Exchange synchronous spot exchange client. Every call can fail with a
// transport or rejection error; callers own the error policy.
type Exchange interface {
	// GetBalance returns the free balance of the given asset.
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	// GetBestAsk returns the lowest ask price for the pair.
	GetBestAsk(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
	// GetAvgCost returns the average acquisition price of the current base
	// holdings, zero when the exchange does not expose a cost basis.
	GetAvgCost(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
	// PlaceMarketBuy submits a market buy denominated in quote currency.
	PlaceMarketBuy(ctx context.Context, pair domain.Pair, quoteAmount decimal.Decimal) (*OrderResult, error)
	// PlaceMarketSell submits a market sell denominated in base asset.
	PlaceMarketSell(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (*OrderResult, error)
}
