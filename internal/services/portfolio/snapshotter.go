// Package portfolio produces point-in-time snapshots of account holdings.
package portfolio

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tradepilot/internal/domain"
	"tradepilot/internal/exchange"
)

// Snapshotter queries the exchange for the current holdings of one pair.
type Snapshotter struct {
	exchange exchange.Exchange
	pair     domain.Pair
}

// NewSnapshotter creates a portfolio snapshotter.
func NewSnapshotter(ex exchange.Exchange, pair domain.Pair) *Snapshotter {
	return &Snapshotter{exchange: ex, pair: pair}
}

// Snapshot captures base and quote balances, the current best ask and the
// cost basis of the open position. Any failure makes the whole snapshot
// unavailable: a decision must never be sized against partial holdings.
func (s *Snapshotter) Snapshot(ctx context.Context) (domain.PortfolioSnapshot, error) {
	baseAmount, err := s.exchange.GetBalance(ctx, s.pair.Base)
	if err != nil {
		return domain.PortfolioSnapshot{}, errors.Wrapf(err, "failed to get %s balance", s.pair.Base)
	}

	quoteAmount, err := s.exchange.GetBalance(ctx, s.pair.Quote)
	if err != nil {
		return domain.PortfolioSnapshot{}, errors.Wrapf(err, "failed to get %s balance", s.pair.Quote)
	}

	price, err := s.exchange.GetBestAsk(ctx, s.pair)
	if err != nil {
		return domain.PortfolioSnapshot{}, errors.Wrapf(err, "failed to get best ask for %s", s.pair.String())
	}

	avgCost := decimal.Zero
	if baseAmount.GreaterThan(decimal.Zero) {
		avgCost, err = s.exchange.GetAvgCost(ctx, s.pair)
		if err != nil {
			return domain.PortfolioSnapshot{}, errors.Wrapf(err, "failed to get avg cost for %s", s.pair.String())
		}
	}

	return domain.PortfolioSnapshot{
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		BaseAvgCost: avgCost,
		Price:       price,
	}, nil
}
