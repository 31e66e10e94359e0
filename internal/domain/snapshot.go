package domain

import "github.com/shopspring/decimal"

// PortfolioSnapshot point-in-time holdings used to size a decision.
// Derived values are recomputed from the parts, never stored.
type PortfolioSnapshot struct {
	// BaseAmount holdings of the traded asset.
	BaseAmount decimal.Decimal `json:"base_asset_amount"`
	// QuoteAmount available settlement currency.
	QuoteAmount decimal.Decimal `json:"quote_currency_amount"`
	// BaseAvgCost average acquisition price of the base holdings, zero when flat.
	BaseAvgCost decimal.Decimal `json:"base_avg_cost"`
	// Price current best ask used for valuation.
	Price decimal.Decimal `json:"price"`
}

// BaseValueInQuote returns the base holdings valued at the snapshot price.
func (s PortfolioSnapshot) BaseValueInQuote() decimal.Decimal {
	return s.BaseAmount.Mul(s.Price)
}

// TotalValueInQuote returns quote holdings plus the valued base holdings.
func (s PortfolioSnapshot) TotalValueInQuote() decimal.Decimal {
	return s.QuoteAmount.Add(s.BaseValueInQuote())
}
