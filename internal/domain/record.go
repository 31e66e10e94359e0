package domain

import "time"

// HistoryRecord one completed pipeline run that reached a decision.
// Records are append-only and immutable once written; they capture intent,
// not confirmed fills.
type HistoryRecord struct {
	CreatedAt time.Time         `json:"created_at"`
	Decision  Decision          `json:"decision"`
	Portfolio PortfolioSnapshot `json:"portfolio_before"`
}
