package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewsUnavailable placeholder used when the news provider is down.
const NewsUnavailable = "news unavailable"

// FeatureRow single timestamped row of named indicator values.
type FeatureRow struct {
	Timestamp time.Time
	Values    map[string]decimal.Decimal
}

// FeatureGroup chronologically ordered rows for one timeframe.
type FeatureGroup struct {
	Timeframe string
	Rows      []FeatureRow
}

// FeatureSet indicator table grouped by timeframe.
type FeatureSet struct {
	Groups []FeatureGroup
}

// SentimentPoint one fear & greed reading. Value is bounded [0,100],
// lower means more fear.
type SentimentPoint struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

// MarketContext immutable context for a single decision cycle.
// All components are captured close together in wall-clock time; a nil
// Sentiment slice or ChartImage marks a degraded provider, never a stale
// substitute from an earlier run.
type MarketContext struct {
	Features    *FeatureSet
	Sentiment   []SentimentPoint
	NewsSummary string
	ChartImage  []byte
	Portfolio   PortfolioSnapshot
	// History most-recent-first reflection window of prior runs.
	History []HistoryRecord
}
