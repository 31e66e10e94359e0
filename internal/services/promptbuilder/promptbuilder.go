// Package promptbuilder serializes the market context into prompts for the
// reasoning engine.
package promptbuilder

import (
	"fmt"
	"sort"
	"strings"

	"tradepilot/internal/clients"
	"tradepilot/internal/domain"
)

const maxRationaleChars = 300

// Builder renders a MarketContext into an inference request.
type Builder struct {
	pair domain.Pair
}

// NewBuilder creates a prompt builder for the given pair.
func NewBuilder(pair domain.Pair) *Builder {
	return &Builder{pair: pair}
}

// Build produces the full inference request for one decision cycle.
func (b *Builder) Build(mc *domain.MarketContext) clients.InferenceRequest {
	return clients.InferenceRequest{
		System:   SystemPrompt,
		User:     b.buildUserPrompt(mc),
		ChartPNG: mc.ChartImage,
	}
}

func (b *Builder) buildUserPrompt(mc *domain.MarketContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Trading pair: %s\n\n", b.pair.String())

	sb.WriteString("## Technical indicators\n")
	for _, group := range mc.Features.Groups {
		fmt.Fprintf(&sb, "\n### Timeframe %s\n", group.Timeframe)
		writeFeatureRows(&sb, group.Rows)
	}

	sb.WriteString("\n## Fear & Greed index\n")
	if len(mc.Sentiment) == 0 {
		sb.WriteString("unavailable\n")
	} else {
		for _, p := range mc.Sentiment {
			fmt.Fprintf(&sb, "%s: %d (%s)\n", p.Timestamp.Format("2006-01-02"), p.Value, p.Classification)
		}
	}

	sb.WriteString("\n## News\n")
	sb.WriteString(mc.NewsSummary)
	sb.WriteString("\n")

	sb.WriteString("\n## Previous decisions for reflection\n")
	if len(mc.History) == 0 {
		sb.WriteString("no previous decisions\n")
	} else {
		for _, rec := range mc.History {
			fmt.Fprintf(&sb, "%s: %s %d%% | total value %s %s | %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Decision.Action.String(),
				rec.Decision.Percentage,
				rec.Portfolio.TotalValueInQuote().StringFixed(2),
				b.pair.Quote,
				truncate(rec.Decision.Rationale, maxRationaleChars))
		}
	}

	sb.WriteString("\n## Current portfolio\n")
	p := mc.Portfolio
	fmt.Fprintf(&sb, "%s holdings: %s (avg cost %s)\n", b.pair.Base, p.BaseAmount.String(), p.BaseAvgCost.String())
	fmt.Fprintf(&sb, "%s balance: %s\n", b.pair.Quote, p.QuoteAmount.String())
	fmt.Fprintf(&sb, "current price: %s\n", p.Price.String())
	fmt.Fprintf(&sb, "%s value in %s: %s\n", b.pair.Base, b.pair.Quote, p.BaseValueInQuote().StringFixed(2))
	fmt.Fprintf(&sb, "total value in %s: %s\n", b.pair.Quote, p.TotalValueInQuote().StringFixed(2))

	return sb.String()
}

// writeFeatureRows renders rows as a compact table with a stable column
// order so identical contexts serialize identically.
func writeFeatureRows(sb *strings.Builder, rows []domain.FeatureRow) {
	if len(rows) == 0 {
		sb.WriteString("no data\n")
		return
	}

	names := make([]string, 0, len(rows[0].Values))
	for name := range rows[0].Values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(sb, "time | %s\n", strings.Join(names, " | "))
	for _, row := range rows {
		cells := make([]string, 0, len(names)+1)
		cells = append(cells, row.Timestamp.Format("2006-01-02 15:04"))
		for _, name := range names {
			cells = append(cells, row.Values[name].StringFixed(4))
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
