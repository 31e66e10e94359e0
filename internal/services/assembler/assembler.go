// Package assembler merges every market input into one immutable context for
// a single decision cycle.
package assembler

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tradepilot/internal/domain"
)

// ErrContextUnavailable marks a fatal provider failure: without the feature
// set or the portfolio snapshot there is not enough signal to decide safely.
var ErrContextUnavailable = errors.New("market context unavailable")

type featureProvider interface {
	Collect(ctx context.Context) (*domain.FeatureSet, error)
}

type sentimentProvider interface {
	Fetch(ctx context.Context, limit int) ([]domain.SentimentPoint, error)
}

type newsProvider interface {
	Summary(ctx context.Context) (string, error)
}

type chartProvider interface {
	Capture(ctx context.Context) ([]byte, error)
}

type portfolioSnapshotter interface {
	Snapshot(ctx context.Context) (domain.PortfolioSnapshot, error)
}

type historyReader interface {
	Recent(n int) ([]domain.HistoryRecord, error)
}

// Assembler builds the MarketContext from all providers. Feature and
// portfolio failures are fatal; sentiment, news, chart and history degrade
// to explicit placeholders.
type Assembler struct {
	features         featureProvider
	sentiment        sentimentProvider
	news             newsProvider
	chart            chartProvider
	portfolio        portfolioSnapshotter
	history          historyReader
	sentimentHistory int
	reflectionWindow int
	logger           *zap.Logger
}

// Config bundles the assembler dependencies.
type Config struct {
	Features         featureProvider
	Sentiment        sentimentProvider
	News             newsProvider
	Chart            chartProvider
	Portfolio        portfolioSnapshotter
	History          historyReader
	SentimentHistory int
	ReflectionWindow int
}

// New creates a context assembler.
func New(cfg Config, logger *zap.Logger) *Assembler {
	return &Assembler{
		features:         cfg.Features,
		sentiment:        cfg.Sentiment,
		news:             cfg.News,
		chart:            cfg.Chart,
		portfolio:        cfg.Portfolio,
		history:          cfg.History,
		sentimentHistory: cfg.SentimentHistory,
		reflectionWindow: cfg.ReflectionWindow,
		logger:           logger,
	}
}

// Assemble captures all inputs for one run. It has no side effects beyond
// the provider calls.
func (a *Assembler) Assemble(ctx context.Context) (*domain.MarketContext, error) {
	features, err := a.features.Collect(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrContextUnavailable, "feature set: %v", err)
	}

	snapshot, err := a.portfolio.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrContextUnavailable, "portfolio snapshot: %v", err)
	}

	mc := &domain.MarketContext{
		Features:    features,
		NewsSummary: domain.NewsUnavailable,
		Portfolio:   snapshot,
	}

	if points, err := a.sentiment.Fetch(ctx, a.sentimentHistory); err != nil {
		a.logger.Warn("sentiment index unavailable, proceeding without it", zap.Error(err))
	} else {
		mc.Sentiment = points
	}

	if summary, err := a.news.Summary(ctx); err != nil {
		a.logger.Warn("news summary unavailable, proceeding without it", zap.Error(err))
	} else {
		mc.NewsSummary = summary
	}

	if png, err := a.chart.Capture(ctx); err != nil {
		a.logger.Warn("chart snapshot unavailable, proceeding without it", zap.Error(err))
	} else {
		mc.ChartImage = png
	}

	if records, err := a.history.Recent(a.reflectionWindow); err != nil {
		a.logger.Warn("decision history unavailable, proceeding without reflection", zap.Error(err))
	} else {
		mc.History = records
	}

	return mc, nil
}
