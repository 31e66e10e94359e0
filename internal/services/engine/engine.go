// Package engine turns a market context into a validated trading decision.
package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tradepilot/internal/clients"
	"tradepilot/internal/domain"
	"tradepilot/internal/services/promptbuilder"
	"tradepilot/pkg/retrier"
)

// ErrNoDecision is returned when every attempt produced a transport error or
// an invalid reply. Callers must treat it as "skip this run", never as hold.
var ErrNoDecision = errors.New("no decision after exhausting attempts")

const (
	// DefaultMaxAttempts total reasoning attempts per run.
	DefaultMaxAttempts = 5
	// DefaultRetryDelay fixed delay between attempts.
	DefaultRetryDelay = 5 * time.Second
)

// Engine queries the reasoning engine with a bounded retry envelope.
// No state persists across runs.
type Engine struct {
	llm     clients.LLMClient
	prompts *promptbuilder.Builder
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// New creates a decision engine. Non-positive attempts or delay select the
// defaults.
func New(llm clients.LLMClient, prompts *promptbuilder.Builder, maxAttempts int, retryDelay time.Duration, logger *zap.Logger) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	return &Engine{
		llm:     llm,
		prompts: prompts,
		retrier: retrier.New(
			retrier.WithMaxAttempts(maxAttempts),
			retrier.WithDelay(retryDelay),
		),
		logger: logger,
	}
}

// Decide serializes the context, queries the model and validates the reply.
// Transport failures and malformed or schema-invalid replies are identical
// retry triggers; an out-of-range percentage is rejected, never clamped.
func (e *Engine) Decide(ctx context.Context, mc *domain.MarketContext) (*domain.Decision, error) {
	req := e.prompts.Build(mc)

	attempt := 0
	decision, err := retrier.DoWithData(e.retrier, ctx, func(ctx context.Context) (*domain.Decision, error) {
		attempt++

		raw, inferErr := e.llm.Infer(ctx, req)
		if inferErr != nil {
			e.logger.Warn("reasoning engine call failed",
				zap.Int("attempt", attempt),
				zap.Error(inferErr))
			return nil, errors.Wrap(inferErr, "inference")
		}

		parsed, parseErr := domain.ParseDecision(raw)
		if parseErr != nil {
			e.logger.Warn("reasoning engine reply rejected",
				zap.Int("attempt", attempt),
				zap.String("reply", truncateReply(raw)),
				zap.Error(parseErr))
			return nil, errors.Wrap(parseErr, "parse decision")
		}

		return parsed, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("decision attempts exhausted",
			zap.Int("attempts", attempt),
			zap.Error(err))
		return nil, ErrNoDecision
	}

	e.logger.Info("decision resolved",
		zap.Int("attempt", attempt),
		zap.String("action", decision.Action.String()),
		zap.Int("percentage", decision.Percentage))

	return decision, nil
}

func truncateReply(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
