// Package pipeline orchestrates one full decision-and-execution run.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tradepilot/internal/domain"
	"tradepilot/internal/services/engine"
	"tradepilot/internal/services/guard"
)

// RunStatus describes how a run ended.
type RunStatus int

const (
	// StatusCompleted means a decision was made and carried to the ledger.
	StatusCompleted RunStatus = iota
	// StatusAborted means context assembly failed and nothing happened.
	StatusAborted
	// StatusSkipped means no usable decision was produced; no order, no record.
	StatusSkipped
)

func (s RunStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of a single run.
type RunResult struct {
	Status    RunStatus
	Decision  *domain.Decision
	Execution *guard.ExecutionResult
	Record    *domain.HistoryRecord
}

type contextAssembler interface {
	Assemble(ctx context.Context) (*domain.MarketContext, error)
}

type decider interface {
	Decide(ctx context.Context, mc *domain.MarketContext) (*domain.Decision, error)
}

type executor interface {
	Execute(ctx context.Context, decision domain.Decision, portfolio domain.PortfolioSnapshot) guard.ExecutionResult
}

type historyAppender interface {
	Append(record domain.HistoryRecord) error
}

// Pipeline runs the collect-decide-execute-persist sequence.
type Pipeline struct {
	assembler contextAssembler
	engine    decider
	guard     executor
	store     historyAppender
	logger    *zap.Logger
}

func New(assembler contextAssembler, eng decider, grd executor, store historyAppender, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		assembler: assembler,
		engine:    eng,
		guard:     grd,
		store:     store,
		logger:    logger,
	}
}

// Run executes one complete cycle. Exactly one history record is appended per
// run that reaches a decision; aborted and skipped runs append nothing.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now().UTC()
	p.logger.Info("run started")

	mc, err := p.assembler.Assemble(ctx)
	if err != nil {
		p.logger.Error("context assembly failed, run aborted", zap.Error(err))
		return &RunResult{Status: StatusAborted}, errors.Wrap(err, "assemble market context")
	}

	decision, err := p.engine.Decide(ctx, mc)
	if err != nil {
		if ctx.Err() != nil {
			return &RunResult{Status: StatusAborted}, ctx.Err()
		}
		if errors.Is(err, engine.ErrNoDecision) {
			p.logger.Warn("no decision produced, run skipped")
			return &RunResult{Status: StatusSkipped}, nil
		}
		return &RunResult{Status: StatusAborted}, errors.Wrap(err, "decide")
	}

	execution := p.guard.Execute(ctx, *decision, mc.Portfolio)
	if execution.Outcome == guard.OutcomeFailed {
		p.logger.Warn("execution failed, recording run anyway",
			zap.Error(execution.Err))
	}

	record := domain.HistoryRecord{
		CreatedAt: started,
		Decision:  *decision,
		Portfolio: mc.Portfolio,
	}

	result := &RunResult{
		Status:    StatusCompleted,
		Decision:  decision,
		Execution: &execution,
		Record:    &record,
	}

	if err := p.store.Append(record); err != nil {
		p.logger.Error("failed to persist history record, order may have executed",
			zap.String("action", decision.Action.String()),
			zap.Error(err))
		return result, errors.Wrap(err, "persist history record")
	}

	p.logger.Info("run completed",
		zap.String("action", decision.Action.String()),
		zap.Int("percentage", decision.Percentage),
		zap.String("execution", execution.Outcome.String()))

	return result, nil
}
