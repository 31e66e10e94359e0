// Package guard converts a validated decision into at most one exchange
// order, applying the safety policy.
package guard

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradepilot/internal/domain"
	"tradepilot/internal/exchange"
)

// Outcome classifies what the guard did with a decision.
type Outcome int

const (
	// OutcomeHold no exchange call was needed.
	OutcomeHold Outcome = iota
	// OutcomeSkipped the computed notional was below the minimum threshold.
	OutcomeSkipped
	// OutcomeExecuted an order was submitted and accepted.
	OutcomeExecuted
	// OutcomeFailed the exchange call failed; non-fatal to the run.
	OutcomeFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHold:
		return "hold"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeExecuted:
		return "executed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecutionResult reports the outcome of one decision execution.
type ExecutionResult struct {
	Outcome  Outcome
	Order    *exchange.OrderResult
	Notional decimal.Decimal
	Err      error
}

type orderPlacer interface {
	GetBestAsk(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
	PlaceMarketBuy(ctx context.Context, pair domain.Pair, quoteAmount decimal.Decimal) (*exchange.OrderResult, error)
	PlaceMarketSell(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (*exchange.OrderResult, error)
}

// Guard applies the minimum-notional threshold and the fee-safety factor.
// An order is attempted at most once per run: retrying a market order risks
// duplicate fills.
type Guard struct {
	exchange    orderPlacer
	pair        domain.Pair
	minNotional decimal.Decimal
	feeFactor   decimal.Decimal
	logger      *zap.Logger
}

// New creates an execution guard.
func New(ex orderPlacer, pair domain.Pair, minNotional, feeFactor decimal.Decimal, logger *zap.Logger) *Guard {
	return &Guard{
		exchange:    ex,
		pair:        pair,
		minNotional: minNotional,
		feeFactor:   feeFactor,
		logger:      logger,
	}
}

// Execute converts the decision into zero or one market order. Exchange
// failures are captured in the result, never propagated: the pipeline still
// persists the decision as intended.
func (g *Guard) Execute(ctx context.Context, decision domain.Decision, snapshot domain.PortfolioSnapshot) ExecutionResult {
	switch decision.Action {
	case domain.ActionBuy:
		return g.executeBuy(ctx, decision, snapshot)
	case domain.ActionSell:
		return g.executeSell(ctx, decision, snapshot)
	default:
		g.logger.Info("holding, no order placed")
		return ExecutionResult{Outcome: OutcomeHold}
	}
}

func (g *Guard) executeBuy(ctx context.Context, decision domain.Decision, snapshot domain.PortfolioSnapshot) ExecutionResult {
	percentage := decimal.NewFromInt(int64(decision.Percentage))
	investAmount := snapshot.QuoteAmount.Mul(percentage).Div(decimal.NewFromInt(100))

	if investAmount.LessThan(g.minNotional) {
		g.logger.Info("buy below minimum notional, skipping order",
			zap.String("invest_amount", investAmount.String()),
			zap.String("min_notional", g.minNotional.String()))
		return ExecutionResult{Outcome: OutcomeSkipped, Notional: investAmount}
	}

	// Scale down so the exchange fee cannot push the order past the
	// available balance.
	orderAmount := investAmount.Mul(g.feeFactor)

	order, err := g.exchange.PlaceMarketBuy(ctx, g.pair, orderAmount)
	if err != nil {
		g.logger.Error("buy order failed",
			zap.String("order_amount", orderAmount.String()),
			zap.Error(err))
		return ExecutionResult{Outcome: OutcomeFailed, Notional: investAmount, Err: err}
	}

	g.logger.Info("buy order submitted",
		zap.String("order_id", order.OrderID),
		zap.String("order_amount", orderAmount.String()))
	return ExecutionResult{Outcome: OutcomeExecuted, Order: order, Notional: investAmount}
}

func (g *Guard) executeSell(ctx context.Context, decision domain.Decision, snapshot domain.PortfolioSnapshot) ExecutionResult {
	percentage := decimal.NewFromInt(int64(decision.Percentage))
	sellAmount := snapshot.BaseAmount.Mul(percentage).Div(decimal.NewFromInt(100))

	ask, err := g.exchange.GetBestAsk(ctx, g.pair)
	if err != nil {
		g.logger.Error("failed to price sell order", zap.Error(err))
		return ExecutionResult{Outcome: OutcomeFailed, Err: err}
	}

	notional := sellAmount.Mul(ask)
	if notional.LessThan(g.minNotional) {
		g.logger.Info("sell below minimum notional, skipping order",
			zap.String("notional", notional.String()),
			zap.String("min_notional", g.minNotional.String()))
		return ExecutionResult{Outcome: OutcomeSkipped, Notional: notional}
	}

	order, err := g.exchange.PlaceMarketSell(ctx, g.pair, sellAmount)
	if err != nil {
		g.logger.Error("sell order failed",
			zap.String("sell_amount", sellAmount.String()),
			zap.Error(err))
		return ExecutionResult{Outcome: OutcomeFailed, Notional: notional, Err: err}
	}

	g.logger.Info("sell order submitted",
		zap.String("order_id", order.OrderID),
		zap.String("sell_amount", sellAmount.String()))
	return ExecutionResult{Outcome: OutcomeExecuted, Order: order, Notional: notional}
}
