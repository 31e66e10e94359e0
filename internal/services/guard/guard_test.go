package guard

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradepilot/internal/domain"
	"tradepilot/internal/exchange"
)

type fakeExchange struct {
	ask    decimal.Decimal
	askErr error
	buyErr error
	selErr error

	buyCalls  []decimal.Decimal
	sellCalls []decimal.Decimal
}

func (f *fakeExchange) GetBestAsk(_ context.Context, _ domain.Pair) (decimal.Decimal, error) {
	return f.ask, f.askErr
}

func (f *fakeExchange) PlaceMarketBuy(_ context.Context, pair domain.Pair, quoteAmount decimal.Decimal) (*exchange.OrderResult, error) {
	f.buyCalls = append(f.buyCalls, quoteAmount)
	if f.buyErr != nil {
		return nil, f.buyErr
	}
	return &exchange.OrderResult{OrderID: "1", Symbol: pair.Symbol(), Side: domain.ActionBuy, Amount: quoteAmount}, nil
}

func (f *fakeExchange) PlaceMarketSell(_ context.Context, pair domain.Pair, baseAmount decimal.Decimal) (*exchange.OrderResult, error) {
	f.sellCalls = append(f.sellCalls, baseAmount)
	if f.selErr != nil {
		return nil, f.selErr
	}
	return &exchange.OrderResult{OrderID: "2", Symbol: pair.Symbol(), Side: domain.ActionSell, Amount: baseAmount}, nil
}

func newTestGuard(ex *fakeExchange) *Guard {
	return New(
		ex,
		domain.Pair{Base: "BTC", Quote: "KRW"},
		decimal.NewFromInt(5000),
		decimal.RequireFromString("0.9995"),
		zap.NewNop(),
	)
}

func TestGuardBuy(t *testing.T) {
	t.Run("buy scales order by fee factor", func(t *testing.T) {
		ex := &fakeExchange{}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionBuy, Percentage: 50},
			domain.PortfolioSnapshot{QuoteAmount: decimal.NewFromInt(1_000_000)})

		require.Equal(t, OutcomeExecuted, result.Outcome)
		require.Len(t, ex.buyCalls, 1)
		assert.True(t, ex.buyCalls[0].Equal(decimal.RequireFromString("499750")),
			"want 499750, got %s", ex.buyCalls[0])
		assert.True(t, result.Notional.Equal(decimal.NewFromInt(500_000)))
		require.NotNil(t, result.Order)
		assert.Equal(t, "1", result.Order.OrderID)
	})

	t.Run("buy below minimum notional is skipped", func(t *testing.T) {
		ex := &fakeExchange{}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionBuy, Percentage: 50},
			domain.PortfolioSnapshot{QuoteAmount: decimal.NewFromInt(8000)})

		assert.Equal(t, OutcomeSkipped, result.Outcome)
		assert.True(t, result.Notional.Equal(decimal.NewFromInt(4000)))
		assert.Empty(t, ex.buyCalls)
		assert.NoError(t, result.Err)
	})

	t.Run("buy at exactly the threshold executes", func(t *testing.T) {
		ex := &fakeExchange{}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionBuy, Percentage: 100},
			domain.PortfolioSnapshot{QuoteAmount: decimal.NewFromInt(5000)})

		assert.Equal(t, OutcomeExecuted, result.Outcome)
		require.Len(t, ex.buyCalls, 1)
	})

	t.Run("buy failure is captured not propagated", func(t *testing.T) {
		ex := &fakeExchange{buyErr: errors.New("insufficient funds")}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionBuy, Percentage: 100},
			domain.PortfolioSnapshot{QuoteAmount: decimal.NewFromInt(100_000)})

		assert.Equal(t, OutcomeFailed, result.Outcome)
		assert.Error(t, result.Err)
		assert.Nil(t, result.Order)
	})
}

func TestGuardSell(t *testing.T) {
	t.Run("sell sends base amount unscaled", func(t *testing.T) {
		ex := &fakeExchange{ask: decimal.NewFromInt(60_000_000)}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionSell, Percentage: 25},
			domain.PortfolioSnapshot{BaseAmount: decimal.NewFromInt(2)})

		require.Equal(t, OutcomeExecuted, result.Outcome)
		require.Len(t, ex.sellCalls, 1)
		assert.True(t, ex.sellCalls[0].Equal(decimal.RequireFromString("0.5")))
		assert.True(t, result.Notional.Equal(decimal.NewFromInt(30_000_000)))
	})

	t.Run("sell below minimum notional is skipped", func(t *testing.T) {
		ex := &fakeExchange{ask: decimal.NewFromInt(100)}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionSell, Percentage: 10},
			domain.PortfolioSnapshot{BaseAmount: decimal.NewFromInt(1)})

		assert.Equal(t, OutcomeSkipped, result.Outcome)
		assert.Empty(t, ex.sellCalls)
	})

	t.Run("pricing failure fails the execution", func(t *testing.T) {
		ex := &fakeExchange{askErr: errors.New("depth unavailable")}
		g := newTestGuard(ex)

		result := g.Execute(context.Background(),
			domain.Decision{Action: domain.ActionSell, Percentage: 50},
			domain.PortfolioSnapshot{BaseAmount: decimal.NewFromInt(1)})

		assert.Equal(t, OutcomeFailed, result.Outcome)
		assert.Error(t, result.Err)
		assert.Empty(t, ex.sellCalls)
	})
}

func TestGuardHold(t *testing.T) {
	ex := &fakeExchange{}
	g := newTestGuard(ex)

	result := g.Execute(context.Background(),
		domain.Decision{Action: domain.ActionHold, Percentage: 0},
		domain.PortfolioSnapshot{QuoteAmount: decimal.NewFromInt(1_000_000)})

	assert.Equal(t, OutcomeHold, result.Outcome)
	assert.Empty(t, ex.buyCalls)
	assert.Empty(t, ex.sellCalls)
}
