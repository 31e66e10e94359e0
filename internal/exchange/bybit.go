package exchange

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tradepilot/internal/domain"
)

// BybitExchange implements Exchange for Bybit spot (unified account).
// Bybit market buys are denominated in quote currency and market sells in
// base asset by default, which matches the Exchange contract directly.
type BybitExchange struct {
	client *bybit.Client
}

// NewBybitExchange creates a Bybit-backed exchange client.
func NewBybitExchange(client *bybit.Client) *BybitExchange {
	return &BybitExchange{client: client}
}

func (e *BybitExchange) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	res, err := e.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to get bybit wallet balance")
	}

	for _, account := range res.Result.List {
		for _, coin := range account.Coin {
			if string(coin.Coin) == asset {
				balance, parseErr := decimal.NewFromString(coin.WalletBalance)
				if parseErr != nil {
					return decimal.Zero, errors.Wrap(parseErr, "failed to parse bybit balance")
				}
				return balance, nil
			}
		}
	}

	return decimal.Zero, nil
}

func (e *BybitExchange) GetBestAsk(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := e.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to fetch bybit tickers for %s", pair.String())
	}
	if len(result.Result.Spot.List) == 0 {
		return decimal.Zero, errors.Errorf("bybit API returned empty tickers for %s", pair.String())
	}

	ask, err := decimal.NewFromString(result.Result.Spot.List[0].Ask1Price)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse bybit best ask")
	}
	return ask, nil
}

// GetAvgCost returns zero: the bybit unified account API does not expose a
// spot cost basis, and a snapshot with zero avg cost is the documented
// no-position shape.
func (e *BybitExchange) GetAvgCost(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (e *BybitExchange) PlaceMarketBuy(ctx context.Context, pair domain.Pair, quoteAmount decimal.Decimal) (*OrderResult, error) {
	quoteAmount = quoteAmount.RoundFloor(2)

	res, err := e.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:  "spot",
		Symbol:    bybit.SymbolV5(pair.Symbol()),
		Side:      bybit.SideBuy,
		OrderType: bybit.OrderTypeMarket,
		Qty:       quoteAmount.String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bybit buy order")
	}

	return &OrderResult{
		OrderID: res.Result.OrderID,
		Symbol:  pair.Symbol(),
		Side:    domain.ActionBuy,
		Amount:  quoteAmount,
	}, nil
}

func (e *BybitExchange) PlaceMarketSell(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (*OrderResult, error) {
	baseAmount = baseAmount.RoundFloor(4)

	res, err := e.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:  "spot",
		Symbol:    bybit.SymbolV5(pair.Symbol()),
		Side:      bybit.SideSell,
		OrderType: bybit.OrderTypeMarket,
		Qty:       baseAmount.String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bybit sell order")
	}

	return &OrderResult{
		OrderID: res.Result.OrderID,
		Symbol:  pair.Symbol(),
		Side:    domain.ActionSell,
		Amount:  baseAmount,
	}, nil
}
