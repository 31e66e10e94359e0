package exchange

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tradepilot/internal/domain"
)

// BinanceExchange implements Exchange for Binance spot.
type BinanceExchange struct {
	client *binance.Client
}

// NewBinanceExchange creates a Binance-backed exchange client.
func NewBinanceExchange(client *binance.Client) *BinanceExchange {
	return &BinanceExchange{client: client}
}

func (e *BinanceExchange) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	account, err := e.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to get binance account balance")
	}

	for _, balance := range account.Balances {
		if balance.Asset == asset {
			free, err := decimal.NewFromString(balance.Free)
			if err != nil {
				return decimal.Zero, errors.Wrap(err, "failed to parse balance")
			}
			return free, nil
		}
	}

	return decimal.Zero, nil
}

func (e *BinanceExchange) GetBestAsk(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	depth, err := e.client.NewDepthService().Symbol(pair.Symbol()).Limit(5).Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to fetch binance order book for %s", pair.String())
	}
	if len(depth.Asks) == 0 {
		return decimal.Zero, errors.Errorf("binance order book has no asks for %s", pair.String())
	}

	ask, err := decimal.NewFromString(depth.Asks[0].Price)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse best ask")
	}
	return ask, nil
}

// GetAvgCost reconstructs the cost basis of the open position from the
// account's spot trade history, netting sells against the running average.
func (e *BinanceExchange) GetAvgCost(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	trades, err := e.client.NewListTradesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to list binance trades")
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero

	for _, trade := range trades {
		qty, parseErr := decimal.NewFromString(trade.Quantity)
		if parseErr != nil {
			return decimal.Zero, errors.Wrap(parseErr, "failed to parse trade quantity")
		}
		price, parseErr := decimal.NewFromString(trade.Price)
		if parseErr != nil {
			return decimal.Zero, errors.Wrap(parseErr, "failed to parse trade price")
		}

		if trade.IsBuyer {
			totalCost = totalCost.Add(price.Mul(qty))
			totalQty = totalQty.Add(qty)
			continue
		}

		if totalQty.LessThanOrEqual(decimal.Zero) {
			continue
		}
		reduced := qty
		if reduced.GreaterThan(totalQty) {
			reduced = totalQty
		}
		avgCost := totalCost.Div(totalQty)
		totalCost = totalCost.Sub(avgCost.Mul(reduced))
		totalQty = totalQty.Sub(reduced)
		if totalQty.LessThanOrEqual(decimal.Zero) {
			totalQty = decimal.Zero
			totalCost = decimal.Zero
		}
	}

	if totalQty.LessThanOrEqual(decimal.Zero) || totalCost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	return totalCost.Div(totalQty), nil
}

func (e *BinanceExchange) PlaceMarketBuy(ctx context.Context, pair domain.Pair, quoteAmount decimal.Decimal) (*OrderResult, error) {
	quoteAmount = quoteAmount.RoundFloor(2)

	order, err := e.client.NewCreateOrderService().Symbol(pair.Symbol()).
		Side(binance.SideTypeBuy).Type(binance.OrderTypeMarket).
		QuoteOrderQty(quoteAmount.String()).
		NewClientOrderID(clientOrderID("buy")).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create binance buy order")
	}

	return &OrderResult{
		OrderID: strconv.FormatInt(order.OrderID, 10),
		Symbol:  order.Symbol,
		Side:    domain.ActionBuy,
		Amount:  quoteAmount,
	}, nil
}

func (e *BinanceExchange) PlaceMarketSell(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (*OrderResult, error) {
	baseAmount = baseAmount.RoundFloor(4)

	order, err := e.client.NewCreateOrderService().Symbol(pair.Symbol()).
		Side(binance.SideTypeSell).Type(binance.OrderTypeMarket).
		Quantity(baseAmount.String()).
		NewClientOrderID(clientOrderID("sell")).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create binance sell order")
	}

	return &OrderResult{
		OrderID: strconv.FormatInt(order.OrderID, 10),
		Symbol:  order.Symbol,
		Side:    domain.ActionSell,
		Amount:  baseAmount,
	}, nil
}

func clientOrderID(side string) string {
	return "tradepilot-" + side + "-" + uuid.New().String()
}
