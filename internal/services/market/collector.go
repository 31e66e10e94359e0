// Package market collects candlestick data from the exchange and derives the
// indicator table that feeds the decision context.
package market

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tradepilot/internal/domain"
)

// Candle single OHLCV candlestick.
type Candle struct {
	OpenTime  time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime time.Time
}

// KlineProvider defines the interface for fetching kline (candlestick) data.
type KlineProvider interface {
	// GetKlines fetches historical kline data for a trading pair.
	// interval is an exchange kline interval such as "1h" or "1d".
	GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]Candle, error)
}

// BinanceKlineProvider implements KlineProvider for Binance.
type BinanceKlineProvider struct {
	client *binance.Client
}

// NewBinanceKlineProvider creates a new Binance kline provider.
func NewBinanceKlineProvider(client *binance.Client) *BinanceKlineProvider {
	return &BinanceKlineProvider{client: client}
}

// GetKlines fetches kline data from Binance.
func (p *BinanceKlineProvider) GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]Candle, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(pair.Symbol()).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", pair.String())
	}

	result := make([]Candle, len(klines))
	for i, k := range klines {
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse open price at index %d", i)
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price at index %d", i)
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price at index %d", i)
		}
		close, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse volume at index %d", i)
		}

		result[i] = Candle{
			OpenTime:  time.Unix(0, k.OpenTime*int64(time.Millisecond)),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			CloseTime: time.Unix(0, k.CloseTime*int64(time.Millisecond)),
		}
	}

	return result, nil
}

// TimeframeSpec one timeframe of the feature table: the kline interval and
// how many most recent rows to emit.
type TimeframeSpec struct {
	Interval string
	Rows     int
}

// Collector turns raw klines into the timeframe-grouped feature table.
type Collector struct {
	provider   KlineProvider
	pair       domain.Pair
	timeframes []TimeframeSpec
}

// NewCollector creates a new feature collector.
func NewCollector(provider KlineProvider, pair domain.Pair, timeframes []TimeframeSpec) *Collector {
	return &Collector{
		provider:   provider,
		pair:       pair,
		timeframes: timeframes,
	}
}

// Collect fetches candles for every configured timeframe and derives the
// indicator rows. Rows within a group are chronologically ordered.
func (c *Collector) Collect(ctx context.Context) (*domain.FeatureSet, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	groups := make([]domain.FeatureGroup, 0, len(c.timeframes))
	for _, tf := range c.timeframes {
		group, err := c.collectTimeframe(ctxWithTimeout, tf)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to collect timeframe %s", tf.Interval)
		}
		groups = append(groups, group)
	}

	return &domain.FeatureSet{Groups: groups}, nil
}

func (c *Collector) collectTimeframe(ctx context.Context, tf TimeframeSpec) (domain.FeatureGroup, error) {
	// Fetch extra candles so indicator warmup does not eat into the
	// requested rows.
	limit := tf.Rows + minCandlesForIndicators
	candles, err := c.provider.GetKlines(ctx, c.pair, tf.Interval, limit)
	if err != nil {
		return domain.FeatureGroup{}, err
	}
	if len(candles) < minCandlesForIndicators {
		return domain.FeatureGroup{}, errors.Errorf(
			"insufficient kline data for timeframe %s (need at least %d, got %d)",
			tf.Interval, minCandlesForIndicators, len(candles))
	}

	priceData := make([]PriceData, len(candles))
	for i, k := range candles {
		priceData[i] = PriceData{High: k.High, Low: k.Low, Close: k.Close}
	}

	indicatorRows, err := CalculateAllIndicators(priceData)
	if err != nil {
		return domain.FeatureGroup{}, err
	}

	rows := tf.Rows
	if rows > len(indicatorRows) {
		rows = len(indicatorRows)
	}
	offset := len(candles) - len(indicatorRows)

	group := domain.FeatureGroup{
		Timeframe: tf.Interval,
		Rows:      make([]domain.FeatureRow, 0, rows),
	}
	for i := len(indicatorRows) - rows; i < len(indicatorRows); i++ {
		candle := candles[offset+i]
		ind := indicatorRows[i]
		group.Rows = append(group.Rows, domain.FeatureRow{
			Timestamp: candle.OpenTime,
			Values: map[string]decimal.Decimal{
				"open":           candle.Open,
				"high":           candle.High,
				"low":            candle.Low,
				"close":          candle.Close,
				"volume":         candle.Volume,
				"SMA_7":          ind.SMA7,
				"EMA_7":          ind.EMA7,
				"EMA_14":         ind.EMA14,
				"EMA_35":         ind.EMA35,
				"RSI_14":         ind.RSI14,
				"STOCH_K":        ind.StochK,
				"STOCH_D":        ind.StochD,
				"MACD":           ind.MACD,
				"MACD_Signal":    ind.MACDSignal,
				"MACD_Histogram": ind.MACDHistogram,
				"BB_Middle":      ind.BBMiddle,
				"BB_Upper":       ind.BBUpper,
				"BB_Lower":       ind.BBLower,
			},
		})
	}

	return group, nil
}
