package market

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/shopspring/decimal"
)

// IndicatorRow holds the derived indicator values for one candle.
type IndicatorRow struct {
	SMA7          decimal.Decimal
	EMA7          decimal.Decimal
	EMA14         decimal.Decimal
	EMA35         decimal.Decimal
	RSI14         decimal.Decimal
	StochK        decimal.Decimal
	StochD        decimal.Decimal
	MACD          decimal.Decimal
	MACDSignal    decimal.Decimal
	MACDHistogram decimal.Decimal
	BBMiddle      decimal.Decimal
	BBUpper       decimal.Decimal
	BBLower       decimal.Decimal
}

// PriceData represents OHLC price data for indicator computation.
type PriceData struct {
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

const minCandlesForIndicators = 50

// CalculateSMA calculates the Simple Moving Average for the given period.
func CalculateSMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	return float64ToDecimals(out), nil
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	out := helper.ChanToSlice(ema.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	return float64ToDecimals(out), nil
}

// CalculateRSI calculates the Relative Strength Index for the given period.
func CalculateRSI(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period+1 {
		return nil, fmt.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	return float64ToDecimals(out), nil
}

// CalculateMACD calculates the MACD line, signal line and histogram.
func CalculateMACD(closes []decimal.Decimal) (macdLine, signalLine, histogram []decimal.Decimal, err error) {
	if len(closes) < 35 {
		return nil, nil, nil, fmt.Errorf("not enough data points for MACD: need at least 35, got %d", len(closes))
	}

	macd := trend.NewMacd[float64]()
	macdChan, signalChan := macd.Compute(helper.SliceToChan(decimalsToFloat64(closes)))

	// Both output channels are fed concurrently and must be drained
	// concurrently to avoid blocking the producer.
	var signalFloat []float64
	done := make(chan struct{})
	go func() {
		signalFloat = helper.ChanToSlice(signalChan)
		close(done)
	}()
	macdFloat := helper.ChanToSlice(macdChan)
	<-done

	macdLine = float64ToDecimals(macdFloat)
	signalLine = float64ToDecimals(signalFloat)

	// The signal line has a longer warmup; align both series on their tails.
	n := len(signalLine)
	if len(macdLine) < n {
		n = len(macdLine)
	}
	histogram = make([]decimal.Decimal, n)
	macdTail := macdLine[len(macdLine)-n:]
	signalTail := signalLine[len(signalLine)-n:]
	for i := 0; i < n; i++ {
		histogram[i] = macdTail[i].Sub(signalTail[i])
	}

	return macdLine, signalLine, histogram, nil
}

// CalculateStochastic calculates the %K and %D lines of the stochastic
// oscillator.
func CalculateStochastic(priceData []PriceData) (k, d []decimal.Decimal, err error) {
	if len(priceData) < 17 {
		return nil, nil, fmt.Errorf("not enough data points for stochastic: need at least 17, got %d", len(priceData))
	}

	highs := make([]float64, len(priceData))
	lows := make([]float64, len(priceData))
	closes := make([]float64, len(priceData))
	for i, pd := range priceData {
		highs[i], _ = pd.High.Float64()
		lows[i], _ = pd.Low.Float64()
		closes[i], _ = pd.Close.Float64()
	}

	stoch := momentum.NewStochasticOscillator[float64]()
	kChan, dChan := stoch.Compute(
		helper.SliceToChan(highs),
		helper.SliceToChan(lows),
		helper.SliceToChan(closes),
	)

	var dFloat []float64
	done := make(chan struct{})
	go func() {
		dFloat = helper.ChanToSlice(dChan)
		close(done)
	}()
	kFloat := helper.ChanToSlice(kChan)
	<-done

	return float64ToDecimals(kFloat), float64ToDecimals(dFloat), nil
}

// CalculateBollingerBands calculates the 20-period Bollinger Bands.
func CalculateBollingerBands(closes []decimal.Decimal) (upper, middle, lower []decimal.Decimal, err error) {
	if len(closes) < 20 {
		return nil, nil, nil, fmt.Errorf("not enough data points for Bollinger Bands: need at least 20, got %d", len(closes))
	}

	bb := volatility.NewBollingerBands[float64]()
	upperChan, middleChan, lowerChan := bb.Compute(helper.SliceToChan(decimalsToFloat64(closes)))

	var middleFloat, lowerFloat []float64
	done := make(chan struct{}, 2)
	go func() {
		middleFloat = helper.ChanToSlice(middleChan)
		done <- struct{}{}
	}()
	go func() {
		lowerFloat = helper.ChanToSlice(lowerChan)
		done <- struct{}{}
	}()
	upperFloat := helper.ChanToSlice(upperChan)
	<-done
	<-done

	return float64ToDecimals(upperFloat), float64ToDecimals(middleFloat), float64ToDecimals(lowerFloat), nil
}

// CalculateAllIndicators computes the full indicator table for the given
// price data. Series with a longer warmup are aligned on their tails, so the
// result covers the most recent candles where every indicator is available.
func CalculateAllIndicators(priceData []PriceData) ([]IndicatorRow, error) {
	if len(priceData) < minCandlesForIndicators {
		return nil, fmt.Errorf("not enough data points: need at least %d, got %d", minCandlesForIndicators, len(priceData))
	}

	closes := make([]decimal.Decimal, len(priceData))
	for i, pd := range priceData {
		closes[i] = pd.Close
	}

	sma7, err := CalculateSMA(closes, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate SMA7: %w", err)
	}
	ema7, err := CalculateEMA(closes, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate EMA7: %w", err)
	}
	ema14, err := CalculateEMA(closes, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate EMA14: %w", err)
	}
	ema35, err := CalculateEMA(closes, 35)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate EMA35: %w", err)
	}
	rsi14, err := CalculateRSI(closes, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate RSI14: %w", err)
	}
	stochK, stochD, err := CalculateStochastic(priceData)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate stochastic: %w", err)
	}
	macdLine, signalLine, histogram, err := CalculateMACD(closes)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate MACD: %w", err)
	}
	bbUpper, bbMiddle, bbLower, err := CalculateBollingerBands(closes)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate Bollinger Bands: %w", err)
	}

	series := [][]decimal.Decimal{
		sma7, ema7, ema14, ema35, rsi14,
		stochK, stochD,
		macdLine, signalLine, histogram,
		bbUpper, bbMiddle, bbLower,
	}
	minLen := len(series[0])
	for _, s := range series[1:] {
		if len(s) < minLen {
			minLen = len(s)
		}
	}

	tail := func(s []decimal.Decimal) []decimal.Decimal {
		return s[len(s)-minLen:]
	}
	sma7, ema7, ema14, ema35, rsi14 = tail(sma7), tail(ema7), tail(ema14), tail(ema35), tail(rsi14)
	stochK, stochD = tail(stochK), tail(stochD)
	macdLine, signalLine, histogram = tail(macdLine), tail(signalLine), tail(histogram)
	bbUpper, bbMiddle, bbLower = tail(bbUpper), tail(bbMiddle), tail(bbLower)

	result := make([]IndicatorRow, minLen)
	for i := 0; i < minLen; i++ {
		result[i] = IndicatorRow{
			SMA7:          sma7[i],
			EMA7:          ema7[i],
			EMA14:         ema14[i],
			EMA35:         ema35[i],
			RSI14:         rsi14[i],
			StochK:        stochK[i],
			StochD:        stochD[i],
			MACD:          macdLine[i],
			MACDSignal:    signalLine[i],
			MACDHistogram: histogram[i],
			BBMiddle:      bbMiddle[i],
			BBUpper:       bbUpper[i],
			BBLower:       bbLower[i],
		}
	}

	return result, nil
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}

func float64ToDecimals(floats []float64) []decimal.Decimal {
	result := make([]decimal.Decimal, len(floats))
	for i, f := range floats {
		result[i] = decimal.NewFromFloat(f)
	}
	return result
}
