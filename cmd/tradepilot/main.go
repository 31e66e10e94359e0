package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tradepilot/config"
	"tradepilot/internal/clients"
	"tradepilot/internal/exchange"
	"tradepilot/internal/pipeline"
	"tradepilot/internal/services/assembler"
	"tradepilot/internal/services/chart"
	"tradepilot/internal/services/engine"
	"tradepilot/internal/services/guard"
	"tradepilot/internal/services/market"
	"tradepilot/internal/services/portfolio"
	"tradepilot/internal/services/promptbuilder"
	"tradepilot/internal/services/sentiment"
	"tradepilot/internal/storage/history"
)

const runTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	ex, err := makeExchange(cfg.Platform)
	if err != nil {
		logger.Fatal("failed to create exchange client", zap.Error(err))
	}

	llmKey := os.Getenv("LLM_API_KEY")
	if llmKey == "" {
		logger.Fatal("LLM_API_KEY env is not set")
	}

	store, err := history.NewWALStore(cfg.HistoryDir)
	if err != nil {
		logger.Fatal("failed to open history store", zap.Error(err))
	}
	defer store.Close()

	// Klines come from the public market data endpoint, no keys needed.
	timeframes := make([]market.TimeframeSpec, 0, len(cfg.Timeframes))
	for _, tf := range cfg.Timeframes {
		timeframes = append(timeframes, market.TimeframeSpec{Interval: tf.Interval, Rows: tf.Rows})
	}
	collector := market.NewCollector(
		market.NewBinanceKlineProvider(binance.NewClient("", "")),
		cfg.Pair,
		timeframes,
	)

	asm := assembler.New(assembler.Config{
		Features:         collector,
		Sentiment:        sentiment.NewFearGreedClient(""),
		News:             sentiment.NewNewsClient("", os.Getenv("TAVILY_API_KEY"), cfg.NewsQuery),
		Chart:            chart.NewCapturer(cfg.ChartURL),
		Portfolio:        portfolio.NewSnapshotter(ex, cfg.Pair),
		History:          store,
		SentimentHistory: cfg.SentimentHistory,
		ReflectionWindow: cfg.ReflectionWindow,
	}, logger)

	eng := engine.New(
		clients.NewOpenAICompatibleClient(cfg.LLM.APIURL, llmKey, cfg.LLM.Model),
		promptbuilder.NewBuilder(cfg.Pair),
		cfg.LLM.MaxAttempts,
		cfg.LLM.RetryDelay,
		logger,
	)

	grd := guard.New(ex, cfg.Pair, cfg.MinNotional, cfg.FeeFactor, logger)

	pipe := pipeline.New(asm, eng, grd, store, logger)

	var running atomic.Bool
	runOnce := func() {
		if swapped := running.CompareAndSwap(false, true); !swapped {
			logger.Warn("previous run still in progress, skipping this trigger")
			return
		}
		defer running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := pipe.Run(ctx); err != nil {
			logger.Error("run finished with error", zap.Error(err))
		}
	}

	// Schedule entries are validated at config load, before the store opens.
	c := cron.New()
	for _, spec := range cfg.Schedule {
		if _, err := c.AddFunc(spec, runOnce); err != nil {
			store.Close()
			logger.Fatal("invalid schedule entry", zap.String("spec", spec), zap.Error(err))
		}
	}

	logger.Info("started",
		zap.String("pair", cfg.Pair.String()),
		zap.String("platform", cfg.Platform),
		zap.Strings("schedule", cfg.Schedule))

	runOnce()
	c.Run()
}

func makeExchange(platform string) (exchange.Exchange, error) {
	switch platform {
	case "binance":
		apikey := os.Getenv("BINANCE_API_KEY")
		secretkey := os.Getenv("BINANCE_API_SECRET")
		if apikey == "" || secretkey == "" {
			return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET envs are not set")
		}
		return exchange.NewBinanceExchange(binance.NewClient(apikey, secretkey)), nil
	case "bybit":
		apikey := os.Getenv("BYBIT_API_KEY")
		secretkey := os.Getenv("BYBIT_API_SECRET")
		if apikey == "" || secretkey == "" {
			return nil, fmt.Errorf("BYBIT_API_KEY and BYBIT_API_SECRET envs are not set")
		}
		return exchange.NewBybitExchange(bybit.NewClient().WithAuth(apikey, secretkey)), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q, expected binance or bybit", platform)
	}
}
