package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tradepilot/internal/domain"
)

const (
	defaultMinNotional      = 5000
	defaultFeeFactor        = "0.9995"
	defaultMaxAttempts      = 5
	defaultRetryDelay       = 5 * time.Second
	defaultReflectionWindow = 10
	defaultSentimentHistory = 30
	defaultHistoryDir       = "./wal/history"
)

// Timeframe describes one candle series to collect.
type Timeframe struct {
	Interval string
	Rows     int
}

// LLM holds the inference endpoint settings.
type LLM struct {
	APIURL      string
	Model       string
	MaxAttempts int
	RetryDelay  time.Duration
}

type Config struct {
	Platform         string
	Pair             domain.Pair
	LLM              LLM
	MinNotional      decimal.Decimal
	FeeFactor        decimal.Decimal
	ReflectionWindow int
	SentimentHistory int
	HistoryDir       string
	ChartURL         string
	NewsQuery        string
	Schedule         []string
	Timeframes       []Timeframe
}

type configTmp struct {
	Platform   string `yaml:"platform"`
	Pair       string `yaml:"pair"`
	LLM        struct {
		APIURL        string `yaml:"api_url"`
		Model         string `yaml:"model"`
		MaxAttempts   int    `yaml:"max_attempts,omitempty"`
		RetryDelayStr string `yaml:"retry_delay,omitempty"`
	} `yaml:"llm"`
	MinNotional      string   `yaml:"min_notional,omitempty"`
	FeeFactor        string   `yaml:"fee_factor,omitempty"`
	ReflectionWindow int      `yaml:"reflection_window,omitempty"`
	SentimentHistory int      `yaml:"sentiment_history,omitempty"`
	HistoryDir       string   `yaml:"history_dir,omitempty"`
	ChartURL         string   `yaml:"chart_url"`
	NewsQuery        string   `yaml:"news_query,omitempty"`
	Schedule         []string `yaml:"schedule,omitempty"`
	Timeframes       []struct {
		Interval string `yaml:"interval"`
		Rows     int    `yaml:"rows"`
	} `yaml:"timeframes,omitempty"`
}

// Get loads the configuration from the yaml file passed via --config.
func Get() (Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()

	return getYaml(*path)
}

func getYaml(path string) (Config, error) {
	var tmp configTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	pair, err := getPairFromString(tmp.Pair)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", tmp.Pair, err)
	}

	if tmp.Platform == "" {
		return Config{}, fmt.Errorf("'platform' param is required in yaml config")
	}
	if tmp.LLM.APIURL == "" || tmp.LLM.Model == "" {
		return Config{}, fmt.Errorf("'llm.api_url' and 'llm.model' params are required in yaml config")
	}

	cfg := Config{
		Platform: tmp.Platform,
		Pair:     pair,
		LLM: LLM{
			APIURL:      tmp.LLM.APIURL,
			Model:       tmp.LLM.Model,
			MaxAttempts: tmp.LLM.MaxAttempts,
		},
		ReflectionWindow: tmp.ReflectionWindow,
		SentimentHistory: tmp.SentimentHistory,
		HistoryDir:       tmp.HistoryDir,
		ChartURL:         tmp.ChartURL,
		NewsQuery:        tmp.NewsQuery,
		Schedule:         tmp.Schedule,
	}

	if cfg.LLM.MaxAttempts <= 0 {
		cfg.LLM.MaxAttempts = defaultMaxAttempts
	}
	if tmp.LLM.RetryDelayStr == "" {
		cfg.LLM.RetryDelay = defaultRetryDelay
	} else {
		cfg.LLM.RetryDelay, err = time.ParseDuration(tmp.LLM.RetryDelayStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'llm.retry_delay' param in yaml config (must be a duration like 5s), error: %w", err)
		}
	}
	if cfg.ReflectionWindow <= 0 {
		cfg.ReflectionWindow = defaultReflectionWindow
	}
	if cfg.SentimentHistory <= 0 {
		cfg.SentimentHistory = defaultSentimentHistory
	}
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = defaultHistoryDir
	}

	if tmp.MinNotional == "" {
		cfg.MinNotional = decimal.NewFromInt(defaultMinNotional)
	} else {
		cfg.MinNotional, err = decimal.NewFromString(tmp.MinNotional)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'min_notional' param in yaml config (must be a decimal), error: %w", err)
		}
		if cfg.MinNotional.IsNegative() {
			return Config{}, fmt.Errorf("incorrect 'min_notional' param in yaml config: must not be negative")
		}
	}

	if tmp.FeeFactor == "" {
		cfg.FeeFactor = decimal.RequireFromString(defaultFeeFactor)
	} else {
		cfg.FeeFactor, err = decimal.NewFromString(tmp.FeeFactor)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'fee_factor' param in yaml config (must be a decimal), error: %w", err)
		}
		if cfg.FeeFactor.LessThanOrEqual(decimal.Zero) || cfg.FeeFactor.GreaterThan(decimal.NewFromInt(1)) {
			return Config{}, fmt.Errorf("incorrect 'fee_factor' param in yaml config: must be in (0, 1]")
		}
	}

	if len(tmp.Schedule) == 0 {
		cfg.Schedule = []string{"1 0,6,12,18 * * *"}
	}
	for _, spec := range cfg.Schedule {
		if _, err := cron.ParseStandard(spec); err != nil {
			return Config{}, fmt.Errorf("incorrect 'schedule' entry in yaml config: %s, error: %w", spec, err)
		}
	}

	if len(tmp.Timeframes) == 0 {
		cfg.Timeframes = []Timeframe{
			{Interval: "1d", Rows: 30},
			{Interval: "1h", Rows: 24},
		}
	} else {
		for _, tf := range tmp.Timeframes {
			if tf.Interval == "" || tf.Rows <= 0 {
				return Config{}, fmt.Errorf("incorrect 'timeframes' entry in yaml config: interval and positive rows are required")
			}
			cfg.Timeframes = append(cfg.Timeframes, Timeframe{Interval: tf.Interval, Rows: tf.Rows})
		}
	}

	return cfg, nil
}

func getPairFromString(pairStr string) (domain.Pair, error) {
	pairElements := strings.Split(pairStr, "_")
	if len(pairElements) != 2 || pairElements[0] == "" || pairElements[1] == "" {
		return domain.Pair{}, fmt.Errorf("invalid pair param")
	}
	return domain.Pair{Base: pairElements[0], Quote: pairElements[1]}, nil
}
