package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetYaml(t *testing.T) {
	path := writeConfig(t, `
platform: binance
pair: BTC_USDT
llm:
  api_url: https://api.example.com/v1/chat/completions
  model: gpt-4o
  max_attempts: 3
  retry_delay: 2s
min_notional: "10000"
fee_factor: "0.999"
reflection_window: 5
sentiment_history: 7
history_dir: /tmp/ledger
chart_url: https://example.com/chart
news_query: bitcoin
schedule:
  - "0 */4 * * *"
timeframes:
  - interval: 4h
    rows: 12
`)

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Platform)
	assert.Equal(t, "BTC", cfg.Pair.Base)
	assert.Equal(t, "USDT", cfg.Pair.Quote)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay)
	assert.True(t, cfg.MinNotional.Equal(decimal.NewFromInt(10000)))
	assert.True(t, cfg.FeeFactor.Equal(decimal.RequireFromString("0.999")))
	assert.Equal(t, 5, cfg.ReflectionWindow)
	assert.Equal(t, 7, cfg.SentimentHistory)
	assert.Equal(t, "/tmp/ledger", cfg.HistoryDir)
	assert.Equal(t, []string{"0 */4 * * *"}, cfg.Schedule)
	require.Len(t, cfg.Timeframes, 1)
	assert.Equal(t, Timeframe{Interval: "4h", Rows: 12}, cfg.Timeframes[0])
}

func TestGetYamlDefaults(t *testing.T) {
	path := writeConfig(t, `
platform: bybit
pair: ETH_USDT
llm:
  api_url: https://api.example.com/v1/chat/completions
  model: gpt-4o
chart_url: https://example.com/chart
`)

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, defaultMaxAttempts, cfg.LLM.MaxAttempts)
	assert.Equal(t, defaultRetryDelay, cfg.LLM.RetryDelay)
	assert.True(t, cfg.MinNotional.Equal(decimal.NewFromInt(defaultMinNotional)))
	assert.True(t, cfg.FeeFactor.Equal(decimal.RequireFromString(defaultFeeFactor)))
	assert.Equal(t, defaultReflectionWindow, cfg.ReflectionWindow)
	assert.Equal(t, defaultSentimentHistory, cfg.SentimentHistory)
	assert.Equal(t, defaultHistoryDir, cfg.HistoryDir)
	assert.Equal(t, []string{"1 0,6,12,18 * * *"}, cfg.Schedule)
	assert.Equal(t, []Timeframe{
		{Interval: "1d", Rows: 30},
		{Interval: "1h", Rows: 24},
	}, cfg.Timeframes)
}

func TestGetYamlValidation(t *testing.T) {
	cases := map[string]string{
		"missing platform": `
pair: BTC_USDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
`,
		"bad pair": `
platform: binance
pair: BTCUSDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
`,
		"missing llm settings": `
platform: binance
pair: BTC_USDT
`,
		"bad fee factor": `
platform: binance
pair: BTC_USDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
fee_factor: "1.5"
`,
		"negative min notional": `
platform: binance
pair: BTC_USDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
min_notional: "-1"
`,
		"bad schedule": `
platform: binance
pair: BTC_USDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
schedule:
  - "not a cron spec"
`,
		"bad timeframe": `
platform: binance
pair: BTC_USDT
llm:
  api_url: https://api.example.com
  model: gpt-4o
timeframes:
  - interval: ""
    rows: 10
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := getYaml(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
