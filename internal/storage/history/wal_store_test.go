package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepilot/internal/domain"
)

func newTestStore(t *testing.T) *WALStore {
	t.Helper()
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeRecord(createdAt time.Time, action domain.Action, pct int) domain.HistoryRecord {
	return domain.HistoryRecord{
		CreatedAt: createdAt,
		Decision: domain.Decision{
			Action:     action,
			Percentage: pct,
			Rationale:  "test rationale",
		},
		Portfolio: domain.PortfolioSnapshot{
			BaseAmount:  decimal.NewFromFloat(0.5),
			QuoteAmount: decimal.NewFromInt(1_000_000),
			BaseAvgCost: decimal.NewFromInt(50_000_000),
			Price:       decimal.NewFromInt(60_000_000),
		},
	}
}

func TestWALStoreAppendAndRecent(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 0, 1, 0, 0, time.UTC)
	for i, action := range []domain.Action{domain.ActionBuy, domain.ActionHold, domain.ActionSell} {
		require.NoError(t, store.Append(makeRecord(base.Add(time.Duration(i)*6*time.Hour), action, i*10)))
	}

	records, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first.
	assert.Equal(t, domain.ActionSell, records[0].Decision.Action)
	assert.Equal(t, domain.ActionHold, records[1].Decision.Action)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
}

func TestWALStoreRecentMoreThanStored(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(makeRecord(time.Now().UTC(), domain.ActionBuy, 50)))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ActionBuy, records[0].Decision.Action)
}

func TestWALStoreEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWALStoreReadIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	rec := makeRecord(time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), domain.ActionSell, 25)
	require.NoError(t, store.Append(rec))

	first, err := store.Recent(5)
	require.NoError(t, err)
	second, err := store.Recent(5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.True(t, rec.CreatedAt.Equal(first[0].CreatedAt))
	assert.True(t, rec.Portfolio.QuoteAmount.Equal(first[0].Portfolio.QuoteAmount))
}

func TestWALStoreRejectsZeroTimestamp(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(domain.HistoryRecord{})
	assert.Error(t, err)

	records, err := store.Recent(1)
	require.NoError(t, err)
	assert.Empty(t, records)
}
