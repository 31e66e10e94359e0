// Package history persists the append-only ledger of pipeline runs.
package history

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"tradepilot/internal/domain"
)

const (
	defaultDir       = "./wal/history"
	segmentThreshold = 1000
	maxSegments      = 1000
	recordKeyPrefix  = "run_"
)

// WALStore is a WAL-backed append-only ledger of history records.
// The RWMutex lets a reporting reader run Recent concurrently with the
// pipeline's Append; a reader never observes a partially written record
// because a WAL write is all-or-nothing.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) the ledger under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init history WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one record. The write is atomic; a failure here is loud and
// must be surfaced by the caller because an order may have already executed.
func (s *WALStore) Append(record domain.HistoryRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("history store is not initialized")
	}
	if record.CreatedAt.IsZero() {
		return errors.New("history record timestamp is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal history record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, recordKeyPrefix+record.CreatedAt.Format("20060102T150405"), payload); err != nil {
		return errors.Wrap(err, "append history record")
	}
	return nil
}

// Recent returns the n most recently appended records, most recent first.
// An empty store yields an empty result, not an error. Records persisted by
// older builds may lack newer optional fields; they decode with zero values.
func (s *WALStore) Recent(n int) ([]domain.HistoryRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("history store is not initialized")
	}
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.HistoryRecord, 0, n)
	for idx := s.wal.CurrentIndex(); idx >= 1 && len(records) < n; idx-- {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, recordKeyPrefix) {
			continue
		}
		var record domain.HistoryRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrapf(err, "decode history record at index %d", idx)
		}
		records = append(records, record)
	}

	return records, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("history store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
