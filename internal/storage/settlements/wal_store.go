// Package settlements keeps an append-only history of committed swaps.
// Balances live in the ledger snapshot; this journal is history only.
package settlements

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"swapdesk/internal/domain"
)

const (
	DefaultDir   = "./wal/settlements"
	segmentLimit = 100
	maxSegments  = 10

	settlementKeyPrefix = "settlement_"
)

// WALStore persists settlement events in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed settlement journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "settlement_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init settlement WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the settlement event to the journal.
func (s *WALStore) Save(event domain.SettlementEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("settlement store is not initialized")
	}
	if event.ID == "" {
		return fmt.Errorf("settlement event id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal settlement event")
	}

	key := fmt.Sprintf("%s%s", settlementKeyPrefix, event.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all settlement events written after the provided index.
func (s *WALStore) EventsAfter(index uint64) ([]domain.SettlementRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("settlement store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.SettlementRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, settlementKeyPrefix) {
			continue
		}

		var event domain.SettlementEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode settlement event")
		}
		records = append(records, domain.SettlementRecord{Index: idx, Event: event})
	}

	return records, nil
}

// CurrentIndex returns the latest journal index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("settlement store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
