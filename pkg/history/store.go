package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// ErrRecordNotFound is returned by record stores when no record exists for a
// key. A missing record is a normal condition, not a failure.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore is the durable storage for serialized histories.
type RecordStore interface {
	WriteRecord(ctx context.Context, key string, data []byte) error
	ReadRecord(ctx context.Context, key string) ([]byte, error)
}

// RecordKey derives the storage key for an endpoint identity. Every
// non-alphanumeric rune is replaced so the key is safe for file names.
func RecordKey(endpoint string) string {
	key := []rune(endpoint)
	for i, r := range key {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			key[i] = '_'
		}
	}
	return string(key)
}

// Store keeps a time-bounded sample history per endpoint. The in-memory
// history is authoritative: persistence is best-effort and a write failure
// never rolls back an append.
type Store struct {
	logger    *slog.Logger
	records   RecordStore
	retention time.Duration
	mu        sync.RWMutex
	histories map[string]aggregates.History
}

func NewStore(logger *slog.Logger, records RecordStore, retention time.Duration) *Store {
	return &Store{
		logger:    logger,
		records:   records,
		retention: retention,
		histories: make(map[string]aggregates.History),
	}
}

// Load reads the persisted history for an endpoint and installs it in memory.
// A missing, corrupt or unparseable record degrades to an empty history. The
// age filter is applied before the data is trusted.
func (s *Store) Load(ctx context.Context, endpoint string, now time.Time) {
	var history aggregates.History
	data, err := s.records.ReadRecord(ctx, RecordKey(endpoint))
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			s.logger.Warn(fmt.Sprintf("fail to read history record for %s, starting empty: %s", endpoint, err.Error()))
		}
	} else if err := json.Unmarshal(data, &history); err != nil {
		s.logger.Warn(fmt.Sprintf("corrupt history record for %s, starting empty: %s", endpoint, err.Error()))
		history = nil
	}
	history = trim(history, now.Add(-s.retention))
	s.mu.Lock()
	s.histories[endpoint] = history
	s.mu.Unlock()
}

// Append adds one sample to an endpoint history. Samples older than the
// retention window are trimmed first, so a sample already stale at append
// time survives until the next append or load. The filtered sequence is then
// persisted; persistence failures are logged and swallowed.
func (s *Store) Append(ctx context.Context, endpoint string, sample aggregates.Sample, now time.Time) {
	s.mu.Lock()
	history := trim(s.histories[endpoint], now.Add(-s.retention))
	history = append(history, sample)
	s.histories[endpoint] = history
	persisted := make(aggregates.History, len(history))
	copy(persisted, history)
	s.mu.Unlock()

	data, err := json.Marshal(persisted)
	if err != nil {
		s.logger.Error(fmt.Sprintf("fail to serialize history for %s: %s", endpoint, err.Error()))
		return
	}
	if err := s.records.WriteRecord(ctx, RecordKey(endpoint), data); err != nil {
		s.logger.Warn(fmt.Sprintf("fail to persist history for %s: %s", endpoint, err.Error()))
	}
}

// History returns a snapshot copy of an endpoint history.
func (s *Store) History(endpoint string) aggregates.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[endpoint]
	result := make(aggregates.History, len(history))
	copy(result, history)
	return result
}

// Query returns a snapshot of the samples with a timestamp at or after since.
func (s *Store) Query(endpoint string, since time.Time) aggregates.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := aggregates.History{}
	for _, sample := range s.histories[endpoint] {
		if !sample.Timestamp.Before(since) {
			result = append(result, sample)
		}
	}
	return result
}

// trim drops samples older than cutoff. Samples are time-ordered so the
// result stays in non-decreasing timestamp order.
func trim(history aggregates.History, cutoff time.Time) aggregates.History {
	result := make(aggregates.History, 0, len(history))
	for _, sample := range history {
		if !sample.Timestamp.Before(cutoff) {
			result = append(result, sample)
		}
	}
	return result
}
