package history_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mcorbin/vigil/pkg/history"
	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
	"github.com/stretchr/testify/assert"
)

type fakeRecordStore struct {
	records  map[string][]byte
	writeErr error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string][]byte)}
}

func (f *fakeRecordStore) WriteRecord(ctx context.Context, key string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records[key] = data
	return nil
}

func (f *fakeRecordStore) ReadRecord(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.records[key]
	if !ok {
		return nil, history.ErrRecordNotFound
	}
	return data, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "https___example_com_path_a_1", history.RecordKey("https://example.com/path?a=1"))
	assert.Equal(t, "abc123", history.RecordKey("abc123"))
}

func TestAppendAndQuery(t *testing.T) {
	records := newFakeRecordStore()
	store := history.NewStore(testLogger(), records, 30*24*time.Hour)
	now := time.Now().UTC()
	endpoint := "https://example.com"

	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now.Add(-2 * time.Hour), Healthy: true}, now)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now.Add(-time.Hour), Healthy: false}, now)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now, Healthy: true}, now)

	full := store.History(endpoint)
	assert.Len(t, full, 3)
	recent := store.Query(endpoint, now.Add(-90*time.Minute))
	assert.Len(t, recent, 2)
	assert.False(t, recent[0].Healthy)
	assert.True(t, recent[1].Healthy)
}

func TestRetentionTrim(t *testing.T) {
	records := newFakeRecordStore()
	store := history.NewStore(testLogger(), records, 30*24*time.Hour)
	now := time.Now().UTC()
	endpoint := "https://example.com"

	// a sample already older than the retention window survives its own
	// append and is dropped by the next one
	stale := aggregates.Sample{Timestamp: now.Add(-31 * 24 * time.Hour), Healthy: true}
	store.Append(context.Background(), endpoint, stale, now)
	assert.Len(t, store.History(endpoint), 1)

	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now, Healthy: true}, now)
	remaining := store.History(endpoint)
	assert.Len(t, remaining, 1)
	assert.Equal(t, now, remaining[0].Timestamp)
}

func TestLoadRoundTrip(t *testing.T) {
	records := newFakeRecordStore()
	retention := 30 * 24 * time.Hour
	now := time.Now().UTC()
	endpoint := "https://example.com"

	store := history.NewStore(testLogger(), records, retention)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now.Add(-time.Hour), Healthy: false}, now)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now, Healthy: true}, now)

	reloaded := history.NewStore(testLogger(), records, retention)
	reloaded.Load(context.Background(), endpoint, now)
	assert.Equal(t, store.History(endpoint), reloaded.History(endpoint))
}

func TestLoadAppliesAgeFilter(t *testing.T) {
	records := newFakeRecordStore()
	retention := 30 * 24 * time.Hour
	now := time.Now().UTC()
	endpoint := "https://example.com"

	store := history.NewStore(testLogger(), records, retention)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now.Add(-31 * 24 * time.Hour), Healthy: true}, now)
	store.Append(context.Background(), endpoint, aggregates.Sample{Timestamp: now.Add(-29 * 24 * time.Hour), Healthy: true}, now)

	reloaded := history.NewStore(testLogger(), records, retention)
	reloaded.Load(context.Background(), endpoint, now)
	assert.Len(t, reloaded.History(endpoint), 1)
}

func TestLoadMissingRecord(t *testing.T) {
	store := history.NewStore(testLogger(), newFakeRecordStore(), time.Hour)
	store.Load(context.Background(), "https://example.com", time.Now().UTC())
	assert.Empty(t, store.History("https://example.com"))
}

func TestLoadCorruptRecord(t *testing.T) {
	records := newFakeRecordStore()
	records.records[history.RecordKey("https://example.com")] = []byte("{not json")
	store := history.NewStore(testLogger(), records, time.Hour)
	store.Load(context.Background(), "https://example.com", time.Now().UTC())
	assert.Empty(t, store.History("https://example.com"))
}

func TestPersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	records := newFakeRecordStore()
	records.writeErr = errors.New("permission denied")
	store := history.NewStore(testLogger(), records, time.Hour)
	now := time.Now().UTC()

	store.Append(context.Background(), "https://example.com", aggregates.Sample{Timestamp: now, Healthy: true}, now)
	assert.Len(t, store.History("https://example.com"), 1)
	assert.Empty(t, records.records)
}
