package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	er "github.com/mcorbin/corbierror"
	"github.com/mcorbin/vigil/internal/util"
	"github.com/mcorbin/vigil/pkg/history"
	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// HistoryStore keeps the sample history per endpoint.
type HistoryStore interface {
	Append(ctx context.Context, endpoint string, sample aggregates.Sample, now time.Time)
	History(endpoint string) aggregates.History
}

// NotificationSink delivers notification messages, best-effort.
type NotificationSink interface {
	Send(ctx context.Context, message string) error
}

type Options struct {
	LatencyThresholdMillis int64
	GridWindow             time.Duration
	GridSlot               time.Duration
}

type endpointEntry struct {
	// mu serializes all state and history mutation for this endpoint.
	mu       sync.Mutex
	endpoint aggregates.Endpoint
	state    aggregates.EndpointState
}

type Service struct {
	logger  *slog.Logger
	store   HistoryStore
	sink    NotificationSink
	options Options
	entries map[string]*endpointEntry
	byAlias map[string]string
}

// New builds the monitoring service for a fixed set of endpoints. Each
// endpoint gets a generated ID usable as an API identifier alongside its name
// and URL.
func New(logger *slog.Logger, store HistoryStore, sink NotificationSink, endpoints []aggregates.Endpoint, options Options) (*Service, error) {
	if options.GridSlot <= 0 || options.GridWindow%options.GridSlot != 0 {
		return nil, fmt.Errorf("the grid window %s should be a multiple of the grid slot %s", options.GridWindow, options.GridSlot)
	}
	service := &Service{
		logger:  logger,
		store:   store,
		sink:    sink,
		options: options,
		entries: make(map[string]*endpointEntry),
		byAlias: make(map[string]string),
	}
	for _, endpoint := range endpoints {
		if _, ok := service.entries[endpoint.URL]; ok {
			return nil, fmt.Errorf("duplicate endpoint URL %s", endpoint.URL)
		}
		if endpoint.ID == "" {
			endpoint.ID = util.NewUUID()
		}
		service.entries[endpoint.URL] = &endpointEntry{
			endpoint: endpoint,
			state:    aggregates.EndpointState{Status: aggregates.StatusUnknown},
		}
		service.byAlias[endpoint.ID] = endpoint.URL
		service.byAlias[endpoint.Name] = endpoint.URL
	}
	return service, nil
}

func (s *Service) Endpoints() []aggregates.Endpoint {
	result := []aggregates.Endpoint{}
	for _, entry := range s.entries {
		result = append(result, entry.endpoint)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (s *Service) lookup(identifier string) (*endpointEntry, error) {
	if entry, ok := s.entries[identifier]; ok {
		return entry, nil
	}
	if url, ok := s.byAlias[identifier]; ok {
		return s.entries[url], nil
	}
	return nil, er.Newf("endpoint %s not found", er.NotFound, true, identifier)
}

// Check applies one probe outcome: classify, update the streak state, append
// the sample to the history and dispatch notifications. Mutation is
// serialized per endpoint; notification delivery failures are logged and
// cannot affect the state.
func (s *Service) Check(ctx context.Context, endpointURL string, outcome aggregates.ProbeOutcome, now time.Time) (aggregates.Status, error) {
	entry, ok := s.entries[endpointURL]
	if !ok {
		return aggregates.StatusUnknown, fmt.Errorf("unknown endpoint %s", endpointURL)
	}
	result := Classify(outcome, s.options.LatencyThresholdMillis)

	entry.mu.Lock()
	notifications := applyResult(entry.endpoint, &entry.state, result, outcome, now)
	status := entry.state.Status
	entry.mu.Unlock()

	// the append runs outside entry.mu so status reads never wait on the
	// durable write; the store's own lock keeps the in-memory append atomic
	// and the scheduler's in-flight guard keeps per-endpoint mutation ordered
	s.store.Append(ctx, endpointURL, aggregates.Sample{Timestamp: now, Healthy: result.Healthy}, now)

	for _, notification := range notifications {
		if s.sink == nil {
			continue
		}
		if err := s.sink.Send(ctx, notification.Message); err != nil {
			s.logger.Error(fmt.Sprintf("fail to send %s notification for %s: %s", notification.Kind, entry.endpoint.URL, err.Error()))
		}
	}
	return status, nil
}

func (s *Service) summary(entry *endpointEntry) aggregates.EndpointSummary {
	entry.mu.Lock()
	state := entry.state
	entry.mu.Unlock()
	return aggregates.EndpointSummary{
		ID:                   entry.endpoint.ID,
		Name:                 entry.endpoint.Name,
		URL:                  entry.endpoint.URL,
		Status:               state.Status,
		LastCheck:            state.LastCheckedAt,
		LastError:            state.LastError,
		ConsecutiveErrors:    state.ConsecutiveFailures,
		ConsecutiveSuccesses: state.ConsecutiveSuccesses,
		ResponseTime:         state.LastLatencyMillis,
	}
}

// EndpointSummaries returns an atomic snapshot of every endpoint state.
func (s *Service) EndpointSummaries() []aggregates.EndpointSummary {
	result := []aggregates.EndpointSummary{}
	for _, entry := range s.entries {
		result = append(result, s.summary(entry))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// EndpointSummary returns the state snapshot for one endpoint, looked up by
// ID, name or URL.
func (s *Service) EndpointSummary(identifier string) (*aggregates.EndpointSummary, error) {
	entry, err := s.lookup(identifier)
	if err != nil {
		return nil, err
	}
	summary := s.summary(entry)
	return &summary, nil
}

// HistoryReport maps the endpoint history onto the configured grid and
// computes the windowed statistics.
func (s *Service) HistoryReport(identifier string, now time.Time) (*aggregates.HistoryReport, error) {
	entry, err := s.lookup(identifier)
	if err != nil {
		return nil, err
	}
	samples := s.store.History(entry.endpoint.URL)
	grid := history.MapToGrid(samples, now, s.options.GridWindow, s.options.GridSlot)
	return &aggregates.HistoryReport{
		ID:     entry.endpoint.ID,
		Name:   entry.endpoint.Name,
		URL:    entry.endpoint.URL,
		Grid:   grid,
		Report: history.WindowStats(grid, samples, now, s.options.GridWindow, s.options.GridSlot),
	}, nil
}
