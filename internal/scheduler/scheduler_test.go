package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mcorbin/vigil/internal/scheduler"
	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeProber struct {
	mu    sync.Mutex
	calls map[string]int
	block chan struct{}
}

func (f *fakeProber) Probe(ctx context.Context, url string) aggregates.ProbeOutcome {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	status := 200
	return aggregates.ProbeOutcome{HTTPStatus: &status, LatencyMillis: 1}
}

func (f *fakeProber) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type fakeChecker struct {
	mu     sync.Mutex
	checks int
}

func (f *fakeChecker) Check(ctx context.Context, endpointURL string, outcome aggregates.ProbeOutcome, now time.Time) (aggregates.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return aggregates.StatusHealthy, nil
}

func (f *fakeChecker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func TestSchedulerRunsChecks(t *testing.T) {
	prober := &fakeProber{}
	checker := &fakeChecker{}
	endpoints := []aggregates.Endpoint{{Name: "site", URL: "https://example.com"}}

	sched, err := scheduler.New(testLogger(), prober, checker, endpoints, 50*time.Millisecond, time.Second, prometheus.NewRegistry())
	assert.NoError(t, err)
	sched.Start()
	time.Sleep(180 * time.Millisecond)
	sched.Stop()

	assert.GreaterOrEqual(t, prober.count("https://example.com"), 2)
	assert.GreaterOrEqual(t, checker.count(), 2)
	assert.False(t, sched.NextCheckAt().IsZero())
}

func TestSchedulerSkipsInflightEndpoints(t *testing.T) {
	// the probe blocks until shutdown, so overlapping passes must skip it
	prober := &fakeProber{block: make(chan struct{})}
	checker := &fakeChecker{}
	endpoints := []aggregates.Endpoint{{Name: "slow", URL: "https://slow.example.com"}}

	sched, err := scheduler.New(testLogger(), prober, checker, endpoints, 30*time.Millisecond, 10*time.Second, prometheus.NewRegistry())
	assert.NoError(t, err)
	sched.Start()
	time.Sleep(200 * time.Millisecond)
	sched.Stop()

	assert.Equal(t, 1, prober.count("https://slow.example.com"))
	// the probe was abandoned on shutdown: no state mutation happened
	assert.Equal(t, 0, checker.count())
}
