package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
	"github.com/prometheus/client_golang/prometheus"
)

type Prober interface {
	Probe(ctx context.Context, url string) aggregates.ProbeOutcome
}

type Checker interface {
	Check(ctx context.Context, endpointURL string, outcome aggregates.ProbeOutcome, now time.Time) (aggregates.Status, error)
}

// Scheduler drives one check pass per interval. Endpoints are probed in
// parallel within a pass, but an endpoint whose previous probe is still in
// flight is skipped, so state mutation stays serialized per endpoint even
// when passes overlap.
type Scheduler struct {
	logger    *slog.Logger
	prober    Prober
	checker   Checker
	endpoints []aggregates.Endpoint
	interval  time.Duration
	timeout   time.Duration
	counter   *prometheus.CounterVec

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	inflight  map[string]bool
	nextCheck time.Time
}

func New(logger *slog.Logger, prober Prober, checker Checker, endpoints []aggregates.Endpoint, interval time.Duration, timeout time.Duration, registry *prometheus.Registry) (*Scheduler, error) {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_checks_total",
			Help: "Count the number of endpoint checks.",
		},
		[]string{"endpoint", "status"})
	if err := registry.Register(counter); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:    logger,
		prober:    prober,
		checker:   checker,
		endpoints: endpoints,
		interval:  interval,
		timeout:   timeout,
		counter:   counter,
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[string]bool),
	}, nil
}

// NextCheckAt returns the scheduled time of the next check pass.
func (s *Scheduler) NextCheckAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCheck
}

func (s *Scheduler) acquire(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[url] {
		return false
	}
	s.inflight[url] = true
	return true
}

func (s *Scheduler) release(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, url)
}

func (s *Scheduler) pass() {
	for _, endpoint := range s.endpoints {
		if !s.acquire(endpoint.URL) {
			s.logger.Warn(fmt.Sprintf("previous check of %s still running, skipping", endpoint.URL))
			continue
		}
		s.wg.Add(1)
		go func(endpoint aggregates.Endpoint) {
			defer s.wg.Done()
			defer s.release(endpoint.URL)
			probeCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
			defer cancel()
			outcome := s.prober.Probe(probeCtx, endpoint.URL)
			// shutdown: abandon the probe without touching the state
			if s.ctx.Err() != nil {
				return
			}
			status, err := s.checker.Check(s.ctx, endpoint.URL, outcome, time.Now().UTC())
			if err != nil {
				s.logger.Error(fmt.Sprintf("fail to apply check result for %s: %s", endpoint.URL, err.Error()))
				return
			}
			s.counter.With(prometheus.Labels{"endpoint": endpoint.URL, "status": string(status)}).Inc()
		}(endpoint)
	}
}

func (s *Scheduler) Start() {
	s.logger.Info(fmt.Sprintf("starting the scheduler, %d endpoints checked every %s", len(s.endpoints), s.interval))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			s.mu.Lock()
			s.nextCheck = time.Now().Add(s.interval)
			s.mu.Unlock()
			s.pass()
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels in-flight probes and waits for every goroutine to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping the scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}
