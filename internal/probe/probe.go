package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// maxBodyBytes bounds how much of a response body is read for content checks.
const maxBodyBytes = 1 << 20

type Prober struct {
	logger *slog.Logger
	client *http.Client
}

// New builds an HTTP prober. The timeout is a hard wall-clock bound covering
// the whole request, redirects and body read included.
func New(logger *slog.Logger, timeout time.Duration) *Prober {
	return &Prober{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Probe performs one GET against the endpoint. Latency is measured from
// request start to full body read. Transport failures produce an outcome with
// TransportError set and no status code.
func (p *Prober) Probe(ctx context.Context, url string) aggregates.ProbeOutcome {
	start := time.Now()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return aggregates.ProbeOutcome{TransportError: err.Error()}
	}
	response, err := p.client.Do(request)
	if err != nil {
		return aggregates.ProbeOutcome{
			TransportError: err.Error(),
			LatencyMillis:  time.Since(start).Milliseconds(),
		}
	}
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return aggregates.ProbeOutcome{
			TransportError: err.Error(),
			LatencyMillis:  latency,
		}
	}
	status := response.StatusCode
	return aggregates.ProbeOutcome{
		HTTPStatus:    &status,
		LatencyMillis: latency,
		Body:          string(body),
	}
}
