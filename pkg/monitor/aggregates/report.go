package aggregates

import "time"

// EndpointSummary is the read-side status view of one endpoint.
type EndpointSummary struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	URL                  string     `json:"url"`
	Status               Status     `json:"status"`
	LastCheck            *time.Time `json:"lastCheck,omitempty"`
	LastError            *string    `json:"lastError,omitempty"`
	ConsecutiveErrors    int        `json:"consecutiveErrors"`
	ConsecutiveSuccesses int        `json:"consecutiveSuccesses"`
	ResponseTime         *int64     `json:"responseTime,omitempty"`
	NextCheck            *time.Time `json:"nextCheck,omitempty"`
}

// WindowReport carries the statistics computed over one grid window.
type WindowReport struct {
	UptimePercent        float64    `json:"uptimePercent"`
	MinutesUnhealthy     int        `json:"minutesUnhealthy"`
	TotalSamplesInWindow int        `json:"totalSamplesInWindow"`
	LastSampleTimestamp  *time.Time `json:"lastSampleTimestamp,omitempty"`
}

// HistoryReport is the read-side history view of one endpoint.
type HistoryReport struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	URL    string       `json:"url"`
	Grid   []GridSlot   `json:"grid"`
	Report WindowReport `json:"report"`
}
