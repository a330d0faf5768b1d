package aggregates

import "time"

// Sample is one timestamped healthy/unhealthy observation. Samples are never
// edited after being appended.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Healthy   bool      `json:"healthy"`
}

// History is a time-ordered sequence of samples for one endpoint.
type History []Sample

// GridSlot is one fixed-duration bucket of the visualization grid. It is
// derived from the history on read and never persisted.
type GridSlot struct {
	Status Status `json:"status"`
}
