package handlers

import (
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

type MonitoringService interface {
	EndpointSummaries() []aggregates.EndpointSummary
	EndpointSummary(identifier string) (*aggregates.EndpointSummary, error)
	HistoryReport(identifier string, now time.Time) (*aggregates.HistoryReport, error)
}

type Schedule interface {
	NextCheckAt() time.Time
}

type Builder struct {
	monitoring MonitoringService
	schedule   Schedule
}

func NewBuilder(monitoring MonitoringService, schedule Schedule) *Builder {
	return &Builder{
		monitoring: monitoring,
		schedule:   schedule,
	}
}
