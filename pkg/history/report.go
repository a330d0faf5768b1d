package history

import (
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// WindowStats computes the read-side statistics over one grid window.
func WindowStats(grid []aggregates.GridSlot, history aggregates.History, now time.Time, window time.Duration, slot time.Duration) aggregates.WindowReport {
	report := aggregates.WindowReport{}
	healthy := 0
	unhealthy := 0
	for _, gridSlot := range grid {
		switch gridSlot.Status {
		case aggregates.StatusHealthy:
			healthy++
		case aggregates.StatusUnhealthy:
			unhealthy++
		}
	}
	if len(grid) > 0 {
		report.UptimePercent = 100 * float64(healthy) / float64(len(grid))
	}
	report.MinutesUnhealthy = int(time.Duration(unhealthy) * slot / time.Minute)
	windowStart := now.Add(-window)
	for _, sample := range history {
		if !sample.Timestamp.Before(windowStart) {
			report.TotalSamplesInWindow++
			last := sample.Timestamp
			report.LastSampleTimestamp = &last
		}
	}
	return report
}
