package history

import (
	"math"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// MapToGrid projects a sparse, time-ordered history onto a fixed grid of
// window/slot buckets ending at now. Later samples overwrite earlier ones
// mapping to the same slot; untouched slots stay Unknown.
//
// The slot index is rounded to the nearest slot and clamped into the grid.
// Truncating instead of rounding makes samples near a slot boundary alias to
// the wrong slot when now is captured with different sub-slot precision
// between calls, and a sample at the window edge can compute an index of -1
// or slotCount. With round+clamp, two calls whose now values differ by less
// than half a slot produce identical grids for the same history.
func MapToGrid(history aggregates.History, now time.Time, window time.Duration, slot time.Duration) []aggregates.GridSlot {
	slotCount := int(window / slot)
	grid := make([]aggregates.GridSlot, slotCount)
	for i := range grid {
		grid[i].Status = aggregates.StatusUnknown
	}
	windowStart := now.Add(-window)
	for _, sample := range history {
		raw := float64(sample.Timestamp.Sub(windowStart)) / float64(slot)
		index := int(math.Round(raw))
		if index < 0 {
			index = 0
		}
		if index > slotCount-1 {
			index = slotCount - 1
		}
		if sample.Healthy {
			grid[index].Status = aggregates.StatusHealthy
		} else {
			grid[index].Status = aggregates.StatusUnhealthy
		}
	}
	return grid
}
