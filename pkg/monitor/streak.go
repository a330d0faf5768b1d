package monitor

import (
	"fmt"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

// Notification thresholds. All three triggers are exact-equality checks so
// each one fires exactly once per unbroken streak.
const (
	alertAfterFailures      = 1
	sustainedAfterFailures  = 5
	recoveredAfterSuccesses = 10
)

// applyResult transitions the endpoint state with the latest classification
// and returns the notifications to emit. It never fails: notification
// delivery is the caller's problem and cannot affect the state.
func applyResult(endpoint aggregates.Endpoint, state *aggregates.EndpointState, result Classification, outcome aggregates.ProbeOutcome, now time.Time) []aggregates.Notification {
	var notifications []aggregates.Notification
	if result.Healthy {
		state.ConsecutiveFailures = 0
		state.ConsecutiveSuccesses++
		state.LastError = nil
		state.Status = aggregates.StatusHealthy
		if state.ConsecutiveSuccesses == recoveredAfterSuccesses {
			notifications = append(notifications, aggregates.Notification{
				Kind:     aggregates.NotificationRecovered,
				Endpoint: endpoint,
				Message:  fmt.Sprintf("%s (%s) recovered: %d consecutive successful checks", endpoint.Name, endpoint.URL, recoveredAfterSuccesses),
			})
		}
	} else {
		state.ConsecutiveSuccesses = 0
		state.ConsecutiveFailures++
		reason := result.Reason
		state.LastError = &reason
		state.Status = aggregates.StatusUnhealthy
		if state.ConsecutiveFailures == alertAfterFailures {
			notifications = append(notifications, aggregates.Notification{
				Kind:     aggregates.NotificationAlert,
				Endpoint: endpoint,
				Message:  fmt.Sprintf("%s (%s) is down: %s", endpoint.Name, endpoint.URL, result.Reason),
			})
		}
		if state.ConsecutiveFailures == sustainedAfterFailures {
			notifications = append(notifications, aggregates.Notification{
				Kind:     aggregates.NotificationSustained,
				Endpoint: endpoint,
				Message:  fmt.Sprintf("%s (%s) is still down after %d consecutive checks: %s", endpoint.Name, endpoint.URL, sustainedAfterFailures, result.Reason),
			})
		}
	}
	checkedAt := now
	state.LastCheckedAt = &checkedAt
	latency := outcome.LatencyMillis
	state.LastLatencyMillis = &latency
	return notifications
}
