package monitor

import (
	"testing"
	"time"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
	"github.com/stretchr/testify/assert"
)

var streakEndpoint = aggregates.Endpoint{ID: "id", Name: "site", URL: "https://example.com"}

func healthyResult() Classification {
	return Classification{Healthy: true}
}

func unhealthyResult(reason string) Classification {
	return Classification{Reason: reason}
}

func TestStreakAlertOnFirstFailure(t *testing.T) {
	state := aggregates.EndpointState{Status: aggregates.StatusUnknown}
	now := time.Now().UTC()

	notifications := applyResult(streakEndpoint, &state, unhealthyResult("HTTP 500"), aggregates.ProbeOutcome{LatencyMillis: 12}, now)
	assert.Len(t, notifications, 1)
	assert.Equal(t, aggregates.NotificationAlert, notifications[0].Kind)
	assert.Equal(t, aggregates.StatusUnhealthy, state.Status)
	assert.Equal(t, 1, state.ConsecutiveFailures)
	assert.Equal(t, 0, state.ConsecutiveSuccesses)
	assert.Equal(t, "HTTP 500", *state.LastError)
	assert.Equal(t, now, *state.LastCheckedAt)
	assert.Equal(t, int64(12), *state.LastLatencyMillis)
}

func TestStreakSustainedOnFifthFailure(t *testing.T) {
	state := aggregates.EndpointState{Status: aggregates.StatusUnknown}
	now := time.Now().UTC()

	for i := 1; i <= 7; i++ {
		notifications := applyResult(streakEndpoint, &state, unhealthyResult("HTTP 500"), aggregates.ProbeOutcome{}, now)
		switch i {
		case 1:
			assert.Len(t, notifications, 1, "check %d", i)
			assert.Equal(t, aggregates.NotificationAlert, notifications[0].Kind)
		case 5:
			assert.Len(t, notifications, 1, "check %d", i)
			assert.Equal(t, aggregates.NotificationSustained, notifications[0].Kind)
			assert.Contains(t, notifications[0].Message, "5 consecutive checks")
		default:
			assert.Empty(t, notifications, "check %d", i)
		}
		assert.Equal(t, i, state.ConsecutiveFailures)
		assert.Equal(t, 0, state.ConsecutiveSuccesses)
	}
}

func TestStreakRecoveredOnTenthSuccess(t *testing.T) {
	state := aggregates.EndpointState{Status: aggregates.StatusUnknown}
	now := time.Now().UTC()

	applyResult(streakEndpoint, &state, unhealthyResult("HTTP 500"), aggregates.ProbeOutcome{}, now)

	for i := 1; i <= 11; i++ {
		notifications := applyResult(streakEndpoint, &state, healthyResult(), aggregates.ProbeOutcome{}, now)
		if i == 10 {
			assert.Len(t, notifications, 1, "success %d", i)
			assert.Equal(t, aggregates.NotificationRecovered, notifications[0].Kind)
		} else {
			assert.Empty(t, notifications, "success %d", i)
		}
		assert.Equal(t, aggregates.StatusHealthy, state.Status)
		assert.Equal(t, 0, state.ConsecutiveFailures)
		assert.Equal(t, i, state.ConsecutiveSuccesses)
		assert.Nil(t, state.LastError)
	}
}

func TestStreakBrokenStreakResetsTriggers(t *testing.T) {
	state := aggregates.EndpointState{Status: aggregates.StatusUnknown}
	now := time.Now().UTC()

	// 4 failures, one success, then failures again: the alert fires again on
	// the new streak and the sustained counter restarts from zero.
	for i := 0; i < 4; i++ {
		applyResult(streakEndpoint, &state, unhealthyResult("HTTP 500"), aggregates.ProbeOutcome{}, now)
	}
	applyResult(streakEndpoint, &state, healthyResult(), aggregates.ProbeOutcome{}, now)
	assert.Equal(t, 0, state.ConsecutiveFailures)
	assert.Equal(t, 1, state.ConsecutiveSuccesses)

	notifications := applyResult(streakEndpoint, &state, unhealthyResult("HTTP 502"), aggregates.ProbeOutcome{}, now)
	assert.Len(t, notifications, 1)
	assert.Equal(t, aggregates.NotificationAlert, notifications[0].Kind)
	assert.Equal(t, 1, state.ConsecutiveFailures)
	assert.Equal(t, 0, state.ConsecutiveSuccesses)
}
