package monitor

import (
	"fmt"
	"strings"

	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

const phpErrorMarker = "A PHP Error was encountered"

// Accepted status range. Redirects count as healthy.
const (
	minAcceptedStatus = 200
	maxAcceptedStatus = 399
)

type Classification struct {
	Healthy bool
	Reason  string
}

// Classify decides whether one probe outcome is healthy. Rules are evaluated
// in order, first match wins. It is a pure function of its input.
func Classify(outcome aggregates.ProbeOutcome, thresholdMillis int64) Classification {
	if outcome.TransportError != "" {
		return Classification{Reason: outcome.TransportError}
	}
	if outcome.HTTPStatus != nil && (*outcome.HTTPStatus < minAcceptedStatus || *outcome.HTTPStatus > maxAcceptedStatus) {
		return Classification{Reason: fmt.Sprintf("HTTP %d", *outcome.HTTPStatus)}
	}
	if outcome.LatencyMillis > thresholdMillis {
		return Classification{Reason: fmt.Sprintf("Response time %dms exceeds %dms", outcome.LatencyMillis, thresholdMillis)}
	}
	if strings.Contains(outcome.Body, phpErrorMarker) {
		return Classification{Reason: "PHP Error detected in page content"}
	}
	return Classification{Healthy: true}
}
