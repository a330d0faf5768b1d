package aggregates

import "time"

type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type Endpoint struct {
	ID   string
	Name string
	URL  string
}

// ProbeOutcome is the result of one completed probe. Exactly one of
// TransportError and HTTPStatus is set: transport failures short-circuit
// before a status code is known.
type ProbeOutcome struct {
	HTTPStatus     *int
	LatencyMillis  int64
	Body           string
	TransportError string
}

// EndpointState is the mutable per-endpoint health state. Streak counters are
// mutually exclusive: ConsecutiveFailures > 0 implies ConsecutiveSuccesses == 0
// and the other way around.
type EndpointState struct {
	Status               Status
	LastCheckedAt        *time.Time
	LastError            *string
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastLatencyMillis    *int64
}

type NotificationKind string

const (
	NotificationAlert     NotificationKind = "alert"
	NotificationSustained NotificationKind = "sustained"
	NotificationRecovered NotificationKind = "recovered"
)

type Notification struct {
	Kind     NotificationKind
	Endpoint Endpoint
	Message  string
}
