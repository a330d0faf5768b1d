package config

import (
	"fmt"
	"time"

	"github.com/mcorbin/vigil/internal/database"
	"github.com/mcorbin/vigil/internal/http"
	"github.com/mcorbin/vigil/internal/validator"
)

type Endpoint struct {
	Name string `validate:"required"`
	URL  string `validate:"required,url"`
}

// Monitor is the monitoring configuration. Durations are strings parsed with
// time.ParseDuration; empty values fall back to defaults.
type Monitor struct {
	Endpoints       []Endpoint `validate:"required,min=1,dive"`
	Interval        string
	Timeout         string
	RetentionWindow string `yaml:"retention-window"`
	GridWindow      string `yaml:"grid-window"`
	GridSlot        string `yaml:"grid-slot"`
	DataDirectory   string `yaml:"data-directory"`
	WebhookURL      string `yaml:"webhook-url"`
}

type Configuration struct {
	HTTP         http.Configuration
	Database     *database.Configuration
	Monitor      Monitor
	OTLPEndpoint string `yaml:"otlp-endpoint"`
}

// MonitorOptions is the monitoring configuration resolved once at startup.
type MonitorOptions struct {
	Interval        time.Duration
	Timeout         time.Duration
	RetentionWindow time.Duration
	GridWindow      time.Duration
	GridSlot        time.Duration
}

const (
	defaultInterval        = 30 * time.Second
	defaultTimeout         = 5 * time.Second
	defaultRetentionWindow = 720 * time.Hour
	defaultGridWindow      = 24 * time.Hour
	defaultGridSlot        = time.Minute
)

func parseDuration(name string, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration %s: %w", name, value, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("the %s duration should be positive", name)
	}
	return duration, nil
}

// Options validates the monitoring configuration and resolves its durations.
func (m *Monitor) Options() (MonitorOptions, error) {
	options := MonitorOptions{}
	if err := validator.Validator.Struct(m); err != nil {
		return options, err
	}
	urls := make(map[string]bool)
	for _, endpoint := range m.Endpoints {
		if urls[endpoint.URL] {
			return options, fmt.Errorf("duplicate endpoint URL %s", endpoint.URL)
		}
		urls[endpoint.URL] = true
	}
	var err error
	if options.Interval, err = parseDuration("interval", m.Interval, defaultInterval); err != nil {
		return options, err
	}
	if options.Timeout, err = parseDuration("timeout", m.Timeout, defaultTimeout); err != nil {
		return options, err
	}
	if options.RetentionWindow, err = parseDuration("retention-window", m.RetentionWindow, defaultRetentionWindow); err != nil {
		return options, err
	}
	if options.GridWindow, err = parseDuration("grid-window", m.GridWindow, defaultGridWindow); err != nil {
		return options, err
	}
	if options.GridSlot, err = parseDuration("grid-slot", m.GridSlot, defaultGridSlot); err != nil {
		return options, err
	}
	if options.Interval < options.Timeout {
		return options, fmt.Errorf("the check interval should be greater than the check timeout")
	}
	if options.GridWindow%options.GridSlot != 0 {
		return options, fmt.Errorf("the grid window %s should be a multiple of the grid slot %s", options.GridWindow, options.GridSlot)
	}
	return options, nil
}
