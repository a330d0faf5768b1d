package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mcorbin/vigil/internal/validator"
	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
)

type getEndpointInput struct {
	Identifier string `param:"identifier" validate:"required"`
}

type listStatusOutput struct {
	Result []aggregates.EndpointSummary `json:"result"`
}

func (b *Builder) nextCheck() *time.Time {
	next := b.schedule.NextCheckAt()
	if next.IsZero() {
		return nil
	}
	return &next
}

// ListStatus returns the status summary of every endpoint.
func (b *Builder) ListStatus(ec echo.Context) error {
	summaries := b.monitoring.EndpointSummaries()
	next := b.nextCheck()
	for i := range summaries {
		summaries[i].NextCheck = next
	}
	return ec.JSON(http.StatusOK, listStatusOutput{Result: summaries})
}

// GetStatus returns the status summary of one endpoint, looked up by ID,
// name or URL.
func (b *Builder) GetStatus(ec echo.Context) error {
	var payload getEndpointInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := validator.Validator.Struct(payload); err != nil {
		return err
	}
	summary, err := b.monitoring.EndpointSummary(payload.Identifier)
	if err != nil {
		return err
	}
	summary.NextCheck = b.nextCheck()
	return ec.JSON(http.StatusOK, summary)
}

// GetHistory returns the endpoint history mapped onto the visualization grid
// plus the windowed statistics.
func (b *Builder) GetHistory(ec echo.Context) error {
	var payload getEndpointInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := validator.Validator.Struct(payload); err != nil {
		return err
	}
	report, err := b.monitoring.HistoryReport(payload.Identifier, time.Now().UTC())
	if err != nil {
		return err
	}
	return ec.JSON(http.StatusOK, report)
}
