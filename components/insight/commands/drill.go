package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// DrillInput carries a chart click: the axis and the clicked value.
type DrillInput struct {
	Axis  string `json:"axis"`
	Value string `json:"value"`
}

type drillService interface {
	Drill(ctx context.Context, axis insight.FilterAxis, value string) error
}

// DrillCommand toggles a drill-down selection from a chart interaction.
type DrillCommand struct {
	service   drillService
	telemetry Telemetry
}

// NewDrillCommand builds a command instance.
func NewDrillCommand(service drillService, telemetry Telemetry) *DrillCommand {
	return &DrillCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DrillInput] = (*DrillCommand)(nil)

// Execute toggles the axis selection.
func (c *DrillCommand) Execute(ctx context.Context, msg DrillInput) error {
	if c.service == nil {
		return errors.New("drill command requires service")
	}
	if err := c.service.Drill(ctx, insight.FilterAxis(msg.Axis), msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.drill", map[string]any{
		"axis":  msg.Axis,
		"value": msg.Value,
	})
	return nil
}
