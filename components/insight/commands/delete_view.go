package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// DeleteViewInput identifies the saved view to remove.
type DeleteViewInput struct {
	ViewID   string `json:"view_id"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type deleteViewService interface {
	DeleteSavedView(ctx context.Context, id string) error
}

// DeleteViewCommand removes saved views through the service and records
// telemetry for auditing purposes.
type DeleteViewCommand struct {
	service   deleteViewService
	telemetry Telemetry
}

// NewDeleteViewCommand builds a command instance.
func NewDeleteViewCommand(service deleteViewService, telemetry Telemetry) *DeleteViewCommand {
	return &DeleteViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteViewInput] = (*DeleteViewCommand)(nil)

// Execute removes the saved view.
func (c *DeleteViewCommand) Execute(ctx context.Context, msg DeleteViewInput) error {
	if c.service == nil {
		return errors.New("delete view command requires service")
	}
	ctx = insight.ContextWithActivity(ctx, insight.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	if err := c.service.DeleteSavedView(ctx, msg.ViewID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.delete_view", map[string]any{"view_id": msg.ViewID})
	return nil
}
