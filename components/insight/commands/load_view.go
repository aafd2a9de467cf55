package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// LoadViewInput identifies the saved view to restore.
type LoadViewInput struct {
	ViewID   string `json:"view_id"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type loadViewService interface {
	LoadSavedView(ctx context.Context, id string) error
}

// LoadViewCommand applies a stored filter snapshot to the shared store.
type LoadViewCommand struct {
	service   loadViewService
	telemetry Telemetry
}

// NewLoadViewCommand creates a command instance.
func NewLoadViewCommand(service loadViewService, telemetry Telemetry) *LoadViewCommand {
	return &LoadViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoadViewInput] = (*LoadViewCommand)(nil)

// Execute restores the saved view.
func (c *LoadViewCommand) Execute(ctx context.Context, msg LoadViewInput) error {
	if c.service == nil {
		return errors.New("load view command requires service")
	}
	ctx = insight.ContextWithActivity(ctx, insight.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	if err := c.service.LoadSavedView(ctx, msg.ViewID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.load_view", map[string]any{"view_id": msg.ViewID})
	return nil
}
