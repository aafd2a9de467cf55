package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// SaveViewInput names the filter snapshot to persist.
type SaveViewInput struct {
	Name     string `json:"name"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type saveViewService interface {
	SaveCurrentView(ctx context.Context, name string) (insight.SavedView, error)
}

// SaveViewCommand wraps Service.SaveCurrentView so transports can persist the
// active filter selection without linking directly against the service.
type SaveViewCommand struct {
	service   saveViewService
	telemetry Telemetry
}

// NewSaveViewCommand creates a command instance.
func NewSaveViewCommand(service saveViewService, telemetry Telemetry) *SaveViewCommand {
	return &SaveViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveViewInput] = (*SaveViewCommand)(nil)

// Execute delegates to the insight service.
func (c *SaveViewCommand) Execute(ctx context.Context, msg SaveViewInput) error {
	if c.service == nil {
		return errors.New("save view command requires service")
	}
	ctx = insight.ContextWithActivity(ctx, insight.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	view, err := c.service.SaveCurrentView(ctx, msg.Name)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.save_view", map[string]any{
		"view_id": view.ID,
		"name":    view.Name,
	})
	return nil
}
