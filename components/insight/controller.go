package insight

import (
	"context"
	"errors"
	"io"
)

// Controller bridges the service to HTTP transports. It resolves the full
// dashboard payload and renders the HTML shell via the template renderer.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController wires the service and an optional renderer into a controller.
func NewController(service *Service, renderer Renderer) *Controller {
	return &Controller{service: service, renderer: renderer}
}

// LayoutPayload resolves every registered view for a viewer and returns the
// payload handed to JSON clients and templates.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (LayoutPayload, error) {
	if c.service == nil {
		return LayoutPayload{}, errors.New("insight: controller has no service")
	}
	views, err := c.service.Dashboard(ctx, viewer)
	if err != nil {
		return LayoutPayload{}, err
	}
	payload := LayoutPayload{
		Viewer:  viewer,
		Filters: c.service.Filters().Selection().Settings(),
		Labels:  c.service.Filters().Labels(),
		Views:   views,
	}
	if reg := c.service.Registry(); reg != nil {
		payload.Definitions = reg.Definitions()
	}
	return payload, nil
}

// RenderTemplate renders the dashboard HTML shell into w.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, w io.Writer) error {
	if c.renderer == nil {
		return errors.New("insight: controller has no renderer")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("dashboard", payload, w)
	return err
}
