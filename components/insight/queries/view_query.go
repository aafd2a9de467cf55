package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// ViewInput identifies a single view request for a viewer.
type ViewInput struct {
	Viewer insight.ViewerContext
	Code   string
	Config map[string]any
}

type viewService interface {
	RenderViewConfig(ctx context.Context, code string, viewer insight.ViewerContext, config map[string]any) (insight.ViewData, error)
}

// ViewQuery fetches one view for the current filter selection.
type ViewQuery struct {
	service viewService
}

// NewViewQuery builds the query.
func NewViewQuery(service viewService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ViewInput, insight.ViewData] = (*ViewQuery)(nil)

// Query renders an individual view for the viewer.
func (q *ViewQuery) Query(ctx context.Context, input ViewInput) (insight.ViewData, error) {
	return q.service.RenderViewConfig(ctx, input.Code, input.Viewer, input.Config)
}
