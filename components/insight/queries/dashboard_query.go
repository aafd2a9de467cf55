package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

type dashboardService interface {
	Dashboard(ctx context.Context, viewer insight.ViewerContext) (map[string]insight.ViewData, error)
}

// DashboardQuery executes read-only dashboard resolution.
type DashboardQuery struct {
	service dashboardService
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service dashboardService) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[insight.ViewerContext, map[string]insight.ViewData] = (*DashboardQuery)(nil)

// Query renders every configured view for the viewer.
func (q *DashboardQuery) Query(ctx context.Context, viewer insight.ViewerContext) (map[string]insight.ViewData, error) {
	return q.service.Dashboard(ctx, viewer)
}
