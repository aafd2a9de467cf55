package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	insight "github.com/goliatone/go-insight/components/insight"
)

// SavedViewsInput is empty today; saved views are scoped by the session user.
type SavedViewsInput struct{}

type savedViewsService interface {
	ListSavedViews(ctx context.Context) ([]insight.SavedView, error)
}

// SavedViewsQuery lists the stored filter snapshots for the session user.
type SavedViewsQuery struct {
	service savedViewsService
}

// NewSavedViewsQuery builds the query.
func NewSavedViewsQuery(service savedViewsService) *SavedViewsQuery {
	return &SavedViewsQuery{service: service}
}

var _ gocommand.Querier[SavedViewsInput, []insight.SavedView] = (*SavedViewsQuery)(nil)

// Query lists saved views.
func (q *SavedViewsQuery) Query(ctx context.Context, _ SavedViewsInput) ([]insight.SavedView, error) {
	return q.service.ListSavedViews(ctx)
}
