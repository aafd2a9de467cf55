package insight

import "context"

// ViewProvider fetches the data required to render a dashboard view for the
// current filter selection.
type ViewProvider interface {
	Fetch(ctx context.Context, meta ViewContext) (ViewData, error)
}

// ViewContext contains the metadata passed to providers on each fetch.
type ViewContext struct {
	View    ViewDefinition
	Filters FilterSelection
	Viewer  ViewerContext
	Config  map[string]any
}

// ViewData is an opaque payload handed to transports and templates.
type ViewData map[string]any

// ProviderFunc adapts plain functions into ViewProviders.
type ProviderFunc func(ctx context.Context, meta ViewContext) (ViewData, error)

// Fetch satisfies ViewProvider.
func (f ProviderFunc) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	return f(ctx, meta)
}

// NoData is the explicit empty-state payload rendered when a query produced
// no rows, so views never show a blank chart.
func NoData(view string) ViewData {
	return ViewData{
		"view":    view,
		"empty":   true,
		"message": "No data for the current selection",
	}
}

// IsNoData reports whether the payload is an empty-state marker.
func IsNoData(data ViewData) bool {
	empty, _ := data["empty"].(bool)
	return empty
}
