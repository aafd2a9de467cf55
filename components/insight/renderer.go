package insight

import "io"

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// LayoutPayload is the resolved dashboard handed to templates and JSON clients.
type LayoutPayload struct {
	Viewer      ViewerContext       `json:"viewer"`
	Filters     FilterSettings      `json:"filters"`
	Labels      FilterLabels        `json:"labels"`
	Definitions []ViewDefinition    `json:"definitions,omitempty"`
	Views       map[string]ViewData `json:"views"`
}
