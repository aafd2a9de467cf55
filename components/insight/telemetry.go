package insight

import "context"

// Telemetry records insight component events (view renders, filter drills,
// explain calls, report exports) for observability. Implementations must be
// safe for concurrent use.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
