package report

import (
	"context"
	"errors"
)

// ErrRegionUnavailable signals that a dashboard region could not be
// rasterized. Snapshot exports skip the region; structured exports render a
// placeholder in its place.
var ErrRegionUnavailable = errors.New("report: region unavailable")

// RegionCapturer rasterizes one dashboard region, addressed by its DOM
// element ID, into a PNG.
type RegionCapturer interface {
	CapturePNG(ctx context.Context, regionID string) ([]byte, error)
}

// CaptureFunc adapts a function into a RegionCapturer.
type CaptureFunc func(ctx context.Context, regionID string) ([]byte, error)

// CapturePNG implements RegionCapturer.
func (f CaptureFunc) CapturePNG(ctx context.Context, regionID string) ([]byte, error) {
	return f(ctx, regionID)
}
