// Package rodcapture rasterizes dashboard regions with a headless browser.
// It is the production RegionCapturer used by report exports; tests and
// offline tooling use stub capturers instead.
package rodcapture

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/goliatone/go-insight/pkg/report"
)

// Options configures the browser-backed capturer.
type Options struct {
	// URL is the dashboard page to load before capturing regions.
	URL string
	// Scale is the device scale factor applied before the screenshot.
	// Defaults to 2 for print-quality rasters.
	Scale float64
	// Width/Height set the emulated viewport. Defaults to 1440x900.
	Width  int
	Height int
	// Browser reuses an already connected instance. When nil a browser is
	// launched on first capture and owned by the capturer.
	Browser *rod.Browser
}

// Capturer screenshots dashboard regions by element ID.
type Capturer struct {
	opts Options

	mu      sync.Mutex
	browser *rod.Browser
	owned   bool
}

var _ report.RegionCapturer = (*Capturer)(nil)

// New builds a Capturer. The browser is connected lazily on first capture.
func New(opts Options) (*Capturer, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("rodcapture: dashboard url is required")
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.Width <= 0 {
		opts.Width = 1440
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	return &Capturer{opts: opts, browser: opts.Browser}, nil
}

// CapturePNG implements report.RegionCapturer. A missing element reports
// report.ErrRegionUnavailable so exports can skip or placeholder the region.
func (c *Capturer) CapturePNG(ctx context.Context, regionID string) ([]byte, error) {
	browser, err := c.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: c.opts.URL})
	if err != nil {
		return nil, fmt.Errorf("rodcapture: open dashboard page: %w", err)
	}
	defer func() { _ = page.Close() }()

	viewport := &proto.EmulationSetDeviceMetricsOverride{
		Width:             c.opts.Width,
		Height:            c.opts.Height,
		DeviceScaleFactor: c.opts.Scale,
	}
	if err := page.SetViewport(viewport); err != nil {
		return nil, fmt.Errorf("rodcapture: set viewport: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("rodcapture: wait for dashboard: %w", err)
	}

	element, err := page.Element("#" + regionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", report.ErrRegionUnavailable, regionID)
	}
	data, err := element.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("rodcapture: screenshot %s: %w", regionID, err)
	}
	return data, nil
}

// Close shuts down the browser when the capturer launched it.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil || !c.owned {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	c.owned = false
	return err
}

func (c *Capturer) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}
	browser := rod.New()
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("rodcapture: connect browser: %w", err)
	}
	c.browser = browser
	c.owned = true
	return c.browser, nil
}
