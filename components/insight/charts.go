package insight

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// BarWindowSize is the fixed sliding window applied to bar charts so long
// category lists stay readable.
const BarWindowSize = 7

var sharedChartCache = NewChartCache(5 * time.Minute)

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// ChartRenderer turns BI series into server-rendered ECharts markup.
type ChartRenderer struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts runtime loads
// from a CDN or self-hosted bucket.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with shared cache defaults.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// TrendLine renders the revenue trend with an optional dashed forecast
// overlay appended after the observed series.
func (r *ChartRenderer) TrendLine(title string, points, forecast []TrendPoint, viewer ViewerContext, cacheKey string) (string, error) {
	render := func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalChartOptions(title, "", viewer)...)
		labels := make([]string, 0, len(points)+len(forecast))
		observed := make([]opts.LineData, 0, len(points)+len(forecast))
		for _, p := range points {
			labels = append(labels, p.Date.Format("Jan 02"))
			observed = append(observed, opts.LineData{Value: p.Value})
		}
		if len(forecast) > 0 {
			// The forecast series is padded with gaps so it continues from
			// the last observed point on the shared axis.
			projected := make([]opts.LineData, 0, len(points)+len(forecast))
			for i := range points {
				if i == len(points)-1 {
					projected = append(projected, opts.LineData{Value: points[i].Value})
					continue
				}
				projected = append(projected, opts.LineData{Value: "-"})
			}
			for _, p := range forecast {
				labels = append(labels, p.Date.Format("Jan 02"))
				observed = append(observed, opts.LineData{Value: "-"})
				projected = append(projected, opts.LineData{Value: p.Value})
			}
			line.SetXAxis(labels)
			line.AddSeries("Revenue", observed)
			line.AddSeries("Forecast", projected,
				charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
		} else {
			line.SetXAxis(labels)
			line.AddSeries("Revenue", observed)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	}
	return r.memoize(cacheKey, render)
}

// BreakdownBar renders a bar chart clipped to the sliding window, recentered
// around the selected entry when it would otherwise fall outside.
func (r *ChartRenderer) BreakdownBar(title string, slices []BreakdownSlice, selected string, viewer ViewerContext, cacheKey string) (string, error) {
	render := func() (string, error) {
		windowed := WindowSlices(slices, selected, BarWindowSize)
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(title, "", viewer)...)
		labels := make([]string, 0, len(windowed))
		data := make([]opts.BarData, 0, len(windowed))
		for _, s := range windowed {
			labels = append(labels, s.Name)
			item := opts.BarData{Name: s.Name, Value: s.Value}
			if selected != "" && strings.EqualFold(s.Name, selected) {
				item.ItemStyle = &opts.ItemStyle{Color: "#3b82f6"}
			} else if selected != "" {
				item.ItemStyle = &opts.ItemStyle{Color: "#cbd5e1"}
			}
			data = append(data, item)
		}
		bar.SetXAxis(labels)
		bar.AddSeries(title, data)
		return renderChart(bar)
	}
	return r.memoize(cacheKey, render)
}

// BreakdownPie renders the region/category distribution as a pie chart.
func (r *ChartRenderer) BreakdownPie(title string, slices []BreakdownSlice, viewer ViewerContext, cacheKey string) (string, error) {
	render := func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(title, "", viewer)...)
		data := make([]opts.PieData, 0, len(slices))
		for i, s := range slices {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("Slice %d", i+1)
			}
			data = append(data, opts.PieData{Name: name, Value: s.Value})
		}
		pie.AddSeries(title, data)
		return renderChart(pie)
	}
	return r.memoize(cacheKey, render)
}

func (r *ChartRenderer) memoize(key string, render func() (string, error)) (string, error) {
	if r.cache == nil || key == "" {
		return render()
	}
	return r.cache.GetOrRender(key, render)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title, subtitle string, viewer ViewerContext) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.resolveTheme(viewer),
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func (r *ChartRenderer) resolveTheme(viewer ViewerContext) string {
	if r.themeResolver != nil {
		if theme := r.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if r.theme != "" {
		return r.theme
	}
	return types.ThemeWesteros
}

// WindowSlices truncates slices to a fixed-size window. When the selected
// name sits outside the leading window, the window is recentered around it.
func WindowSlices(slices []BreakdownSlice, selected string, size int) []BreakdownSlice {
	if size <= 0 || len(slices) <= size {
		return slices
	}
	start := 0
	if selected != "" {
		idx := -1
		for i, s := range slices {
			if strings.EqualFold(s.Name, selected) {
				idx = i
				break
			}
		}
		if idx >= size {
			start = idx - size/2
			if start+size > len(slices) {
				start = len(slices) - size
			}
		}
	}
	return slices[start : start+size]
}
