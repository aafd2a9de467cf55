package insight

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// SeriesSummary is the compact numeric digest submitted to the AI
// explanation endpoint for trend charts.
type SeriesSummary struct {
	First float64 `json:"first"`
	Last  float64 `json:"last"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// SummarizeTrend reduces a trend series to first/last/min/max.
func SummarizeTrend(points []TrendPoint) SeriesSummary {
	if len(points) == 0 {
		return SeriesSummary{}
	}
	summary := SeriesSummary{
		First: points[0].Value,
		Last:  points[len(points)-1].Value,
		Min:   points[0].Value,
		Max:   points[0].Value,
		Count: len(points),
	}
	for _, p := range points[1:] {
		if p.Value < summary.Min {
			summary.Min = p.Value
		}
		if p.Value > summary.Max {
			summary.Max = p.Value
		}
	}
	return summary
}

// SummarizeTopN returns the n largest slices by value, descending.
func SummarizeTopN(slices []BreakdownSlice, n int) []BreakdownSlice {
	out := make([]BreakdownSlice, len(slices))
	copy(out, slices)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Explainer submits view summaries to the AI endpoint and caches the
// returned commentary only while the explain toggle stays open. Re-opening
// re-fetches, and a filter change invalidates the cached entry so the
// commentary always matches the displayed slice.
type Explainer struct {
	client    ExplainClient
	telemetry Telemetry

	mu   sync.Mutex
	open map[string]openExplanation
}

type openExplanation struct {
	filters string
	text    string
}

// NewExplainer builds an explainer around the AI client.
func NewExplainer(client ExplainClient, telemetry Telemetry) *Explainer {
	return &Explainer{
		client:    client,
		telemetry: normalizeTelemetry(telemetry),
		open:      make(map[string]openExplanation),
	}
}

func selectionKey(settings FilterSettings) string {
	category := ""
	if settings.Category != nil {
		category = *settings.Category
	}
	region := ""
	if settings.Region != nil {
		region = *settings.Region
	}
	min := ""
	if settings.MinOrderValue != nil {
		min = fmt.Sprintf("%g", *settings.MinOrderValue)
	}
	return category + "\x00" + region + "\x00" + settings.DateRange + "\x00" + min
}

// Open fetches (or returns the session-cached) explanation for a view.
// A cached entry is only reused while the filter selection it was computed
// under is still active.
func (e *Explainer) Open(ctx context.Context, req ExplainRequest) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("insight: explain client is not configured")
	}
	key := selectionKey(req.Filters)
	e.mu.Lock()
	if entry, ok := e.open[req.View]; ok && entry.filters == key {
		e.mu.Unlock()
		return entry.text, nil
	}
	e.mu.Unlock()

	text, err := e.client.Explain(ctx, req)
	if err != nil {
		e.telemetry.Record(ctx, "insight.explain.error", map[string]any{
			"view":  req.View,
			"error": err.Error(),
		})
		return "", err
	}
	e.mu.Lock()
	e.open[req.View] = openExplanation{filters: key, text: text}
	e.mu.Unlock()
	return text, nil
}

// Close drops the cached explanation so the next Open re-fetches.
func (e *Explainer) Close(view string) {
	e.mu.Lock()
	delete(e.open, view)
	e.mu.Unlock()
}
