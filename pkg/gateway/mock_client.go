package gateway

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	insight "github.com/goliatone/go-insight/components/insight"
)

// MockData seeds deterministic gateway responses for tests or local demos.
type MockData struct {
	Overview      insight.KPISnapshot
	FilterOptions insight.FilterOptions
	Trend         []insight.TrendPoint
	Forecast      []insight.TrendPoint
	ByCategory    []insight.BreakdownSlice
	ByRegion      []insight.BreakdownSlice
	Cohorts       insight.CohortReport
	Channels      []insight.ChannelMetrics
	Affinity      []insight.AffinityPair
	Insights      []insight.Insight
	Rules         []insight.AlertRule
	Notifications []insight.AlertNotification
	Views         []insight.SavedView
	Explanation   string
	ChatReply     string
	Comparison    PeriodComparison
}

// MockClient implements Client using in-memory fixtures. Saved views and
// alert rules are mutable so flows that create/toggle/delete behave like a
// real gateway.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock gateway client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

var _ Client = (*MockClient)(nil)

// FetchOverview returns the configured snapshot ignoring the selection.
func (c *MockClient) FetchOverview(context.Context, insight.FilterSelection) (insight.KPISnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Overview, nil
}

// FetchFilterOptions returns the configured filter dictionary.
func (c *MockClient) FetchFilterOptions(context.Context) (insight.FilterOptions, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return insight.FilterOptions{
		Categories: append([]string(nil), c.data.FilterOptions.Categories...),
		Regions:    append([]string(nil), c.data.FilterOptions.Regions...),
		Labels:     c.data.FilterOptions.Labels,
	}, nil
}

// FetchRevenueTrend returns the configured trend series.
func (c *MockClient) FetchRevenueTrend(context.Context, insight.FilterSelection) ([]insight.TrendPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.TrendPoint(nil), c.data.Trend...), nil
}

// FetchRevenueForecast returns the configured forecast series.
func (c *MockClient) FetchRevenueForecast(context.Context, int) ([]insight.TrendPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.TrendPoint(nil), c.data.Forecast...), nil
}

// FetchRevenueByCategory returns the configured category slices.
func (c *MockClient) FetchRevenueByCategory(context.Context, insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.BreakdownSlice(nil), c.data.ByCategory...), nil
}

// FetchRevenueByRegion returns the configured region slices.
func (c *MockClient) FetchRevenueByRegion(context.Context, insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.BreakdownSlice(nil), c.data.ByRegion...), nil
}

// FetchRetentionCohorts returns the configured cohort report.
func (c *MockClient) FetchRetentionCohorts(context.Context, insight.FilterSelection) (insight.CohortReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows := make([]insight.CohortRow, len(c.data.Cohorts.Rows))
	for i, row := range c.data.Cohorts.Rows {
		rows[i] = insight.CohortRow{
			Label:     row.Label,
			Size:      row.Size,
			Retention: append([]float64(nil), row.Retention...),
		}
	}
	return insight.CohortReport{Interval: c.data.Cohorts.Interval, Rows: rows}, nil
}

// FetchChannelPerformance returns the configured channel metrics.
func (c *MockClient) FetchChannelPerformance(context.Context, insight.FilterSelection) ([]insight.ChannelMetrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.ChannelMetrics(nil), c.data.Channels...), nil
}

// FetchAffinity returns the configured affinity pairs.
func (c *MockClient) FetchAffinity(context.Context, insight.FilterSelection) ([]insight.AffinityPair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.AffinityPair(nil), c.data.Affinity...), nil
}

// FetchInsights returns the configured commentary feed.
func (c *MockClient) FetchInsights(context.Context) ([]insight.Insight, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.Insight(nil), c.data.Insights...), nil
}

// Explain returns the configured explanation text.
func (c *MockClient) Explain(context.Context, insight.ExplainRequest) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Explanation, nil
}

// SendChatMessage returns the configured chat reply.
func (c *MockClient) SendChatMessage(context.Context, string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.ChatReply, nil
}

// Compare returns the configured period comparison.
func (c *MockClient) Compare(context.Context, string, string) (PeriodComparison, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Comparison, nil
}

// FetchAlertRules returns the current rule set.
func (c *MockClient) FetchAlertRules(context.Context) ([]insight.AlertRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.AlertRule(nil), c.data.Rules...), nil
}

// CreateAlertRule stores the rule, assigning an ID when missing.
func (c *MockClient) CreateAlertRule(_ context.Context, rule insight.AlertRule) (insight.AlertRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	c.data.Rules = append(c.data.Rules, rule)
	return rule, nil
}

// ToggleAlertRule flips the enabled flag of a stored rule.
func (c *MockClient) ToggleAlertRule(_ context.Context, id string) (insight.AlertRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, rule := range c.data.Rules {
		if rule.ID == id {
			c.data.Rules[i].Enabled = !rule.Enabled
			return c.data.Rules[i], nil
		}
	}
	return insight.AlertRule{}, fmt.Errorf("gateway: alert rule %s not found", id)
}

// DeleteAlertRule removes a stored rule.
func (c *MockClient) DeleteAlertRule(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, rule := range c.data.Rules {
		if rule.ID == id {
			c.data.Rules = append(c.data.Rules[:i], c.data.Rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("gateway: alert rule %s not found", id)
}

// FetchNotifications returns the configured notification feed.
func (c *MockClient) FetchNotifications(context.Context) ([]insight.AlertNotification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.AlertNotification(nil), c.data.Notifications...), nil
}

// MarkNotificationsRead flips every stored notification to read.
func (c *MockClient) MarkNotificationsRead(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Notifications {
		c.data.Notifications[i].Read = true
	}
	return nil
}

// RunAlertChecks reports how many enabled rules would have been evaluated.
func (c *MockClient) RunAlertChecks(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	triggered := 0
	for _, rule := range c.data.Rules {
		if rule.Enabled {
			triggered++
		}
	}
	return triggered, nil
}

// CreateSavedView stores a view snapshot and returns it with an ID.
func (c *MockClient) CreateSavedView(_ context.Context, name string, settings insight.FilterSettings) (insight.SavedView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := insight.SavedView{ID: uuid.NewString(), Name: name, Settings: settings}
	c.data.Views = append(c.data.Views, view)
	return view, nil
}

// ListSavedViews returns the stored views.
func (c *MockClient) ListSavedViews(context.Context) ([]insight.SavedView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]insight.SavedView(nil), c.data.Views...), nil
}

// DeleteSavedView removes a stored view.
func (c *MockClient) DeleteSavedView(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, view := range c.data.Views {
		if view.ID == id {
			c.data.Views = append(c.data.Views[:i], c.data.Views[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("gateway: saved view %s not found", id)
}

// ConnectIntegration accepts any provider.
func (c *MockClient) ConnectIntegration(context.Context, string) error { return nil }

// SyncIntegration reports zero synced records.
func (c *MockClient) SyncIntegration(context.Context, string) (int, error) { return 0, nil }

// AnalyzeCSV drains the reader and reports an empty analysis.
func (c *MockClient) AnalyzeCSV(_ context.Context, _ string, data io.Reader) (UploadAnalysis, error) {
	_, _ = io.Copy(io.Discard, data)
	return UploadAnalysis{}, nil
}

// UploadCSV drains the reader and reports zero inserts.
func (c *MockClient) UploadCSV(_ context.Context, _ string, data io.Reader) (UploadResult, error) {
	_, _ = io.Copy(io.Discard, data)
	return UploadResult{}, nil
}

// UploadPDF drains the reader and echoes the filename as the analysis title.
func (c *MockClient) UploadPDF(_ context.Context, filename string, data io.Reader) (PDFAnalysis, error) {
	_, _ = io.Copy(io.Discard, data)
	return PDFAnalysis{Title: "Analysis: " + filename}, nil
}

// ClearUploads is a no-op.
func (c *MockClient) ClearUploads(context.Context) error { return nil }
