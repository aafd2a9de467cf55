package gateway

import (
	"context"
	"io"

	insight "github.com/goliatone/go-insight/components/insight"
)

// KPIClient fetches headline metrics and the filter dictionary.
type KPIClient interface {
	FetchOverview(ctx context.Context, sel insight.FilterSelection) (insight.KPISnapshot, error)
	FetchFilterOptions(ctx context.Context) (insight.FilterOptions, error)
}

// RevenueClient fetches trend, forecast, and breakdown series.
type RevenueClient interface {
	FetchRevenueTrend(ctx context.Context, sel insight.FilterSelection) ([]insight.TrendPoint, error)
	FetchRevenueForecast(ctx context.Context, days int) ([]insight.TrendPoint, error)
	FetchRevenueByCategory(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error)
	FetchRevenueByRegion(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error)
}

// AnalyticsClient fetches cohort, marketing, and affinity reports.
type AnalyticsClient interface {
	FetchRetentionCohorts(ctx context.Context, sel insight.FilterSelection) (insight.CohortReport, error)
	FetchChannelPerformance(ctx context.Context, sel insight.FilterSelection) ([]insight.ChannelMetrics, error)
	FetchAffinity(ctx context.Context, sel insight.FilterSelection) ([]insight.AffinityPair, error)
}

// AIClient fetches generated commentary and submits explain/chat requests.
type AIClient interface {
	FetchInsights(ctx context.Context) ([]insight.Insight, error)
	Explain(ctx context.Context, req insight.ExplainRequest) (string, error)
	SendChatMessage(ctx context.Context, message string) (string, error)
	Compare(ctx context.Context, currentLabel, previousLabel string) (PeriodComparison, error)
}

// AlertsClient manages gateway-owned alert rules and notifications.
type AlertsClient interface {
	FetchAlertRules(ctx context.Context) ([]insight.AlertRule, error)
	CreateAlertRule(ctx context.Context, rule insight.AlertRule) (insight.AlertRule, error)
	ToggleAlertRule(ctx context.Context, id string) (insight.AlertRule, error)
	DeleteAlertRule(ctx context.Context, id string) error
	FetchNotifications(ctx context.Context) ([]insight.AlertNotification, error)
	MarkNotificationsRead(ctx context.Context) error
	RunAlertChecks(ctx context.Context) (int, error)
}

// ViewsClient manages saved filter views owned by the gateway.
type ViewsClient interface {
	CreateSavedView(ctx context.Context, name string, settings insight.FilterSettings) (insight.SavedView, error)
	ListSavedViews(ctx context.Context) ([]insight.SavedView, error)
	DeleteSavedView(ctx context.Context, id string) error
}

// IntegrationsClient connects and syncs external commerce providers.
type IntegrationsClient interface {
	ConnectIntegration(ctx context.Context, provider string) error
	SyncIntegration(ctx context.Context, provider string) (int, error)
}

// UploadClient pushes CSV datasets and strategy documents into the gateway.
type UploadClient interface {
	AnalyzeCSV(ctx context.Context, filename string, data io.Reader) (UploadAnalysis, error)
	UploadCSV(ctx context.Context, filename string, data io.Reader) (UploadResult, error)
	UploadPDF(ctx context.Context, filename string, data io.Reader) (PDFAnalysis, error)
	ClearUploads(ctx context.Context) error
}

// Client is a convenience union for services implementing every gateway call.
type Client interface {
	KPIClient
	RevenueClient
	AnalyticsClient
	AIClient
	AlertsClient
	ViewsClient
	IntegrationsClient
	UploadClient
}

// UploadAnalysis reports the detected shape of an uploaded CSV before ingest.
type UploadAnalysis struct {
	Columns []string          `json:"columns"`
	Rows    int               `json:"rows"`
	Mapping map[string]string `json:"mapping"`
}

// UploadResult reports how many records an ingest produced.
type UploadResult struct {
	Inserted int `json:"inserted"`
}

// PDFAnalysis is the strategic summary the gateway derives from an uploaded
// business document. The summary also lands in the AI insight feed.
type PDFAnalysis struct {
	Title   string `json:"title"`
	Insight string `json:"insight"`
}

// PeriodComparison reports KPI values for two labelled periods, the deltas
// between them, and AI commentary on the change.
type PeriodComparison struct {
	Current     map[string]float64 `json:"current"`
	Previous    map[string]float64 `json:"previous"`
	Delta       map[string]string  `json:"delta"`
	Explanation string             `json:"ai_explanation"`
}
