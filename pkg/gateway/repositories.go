package gateway

import (
	"context"

	insight "github.com/goliatone/go-insight/components/insight"
)

// NewKPIRepository adapts a gateway client into the KPI overview repository.
func NewKPIRepository(client KPIClient) insight.KPIOverviewRepository {
	return &kpiRepository{client: client}
}

type kpiRepository struct {
	client KPIClient
}

func (r *kpiRepository) FetchOverview(ctx context.Context, sel insight.FilterSelection) (insight.KPISnapshot, error) {
	return r.client.FetchOverview(ctx, sel)
}

// NewLabelRepository adapts the filter dictionary endpoint for the filter store.
func NewLabelRepository(client KPIClient) insight.LabelRepository {
	return &labelRepository{client: client}
}

type labelRepository struct {
	client KPIClient
}

func (r *labelRepository) FetchFilterOptions(ctx context.Context) (insight.FilterOptions, error) {
	return r.client.FetchFilterOptions(ctx)
}

// NewRevenueRepository adapts the revenue endpoints for trend and breakdown
// views. The returned value implements both the series and breakdown
// repository interfaces.
func NewRevenueRepository(client RevenueClient) interface {
	insight.RevenueSeriesRepository
	insight.RevenueBreakdownRepository
} {
	return &revenueRepository{client: client}
}

type revenueRepository struct {
	client RevenueClient
}

func (r *revenueRepository) FetchRevenueTrend(ctx context.Context, sel insight.FilterSelection) ([]insight.TrendPoint, error) {
	return r.client.FetchRevenueTrend(ctx, sel)
}

func (r *revenueRepository) FetchRevenueForecast(ctx context.Context, days int) ([]insight.TrendPoint, error) {
	return r.client.FetchRevenueForecast(ctx, days)
}

func (r *revenueRepository) FetchRevenueByCategory(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	return r.client.FetchRevenueByCategory(ctx, sel)
}

func (r *revenueRepository) FetchRevenueByRegion(ctx context.Context, sel insight.FilterSelection) ([]insight.BreakdownSlice, error) {
	return r.client.FetchRevenueByRegion(ctx, sel)
}

// NewCohortRepository adapts the retention endpoint for the cohort view.
func NewCohortRepository(client AnalyticsClient) insight.CohortRepository {
	return &cohortRepository{client: client}
}

type cohortRepository struct {
	client AnalyticsClient
}

func (r *cohortRepository) FetchRetentionCohorts(ctx context.Context, sel insight.FilterSelection) (insight.CohortReport, error) {
	return r.client.FetchRetentionCohorts(ctx, sel)
}

// NewMarketingRepository adapts the marketing endpoint for the ROAS table.
func NewMarketingRepository(client AnalyticsClient) insight.MarketingRepository {
	return &marketingRepository{client: client}
}

type marketingRepository struct {
	client AnalyticsClient
}

func (r *marketingRepository) FetchChannelPerformance(ctx context.Context, sel insight.FilterSelection) ([]insight.ChannelMetrics, error) {
	return r.client.FetchChannelPerformance(ctx, sel)
}

// NewAffinityRepository adapts the affinity endpoint for the basket view.
func NewAffinityRepository(client AnalyticsClient) insight.AffinityRepository {
	return &affinityRepository{client: client}
}

type affinityRepository struct {
	client AnalyticsClient
}

func (r *affinityRepository) FetchAffinity(ctx context.Context, sel insight.FilterSelection) ([]insight.AffinityPair, error) {
	return r.client.FetchAffinity(ctx, sel)
}

// NewInsightRepository adapts the AI feed endpoint for the insight view.
func NewInsightRepository(client AIClient) insight.InsightRepository {
	return &insightRepository{client: client}
}

type insightRepository struct {
	client AIClient
}

func (r *insightRepository) FetchInsights(ctx context.Context) ([]insight.Insight, error) {
	return r.client.FetchInsights(ctx)
}

// NewExplainClient adapts the AI explain endpoint for the explain affordance.
func NewExplainClient(client AIClient) insight.ExplainClient {
	return &explainAdapter{client: client}
}

type explainAdapter struct {
	client AIClient
}

func (a *explainAdapter) Explain(ctx context.Context, req insight.ExplainRequest) (string, error) {
	return a.client.Explain(ctx, req)
}

// NewAlertsRepository adapts the alert endpoints for the alert feed view.
func NewAlertsRepository(client AlertsClient) insight.AlertsRepository {
	return &alertsRepository{client: client}
}

type alertsRepository struct {
	client AlertsClient
}

func (r *alertsRepository) FetchAlertRules(ctx context.Context) ([]insight.AlertRule, error) {
	return r.client.FetchAlertRules(ctx)
}

func (r *alertsRepository) CreateAlertRule(ctx context.Context, rule insight.AlertRule) (insight.AlertRule, error) {
	return r.client.CreateAlertRule(ctx, rule)
}

func (r *alertsRepository) ToggleAlertRule(ctx context.Context, id string) (insight.AlertRule, error) {
	return r.client.ToggleAlertRule(ctx, id)
}

func (r *alertsRepository) DeleteAlertRule(ctx context.Context, id string) error {
	return r.client.DeleteAlertRule(ctx, id)
}

func (r *alertsRepository) FetchNotifications(ctx context.Context) ([]insight.AlertNotification, error) {
	return r.client.FetchNotifications(ctx)
}

func (r *alertsRepository) MarkNotificationsRead(ctx context.Context) error {
	return r.client.MarkNotificationsRead(ctx)
}

func (r *alertsRepository) RunAlertChecks(ctx context.Context) (int, error) {
	return r.client.RunAlertChecks(ctx)
}

// NewSavedViewRepository adapts the user views endpoints for saved views.
func NewSavedViewRepository(client ViewsClient) insight.SavedViewRepository {
	return &savedViewRepository{client: client}
}

type savedViewRepository struct {
	client ViewsClient
}

func (r *savedViewRepository) CreateSavedView(ctx context.Context, name string, settings insight.FilterSettings) (insight.SavedView, error) {
	return r.client.CreateSavedView(ctx, name, settings)
}

func (r *savedViewRepository) ListSavedViews(ctx context.Context) ([]insight.SavedView, error) {
	return r.client.ListSavedViews(ctx)
}

func (r *savedViewRepository) DeleteSavedView(ctx context.Context, id string) error {
	return r.client.DeleteSavedView(ctx, id)
}

// Providers wires a gateway client into every default view provider. The
// chart renderer may be nil, in which case a default renderer is used.
func Providers(client Client, renderer *insight.ChartRenderer) map[string]insight.ViewProvider {
	revenue := NewRevenueRepository(client)
	return map[string]insight.ViewProvider{
		insight.ViewKPIOverview:     insight.NewKPIOverviewProvider(NewKPIRepository(client)),
		insight.ViewRevenueTrend:    insight.NewRevenueTrendProvider(revenue, renderer),
		insight.ViewRevenueCategory: insight.NewRevenueCategoryProvider(revenue, renderer),
		insight.ViewRevenueRegion:   insight.NewRevenueRegionProvider(revenue, renderer),
		insight.ViewRetention:       insight.NewRetentionProvider(NewCohortRepository(client)),
		insight.ViewChannelROAS:     insight.NewChannelROASProvider(NewMarketingRepository(client)),
		insight.ViewAffinity:        insight.NewAffinityProvider(NewAffinityRepository(client)),
		insight.ViewAlertFeed:       insight.NewAlertFeedProvider(NewAlertsRepository(client)),
		insight.ViewAIInsights:      insight.NewAIInsightsProvider(NewInsightRepository(client)),
	}
}
