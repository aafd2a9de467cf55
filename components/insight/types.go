package insight

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// FilterSelection is the current data slice shared by every view. A nil axis
// means "no restriction"; DateRange always carries a token ("7d", "30d",
// "90d", "all").
type FilterSelection struct {
	Category      *string
	Region        *string
	DateRange     string
	MinOrderValue *float64
}

// HasSliceRestriction reports whether a category or region slice is active.
// Live stream updates are global and must not overwrite a sliced view.
func (s FilterSelection) HasSliceRestriction() bool {
	return s.Category != nil || s.Region != nil
}

// Days converts the date range token into a lookback window. Zero means the
// full history ("all").
func (s FilterSelection) Days() int {
	switch s.DateRange {
	case "7d":
		return 7
	case "30d":
		return 30
	case "90d":
		return 90
	default:
		return 0
	}
}

// QueryValues serializes the selection as gateway query parameters. Absent
// axes produce no parameter.
func (s FilterSelection) QueryValues() url.Values {
	values := url.Values{}
	if s.Category != nil {
		values.Set("category", *s.Category)
	}
	if s.Region != nil {
		values.Set("region", *s.Region)
	}
	if days := s.Days(); days > 0 {
		values.Set("days", strconv.Itoa(days))
	}
	if s.MinOrderValue != nil {
		values.Set("min_order_value", strconv.FormatFloat(*s.MinOrderValue, 'f', -1, 64))
	}
	return values
}

// Clone returns a selection whose pointer axes are detached from the source.
func (s FilterSelection) Clone() FilterSelection {
	out := FilterSelection{DateRange: s.DateRange}
	if s.Category != nil {
		v := *s.Category
		out.Category = &v
	}
	if s.Region != nil {
		v := *s.Region
		out.Region = &v
	}
	if s.MinOrderValue != nil {
		v := *s.MinOrderValue
		out.MinOrderValue = &v
	}
	return out
}

// Settings converts the selection into its serialized saved-view form.
func (s FilterSelection) Settings() FilterSettings {
	c := s.Clone()
	return FilterSettings{
		Category:      c.Category,
		Region:        c.Region,
		DateRange:     c.DateRange,
		MinOrderValue: c.MinOrderValue,
	}
}

// FilterSettings is the wire representation of a filter snapshot stored in a
// saved view. Nil axes serialize as JSON null so a load restores them exactly.
type FilterSettings struct {
	Category      *string  `json:"category" yaml:"category"`
	Region        *string  `json:"region" yaml:"region"`
	DateRange     string   `json:"date_range" yaml:"date_range"`
	MinOrderValue *float64 `json:"min_order_value" yaml:"min_order_value"`
}

// Selection rebuilds a FilterSelection from stored settings.
func (s FilterSettings) Selection() FilterSelection {
	sel := FilterSelection{
		Category:      s.Category,
		Region:        s.Region,
		DateRange:     s.DateRange,
		MinOrderValue: s.MinOrderValue,
	}
	if sel.DateRange == "" {
		sel.DateRange = DefaultDateRange
	}
	return sel.Clone()
}

// FilterLabels names the category/region axes for the current dataset.
type FilterLabels struct {
	Category string `json:"category"`
	Region   string `json:"region"`
}

// FilterOptions is the label dictionary plus the distinct axis values served
// by the gateway.
type FilterOptions struct {
	Categories []string
	Regions    []string
	Labels     FilterLabels
}

// SavedView is a named filter snapshot owned by the remote gateway.
type SavedView struct {
	ID       string
	Name     string
	Settings FilterSettings
}

// KPISnapshot holds the headline metrics rendered as dashboard cards.
// Produced wholesale by an overview fetch; individual fields may be patched
// by live updates.
type KPISnapshot struct {
	TotalRevenue      float64
	ActiveOrders      int
	AverageOrderValue float64
	ActiveCustomers   int
	LatestAnalysis    string
}

// KPIUpdate is a partial patch delivered by the live stream. Nil fields leave
// the snapshot value untouched.
type KPIUpdate struct {
	TotalRevenue      *float64 `json:"total_revenue"`
	ActiveOrders      *int     `json:"active_orders"`
	AverageOrderValue *float64 `json:"average_order_value"`
	ActiveCustomers   *int     `json:"active_customers"`
}

// Apply patches the snapshot in place.
func (s *KPISnapshot) Apply(update KPIUpdate) {
	if update.TotalRevenue != nil {
		s.TotalRevenue = *update.TotalRevenue
	}
	if update.ActiveOrders != nil {
		s.ActiveOrders = *update.ActiveOrders
	}
	if update.AverageOrderValue != nil {
		s.AverageOrderValue = *update.AverageOrderValue
	}
	if update.ActiveCustomers != nil {
		s.ActiveCustomers = *update.ActiveCustomers
	}
}

// TrendPoint is a dated value on the revenue trend or forecast series.
type TrendPoint struct {
	Date     time.Time
	Value    float64
	Forecast bool
}

// BreakdownSlice is a single bar/pie entry (revenue by category or region).
type BreakdownSlice struct {
	Name  string
	Value float64
}

// CohortRow tracks repeat-purchase retention for one first-purchase period.
type CohortRow struct {
	Label     string
	Size      int
	Retention []float64
}

// CohortReport groups cohort rows with their interval metadata.
type CohortReport struct {
	Interval string
	Rows     []CohortRow
}

// ChannelMetrics carries marketing performance for one acquisition channel.
type ChannelMetrics struct {
	Channel string
	Spend   float64
	Revenue float64
	ROAS    float64
	CAC     float64
}

// AffinityPair reports how often two products are bought together relative
// to independence.
type AffinityPair struct {
	ProductA string
	ProductB string
	Support  float64
	Lift     float64
}

// Insight is one AI-generated commentary entry.
type Insight struct {
	Title     string
	Content   string
	Kind      string
	CreatedAt time.Time
}

// AlertNotification is a triggered alert surfaced on the dashboard.
type AlertNotification struct {
	ID        string
	RuleName  string
	Message   string
	Severity  string
	Read      bool
	CreatedAt time.Time
}

// AlertRule is a gateway-owned alert definition the client can manage.
type AlertRule struct {
	ID        string
	Name      string
	Metric    string
	Condition string
	Threshold float64
	Enabled   bool
}

// ViewerContext captures the active user/locale information needed to render
// dashboards.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// ViewDefinition describes a registered dashboard view.
type ViewDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ReportSection describes a capturable dashboard region offered by the
// report builder.
type ReportSection struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ViewRegistry stores view definitions/providers discoverable via hooks or
// manifests.
type ViewRegistry interface {
	RegisterDefinition(def ViewDefinition) error
	RegisterProvider(code string, provider ViewProvider) error
	Definition(code string) (ViewDefinition, bool)
	Provider(code string) (ViewProvider, bool)
	Definitions() []ViewDefinition
}

// LabelRepository loads the axis label dictionary and distinct filter values.
type LabelRepository interface {
	FetchFilterOptions(ctx context.Context) (FilterOptions, error)
}

// KPIOverviewRepository loads the headline KPI snapshot for a selection.
type KPIOverviewRepository interface {
	FetchOverview(ctx context.Context, sel FilterSelection) (KPISnapshot, error)
}

// RevenueSeriesRepository loads trend and forecast series.
type RevenueSeriesRepository interface {
	FetchRevenueTrend(ctx context.Context, sel FilterSelection) ([]TrendPoint, error)
	FetchRevenueForecast(ctx context.Context, days int) ([]TrendPoint, error)
}

// RevenueBreakdownRepository loads bar/pie aggregates.
type RevenueBreakdownRepository interface {
	FetchRevenueByCategory(ctx context.Context, sel FilterSelection) ([]BreakdownSlice, error)
	FetchRevenueByRegion(ctx context.Context, sel FilterSelection) ([]BreakdownSlice, error)
}

// CohortRepository loads retention cohorts.
type CohortRepository interface {
	FetchRetentionCohorts(ctx context.Context, sel FilterSelection) (CohortReport, error)
}

// MarketingRepository loads per-channel ROAS metrics.
type MarketingRepository interface {
	FetchChannelPerformance(ctx context.Context, sel FilterSelection) ([]ChannelMetrics, error)
}

// AffinityRepository loads market-basket affinity pairs.
type AffinityRepository interface {
	FetchAffinity(ctx context.Context, sel FilterSelection) ([]AffinityPair, error)
}

// InsightRepository loads the AI insight feed.
type InsightRepository interface {
	FetchInsights(ctx context.Context) ([]Insight, error)
}

// AlertsRepository manages alert rules and notifications through the gateway.
type AlertsRepository interface {
	FetchAlertRules(ctx context.Context) ([]AlertRule, error)
	CreateAlertRule(ctx context.Context, rule AlertRule) (AlertRule, error)
	ToggleAlertRule(ctx context.Context, id string) (AlertRule, error)
	DeleteAlertRule(ctx context.Context, id string) error
	FetchNotifications(ctx context.Context) ([]AlertNotification, error)
	MarkNotificationsRead(ctx context.Context) error
	RunAlertChecks(ctx context.Context) (int, error)
}

// SavedViewRepository manages gateway-owned saved views.
type SavedViewRepository interface {
	CreateSavedView(ctx context.Context, name string, settings FilterSettings) (SavedView, error)
	ListSavedViews(ctx context.Context) ([]SavedView, error)
	DeleteSavedView(ctx context.Context, id string) error
}

// ExplainClient submits a compact series summary and returns natural-language
// commentary.
type ExplainClient interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

// ExplainRequest describes the currently displayed series for the AI
// explanation endpoint.
type ExplainRequest struct {
	View    string         `json:"view"`
	Summary map[string]any `json:"summary"`
	Filters FilterSettings `json:"filters"`
}
