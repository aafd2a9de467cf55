package insight

import (
	"context"
	"time"
)

// DemoKPIRepository returns static overview metrics for demos/tests.
type DemoKPIRepository struct{}

// FetchOverview implements KPIOverviewRepository with fixture data.
func (DemoKPIRepository) FetchOverview(context.Context, FilterSelection) (KPISnapshot, error) {
	return KPISnapshot{
		TotalRevenue:      52450,
		ActiveOrders:      126,
		AverageOrderValue: 85.20,
		ActiveCustomers:   1240,
		LatestAnalysis:    "Revenue is trending up 12.5% month over month, driven by the Home category.",
	}, nil
}

// DemoRevenueRepository serves a deterministic trend plus breakdowns.
type DemoRevenueRepository struct{}

// FetchRevenueTrend implements RevenueSeriesRepository.
func (DemoRevenueRepository) FetchRevenueTrend(_ context.Context, sel FilterSelection) ([]TrendPoint, error) {
	days := sel.Days()
	if days == 0 {
		days = 30
	}
	if days > 30 {
		days = 30
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)
	values := []float64{1480, 1525, 1610, 1555, 1702, 1688, 1745, 1820, 1790, 1870}
	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, TrendPoint{
			Date:  now.AddDate(0, 0, i-days+1),
			Value: values[i%len(values)] + float64(i*12),
		})
	}
	return points, nil
}

// FetchRevenueForecast implements RevenueSeriesRepository.
func (DemoRevenueRepository) FetchRevenueForecast(_ context.Context, days int) ([]TrendPoint, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]TrendPoint, 0, days)
	for i := 1; i <= days; i++ {
		points = append(points, TrendPoint{
			Date:     now.AddDate(0, 0, i),
			Value:    1900 + float64(i*15),
			Forecast: true,
		})
	}
	return points, nil
}

// FetchRevenueByCategory implements RevenueBreakdownRepository.
func (DemoRevenueRepository) FetchRevenueByCategory(context.Context, FilterSelection) ([]BreakdownSlice, error) {
	return []BreakdownSlice{
		{Name: "Electronics", Value: 2400},
		{Name: "Fashion", Value: 1398},
		{Name: "Home", Value: 9800},
		{Name: "Beauty", Value: 3908},
		{Name: "Sports", Value: 4800},
		{Name: "Grocery", Value: 2210},
		{Name: "Toys", Value: 1130},
		{Name: "Garden", Value: 980},
		{Name: "Automotive", Value: 760},
	}, nil
}

// FetchRevenueByRegion implements RevenueBreakdownRepository.
func (DemoRevenueRepository) FetchRevenueByRegion(context.Context, FilterSelection) ([]BreakdownSlice, error) {
	return []BreakdownSlice{
		{Name: "North America", Value: 18200},
		{Name: "Europe", Value: 14850},
		{Name: "Asia", Value: 12400},
		{Name: "South America", Value: 4300},
		{Name: "Oceania", Value: 2700},
	}, nil
}

// DemoCohortRepository returns a static retention matrix.
type DemoCohortRepository struct{}

// FetchRetentionCohorts implements CohortRepository.
func (DemoCohortRepository) FetchRetentionCohorts(context.Context, FilterSelection) (CohortReport, error) {
	return CohortReport{
		Interval: "monthly",
		Rows: []CohortRow{
			{Label: "2025-05", Size: 420, Retention: []float64{100, 38.5, 24.1, 18.2}},
			{Label: "2025-06", Size: 510, Retention: []float64{100, 41.2, 27.8}},
			{Label: "2025-07", Size: 465, Retention: []float64{100, 36.9}},
			{Label: "2025-08", Size: 538, Retention: []float64{100}},
		},
	}, nil
}

// DemoMarketingRepository returns static channel ROAS rows.
type DemoMarketingRepository struct{}

// FetchChannelPerformance implements MarketingRepository.
func (DemoMarketingRepository) FetchChannelPerformance(context.Context, FilterSelection) ([]ChannelMetrics, error) {
	return []ChannelMetrics{
		{Channel: "Paid Search", Spend: 4200, Revenue: 16800, ROAS: 4.0, CAC: 21.5},
		{Channel: "Social", Spend: 3100, Revenue: 8680, ROAS: 2.8, CAC: 34.0},
		{Channel: "Email", Spend: 600, Revenue: 5400, ROAS: 9.0, CAC: 4.8},
		{Channel: "Affiliates", Spend: 1500, Revenue: 3750, ROAS: 2.5, CAC: 42.2},
	}, nil
}

// DemoAffinityRepository returns static market-basket pairs.
type DemoAffinityRepository struct{}

// FetchAffinity implements AffinityRepository.
func (DemoAffinityRepository) FetchAffinity(context.Context, FilterSelection) ([]AffinityPair, error) {
	return []AffinityPair{
		{ProductA: "Espresso Machine", ProductB: "Coffee Grinder", Support: 0.041, Lift: 5.2},
		{ProductA: "Yoga Mat", ProductB: "Resistance Bands", Support: 0.028, Lift: 3.9},
		{ProductA: "Laptop Stand", ProductB: "USB-C Hub", Support: 0.035, Lift: 3.1},
	}, nil
}

// DemoInsightRepository returns a static AI commentary feed.
type DemoInsightRepository struct{}

// FetchInsights implements InsightRepository.
func (DemoInsightRepository) FetchInsights(context.Context) ([]Insight, error) {
	return []Insight{
		{
			Title:     "Home category is the growth engine",
			Content:   "Home contributed 38% of revenue growth this period while holding steady margins.",
			Kind:      "opportunity",
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		},
		{
			Title:     "Repeat purchases dipped for the June cohort",
			Content:   "Month-two retention for the June cohort is 4 points below trend; consider a win-back campaign.",
			Kind:      "risk",
			CreatedAt: time.Now().UTC().Add(-26 * time.Hour),
		},
	}, nil
}

// DemoLabelRepository returns static category/region filter options.
type DemoLabelRepository struct{}

// FetchFilterOptions implements LabelRepository.
func (DemoLabelRepository) FetchFilterOptions(context.Context) (FilterOptions, error) {
	return FilterOptions{
		Categories: []string{"Electronics", "Fashion", "Home", "Beauty", "Sports", "Grocery", "Toys", "Garden", "Automotive"},
		Regions:    []string{"North America", "Europe", "Asia", "South America", "Oceania"},
		Labels:     FilterLabels{Category: "Category", Region: "Region"},
	}, nil
}

// DemoAlertsRepository is an in-memory AlertsRepository seeded with fixtures.
// It is safe for single-goroutine demo use only.
type DemoAlertsRepository struct {
	rules         []AlertRule
	notifications []AlertNotification
	seeded        bool
}

func (r *DemoAlertsRepository) seed() {
	if r.seeded {
		return
	}
	r.seeded = true
	r.rules = []AlertRule{
		{ID: "rule-1", Name: "Revenue floor", Metric: "total_revenue", Condition: "below", Threshold: 40000, Enabled: true},
		{ID: "rule-2", Name: "Order surge", Metric: "active_orders", Condition: "above", Threshold: 200, Enabled: false},
	}
	r.notifications = []AlertNotification{
		{
			ID:        "note-1",
			RuleName:  "Revenue floor",
			Message:   "Daily revenue dropped below $40,000 on Aug 28.",
			Severity:  "warning",
			CreatedAt: time.Now().UTC().Add(-4 * time.Hour),
		},
	}
}

// FetchAlertRules implements AlertsRepository.
func (r *DemoAlertsRepository) FetchAlertRules(context.Context) ([]AlertRule, error) {
	r.seed()
	out := make([]AlertRule, len(r.rules))
	copy(out, r.rules)
	return out, nil
}

// CreateAlertRule implements AlertsRepository.
func (r *DemoAlertsRepository) CreateAlertRule(_ context.Context, rule AlertRule) (AlertRule, error) {
	r.seed()
	if rule.ID == "" {
		rule.ID = "rule-" + time.Now().UTC().Format("20060102150405")
	}
	r.rules = append(r.rules, rule)
	return rule, nil
}

// ToggleAlertRule implements AlertsRepository.
func (r *DemoAlertsRepository) ToggleAlertRule(_ context.Context, id string) (AlertRule, error) {
	r.seed()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules[i].Enabled = !r.rules[i].Enabled
			return r.rules[i], nil
		}
	}
	return AlertRule{}, errUnknownAlertRule
}

// DeleteAlertRule implements AlertsRepository.
func (r *DemoAlertsRepository) DeleteAlertRule(_ context.Context, id string) error {
	r.seed()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return errUnknownAlertRule
}

// FetchNotifications implements AlertsRepository.
func (r *DemoAlertsRepository) FetchNotifications(context.Context) ([]AlertNotification, error) {
	r.seed()
	out := make([]AlertNotification, len(r.notifications))
	copy(out, r.notifications)
	return out, nil
}

// MarkNotificationsRead implements AlertsRepository.
func (r *DemoAlertsRepository) MarkNotificationsRead(context.Context) error {
	r.seed()
	for i := range r.notifications {
		r.notifications[i].Read = true
	}
	return nil
}

// RunAlertChecks implements AlertsRepository. The demo check trips every
// enabled rule once.
func (r *DemoAlertsRepository) RunAlertChecks(context.Context) (int, error) {
	r.seed()
	triggered := 0
	for _, rule := range r.rules {
		if rule.Enabled {
			triggered++
		}
	}
	return triggered, nil
}

// DemoProviders wires every default view to its demo repository. Useful for
// local demos and transport tests that do not reach a gateway.
func DemoProviders(renderer *ChartRenderer) map[string]ViewProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	revenue := DemoRevenueRepository{}
	return map[string]ViewProvider{
		ViewKPIOverview:     NewKPIOverviewProvider(DemoKPIRepository{}),
		ViewRevenueTrend:    NewRevenueTrendProvider(revenue, renderer),
		ViewRevenueCategory: NewRevenueCategoryProvider(revenue, renderer),
		ViewRevenueRegion:   NewRevenueRegionProvider(revenue, renderer),
		ViewRetention:       NewRetentionProvider(DemoCohortRepository{}),
		ViewChannelROAS:     NewChannelROASProvider(DemoMarketingRepository{}),
		ViewAffinity:        NewAffinityProvider(DemoAffinityRepository{}),
		ViewAlertFeed:       NewAlertFeedProvider(&DemoAlertsRepository{}),
		ViewAIInsights:      NewAIInsightsProvider(DemoInsightRepository{}),
	}
}
