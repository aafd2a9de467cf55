package insight

var defaultViewDefinitions = []ViewDefinition{
	{
		Code:        ViewKPIOverview,
		Name:        "KPI Overview",
		Description: "Headline revenue, orders, AOV, and customer cards",
		Category:    "kpis",
	},
	{
		Code:        ViewRevenueTrend,
		Name:        "Revenue Trend",
		Description: "Revenue trajectory over the selected period with forecast overlay",
		Category:    "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"forecast_days": map[string]any{"type": "integer", "minimum": 0, "maximum": 90},
			},
		},
	},
	{
		Code:        ViewRevenueCategory,
		Name:        "Revenue by Category",
		Description: "Bar chart grouped by product category, drillable",
		Category:    "charts",
	},
	{
		Code:        ViewRevenueRegion,
		Name:        "Revenue by Region",
		Description: "Regional revenue distribution, drillable",
		Category:    "charts",
	},
	{
		Code:        ViewRetention,
		Name:        "Retention Cohorts",
		Description: "Monthly cohort repeat-purchase retention",
		Category:    "analytics",
	},
	{
		Code:        ViewChannelROAS,
		Name:        "Marketing Channels",
		Description: "Spend, revenue, ROAS, and CAC per acquisition channel",
		Category:    "analytics",
	},
	{
		Code:        ViewAffinity,
		Name:        "Product Affinity",
		Description: "Frequently co-purchased product pairs ranked by lift",
		Category:    "analytics",
	},
	{
		Code:        ViewAlertFeed,
		Name:        "Alert Notifications",
		Description: "Triggered alert rules awaiting review",
		Category:    "alerts",
	},
	{
		Code:        ViewAIInsights,
		Name:        "AI Insights",
		Description: "Generated business commentary feed",
		Category:    "ai",
	},
}

// DefaultViewDefinitions returns the built-in dashboard view catalog.
func DefaultViewDefinitions() []ViewDefinition {
	out := make([]ViewDefinition, len(defaultViewDefinitions))
	copy(out, defaultViewDefinitions)
	return out
}

var defaultReportSections = []ReportSection{
	{
		ID:          "revenue-chart-container",
		Label:       "Revenue Trends",
		Description: "This chart visualizes the revenue trajectory over the selected period. The purple dashed line indicates the projected forecast based on historical linear regression analysis.",
	},
	{
		ID:          "category-chart-container",
		Label:       "Top Categories",
		Description: "Performance breakdown by product category. Focus on top performers to drive inventory decisions.",
	},
	{
		ID:          "region-chart-container",
		Label:       "Regional Distribution",
		Description: "Geographic distribution of sales revenue. Identifying key regions allows for targeted marketing campaigns.",
	},
}

// DefaultReportSections returns the static catalog of capturable regions
// offered by the report builder.
func DefaultReportSections() []ReportSection {
	out := make([]ReportSection, len(defaultReportSections))
	copy(out, defaultReportSections)
	return out
}
