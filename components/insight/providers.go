package insight

import (
	"context"
	"fmt"
)

// View codes registered by default. Providers are wired by the host
// application with real repositories (see pkg/gateway) or demo fixtures.
const (
	ViewKPIOverview     = "insight.view.kpi_overview"
	ViewRevenueTrend    = "insight.view.revenue_trend"
	ViewRevenueCategory = "insight.view.revenue_category"
	ViewRevenueRegion   = "insight.view.revenue_region"
	ViewRetention       = "insight.view.retention_cohorts"
	ViewChannelROAS     = "insight.view.channel_roas"
	ViewAffinity        = "insight.view.product_affinity"
	ViewAlertFeed       = "insight.view.alert_feed"
	ViewAIInsights      = "insight.view.ai_insights"
)

// NewKPIOverviewProvider renders the four headline KPI cards plus the latest
// AI analysis blurb.
func NewKPIOverviewProvider(repo KPIOverviewRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("kpi overview provider: repository is required")
		}
		snapshot, err := repo.FetchOverview(ctx, meta.Filters)
		if err != nil {
			return nil, fmt.Errorf("kpi overview provider: %w", err)
		}
		return ViewData{
			"total_revenue":       snapshot.TotalRevenue,
			"active_orders":       snapshot.ActiveOrders,
			"average_order_value": snapshot.AverageOrderValue,
			"active_customers":    snapshot.ActiveCustomers,
			"latest_analysis":     snapshot.LatestAnalysis,
		}, nil
	})
}

// NewRevenueTrendProvider renders the revenue trajectory line chart with an
// optional forecast overlay controlled by the view configuration.
func NewRevenueTrendProvider(repo RevenueSeriesRepository, renderer *ChartRenderer) ViewProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("revenue trend provider: repository is required")
		}
		points, err := repo.FetchRevenueTrend(ctx, meta.Filters)
		if err != nil {
			return nil, fmt.Errorf("revenue trend provider: %w", err)
		}
		if len(points) == 0 {
			return NoData(ViewRevenueTrend), nil
		}
		var forecast []TrendPoint
		if days := intValue(meta.Config["forecast_days"]); days > 0 {
			forecast, err = repo.FetchRevenueForecast(ctx, days)
			if err != nil {
				// Forecast is an overlay; trend still renders without it.
				forecast = nil
			}
		}
		key := fmt.Sprintf("%s:%s", ViewRevenueTrend, selectionHash(meta.Filters))
		html, err := renderer.TrendLine("Revenue Trend", points, forecast, meta.Viewer, key)
		if err != nil {
			return nil, fmt.Errorf("revenue trend provider: %w", err)
		}
		return ViewData{
			"chart_html": html,
			"chart_type": "line",
			"points":     len(points),
			"forecast":   len(forecast),
			"summary":    SummarizeTrend(points),
		}, nil
	})
}

// NewRevenueCategoryProvider renders revenue grouped by category as a bar
// chart. The category axis itself is not forwarded: the chart always shows
// the full grouping so a drill-down can be toggled off from the same chart.
func NewRevenueCategoryProvider(repo RevenueBreakdownRepository, renderer *ChartRenderer) ViewProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("revenue category provider: repository is required")
		}
		sel := meta.Filters.Clone()
		selected := ""
		if sel.Category != nil {
			selected = *sel.Category
		}
		sel.Category = nil
		slices, err := repo.FetchRevenueByCategory(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("revenue category provider: %w", err)
		}
		if len(slices) == 0 {
			return NoData(ViewRevenueCategory), nil
		}
		key := fmt.Sprintf("%s:%s:%s", ViewRevenueCategory, selected, selectionHash(sel))
		html, err := renderer.BreakdownBar("Revenue by Category", slices, selected, meta.Viewer, key)
		if err != nil {
			return nil, fmt.Errorf("revenue category provider: %w", err)
		}
		return ViewData{
			"chart_html": html,
			"chart_type": "bar",
			"drill_axis": string(AxisCategory),
			"selected":   selected,
			"summary":    SummarizeTopN(slices, 5),
		}, nil
	})
}

// NewRevenueRegionProvider renders the regional revenue distribution pie.
// Like the category chart, it keeps the full grouping while a region slice
// is active so the drill-down stays visible and reversible.
func NewRevenueRegionProvider(repo RevenueBreakdownRepository, renderer *ChartRenderer) ViewProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("revenue region provider: repository is required")
		}
		sel := meta.Filters.Clone()
		selected := ""
		if sel.Region != nil {
			selected = *sel.Region
		}
		sel.Region = nil
		slices, err := repo.FetchRevenueByRegion(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("revenue region provider: %w", err)
		}
		if len(slices) == 0 {
			return NoData(ViewRevenueRegion), nil
		}
		key := fmt.Sprintf("%s:%s:%s", ViewRevenueRegion, selected, selectionHash(sel))
		html, err := renderer.BreakdownPie("Revenue by Region", slices, meta.Viewer, key)
		if err != nil {
			return nil, fmt.Errorf("revenue region provider: %w", err)
		}
		return ViewData{
			"chart_html": html,
			"chart_type": "pie",
			"drill_axis": string(AxisRegion),
			"selected":   selected,
			"summary":    SummarizeTopN(slices, 5),
		}, nil
	})
}

// NewRetentionProvider renders the monthly cohort retention table.
func NewRetentionProvider(repo CohortRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("retention provider: repository is required")
		}
		report, err := repo.FetchRetentionCohorts(ctx, meta.Filters)
		if err != nil {
			return nil, fmt.Errorf("retention provider: %w", err)
		}
		if len(report.Rows) == 0 {
			return NoData(ViewRetention), nil
		}
		rows := make([]map[string]any, 0, len(report.Rows))
		for _, row := range report.Rows {
			rows = append(rows, map[string]any{
				"label":     row.Label,
				"size":      row.Size,
				"retention": row.Retention,
			})
		}
		return ViewData{
			"interval": report.Interval,
			"rows":     rows,
		}, nil
	})
}

// NewChannelROASProvider renders marketing channel performance.
func NewChannelROASProvider(repo MarketingRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("channel roas provider: repository is required")
		}
		channels, err := repo.FetchChannelPerformance(ctx, meta.Filters)
		if err != nil {
			return nil, fmt.Errorf("channel roas provider: %w", err)
		}
		if len(channels) == 0 {
			return NoData(ViewChannelROAS), nil
		}
		rows := make([]map[string]any, 0, len(channels))
		for _, ch := range channels {
			rows = append(rows, map[string]any{
				"channel": ch.Channel,
				"spend":   ch.Spend,
				"revenue": ch.Revenue,
				"roas":    ch.ROAS,
				"cac":     ch.CAC,
			})
		}
		return ViewData{"channels": rows}, nil
	})
}

// NewAffinityProvider renders market-basket affinity pairs ranked by lift.
func NewAffinityProvider(repo AffinityRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("affinity provider: repository is required")
		}
		pairs, err := repo.FetchAffinity(ctx, meta.Filters)
		if err != nil {
			return nil, fmt.Errorf("affinity provider: %w", err)
		}
		if len(pairs) == 0 {
			return NoData(ViewAffinity), nil
		}
		rows := make([]map[string]any, 0, len(pairs))
		for _, pair := range pairs {
			rows = append(rows, map[string]any{
				"product_a": pair.ProductA,
				"product_b": pair.ProductB,
				"support":   pair.Support,
				"lift":      pair.Lift,
			})
		}
		return ViewData{"pairs": rows}, nil
	})
}

// NewAlertFeedProvider renders unread alert notifications.
func NewAlertFeedProvider(repo AlertsRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("alert feed provider: repository is required")
		}
		notifications, err := repo.FetchNotifications(ctx)
		if err != nil {
			return nil, fmt.Errorf("alert feed provider: %w", err)
		}
		items := make([]map[string]any, 0, len(notifications))
		for _, n := range notifications {
			items = append(items, map[string]any{
				"id":       n.ID,
				"rule":     n.RuleName,
				"message":  n.Message,
				"severity": n.Severity,
				"read":     n.Read,
			})
		}
		return ViewData{"items": items}, nil
	})
}

// NewAIInsightsProvider renders the AI commentary feed.
func NewAIInsightsProvider(repo InsightRepository) ViewProvider {
	return ProviderFunc(func(ctx context.Context, meta ViewContext) (ViewData, error) {
		if repo == nil {
			return nil, fmt.Errorf("ai insights provider: repository is required")
		}
		insights, err := repo.FetchInsights(ctx)
		if err != nil {
			return nil, fmt.Errorf("ai insights provider: %w", err)
		}
		if len(insights) == 0 {
			return NoData(ViewAIInsights), nil
		}
		items := make([]map[string]any, 0, len(insights))
		for _, ins := range insights {
			items = append(items, map[string]any{
				"title":   ins.Title,
				"content": ins.Content,
				"kind":    ins.Kind,
			})
		}
		return ViewData{"items": items}, nil
	})
}

func intValue(v any) int {
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}
