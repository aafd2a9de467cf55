package gateway

import (
	"context"
	"testing"

	insight "github.com/goliatone/go-insight/components/insight"
)

func TestRepositoriesForwardToClient(t *testing.T) {
	client := NewMockClient(MockData{
		Overview: insight.KPISnapshot{TotalRevenue: 1000},
		Cohorts: insight.CohortReport{
			Interval: "monthly",
			Rows:     []insight.CohortRow{{Label: "2026-05", Size: 40, Retention: []float64{100, 31}}},
		},
	})

	snapshot, err := NewKPIRepository(client).FetchOverview(context.Background(), insight.FilterSelection{})
	if err != nil {
		t.Fatalf("fetch overview: %v", err)
	}
	if snapshot.TotalRevenue != 1000 {
		t.Fatalf("unexpected snapshot %#v", snapshot)
	}

	report, err := NewCohortRepository(client).FetchRetentionCohorts(context.Background(), insight.FilterSelection{})
	if err != nil {
		t.Fatalf("fetch cohorts: %v", err)
	}
	if report.Interval != "monthly" || len(report.Rows) != 1 {
		t.Fatalf("unexpected report %#v", report)
	}
	report.Rows[0].Retention[0] = 0
	fresh, _ := NewCohortRepository(client).FetchRetentionCohorts(context.Background(), insight.FilterSelection{})
	if fresh.Rows[0].Retention[0] != 100 {
		t.Fatalf("mock data must be detached from callers")
	}
}

func TestMockClientAlertRuleLifecycle(t *testing.T) {
	client := NewMockClient(MockData{})
	repo := NewAlertsRepository(client)

	rule, err := repo.CreateAlertRule(context.Background(), insight.AlertRule{
		Name:      "Revenue dip",
		Metric:    "total_revenue",
		Condition: "below",
		Threshold: 1000,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}
	if rule.ID == "" {
		t.Fatalf("expected generated rule id")
	}

	toggled, err := repo.ToggleAlertRule(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("toggle rule: %v", err)
	}
	if toggled.Enabled {
		t.Fatalf("expected rule disabled after toggle")
	}

	triggered, err := repo.RunAlertChecks(context.Background())
	if err != nil {
		t.Fatalf("run checks: %v", err)
	}
	if triggered != 0 {
		t.Fatalf("disabled rules must not trigger, got %d", triggered)
	}

	if err := repo.DeleteAlertRule(context.Background(), rule.ID); err != nil {
		t.Fatalf("delete rule: %v", err)
	}
	if err := repo.DeleteAlertRule(context.Background(), rule.ID); err == nil {
		t.Fatalf("expected error deleting missing rule")
	}
}

func TestMockClientSavedViewLifecycle(t *testing.T) {
	repo := NewSavedViewRepository(NewMockClient(MockData{}))

	view, err := repo.CreateSavedView(context.Background(), "weekly", insight.FilterSettings{DateRange: "7d"})
	if err != nil {
		t.Fatalf("create view: %v", err)
	}
	views, err := repo.ListSavedViews(context.Background())
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 1 || views[0].ID != view.ID {
		t.Fatalf("unexpected views %#v", views)
	}
	if err := repo.DeleteSavedView(context.Background(), view.ID); err != nil {
		t.Fatalf("delete view: %v", err)
	}
	views, _ = repo.ListSavedViews(context.Background())
	if len(views) != 0 {
		t.Fatalf("expected empty view list, got %#v", views)
	}
}

func TestProvidersCoverEveryDefaultView(t *testing.T) {
	providers := Providers(NewMockClient(MockData{}), nil)
	for _, code := range []string{
		insight.ViewKPIOverview,
		insight.ViewRevenueTrend,
		insight.ViewRevenueCategory,
		insight.ViewRevenueRegion,
		insight.ViewRetention,
		insight.ViewChannelROAS,
		insight.ViewAffinity,
		insight.ViewAlertFeed,
		insight.ViewAIInsights,
	} {
		if providers[code] == nil {
			t.Fatalf("missing provider for %s", code)
		}
	}
}
