package insight

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFilterStoreDefaults(t *testing.T) {
	store := NewFilterStore()
	sel := store.Selection()
	if sel.Category != nil || sel.Region != nil || sel.MinOrderValue != nil {
		t.Fatalf("expected unrestricted defaults, got %#v", sel)
	}
	if sel.DateRange != DefaultDateRange {
		t.Fatalf("expected date range %q, got %q", DefaultDateRange, sel.DateRange)
	}
	labels := store.Labels()
	if labels.Category != "Category" || labels.Region != "Region" {
		t.Fatalf("expected generic fallback labels, got %#v", labels)
	}
}

func TestToggleCategoryClearsOnRepeat(t *testing.T) {
	store := NewFilterStore()
	store.ToggleCategory("Electronics")
	sel := store.Selection()
	if sel.Category == nil || *sel.Category != "Electronics" {
		t.Fatalf("expected category set, got %#v", sel.Category)
	}
	store.ToggleCategory("Electronics")
	if store.Selection().Category != nil {
		t.Fatal("expected second toggle to clear category")
	}
	store.ToggleCategory("Electronics")
	store.ToggleCategory("Fashion")
	sel = store.Selection()
	if sel.Category == nil || *sel.Category != "Fashion" {
		t.Fatalf("expected toggle to switch to Fashion, got %#v", sel.Category)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	store := NewFilterStore()
	region := "Asia"
	min := 50.0
	store.SetRegion(&region)
	store.SetDateRange("90d")
	store.SetMinOrderValue(&min)
	store.Reset()
	sel := store.Selection()
	if sel.Region != nil || sel.MinOrderValue != nil || sel.DateRange != DefaultDateRange {
		t.Fatalf("expected defaults after reset, got %#v", sel)
	}
}

func TestSubscribePublishesChanges(t *testing.T) {
	store := NewFilterStore()
	events, cancel := store.Subscribe()
	defer cancel()

	store.SetDateRange("7d")
	select {
	case change := <-events:
		if change.Axis != AxisDateRange {
			t.Fatalf("expected date_range change, got %s", change.Axis)
		}
		if change.Selection.DateRange != "7d" {
			t.Fatalf("expected selection snapshot with 7d, got %q", change.Selection.DateRange)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filter change")
	}

	cancel()
	if _, ok := <-events; ok {
		t.Fatal("expected channel closed after cancel")
	}
}

func TestSelectionSnapshotIsDetached(t *testing.T) {
	store := NewFilterStore()
	category := "Home"
	store.SetCategory(&category)
	sel := store.Selection()
	*sel.Category = "Garden"
	if got := store.Selection(); *got.Category != "Home" {
		t.Fatalf("store selection mutated through snapshot: %q", *got.Category)
	}
}

type stubLabelRepository struct {
	options FilterOptions
	err     error
	calls   int
}

func (r *stubLabelRepository) FetchFilterOptions(context.Context) (FilterOptions, error) {
	r.calls++
	return r.options, r.err
}

func TestLoadLabelsAppliesDatasetNames(t *testing.T) {
	store := NewFilterStore()
	repo := &stubLabelRepository{options: FilterOptions{
		Labels: FilterLabels{Category: "Product Line", Region: "Market"},
	}}
	store.LoadLabels(context.Background(), repo)
	labels := store.Labels()
	if labels.Category != "Product Line" || labels.Region != "Market" {
		t.Fatalf("expected dataset labels, got %#v", labels)
	}
	store.LoadLabels(context.Background(), repo)
	if repo.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", repo.calls)
	}
}

func TestLoadLabelsFailureKeepsFallbacks(t *testing.T) {
	store := NewFilterStore()
	repo := &stubLabelRepository{err: errors.New("gateway down")}
	store.LoadLabels(context.Background(), repo)
	labels := store.Labels()
	if labels.Category != "Category" || labels.Region != "Region" {
		t.Fatalf("expected fallback labels on failure, got %#v", labels)
	}
	if repo.calls != 1 {
		t.Fatalf("expected no retries, got %d calls", repo.calls)
	}
}

func TestApplyRestoresSavedSnapshotExactly(t *testing.T) {
	store := NewFilterStore()
	region := "Europe"
	store.SetRegion(&region)
	store.SetDateRange("7d")

	saved := FilterSettings{DateRange: "90d"}
	store.Apply(saved.Selection())
	sel := store.Selection()
	if sel.Region != nil {
		t.Fatalf("expected region restored to nil, got %q", *sel.Region)
	}
	if sel.Category != nil || sel.MinOrderValue != nil {
		t.Fatalf("expected unset axes to stay unset, got %#v", sel)
	}
	if sel.DateRange != "90d" {
		t.Fatalf("expected date range 90d, got %q", sel.DateRange)
	}
}

func TestQueryValuesOmitsAbsentAxes(t *testing.T) {
	sel := FilterSelection{DateRange: "30d"}
	values := sel.QueryValues()
	if _, ok := values["category"]; ok {
		t.Fatal("unexpected category parameter")
	}
	if _, ok := values["region"]; ok {
		t.Fatal("unexpected region parameter")
	}
	if got := values.Get("days"); got != "30" {
		t.Fatalf("expected days=30, got %q", got)
	}

	category := "Beauty"
	min := 25.5
	sel = FilterSelection{Category: &category, DateRange: "all", MinOrderValue: &min}
	values = sel.QueryValues()
	if got := values.Get("category"); got != "Beauty" {
		t.Fatalf("expected category=Beauty, got %q", got)
	}
	if _, ok := values["days"]; ok {
		t.Fatal("expected no days parameter for full history")
	}
	if got := values.Get("min_order_value"); got != "25.5" {
		t.Fatalf("expected min_order_value=25.5, got %q", got)
	}
}
