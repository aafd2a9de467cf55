package insight

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type flakyProvider struct {
	data  ViewData
	err   error
	calls int
}

func (p *flakyProvider) Fetch(context.Context, ViewContext) (ViewData, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.data, nil
}

func newTestRegistry(t *testing.T, code string, provider ViewProvider) *Registry {
	t.Helper()
	registry := NewRegistry()
	if err := registry.RegisterDefinition(ViewDefinition{Code: code, Name: "Test View"}); err != nil {
		t.Fatalf("RegisterDefinition: %v", err)
	}
	if err := registry.RegisterProvider(code, provider); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}
	return registry
}

func TestRenderViewServesStaleOnFetchError(t *testing.T) {
	provider := &flakyProvider{data: ViewData{"view": "test.view", "value": 41}}
	service := NewService(Options{
		Providers: newTestRegistry(t, "test.view", provider),
	})

	data, err := service.RenderView(context.Background(), "test.view", ViewerContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	if data["value"] != 41 {
		t.Fatalf("unexpected render payload: %#v", data)
	}

	provider.err = errors.New("gateway timeout")
	stale, err := service.RenderView(context.Background(), "test.view", ViewerContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("expected stale data instead of error, got %v", err)
	}
	if stale["value"] != 41 {
		t.Fatalf("expected prior payload, got %#v", stale)
	}
}

func TestRenderViewFailsWithoutPriorData(t *testing.T) {
	provider := &flakyProvider{err: errors.New("gateway timeout")}
	service := NewService(Options{
		Providers: newTestRegistry(t, "test.view", provider),
	})
	if _, err := service.RenderView(context.Background(), "test.view", ViewerContext{}); err == nil {
		t.Fatal("expected error when no prior render exists")
	}
}

func TestRenderViewUnknownCode(t *testing.T) {
	service := NewService(Options{Providers: NewRegistry()})
	_, err := service.RenderView(context.Background(), "test.missing", ViewerContext{})
	if !errors.Is(err, errUnknownView) {
		t.Fatalf("expected unknown view error, got %v", err)
	}
}

func TestCommitDiscardsSupersededResponse(t *testing.T) {
	service := NewService(Options{})

	early := service.nextSequence("test.view")
	late := service.nextSequence("test.view")

	service.commit("test.view", late, ViewData{"value": "new"})
	got := service.commit("test.view", early, ViewData{"value": "old"})
	if got["value"] != "new" {
		t.Fatalf("expected superseded response discarded, served %#v", got)
	}
	stale, ok := service.staleData("test.view")
	if !ok || stale["value"] != "new" {
		t.Fatalf("expected committed data to stay new, got %#v", stale)
	}
}

func TestDashboardDegradesFailedViews(t *testing.T) {
	registry := NewRegistry()
	for i, provider := range []ViewProvider{
		&flakyProvider{data: ViewData{"value": "ok"}},
		&flakyProvider{err: errors.New("boom")},
	} {
		code := fmt.Sprintf("test.view_%d", i)
		if err := registry.RegisterDefinition(ViewDefinition{Code: code, Name: code}); err != nil {
			t.Fatalf("RegisterDefinition: %v", err)
		}
		if err := registry.RegisterProvider(code, provider); err != nil {
			t.Fatalf("RegisterProvider: %v", err)
		}
	}
	service := NewService(Options{
		Providers: registry,
		Views:     []string{"test.view_0", "test.view_1"},
	})
	out, err := service.Dashboard(context.Background(), ViewerContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if out["test.view_0"]["value"] != "ok" {
		t.Fatalf("expected healthy view data, got %#v", out["test.view_0"])
	}
	if !IsNoData(out["test.view_1"]) {
		t.Fatalf("expected failed view degraded to empty payload, got %#v", out["test.view_1"])
	}
}

func TestDrillTogglesAxis(t *testing.T) {
	service := NewService(Options{})
	if err := service.Drill(context.Background(), AxisCategory, "Sports"); err != nil {
		t.Fatalf("Drill: %v", err)
	}
	sel := service.Filters().Selection()
	if sel.Category == nil || *sel.Category != "Sports" {
		t.Fatalf("expected drilled category, got %#v", sel.Category)
	}
	if err := service.Drill(context.Background(), AxisCategory, "Sports"); err != nil {
		t.Fatalf("Drill: %v", err)
	}
	if service.Filters().Selection().Category != nil {
		t.Fatal("expected repeated drill to clear category")
	}
	if err := service.Drill(context.Background(), AxisDateRange, "7d"); err == nil {
		t.Fatal("expected error for non-drillable axis")
	}
}

type countingExplainClient struct {
	calls int
	last  ExplainRequest
}

func (c *countingExplainClient) Explain(_ context.Context, req ExplainRequest) (string, error) {
	c.calls++
	c.last = req
	return "looks healthy", nil
}

func TestExplainCachesUntilClosed(t *testing.T) {
	provider := &flakyProvider{data: ViewData{
		"view":    "test.view",
		"summary": SeriesSummary{First: 10, Last: 20, Min: 5, Max: 25, Count: 4},
	}}
	client := &countingExplainClient{}
	service := NewService(Options{
		Providers: newTestRegistry(t, "test.view", provider),
		Explain:   client,
	})
	if _, err := service.RenderView(context.Background(), "test.view", ViewerContext{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	first, err := service.Explain(context.Background(), "test.view")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if first != "looks healthy" {
		t.Fatalf("unexpected explanation: %q", first)
	}
	if client.last.Summary["last"] != 20.0 {
		t.Fatalf("expected summary forwarded, got %#v", client.last.Summary)
	}

	if _, err := service.Explain(context.Background(), "test.view"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected session-cached response, got %d calls", client.calls)
	}

	service.CloseExplain("test.view")
	if _, err := service.Explain(context.Background(), "test.view"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected fresh request after close, got %d calls", client.calls)
	}
}

func TestExplainRefetchesAfterFilterChange(t *testing.T) {
	provider := &flakyProvider{data: ViewData{
		"view":    "test.view",
		"summary": SeriesSummary{First: 10, Last: 20, Min: 5, Max: 25, Count: 4},
	}}
	client := &countingExplainClient{}
	service := NewService(Options{
		Providers: newTestRegistry(t, "test.view", provider),
		Explain:   client,
	})
	if _, err := service.RenderView(context.Background(), "test.view", ViewerContext{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := service.Explain(context.Background(), "test.view"); err != nil {
		t.Fatalf("Explain: %v", err)
	}

	service.Filters().ToggleRegion("Asia")
	if _, err := service.RenderView(context.Background(), "test.view", ViewerContext{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := service.Explain(context.Background(), "test.view"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected fresh request for the new slice, got %d calls", client.calls)
	}
	if client.last.Filters.Region == nil || *client.last.Filters.Region != "Asia" {
		t.Fatalf("expected filters forwarded to AI client, got %#v", client.last.Filters)
	}

	// Same selection again stays cached.
	if _, err := service.Explain(context.Background(), "test.view"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected cached response for unchanged selection, got %d calls", client.calls)
	}
}

func TestExplainRequiresRenderedView(t *testing.T) {
	service := NewService(Options{Explain: &countingExplainClient{}})
	if _, err := service.Explain(context.Background(), "test.view"); err == nil {
		t.Fatal("expected error for unrendered view")
	}
}

type memorySavedViewRepository struct {
	views []SavedView
	next  int
}

func (r *memorySavedViewRepository) CreateSavedView(_ context.Context, name string, settings FilterSettings) (SavedView, error) {
	r.next++
	view := SavedView{ID: fmt.Sprintf("sv-%d", r.next), Name: name, Settings: settings}
	r.views = append(r.views, view)
	return view, nil
}

func (r *memorySavedViewRepository) ListSavedViews(context.Context) ([]SavedView, error) {
	out := make([]SavedView, len(r.views))
	copy(out, r.views)
	return out, nil
}

func (r *memorySavedViewRepository) DeleteSavedView(_ context.Context, id string) error {
	for i, view := range r.views {
		if view.ID == id {
			r.views = append(r.views[:i], r.views[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not found: %s", id)
}

func TestSavedViewRoundTripRestoresNilAxes(t *testing.T) {
	repo := &memorySavedViewRepository{}
	service := NewService(Options{SavedViews: repo})

	region := "Asia"
	service.Filters().SetRegion(&region)
	service.Filters().SetDateRange("7d")

	saved, err := service.SaveCurrentView(context.Background(), "APAC weekly")
	if err != nil {
		t.Fatalf("SaveCurrentView: %v", err)
	}
	if saved.Settings.Category != nil {
		t.Fatalf("expected nil category persisted, got %q", *saved.Settings.Category)
	}

	category := "Toys"
	min := 10.0
	service.Filters().SetCategory(&category)
	service.Filters().SetMinOrderValue(&min)
	service.Filters().SetDateRange("90d")

	if err := service.LoadSavedView(context.Background(), saved.ID); err != nil {
		t.Fatalf("LoadSavedView: %v", err)
	}
	sel := service.Filters().Selection()
	if sel.Category != nil || sel.MinOrderValue != nil {
		t.Fatalf("expected unset axes restored to nil, got %#v", sel)
	}
	if sel.Region == nil || *sel.Region != "Asia" || sel.DateRange != "7d" {
		t.Fatalf("expected saved slice restored, got %#v", sel)
	}
}

func TestLoadSavedViewUnknownID(t *testing.T) {
	service := NewService(Options{SavedViews: &memorySavedViewRepository{}})
	if err := service.LoadSavedView(context.Background(), "sv-404"); err == nil {
		t.Fatal("expected error for unknown saved view")
	}
}

func TestSaveCurrentViewRequiresName(t *testing.T) {
	service := NewService(Options{SavedViews: &memorySavedViewRepository{}})
	if _, err := service.SaveCurrentView(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestDeleteSavedView(t *testing.T) {
	repo := &memorySavedViewRepository{}
	service := NewService(Options{SavedViews: repo})
	saved, err := service.SaveCurrentView(context.Background(), "default")
	if err != nil {
		t.Fatalf("SaveCurrentView: %v", err)
	}
	if err := service.DeleteSavedView(context.Background(), saved.ID); err != nil {
		t.Fatalf("DeleteSavedView: %v", err)
	}
	views, err := service.ListSavedViews(context.Background())
	if err != nil {
		t.Fatalf("ListSavedViews: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no saved views, got %#v", views)
	}
}
