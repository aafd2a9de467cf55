package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-insight/pkg/activity"
)

var (
	errMissingFilters   = errors.New("insight: filter store not configured")
	errMissingProviders = errors.New("insight: view registry not configured")
	errUnknownView      = errors.New("insight: unknown view")
	errUnknownAlertRule = errors.New("insight: unknown alert rule")
)

// Options configures the insight Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal go-insight packages.
type Options struct {
	Filters         *FilterStore
	Providers       ViewRegistry
	ConfigValidator ConfigValidator
	SavedViews      SavedViewRepository
	Labels          LabelRepository
	Explain         ExplainClient
	Telemetry       Telemetry
	Views           []string
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
}

// Service orchestrates data-fetching views over the shared filter selection.
type Service struct {
	opts      Options
	explainer *Explainer
	emitter   *activity.Emitter

	mu     sync.Mutex
	states map[string]*viewState
}

type viewState struct {
	data   ViewData
	loaded bool
	issued uint64
	served uint64
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Filters == nil {
		opts.Filters = NewFilterStore()
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:      opts,
		explainer: NewExplainer(opts.Explain, opts.Telemetry),
		emitter:   activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		states:    make(map[string]*viewState),
	}
}

func (s *Service) emitActivity(ctx context.Context, verb, objectType, objectID string, metadata map[string]any) {
	if !s.emitter.Enabled() {
		return
	}
	actor := activityContextFrom(ctx)
	_ = s.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    actor.ActorID,
		UserID:     actor.UserID,
		TenantID:   actor.TenantID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
	})
}

// Filters exposes the shared filter store so transports can wire setters.
func (s *Service) Filters() *FilterStore {
	return s.opts.Filters
}

// Registry exposes the configured view registry.
func (s *Service) Registry() ViewRegistry {
	return s.opts.Providers
}

// LoadLabels primes the axis label dictionary; safe to call once at startup.
func (s *Service) LoadLabels(ctx context.Context) {
	s.opts.Filters.LoadLabels(ctx, s.opts.Labels)
}

// RenderView fetches a single view for the current filter selection.
//
// Behavior is stale-while-revalidate: when the fetch fails and a prior
// render exists, the prior data is served and the error is only recorded
// through telemetry. Each fetch carries a per-view sequence number and a
// response that has been superseded by a later fetch is discarded, so a slow
// early response can never overwrite a newer one.
func (s *Service) RenderView(ctx context.Context, code string, viewer ViewerContext) (ViewData, error) {
	return s.renderView(ctx, code, viewer, nil)
}

// RenderViewConfig is RenderView with a per-call configuration payload,
// validated against the view's schema when one is registered.
func (s *Service) RenderViewConfig(ctx context.Context, code string, viewer ViewerContext, config map[string]any) (ViewData, error) {
	return s.renderView(ctx, code, viewer, config)
}

func (s *Service) renderView(ctx context.Context, code string, viewer ViewerContext, config map[string]any) (ViewData, error) {
	if s.opts.Providers == nil {
		return nil, errMissingProviders
	}
	def, ok := s.opts.Providers.Definition(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownView, code)
	}
	provider, ok := s.opts.Providers.Provider(code)
	if !ok || provider == nil {
		return nil, fmt.Errorf("insight: no provider registered for %s", code)
	}
	if config != nil {
		if err := s.opts.ConfigValidator.Validate(def, config); err != nil {
			return nil, err
		}
	}

	seq := s.nextSequence(code)
	data, err := provider.Fetch(ctx, ViewContext{
		View:    def,
		Filters: s.opts.Filters.Selection(),
		Viewer:  viewer,
		Config:  config,
	})
	if err != nil {
		s.opts.Telemetry.Record(ctx, "insight.view.fetch_error", map[string]any{
			"view":  code,
			"error": err.Error(),
		})
		if stale, ok := s.staleData(code); ok {
			return stale, nil
		}
		return nil, err
	}
	return s.commit(code, seq, data), nil
}

// Dashboard renders every configured view, keyed by view code. Individual
// view failures degrade to stale (or empty) data and never fail the whole
// dashboard.
func (s *Service) Dashboard(ctx context.Context, viewer ViewerContext) (map[string]ViewData, error) {
	if s.opts.Providers == nil {
		return nil, errMissingProviders
	}
	out := make(map[string]ViewData)
	for _, code := range s.viewList() {
		data, err := s.renderView(ctx, code, viewer, nil)
		if err != nil {
			out[code] = NoData(code)
			continue
		}
		out[code] = data
	}
	s.opts.Telemetry.Record(ctx, "insight.dashboard.resolve", map[string]any{
		"viewer": viewer.UserID,
		"views":  len(out),
	})
	return out, nil
}

// Drill toggles a category/region drill-down selection from a chart click.
// Clicking the active value again clears the axis.
func (s *Service) Drill(ctx context.Context, axis FilterAxis, value string) error {
	if s.opts.Filters == nil {
		return errMissingFilters
	}
	switch axis {
	case AxisCategory:
		s.opts.Filters.ToggleCategory(value)
	case AxisRegion:
		s.opts.Filters.ToggleRegion(value)
	default:
		return fmt.Errorf("insight: axis %s does not support drill-down", axis)
	}
	s.opts.Telemetry.Record(ctx, "insight.filter.drill", map[string]any{
		"axis":  string(axis),
		"value": value,
	})
	return nil
}

// Explain opens the explain affordance for a view: it derives a compact
// summary from the most recent render and submits it to the AI endpoint.
// The response is cached only until CloseExplain.
func (s *Service) Explain(ctx context.Context, code string) (string, error) {
	data, ok := s.staleData(code)
	if !ok {
		return "", fmt.Errorf("insight: view %s has not rendered yet", code)
	}
	summary := map[string]any{}
	if v, exists := data["summary"]; exists {
		switch typed := v.(type) {
		case SeriesSummary:
			summary["first"] = typed.First
			summary["last"] = typed.Last
			summary["min"] = typed.Min
			summary["max"] = typed.Max
		case []BreakdownSlice:
			top := make([]map[string]any, 0, len(typed))
			for _, s := range typed {
				top = append(top, map[string]any{"name": s.Name, "value": s.Value})
			}
			summary["top"] = top
		}
	}
	return s.explainer.Open(ctx, ExplainRequest{
		View:    code,
		Summary: summary,
		Filters: s.opts.Filters.Selection().Settings(),
	})
}

// CloseExplain drops the session-cached explanation for the view.
func (s *Service) CloseExplain(code string) {
	s.explainer.Close(code)
}

// SaveCurrentView persists the active filter selection under a name.
func (s *Service) SaveCurrentView(ctx context.Context, name string) (SavedView, error) {
	if s.opts.SavedViews == nil {
		return SavedView{}, errors.New("insight: saved view repository not configured")
	}
	if name == "" {
		return SavedView{}, errors.New("insight: saved view name is required")
	}
	settings := s.opts.Filters.Selection().Settings()
	if validator, ok := s.opts.ConfigValidator.(*JSONSchemaValidator); ok {
		if err := validator.ValidateSettings(settings); err != nil {
			return SavedView{}, err
		}
	}
	view, err := s.opts.SavedViews.CreateSavedView(ctx, name, settings)
	if err != nil {
		return SavedView{}, err
	}
	s.opts.Telemetry.Record(ctx, "insight.view.save", map[string]any{
		"view_id": view.ID,
		"name":    view.Name,
	})
	s.emitActivity(ctx, "insight.view.save", "saved_view", view.ID, map[string]any{
		"name": view.Name,
	})
	return view, nil
}

// ListSavedViews returns the gateway-owned saved views for the session user.
func (s *Service) ListSavedViews(ctx context.Context) ([]SavedView, error) {
	if s.opts.SavedViews == nil {
		return nil, errors.New("insight: saved view repository not configured")
	}
	return s.opts.SavedViews.ListSavedViews(ctx)
}

// LoadSavedView applies a stored filter snapshot to the shared store,
// restoring each axis exactly as saved, including unset ones.
func (s *Service) LoadSavedView(ctx context.Context, id string) error {
	if s.opts.SavedViews == nil {
		return errors.New("insight: saved view repository not configured")
	}
	views, err := s.opts.SavedViews.ListSavedViews(ctx)
	if err != nil {
		return err
	}
	for _, view := range views {
		if view.ID == id {
			s.opts.Filters.Apply(view.Settings.Selection())
			s.opts.Telemetry.Record(ctx, "insight.view.load", map[string]any{
				"view_id": view.ID,
				"name":    view.Name,
			})
			s.emitActivity(ctx, "insight.view.load", "saved_view", view.ID, map[string]any{
				"name": view.Name,
			})
			return nil
		}
	}
	return fmt.Errorf("insight: saved view %s not found", id)
}

// DeleteSavedView removes a stored view from the gateway.
func (s *Service) DeleteSavedView(ctx context.Context, id string) error {
	if s.opts.SavedViews == nil {
		return errors.New("insight: saved view repository not configured")
	}
	if err := s.opts.SavedViews.DeleteSavedView(ctx, id); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "insight.view.delete", map[string]any{"view_id": id})
	s.emitActivity(ctx, "insight.view.delete", "saved_view", id, nil)
	return nil
}

func (s *Service) nextSequence(code string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(code)
	state.issued++
	return state.issued
}

func (s *Service) commit(code string, seq uint64, data ViewData) ViewData {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(code)
	if seq < state.served {
		// A later fetch already landed; keep its data.
		return state.data
	}
	state.data = data
	state.loaded = true
	state.served = seq
	return data
}

func (s *Service) staleData(code string) (ViewData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(code)
	if !state.loaded {
		return nil, false
	}
	return state.data, true
}

func (s *Service) state(code string) *viewState {
	state, ok := s.states[code]
	if !ok {
		state = &viewState{}
		s.states[code] = state
	}
	return state
}

func (s *Service) viewList() []string {
	if len(s.opts.Views) > 0 {
		return s.opts.Views
	}
	codes := make([]string, 0)
	for _, def := range s.opts.Providers.Definitions() {
		if _, ok := s.opts.Providers.Provider(def.Code); ok {
			codes = append(codes, def.Code)
		}
	}
	return codes
}
