package insight

import (
	"fmt"
	"sync"
)

// ViewHook lets packages register views/providers during init().
type ViewHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ViewHook
)

// RegisterViewHook registers a hook executed against new registries.
func RegisterViewHook(h ViewHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements ViewRegistry with hook + manifest support.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]ViewDefinition
	providers    map[string]ViewProvider
	sections     map[string]ReportSection
	sectionOrder []string
	manifestMeta map[string]ManifestProvider
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions:  map[string]ViewDefinition{},
		providers:    map[string]ViewProvider{},
		sections:     map[string]ReportSection{},
		manifestMeta: map[string]ManifestProvider{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultViewDefinitions() {
		_ = r.RegisterDefinition(def)
	}
	for _, section := range DefaultReportSections() {
		_ = r.RegisterSection(section)
	}
}

// ApplyHooks executes registered view hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores view metadata.
func (r *Registry) RegisterDefinition(def ViewDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("view definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider ViewProvider) error {
	if code == "" {
		return fmt.Errorf("view definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("view definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// RegisterSection adds a capturable report section to the catalog.
func (r *Registry) RegisterSection(section ReportSection) error {
	if section.ID == "" {
		return fmt.Errorf("report section id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[section.ID]; !ok {
		r.sectionOrder = append(r.sectionOrder, section.ID)
	}
	r.sections[section.ID] = section
	return nil
}

// Definition fetches a view definition by code.
func (r *Registry) Definition(code string) (ViewDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a view provider by code.
func (r *Registry) Provider(code string) (ViewProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// ProviderMetadata returns any manifest metadata registered for a view.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[code]
	return meta, ok
}

// Definitions returns all registered definitions.
func (r *Registry) Definitions() []ViewDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ViewDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	return defs
}

// Sections returns the report section catalog in registration order.
func (r *Registry) Sections() []ReportSection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ReportSection, 0, len(r.sectionOrder))
	for _, id := range r.sectionOrder {
		out = append(out, r.sections[id])
	}
	return out
}

// Section looks up one report section by id.
func (r *Registry) Section(id string) (ReportSection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	section, ok := r.sections[id]
	return section, ok
}

func (r *Registry) recordProviderMetadata(code string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[code] = meta
}
