package insight

import (
	core "github.com/goliatone/go-insight/components/insight"
)

// Service exposes the underlying components/insight.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// FilterStore re-export so applications can construct shared filter state
// without importing the component package directly.
type FilterStore = core.FilterStore

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewFilterStore proxies to the internal constructor.
func NewFilterStore() *FilterStore {
	return core.NewFilterStore()
}
