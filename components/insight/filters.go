package insight

import (
	"context"
	"sync"
)

// DefaultDateRange is the slice applied at session start and after a reset.
const DefaultDateRange = "30d"

// FilterAxis identifies which part of the selection changed.
type FilterAxis string

const (
	AxisCategory      FilterAxis = "category"
	AxisRegion        FilterAxis = "region"
	AxisDateRange     FilterAxis = "date_range"
	AxisMinOrderValue FilterAxis = "min_order_value"
	AxisReset         FilterAxis = "reset"
)

// FilterChange is published to subscribers after every write so dependent
// views can re-fetch.
type FilterChange struct {
	Axis      FilterAxis
	Selection FilterSelection
}

// FilterStore is the single source of truth for the current data slice. It
// holds no fetched data itself; consumers read the selection and use it as
// query parameters.
type FilterStore struct {
	mu        sync.RWMutex
	selection FilterSelection
	labels    FilterLabels
	labelOnce sync.Once

	subMu sync.RWMutex
	subs  map[int]chan FilterChange
	next  int
}

// NewFilterStore creates a store with session defaults.
func NewFilterStore() *FilterStore {
	return &FilterStore{
		selection: FilterSelection{DateRange: DefaultDateRange},
		labels:    FilterLabels{Category: "Category", Region: "Region"},
		subs:      make(map[int]chan FilterChange),
	}
}

// Selection returns a detached snapshot of the current slice.
func (s *FilterStore) Selection() FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Clone()
}

// Labels returns the axis label dictionary.
func (s *FilterStore) Labels() FilterLabels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels
}

// SetCategory restricts the category axis; nil clears it.
func (s *FilterStore) SetCategory(value *string) {
	s.mu.Lock()
	s.selection.Category = clonePtr(value)
	s.mu.Unlock()
	s.publish(AxisCategory)
}

// SetRegion restricts the region axis; nil clears it.
func (s *FilterStore) SetRegion(value *string) {
	s.mu.Lock()
	s.selection.Region = clonePtr(value)
	s.mu.Unlock()
	s.publish(AxisRegion)
}

// SetDateRange switches the lookback token.
func (s *FilterStore) SetDateRange(token string) {
	if token == "" {
		token = DefaultDateRange
	}
	s.mu.Lock()
	s.selection.DateRange = token
	s.mu.Unlock()
	s.publish(AxisDateRange)
}

// SetMinOrderValue restricts the minimum order value; nil clears it.
func (s *FilterStore) SetMinOrderValue(value *float64) {
	s.mu.Lock()
	if value == nil {
		s.selection.MinOrderValue = nil
	} else {
		v := *value
		s.selection.MinOrderValue = &v
	}
	s.mu.Unlock()
	s.publish(AxisMinOrderValue)
}

// ToggleCategory implements chart drill-down: selecting the active value
// again clears the axis.
func (s *FilterStore) ToggleCategory(value string) {
	s.mu.Lock()
	if s.selection.Category != nil && *s.selection.Category == value {
		s.selection.Category = nil
	} else {
		v := value
		s.selection.Category = &v
	}
	s.mu.Unlock()
	s.publish(AxisCategory)
}

// ToggleRegion mirrors ToggleCategory for the region axis.
func (s *FilterStore) ToggleRegion(value string) {
	s.mu.Lock()
	if s.selection.Region != nil && *s.selection.Region == value {
		s.selection.Region = nil
	} else {
		v := value
		s.selection.Region = &v
	}
	s.mu.Unlock()
	s.publish(AxisRegion)
}

// Reset restores every axis to its default.
func (s *FilterStore) Reset() {
	s.mu.Lock()
	s.selection = FilterSelection{DateRange: DefaultDateRange}
	s.mu.Unlock()
	s.publish(AxisReset)
}

// Apply replaces the whole selection, e.g. when loading a saved view.
func (s *FilterStore) Apply(sel FilterSelection) {
	if sel.DateRange == "" {
		sel.DateRange = DefaultDateRange
	}
	s.mu.Lock()
	s.selection = sel.Clone()
	s.mu.Unlock()
	s.publish(AxisReset)
}

// LoadLabels fetches the label dictionary once per store lifetime. Failure is
// silent and leaves the generic fallbacks in place; there are no retries.
func (s *FilterStore) LoadLabels(ctx context.Context, repo LabelRepository) {
	if repo == nil {
		return
	}
	s.labelOnce.Do(func() {
		options, err := repo.FetchFilterOptions(ctx)
		if err != nil {
			return
		}
		s.mu.Lock()
		if options.Labels.Category != "" {
			s.labels.Category = options.Labels.Category
		}
		if options.Labels.Region != "" {
			s.labels.Region = options.Labels.Region
		}
		s.mu.Unlock()
	})
}

// Subscribe returns a channel of filter changes and a cancel func. Slow
// subscribers drop events rather than blocking writers.
func (s *FilterStore) Subscribe() (<-chan FilterChange, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.next
	s.next++
	ch := make(chan FilterChange, 8)
	s.subs[id] = ch
	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *FilterStore) publish(axis FilterAxis) {
	change := FilterChange{Axis: axis, Selection: s.Selection()}
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func clonePtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
