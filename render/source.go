// Package render implements the renderable sink between the data engine and
// the rendering layer. A Source is the column-data analogue of the shared
// tables: views read it, the websocket server streams it to clients, and
// the session replaces it wholesale on reload.
package render

import (
	"sync"

	"github.com/zibamira/CTCoral-CoDA/selection"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Source holds renderable column data plus the current selection. All
// mutation happens on the session's update goroutine; the mutex only guards
// snapshot reads from the server's client goroutines.
type Source struct {
	name string

	mu    sync.RWMutex
	data  map[string][]any
	order []string
	nrows int
	epoch uint64

	selected *selection.Set

	selectionObservers []func(indices []int)
	replaceObservers   []func()
	patchObservers     []func(column string)
}

// NewSource creates an empty sink.
func NewSource(name string) *Source {
	return &Source{
		name:     name,
		data:     make(map[string][]any),
		selected: selection.New(),
	}
}

// Name identifies the sink ("vertices" or "edges").
func (s *Source) Name() string { return s.name }

// Epoch returns the table epoch of the last Replace.
func (s *Source) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// NumRows returns the row count of the last Replace.
func (s *Source) NumRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nrows
}

// Replace swaps the entire backing data for the table's columns in one
// atomic step. Incremental column patches during a reload would flicker and
// notify redundantly; a reload therefore always ends in exactly one Replace
// per sink. Columns added to the sink after the table snapshot was taken are
// dropped, which is why view hooks must add their derived columns to the
// table before Replace runs.
func (s *Source) Replace(tbl *table.Table) {
	data := make(map[string][]any, tbl.NumColumns())
	order := tbl.Names()
	for _, name := range order {
		data[name] = tbl.Column(name).Values()
	}

	s.mu.Lock()
	s.data = data
	s.order = order
	s.nrows = tbl.NumRows()
	s.epoch = tbl.Epoch()
	s.mu.Unlock()

	for _, fn := range s.replaceObservers {
		fn()
	}
}

// SetColumn patches a single column without touching the rest of the sink.
func (s *Source) SetColumn(name string, values []any) {
	s.mu.Lock()
	if _, ok := s.data[name]; !ok {
		s.order = append(s.order, name)
	}
	s.data[name] = values
	s.mu.Unlock()

	for _, fn := range s.patchObservers {
		fn(name)
	}
}

// Column returns the named column values, or nil.
func (s *Source) Column(name string) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[name]
}

// Snapshot returns a shallow copy of the column data in column order,
// suitable for marshaling to a client.
func (s *Source) Snapshot() (map[string][]any, []string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make(map[string][]any, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	order := append([]string(nil), s.order...)
	return data, order, s.epoch
}

// Selected returns the current selection. The returned set must not be
// mutated; use SetSelected.
func (s *Source) Selected() *selection.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelected replaces the current selection and notifies the selection
// observers. No-op when the selection is unchanged.
func (s *Source) SetSelected(indices []int) {
	next := selection.FromIndices(indices)

	s.mu.Lock()
	if s.selected.Equal(next) {
		s.mu.Unlock()
		return
	}
	s.selected = next
	s.mu.Unlock()

	for _, fn := range s.selectionObservers {
		fn(next.Indices())
	}
}

// OnSelectionChange registers an observer invoked after every selection
// update, on the caller's goroutine.
func (s *Source) OnSelectionChange(fn func(indices []int)) {
	s.selectionObservers = append(s.selectionObservers, fn)
}

// OnReplace registers an observer invoked after every bulk Replace.
func (s *Source) OnReplace(fn func()) {
	s.replaceObservers = append(s.replaceObservers, fn)
}

// OnPatch registers an observer invoked after every single-column patch.
func (s *Source) OnPatch(fn func(column string)) {
	s.patchObservers = append(s.patchObservers, fn)
}
