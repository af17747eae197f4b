// Package provider defines the DataProvider contract: the external
// collaborator that produces the vertex and edge tables and accepts
// selection and colormap writebacks from the session.
package provider

import (
	"sync"

	"github.com/zibamira/CTCoral-CoDA/table"
)

// DataProvider yields the two base tables and persists selection/colormap
// changes outward. Reload must leave the previously returned tables
// untouched when it fails; the session keeps serving the last known-good
// state in that case.
type DataProvider interface {
	// Reload refreshes the provider's internal state. On success the
	// provider notifies its change listeners exactly once; on failure not at
	// all.
	Reload() error

	// Vertices and Edges return the current table snapshots.
	Vertices() *table.Table
	Edges() *table.Table

	// Writebacks keep external tools in sync with the session.
	WriteVertexSelection(indices []int) error
	WriteEdgeSelection(indices []int) error
	WriteVertexColormap(glyphs []string) error
	WriteEdgeColormap(glyphs []string) error

	// OnChange registers a listener invoked when the underlying resources
	// changed. Listeners may be called from arbitrary goroutines; the
	// session marshals them onto its update loop.
	OnChange(listener func())
}

// LabelPaletteProvider is implemented by providers whose data is a label
// field with a prescribed colormap. The session uses the palette for the
// vertex color mapping so both sides render identical label colors.
type LabelPaletteProvider interface {
	LabelPalette() []string
}

// Base carries the listener bookkeeping shared by all providers.
type Base struct {
	mu        sync.Mutex
	listeners []func()

	vertices *table.Table
	edges    *table.Table
}

// NewBase returns a Base with empty tables.
func NewBase() Base {
	return Base{
		vertices: table.New(),
		edges:    table.New(),
	}
}

// Vertices returns the current vertex table snapshot.
func (b *Base) Vertices() *table.Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vertices
}

// Edges returns the current edge table snapshot.
func (b *Base) Edges() *table.Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.edges
}

// SetTables replaces both table snapshots.
func (b *Base) SetTables(vertices, edges *table.Table) {
	b.mu.Lock()
	b.vertices = vertices
	b.edges = edges
	b.mu.Unlock()
}

// OnChange registers a change listener.
func (b *Base) OnChange(listener func()) {
	b.mu.Lock()
	b.listeners = append(b.listeners, listener)
	b.mu.Unlock()
}

// NotifyChange invokes all registered listeners. Providers call this after
// a successful reload or when a watched resource changed on disk.
func (b *Base) NotifyChange() {
	b.mu.Lock()
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// WriteVertexSelection is a no-op default; providers that persist
// selections override it.
func (b *Base) WriteVertexSelection(indices []int) error { return nil }

// WriteEdgeSelection is a no-op default.
func (b *Base) WriteEdgeSelection(indices []int) error { return nil }

// WriteVertexColormap is a no-op default.
func (b *Base) WriteVertexColormap(glyphs []string) error { return nil }

// WriteEdgeColormap is a no-op default.
func (b *Base) WriteEdgeColormap(glyphs []string) error { return nil }
