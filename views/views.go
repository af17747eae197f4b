// Package views holds the view panels of the dashboard. Each view kind is
// registered in a closed registry that is validated at startup; opening an
// unknown kind is a configuration error, not a silent fallback.
package views

import (
	"sort"

	"go.uber.org/zap"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/factor"
	"github.com/zibamira/CTCoral-CoDA/render"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// The built-in view kinds.
const (
	KindNone        = "none"
	KindScatter     = "scatter"
	KindSPLOM       = "splom"
	KindSpreadsheet = "spreadsheet"
	KindGraph       = "graph"
	KindFlower      = "flower"
	KindHistogram   = "histogram"
	KindLegend      = "legend"
	KindMap         = "map"
	KindPCA         = "pca"
	KindUMAP        = "umap"
	KindStatistics  = "statistics"
)

// App is the session surface the views work against.
type App interface {
	Vertices() *table.Table
	Edges() *table.Table
	VertexSink() *render.Source
	EdgeSink() *render.Source
	ColorMap() *factor.FactorMap
	MarkerMap() *factor.FactorMap
	EdgeColorMap() *factor.FactorMap
	Logger() *zap.SugaredLogger
}

// View is one dashboard panel. During a reload the session first calls
// ReloadDF on every view, then replaces the sinks in bulk, then calls
// ReloadCDS on every view. Derived columns therefore always reach the sinks
// in the same replace as the data they were computed from.
type View interface {
	Kind() string

	// ReloadDF adds the view-owned derived columns to the tables.
	ReloadDF() error

	// ReloadCDS refreshes the render state after the sinks were replaced.
	ReloadCDS() error
}

// Constructor builds a view bound to the app.
type Constructor func(app App) View

var registry = map[string]Constructor{}

// Register adds a view kind. Registering a kind twice is a programming
// error surfaced at startup.
func Register(kind string, ctor Constructor) error {
	if _, ok := registry[kind]; ok {
		return errors.NewConfigurationError("view kind %q registered twice", kind)
	}
	registry[kind] = ctor
	return nil
}

// MustRegister panics on a duplicate kind. Used from init.
func MustRegister(kind string, ctor Constructor) {
	if err := Register(kind, ctor); err != nil {
		panic(err)
	}
}

// New instantiates a registered view kind.
func New(kind string, app App) (View, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, errors.NewConfigurationError("unknown view kind %q", kind)
	}
	return ctor(app), nil
}

// Kinds lists the registered view kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// base carries the app handle shared by all views.
type base struct {
	app App
}

// None is the empty placeholder panel.
type None struct{ base }

func init() {
	MustRegister(KindNone, func(app App) View { return &None{base{app}} })
}

func (v *None) Kind() string     { return KindNone }
func (v *None) ReloadDF() error  { return nil }
func (v *None) ReloadCDS() error { return nil }
