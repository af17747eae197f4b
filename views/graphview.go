package views

import (
	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/graphlayout"
)

// Graph renders the colony framework: vertices at their layout positions,
// edges as directed arrows between them.
type Graph struct {
	base

	layout *graphlayout.Aggregator
	ready  bool
}

func init() {
	MustRegister(KindGraph, func(app App) View {
		return &Graph{base: base{app}, layout: graphlayout.NewAggregator()}
	})
}

func (v *Graph) Kind() string { return KindGraph }

// Layout exposes the aggregator for column and algorithm configuration.
func (v *Graph) Layout() *graphlayout.Aggregator { return v.layout }

// ReloadDF rebuilds the graph and writes the layout columns. An edge table
// without recognizable source/target columns leaves the view idle until the
// columns are configured; every other failure aborts the reload.
func (v *Graph) ReloadDF() error {
	vertices := v.app.Vertices()
	edges := v.app.Edges()

	if v.layout.SourceColumn == "" || v.layout.TargetColumn == "" {
		source, target, err := graphlayout.DetectSourceTarget(edges)
		if errors.Is(err, errors.ErrUndetectedColumns) {
			v.app.Logger().Warnw("no source/target columns found, graph view idle")
			v.ready = false
			return nil
		}
		if err != nil {
			return err
		}
		v.layout.SourceColumn = source
		v.layout.TargetColumn = target
	}

	changed, err := v.layout.Rebuild(vertices, edges)
	if err != nil {
		return err
	}

	if v.layout.Algorithm == "" {
		v.layout.Algorithm = v.layout.DefaultAlgorithm()
	}

	// Attribute-only reloads keep the previous layout so the picture does
	// not jump under the user.
	if changed || len(v.layout.Positions()) != vertices.NumRows() {
		if err := v.layout.Layout(vertices.NumRows()); err != nil {
			return err
		}
	}
	if err := v.layout.Apply(vertices, edges); err != nil {
		return err
	}
	v.ready = true
	return nil
}

func (v *Graph) ReloadCDS() error { return nil }

// Ready reports whether the last reload produced a usable layout.
func (v *Graph) Ready() bool { return v.ready }
