package views

import (
	"github.com/zibamira/CTCoral-CoDA/embed"
)

// umapReducer is the pluggable UMAP implementation. Nil by default: the
// view stays idle until a reducer is installed, since no suitable
// in-process implementation ships with the dashboard.
var umapReducer embed.Reducer

// SetUMAPReducer installs the reducer backing the UMAP view.
func SetUMAPReducer(r embed.Reducer) { umapReducer = r }

// UMAP shows a nonlinear embedding of the chosen columns. It shares the
// aggregation path with the PCA view but requires an external reducer.
type UMAP struct {
	base

	agg   *embed.Aggregator
	ready bool

	// recompute requests a refit on the next reload. Plain data reloads
	// re-add the cached embedding.
	recompute bool
}

func init() {
	MustRegister(KindUMAP, func(app App) View {
		agg := embed.New(umapReducer)
		agg.Standardize = true
		return &UMAP{base: base{app}, agg: agg}
	})
}

func (v *UMAP) Kind() string { return KindUMAP }

// Ready reports whether a reducer is installed and an embedding exists.
func (v *UMAP) Ready() bool { return v.ready }

// SetColumns replaces the input columns and schedules a refit.
func (v *UMAP) SetColumns(columns []string) {
	v.agg.Columns = columns
	v.recompute = true
}

func (v *UMAP) ReloadDF() error {
	if umapReducer == nil {
		v.ready = false
		return nil
	}
	v.agg.SetReducer(umapReducer)

	if !v.recompute {
		ok, err := v.agg.Reapply(v.app.Vertices())
		if err != nil {
			return err
		}
		if ok {
			v.ready = true
			return nil
		}
	}

	applied, err := v.agg.Apply(v.app.Vertices())
	if err != nil {
		return err
	}
	if applied {
		v.recompute = false
	}
	v.ready = applied
	return nil
}

func (v *UMAP) ReloadCDS() error { return nil }
