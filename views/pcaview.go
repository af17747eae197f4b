package views

import (
	"github.com/zibamira/CTCoral-CoDA/embed"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// PCA projects the chosen scalar columns onto their first two principal
// components and shows the embedding as a scatter plot, with the explained
// variance per component as a bar chart.
type PCA struct {
	base

	agg     *embed.Aggregator
	reducer *embed.PCA

	// recompute requests a refit on the next reload. Set when the column
	// choice changes; plain data reloads keep the previous embedding.
	recompute bool
}

func init() {
	MustRegister(KindPCA, func(app App) View {
		reducer := embed.NewPCA()
		agg := embed.New(reducer)
		agg.Standardize = true
		return &PCA{base: base{app}, agg: agg, reducer: reducer}
	})
}

func (v *PCA) Kind() string { return KindPCA }

// SetColumns replaces the input columns and schedules a refit.
func (v *PCA) SetColumns(columns []string) {
	v.agg.Columns = columns
	v.recompute = true
}

// ExplainedVariance returns the per-component variance ratios of the last
// fit.
func (v *PCA) ExplainedVariance() []float64 {
	return v.reducer.ExplainedVarianceRatio()
}

func (v *PCA) ReloadDF() error {
	// Drop columns that vanished from the table.
	vertices := v.app.Vertices()
	var kept []string
	for _, name := range v.agg.Columns {
		if vertices.Has(name) {
			kept = append(kept, name)
		}
	}
	if len(kept) != len(v.agg.Columns) {
		v.agg.Columns = kept
		v.recompute = true
	}

	// Reloads re-add the cached embedding; only a column change or an
	// explicit request refits.
	if !v.recompute {
		ok, err := v.agg.Reapply(vertices)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	if len(v.agg.Columns) == 0 {
		v.agg.Columns = table.ScalarColumns(vertices, false)
	}

	applied, err := v.agg.Apply(vertices)
	if err != nil {
		return err
	}
	if applied {
		v.recompute = false
	}
	return nil
}

func (v *PCA) ReloadCDS() error { return nil }
