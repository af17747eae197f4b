package views

import (
	"github.com/zibamira/CTCoral-CoDA/histogram"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Histogram shows the stacked selected/unselected spine of one scalar
// vertex column.
type Histogram struct {
	base

	agg    *histogram.Aggregator
	result *histogram.Result
}

func init() {
	MustRegister(KindHistogram, func(app App) View {
		return &Histogram{base: base{app}, agg: histogram.New(app.ColorMap())}
	})
}

func (v *Histogram) Kind() string { return KindHistogram }

// Aggregator exposes the column and bin configuration.
func (v *Histogram) Aggregator() *histogram.Aggregator { return v.agg }

// Result returns the last computed histogram, nil while the column choice
// does not resolve.
func (v *Histogram) Result() *histogram.Result { return v.result }

func (v *Histogram) ReloadDF() error { return nil }

func (v *Histogram) ReloadCDS() error {
	scalar := table.ScalarColumns(v.app.Vertices(), true)
	v.agg.Column = fallbackColumn(v.agg.Column, scalar, 0)
	return v.Recompute()
}

// Recompute rebins against the current selection. Also called on selection
// and factor map changes.
func (v *Histogram) Recompute() error {
	result, err := v.agg.Compute(v.app.Vertices(), v.app.VertexSink().Selected())
	if err != nil {
		return err
	}
	if result != nil {
		v.result = result
	}
	return nil
}
