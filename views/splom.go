package views

import (
	"math"

	"github.com/zibamira/CTCoral-CoDA/histogram"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// SPLOM is the scatterplot matrix: every configured column against every
// other, with a stacked histogram on the diagonal. All plots in a row or
// column share the same axis range, derived once per column here.
type SPLOM struct {
	base

	// Columns are the matrix axes. Columns missing after a reload are
	// dropped.
	Columns []string

	// NBins is the diagonal histogram resolution.
	NBins int

	ranges    map[string][2]float64
	diagonals map[string]*histogram.Result
}

func init() {
	MustRegister(KindSPLOM, func(app App) View {
		return &SPLOM{base: base{app}, NBins: 10}
	})
}

func (v *SPLOM) Kind() string { return KindSPLOM }

func (v *SPLOM) ReloadDF() error { return nil }

// Ranges returns the shared per-column axis ranges of the last reload.
func (v *SPLOM) Ranges() map[string][2]float64 { return v.ranges }

// Diagonal returns the stacked histogram of one matrix column.
func (v *SPLOM) Diagonal(column string) *histogram.Result {
	return v.diagonals[column]
}

func (v *SPLOM) ReloadCDS() error {
	vertices := v.app.Vertices()
	scalar := make(map[string]struct{})
	for _, name := range table.ScalarColumns(vertices, true) {
		scalar[name] = struct{}{}
	}

	var kept []string
	for _, name := range v.Columns {
		if _, ok := scalar[name]; ok {
			kept = append(kept, name)
		}
	}
	v.Columns = kept
	return v.Recompute()
}

// Recompute re-derives the shared ranges and diagonal histograms. Also
// called on selection and factor map changes.
func (v *SPLOM) Recompute() error {
	vertices := v.app.Vertices()

	v.ranges = make(map[string][2]float64, len(v.Columns))
	v.diagonals = make(map[string]*histogram.Result, len(v.Columns))

	sink := v.app.VertexSink()
	for _, name := range v.Columns {
		values := vertices.Numbers(name)
		lo, hi := columnRange(values)
		v.ranges[name] = [2]float64{lo, hi}

		agg := histogram.New(v.app.ColorMap())
		agg.Column = name
		agg.NBins = v.NBins
		agg.RangeMin = &lo
		agg.RangeMax = &hi
		result, err := agg.Compute(vertices, sink.Selected())
		if err != nil {
			return err
		}
		v.diagonals[name] = result
	}
	return nil
}

// columnRange is the NaN-tolerant min/max, padded by 5% so markers at the
// extremes stay visible.
func columnRange(values []float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, x := range values {
		if math.IsNaN(x) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = 0.5
	}
	return lo - pad, hi + pad
}
