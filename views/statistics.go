package views

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/zibamira/CTCoral-CoDA/selection"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// ColumnStats summarizes one scalar column over the current selection.
type ColumnStats struct {
	Column string
	Count  int
	Unique int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Statistics shows the descriptive statistics of every scalar column,
// restricted to the selected rows (empty selection means all rows).
type Statistics struct {
	base

	rows []ColumnStats
}

func init() {
	MustRegister(KindStatistics, func(app App) View { return &Statistics{base: base{app}} })
}

func (v *Statistics) Kind() string { return KindStatistics }

func (v *Statistics) ReloadDF() error { return nil }

func (v *Statistics) ReloadCDS() error { return v.Recompute() }

// Rows returns the last computed summary.
func (v *Statistics) Rows() []ColumnStats { return v.rows }

// Recompute rebuilds the summary. Also called on selection changes.
func (v *Statistics) Recompute() error {
	vertices := v.app.Vertices()
	sel := v.app.VertexSink().Selected()
	mask, _ := selection.EffectiveMask(sel, vertices.NumRows())

	var rows []ColumnStats
	for _, name := range table.ScalarColumns(vertices, true) {
		values := vertices.Numbers(name)

		var kept []float64
		unique := make(map[float64]struct{})
		for i, x := range values {
			if !mask[i] || math.IsNaN(x) {
				continue
			}
			kept = append(kept, x)
			unique[x] = struct{}{}
		}
		if len(kept) == 0 {
			continue
		}
		sort.Float64s(kept)

		mean, std := stat.MeanStdDev(kept, nil)
		if len(kept) < 2 {
			std = 0
		}
		rows = append(rows, ColumnStats{
			Column: name,
			Count:  len(kept),
			Unique: len(unique),
			Mean:   mean,
			Std:    std,
			Min:    kept[0],
			Q25:    stat.Quantile(0.25, stat.Empirical, kept, nil),
			Median: stat.Quantile(0.5, stat.Empirical, kept, nil),
			Q75:    stat.Quantile(0.75, stat.Empirical, kept, nil),
			Max:    kept[len(kept)-1],
		})
	}
	v.rows = rows
	return nil
}
