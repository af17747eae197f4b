package views

import (
	"math"

	"github.com/zibamira/CTCoral-CoDA/selection"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Petal is one normalized column summary of the flower glyph.
type Petal struct {
	Column string
	// Mean is the selection mean, normalized into [0, 1] against the whole
	// table min/max of the column.
	Mean float64
}

// Flower summarizes the current selection as a flower glyph: one petal per
// scalar column, its length the normalized selection mean. It gives a quick
// visual fingerprint of what distinguishes the selected corals.
type Flower struct {
	base

	petals []Petal
}

func init() {
	MustRegister(KindFlower, func(app App) View { return &Flower{base: base{app}} })
}

func (v *Flower) Kind() string { return KindFlower }

func (v *Flower) ReloadDF() error { return nil }

func (v *Flower) ReloadCDS() error {
	return v.Recompute()
}

// Petals returns the last computed glyph.
func (v *Flower) Petals() []Petal { return v.petals }

// Recompute rebuilds the petals for the current selection. Also called on
// every selection change.
func (v *Flower) Recompute() error {
	vertices := v.app.Vertices()
	sel := v.app.VertexSink().Selected()
	mask, _ := selection.EffectiveMask(sel, vertices.NumRows())

	columns := table.ScalarColumns(vertices, true)
	petals := make([]Petal, 0, len(columns))
	for _, name := range columns {
		values := vertices.Numbers(name)

		lo := math.Inf(1)
		hi := math.Inf(-1)
		sum := 0.0
		count := 0
		for i, x := range values {
			if math.IsNaN(x) {
				continue
			}
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			if mask[i] {
				sum += x
				count++
			}
		}
		if count == 0 || math.IsInf(lo, 1) {
			continue
		}

		mean := sum / float64(count)
		normalized := 0.5
		if hi > lo {
			normalized = (mean - lo) / (hi - lo)
		}
		petals = append(petals, Petal{Column: name, Mean: normalized})
	}
	v.petals = petals
	return nil
}
