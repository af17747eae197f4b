// Package histogram computes the stacked selected/unselected histogram
// shown in the histogram view and on the SPLOM diagonal.
//
// For one numeric column, a 2D histogram over (value, factor id) is
// computed twice: once for the selected rows and once for the complement.
// Both share the bin edges of the whole table so the two halves are
// directly comparable. The unselected stack is mirrored below the axis,
// producing the spine layout of the plot.
package histogram

import (
	"math"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/factor"
	"github.com/zibamira/CTCoral-CoDA/selection"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Series holds one renderable quad series: a rectangle per (bin, factor)
// pair, in the layout the rendering layer consumes directly.
type Series struct {
	Left   []float64 `json:"left"`
	Right  []float64 `json:"right"`
	Top    []float64 `json:"top"`
	Bottom []float64 `json:"bottom"`
	Count  []float64 `json:"count"`
	Ratio  []float64 `json:"ratio"`
	Label  []string  `json:"label"`
	Color  []string  `json:"color"`
}

// Result is one computed histogram, tagged with the epoch it was computed
// against.
type Result struct {
	// All is the overall histogram, one unstacked quad per bin.
	All Series
	// Selected is stacked by factor, ascending from zero.
	Selected Series
	// Unselected is stacked by factor, mirrored descending from zero.
	Unselected Series

	// Edges holds the nbins+1 shared bin edges.
	Edges []float64

	// MaxCount is the largest overall bin count, for symmetric axis scaling.
	MaxCount float64

	// Epoch of the table this result was computed from.
	Epoch uint64
}

// Aggregator bins one numeric column, stacked by the factors of a factor
// map. Recomputation is triggered by the owning view on selection change,
// factor map update, column change and table epoch change.
type Aggregator struct {
	// Column is the binned numeric column.
	Column string

	// NBins is the number of bins.
	NBins int

	// RangeMin/RangeMax fix the bin range explicitly. When nil the range is
	// the min/max of the whole column, never of the selection: both halves
	// of the spine must share their bin edges.
	RangeMin *float64
	RangeMax *float64

	fm *factor.FactorMap
}

// New creates an aggregator stacked by the given factor map.
func New(fm *factor.FactorMap) *Aggregator {
	return &Aggregator{
		NBins: 10,
		fm:    fm,
	}
}

// Compute bins the column for the current selection. A column that is
// absent or not numeric yields a nil result and no error: the view simply
// does not update (documented aggregation skip). A factor map computed
// against a different table epoch is a defect.
func (a *Aggregator) Compute(tbl *table.Table, sel *selection.Set) (*Result, error) {
	values := tbl.Numbers(a.Column)
	if values == nil {
		return nil, nil
	}
	if a.fm.Epoch() != tbl.Epoch() {
		return nil, errors.Wrapf(errors.ErrStaleEpoch,
			"factor map %q is at epoch %d, table at %d", a.fm.Name, a.fm.Epoch(), tbl.Epoch())
	}

	nbins := a.NBins
	if nbins < 1 {
		nbins = 1
	}

	xmin, xmax := a.binRange(values)
	edges := linspace(xmin, xmax, nbins+1)

	nfactors := len(a.fm.Factors)
	ids := a.fm.IDColumn

	selectedMask, unselectedMask := selection.EffectiveMask(sel, len(values))

	hist2dSelected := hist2d(values, ids, selectedMask, xmin, xmax, nbins, nfactors)
	hist2dUnselected := hist2d(values, ids, unselectedMask, xmin, xmax, nbins, nfactors)

	// Overall histogram, disregarding factor and selection.
	all := make([]float64, nbins)
	maxCount := 0.0
	for bin := 0; bin < nbins; bin++ {
		for f := 0; f < nfactors; f++ {
			all[bin] += hist2dSelected[bin][f] + hist2dUnselected[bin][f]
		}
		if all[bin] > maxCount {
			maxCount = all[bin]
		}
	}

	result := &Result{
		Edges:    edges,
		MaxCount: maxCount,
		Epoch:    tbl.Epoch(),
	}
	result.All = a.allSeries(all, edges)
	result.Selected = a.stackedSeries(hist2dSelected, all, edges, false)
	result.Unselected = a.stackedSeries(hist2dUnselected, all, edges, true)
	return result, nil
}

func (a *Aggregator) binRange(values []float64) (float64, float64) {
	xmin := math.Inf(1)
	xmax := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xmin = math.Min(xmin, v)
		xmax = math.Max(xmax, v)
	}
	if a.RangeMin != nil {
		xmin = *a.RangeMin
	}
	if a.RangeMax != nil {
		xmax = *a.RangeMax
	}
	if math.IsInf(xmin, 1) || math.IsInf(xmax, -1) {
		xmin, xmax = 0, 1
	}
	if xmin == xmax {
		// Degenerate range, widen it so the single bin still renders.
		xmin -= 0.5
		xmax += 0.5
	}
	return xmin, xmax
}

// hist2d counts (value, factor id) pairs of the masked rows into
// nbins x nfactors cells. Rows with NaN values or out-of-range values are
// excluded, matching the numpy histogram semantics of the histogram plot.
func hist2d(values, ids []float64, mask []bool, xmin, xmax float64, nbins, nfactors int) [][]float64 {
	counts := make([][]float64, nbins)
	for i := range counts {
		counts[i] = make([]float64, nfactors)
	}

	width := (xmax - xmin) / float64(nbins)
	for i, v := range values {
		if !mask[i] || math.IsNaN(v) || v < xmin || v > xmax {
			continue
		}
		bin := int((v - xmin) / width)
		if bin >= nbins {
			// The maximum is inclusive in the final bin.
			bin = nbins - 1
		}
		f := int(ids[i])
		if f < 0 || f >= nfactors {
			continue
		}
		counts[bin][f]++
	}
	return counts
}

func (a *Aggregator) allSeries(all, edges []float64) Series {
	nbins := len(all)
	s := Series{
		Left:   edges[:nbins],
		Right:  edges[1:],
		Top:    all,
		Bottom: make([]float64, nbins),
		Count:  all,
		Ratio:  make([]float64, nbins),
		Label:  make([]string, nbins),
		Color:  make([]string, nbins),
	}
	for i := range s.Label {
		s.Label[i] = "all"
		s.Color[i] = "grey"
		if all[i] > 0 {
			s.Ratio[i] = 1.0
		}
	}
	return s
}

// stackedSeries lays one quad per (factor, bin) pair. The selected stack
// grows upward from zero, the unselected stack mirrors downward.
func (a *Aggregator) stackedSeries(hist [][]float64, all, edges []float64, mirrored bool) Series {
	nbins := len(all)
	nfactors := len(a.fm.Factors)

	var s Series
	level := make([]float64, nbins)

	for f := 0; f < nfactors; f++ {
		label := a.fm.Factors[f]
		color := a.fm.GlyphMap[label]

		for bin := 0; bin < nbins; bin++ {
			count := hist[bin][f]

			var top, bottom float64
			if mirrored {
				top = level[bin]
				bottom = top - count
				level[bin] = bottom
			} else {
				bottom = level[bin]
				top = bottom + count
				level[bin] = top
			}

			ratio := 0.0
			if all[bin] > 0 {
				ratio = count / all[bin]
			}

			s.Left = append(s.Left, edges[bin])
			s.Right = append(s.Right, edges[bin+1])
			s.Top = append(s.Top, top)
			s.Bottom = append(s.Bottom, bottom)
			s.Count = append(s.Count, count)
			s.Ratio = append(s.Ratio, ratio)
			s.Label = append(s.Label, label)
			s.Color = append(s.Color, color)
		}
	}
	return s
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
