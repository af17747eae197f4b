// Package selection implements the shared row-index sets that link every
// view. A selection is scoped to one table (vertices or edges) and stores
// global row indices.
//
// The empty selection means "nothing selected" and is treated by every
// aggregation as equivalent to "everything selected". This asymmetry is a
// deliberate, load-bearing convention: the selected/unselected histogram
// pair, the flower glyph and the statistics table all rely on it for correct
// symmetry between the two subsets.
package selection

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Set is an unordered set of row indices into one table.
type Set struct {
	bm *roaring.Bitmap
}

// New returns an empty selection.
func New() *Set {
	return &Set{bm: roaring.New()}
}

// FromIndices builds a selection from row indices. Negative indices are
// ignored.
func FromIndices(indices []int) *Set {
	s := New()
	for _, i := range indices {
		if i >= 0 {
			s.bm.Add(uint32(i))
		}
	}
	return s
}

// Add inserts a row index.
func (s *Set) Add(i int) {
	if i >= 0 {
		s.bm.Add(uint32(i))
	}
}

// Contains reports whether the row index is selected.
func (s *Set) Contains(i int) bool {
	return i >= 0 && s.bm.Contains(uint32(i))
}

// Cardinality returns the number of selected rows.
func (s *Set) Cardinality() int {
	return int(s.bm.GetCardinality())
}

// IsEmpty reports whether nothing is selected.
func (s *Set) IsEmpty() bool {
	return s.bm.IsEmpty()
}

// Indices returns the selected row indices in ascending order.
func (s *Set) Indices() []int {
	out := make([]int, 0, s.Cardinality())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{bm: s.bm.Clone()}
}

// Equal reports whether two selections contain the same indices.
func (s *Set) Equal(other *Set) bool {
	return s.bm.Equals(other.bm)
}

// Clear removes all indices.
func (s *Set) Clear() {
	s.bm.Clear()
}

// Mask returns a boolean mask of length n, true where the row is selected.
// Indices beyond n are ignored.
func (s *Set) Mask(n int) []bool {
	mask := make([]bool, n)
	it := s.bm.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i < n {
			mask[i] = true
		}
	}
	return mask
}

// EffectiveMask returns the selected and unselected masks for a table of n
// rows, applying the empty-means-all convention: an empty selection selects
// every row and leaves the complement empty.
func EffectiveMask(s *Set, n int) (selected, unselected []bool) {
	selected = make([]bool, n)
	unselected = make([]bool, n)

	if s == nil || s.IsEmpty() {
		for i := range selected {
			selected[i] = true
		}
		return selected, unselected
	}

	for i := range selected {
		if s.Contains(i) {
			selected[i] = true
		} else {
			unselected[i] = true
		}
	}
	return selected, unselected
}
