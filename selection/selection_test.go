package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromIndicesDropsNegatives(t *testing.T) {
	s := FromIndices([]int{3, -1, 1, 3})
	assert.Equal(t, []int{1, 3}, s.Indices())
	assert.Equal(t, 2, s.Cardinality())
}

func TestEqualAndClone(t *testing.T) {
	a := FromIndices([]int{1, 2, 5})
	b := a.Clone()
	require.True(t, a.Equal(b))

	b.Add(9)
	assert.False(t, a.Equal(b))
	assert.False(t, a.Contains(9))
}

func TestEffectiveMaskEmptyMeansAll(t *testing.T) {
	sel, unsel := EffectiveMask(New(), 4)
	assert.Equal(t, []bool{true, true, true, true}, sel)
	assert.Equal(t, []bool{false, false, false, false}, unsel)

	// nil behaves like empty
	sel, unsel = EffectiveMask(nil, 2)
	assert.Equal(t, []bool{true, true}, sel)
	assert.Equal(t, []bool{false, false}, unsel)
}

func TestEffectiveMaskPartition(t *testing.T) {
	s := FromIndices([]int{0, 2})
	sel, unsel := EffectiveMask(s, 4)
	assert.Equal(t, []bool{true, false, true, false}, sel)
	assert.Equal(t, []bool{false, true, false, true}, unsel)

	// The two masks partition the rows.
	for i := range sel {
		assert.True(t, sel[i] != unsel[i])
	}
}

func TestMaskIgnoresOutOfRange(t *testing.T) {
	s := FromIndices([]int{1, 10})
	mask := s.Mask(3)
	assert.Equal(t, []bool{false, true, false}, mask)
}
