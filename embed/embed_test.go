package embed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zibamira/CTCoral-CoDA/table"
)

func TestPCARecoversDominantAxis(t *testing.T) {
	tbl := table.New()
	// Strongly correlated pair: the first component carries nearly all
	// variance.
	require.NoError(t, tbl.SetNumbers("a", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, tbl.SetNumbers("b", []float64{2.1, 3.9, 6.2, 7.8, 10.1, 11.9}))

	pca := NewPCA()
	agg := New(pca)
	agg.Columns = []string{"a", "b"}

	applied, err := agg.Apply(tbl)
	require.NoError(t, err)
	require.True(t, applied)

	require.True(t, tbl.Has("embedding:feature:0"))
	require.True(t, tbl.Has("embedding:feature:1"))

	ratios := pca.ExplainedVarianceRatio()
	require.Len(t, ratios, 2)
	assert.Greater(t, ratios[0], 0.99)
	assert.InDelta(t, 1.0, ratios[0]+ratios[1], 1e-9)
}

func TestSkipWithoutColumns(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("a", []float64{1, 2, 3}))

	agg := New(NewPCA())
	applied, err := agg.Apply(tbl)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, tbl.Has("embedding:feature:0"))
}

func TestSkipOnNaN(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("a", []float64{1, math.NaN(), 3}))
	require.NoError(t, tbl.SetNumbers("b", []float64{1, 2, 3}))

	agg := New(NewPCA())
	agg.Columns = []string{"a", "b"}

	applied, err := agg.Apply(tbl)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestStandardizeEqualizesScales(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("small", []float64{0.001, 0.002, 0.003, 0.004}))
	require.NoError(t, tbl.SetNumbers("large", []float64{1000, 3000, 2000, 4000}))

	pca := NewPCA()
	agg := New(pca)
	agg.Columns = []string{"small", "large"}
	agg.Standardize = true

	applied, err := agg.Apply(tbl)
	require.NoError(t, err)
	require.True(t, applied)

	// With standardization neither column dominates, so the first component
	// cannot explain everything on its own unless they are perfectly
	// correlated. "small" is monotone, "large" is not.
	ratios := pca.ExplainedVarianceRatio()
	assert.Less(t, ratios[0], 1.0)
	assert.Greater(t, ratios[0], 0.5)
}

func TestComponentsClampedToFeatures(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("only", []float64{1, 2, 3, 4}))

	agg := New(NewPCA())
	agg.Columns = []string{"only"}
	agg.Components = 2

	applied, err := agg.Apply(tbl)
	require.NoError(t, err)
	require.True(t, applied)
	assert.True(t, tbl.Has("embedding:feature:0"))
	assert.False(t, tbl.Has("embedding:feature:1"))
}
