package table

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochMonotonic(t *testing.T) {
	a := New()
	b := New()
	assert.Greater(t, b.Epoch(), a.Epoch())

	c := a.Clone()
	assert.Greater(t, c.Epoch(), b.Epoch())
}

func TestSetColumnRowCountMismatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetNumbers("a", []float64{1, 2, 3}))
	err := tbl.SetNumbers("b", []float64{1, 2})
	require.Error(t, err)
	assert.Equal(t, 3, tbl.NumRows())
	assert.False(t, tbl.Has("b"))
}

func TestColumnFilters(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetNumbers("volume", []float64{1.5, 2.5}))
	require.NoError(t, tbl.SetNumbers("generation", []float64{1, 2}))
	require.NoError(t, tbl.SetStrings("species", []string{"a", "b"}))
	require.NoError(t, tbl.SetNumbers("coda:color:id", []float64{0, 0}))
	require.NoError(t, tbl.SetNumbers("sparse", []float64{1, math.NaN()}))

	assert.Equal(t, []string{"generation", "sparse", "species", "volume"}, DataColumns(tbl))
	assert.Equal(t, []string{"generation", "sparse", "volume"}, ScalarColumns(tbl, true))
	assert.Equal(t, []string{"generation", "volume"}, ScalarColumns(tbl, false))
	assert.Equal(t, []string{"species"}, CategoricalColumns(tbl))
	assert.Equal(t, []string{"generation"}, IntegralColumns(tbl))
	assert.Equal(t, []string{"species", "generation"}, LabelColumns(tbl))
}

func TestNatsorted(t *testing.T) {
	got := Natsorted([]string{"item2", "item10", "item1"})
	assert.Equal(t, []string{"item1", "item2", "item10"}, got)
}

func TestColorColumns(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetStrings("color", []string{"#FF0000", "#00ff00"}))
	require.NoError(t, tbl.SetStrings("rgba", []string{"#FF000080", "#00FF0080"}))
	require.NoError(t, tbl.SetStrings("species", []string{"#nope", "b"}))
	assert.Equal(t, []string{"color", "rgba"}, ColorColumns(tbl))
}

func TestAddPrefixKeepsReservedColumns(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetNumbers("x", []float64{1}))
	require.NoError(t, tbl.SetNumbers("coda:color:id", []float64{0}))

	out := tbl.AddPrefix("corals")
	assert.True(t, out.Has("corals:x"))
	assert.True(t, out.Has("coda:color:id"))
	assert.False(t, out.Has("x"))
}

func TestConcatRowMismatch(t *testing.T) {
	a := New()
	require.NoError(t, a.SetNumbers("x", []float64{1, 2}))
	b := New()
	require.NoError(t, b.SetNumbers("y", []float64{1, 2, 3}))
	require.Error(t, a.Concat(b))
}

func TestReadCSVInference(t *testing.T) {
	src := "index,volume,label\n0,1.5,a\n1,,b\n2,3.25,c\n"
	tbl, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	require.Equal(t, KindNumber, tbl.Column("volume").Kind)
	assert.True(t, math.IsNaN(tbl.Column("volume").Numbers[1]))
	assert.True(t, tbl.Column("index").IsIntegral())
	assert.Equal(t, KindString, tbl.Column("label").Kind)
}

func TestReadCSVDemotesMixedColumn(t *testing.T) {
	src := "v\n1.5\nabc\n"
	tbl, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, KindString, tbl.Column("v").Kind)
}
