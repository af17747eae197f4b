package factor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/table"
)

type recordingSink struct {
	columns map[string][]any
}

func newRecordingSink() *recordingSink {
	return &recordingSink{columns: make(map[string][]any)}
}

func (s *recordingSink) SetColumn(name string, values []any) {
	s.columns[name] = values
}

func TestEmptyPaletteRejected(t *testing.T) {
	_, err := New("coda:color", nil, ModeCycle)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))

	_, err = New("coda:color", []string{"blue"}, Mode(42))
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestNoColumnYieldsNoneFactor(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("v", []float64{1, 2, 3, 4, 5}))

	m := MustNew("coda:color", []string{"blue", "green"}, ModeCycle)
	require.NoError(t, m.Recompute(tbl))

	assert.Equal(t, []string{"None"}, m.Factors)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, m.IDColumn)
	assert.Equal(t, []string{"blue", "blue", "blue", "blue", "blue"}, m.GlyphColumn)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, tbl.Numbers("coda:color:id"))
	assert.Equal(t, m.GlyphColumn, tbl.Strings("coda:color:glyph"))
}

func TestNaturalSortOrder(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetStrings("label", []string{"item2", "item10", "item1"}))

	m := MustNew("coda:color", []string{"a", "b", "c", "d"}, ModeCycle)
	m.ColumnName = "label"
	require.NoError(t, m.Recompute(tbl))

	assert.Equal(t, []string{"item1", "item2", "item10"}, m.Factors)
	assert.Equal(t, 0, m.IDMap["item1"])
	assert.Equal(t, 1, m.IDMap["item2"])
	assert.Equal(t, 2, m.IDMap["item10"])
}

func TestFactorStabilityUnderRowReorder(t *testing.T) {
	a := table.New()
	require.NoError(t, a.SetStrings("label", []string{"x", "y", "z", "y"}))
	b := table.New()
	require.NoError(t, b.SetStrings("label", []string{"z", "y", "x", "x"}))

	ma := MustNew("coda:color", []string{"1", "2"}, ModeCycle)
	ma.ColumnName = "label"
	require.NoError(t, ma.Recompute(a))

	mb := MustNew("coda:color", []string{"1", "2"}, ModeCycle)
	mb.ColumnName = "label"
	require.NoError(t, mb.Recompute(b))

	assert.Equal(t, ma.Factors, mb.Factors)
	assert.Equal(t, ma.IDMap, mb.IDMap)
	assert.Equal(t, ma.GlyphMap, mb.GlyphMap)
}

func TestPaletteWrapModes(t *testing.T) {
	palette := []string{"p0", "p1", "p2"}

	cycle := MustNew("m", palette, ModeCycle)
	repeat := MustNew("m", palette, ModeRepeatLast)

	for i := 0; i < 8; i++ {
		assert.Equal(t, palette[i%3], cycle.Glyph(i), "cycle glyph %d", i)
		want := palette[2]
		if i < 3 {
			want = palette[i]
		}
		assert.Equal(t, want, repeat.Glyph(i), "repeat-last glyph %d", i)
	}
}

func TestNaNFactorSortsLast(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("label", []float64{2, math.NaN(), 10, 1}))

	m := MustNew("coda:color", []string{"a", "b", "c", "d", "e"}, ModeCycle)
	m.ColumnName = "label"
	require.NoError(t, m.Recompute(tbl))

	assert.Equal(t, []string{"1", "2", "10", "NaN"}, m.Factors)
	assert.Equal(t, 3, m.IDMap["NaN"])
}

func TestIntegralLabelsFormatting(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("generation", []float64{3, 1, 2}))

	m := MustNew("coda:marker", MarkerPalette, ModeRepeatLast)
	m.ColumnName = "generation"
	require.NoError(t, m.Recompute(tbl))

	assert.Equal(t, []string{"1", "2", "3"}, m.Factors)
	assert.Equal(t, []float64{2, 0, 1}, m.IDColumn)
}

func TestPushNotifiesObservers(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetStrings("label", []string{"a", "b"}))

	m := MustNew("coda:color", []string{"blue", "green"}, ModeCycle)
	m.ColumnName = "label"
	require.NoError(t, m.Recompute(tbl))

	notified := 0
	m.OnUpdate(func() { notified++ })

	sink := newRecordingSink()
	m.Push(sink)

	assert.Equal(t, 1, notified)
	assert.Len(t, sink.columns["coda:color:id"], 2)
	assert.Equal(t, []any{"blue", "green"}, sink.columns["coda:color:glyph"])
}

func TestAmiraLabelPalette(t *testing.T) {
	palette := AmiraLabelPalette()
	require.Len(t, palette, 256)
	assert.Equal(t, "#000000", palette[0])
	for _, c := range palette {
		assert.Regexp(t, "^#[0-9A-F]{6}$", c)
	}
}

func TestColorColumnIsItsOwnColormap(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetStrings("paint", []string{"#FF0000", "#00FF00", "#FF0000"}))

	m := MustNew("coda:color", VertexColorPalette, ModeCycle)
	m.ColumnName = "paint"
	require.NoError(t, m.Recompute(tbl))

	assert.Equal(t, []string{"#FF0000", "#00FF00", "#FF0000"}, m.GlyphColumn)
	assert.Equal(t, "#00FF00", m.GlyphMap["#00FF00"])
}
