package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zibamira/CTCoral-CoDA/table"
)

func TestReplaceAdoptsTableEpoch(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("x", []float64{1, 2}))

	s := NewSource("vertices")
	replaced := 0
	s.OnReplace(func() { replaced++ })

	s.Replace(tbl)
	assert.Equal(t, tbl.Epoch(), s.Epoch())
	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, 1, replaced)
	assert.Equal(t, []any{1.0, 2.0}, s.Column("x"))
}

func TestReplaceDropsStaleColumns(t *testing.T) {
	s := NewSource("vertices")

	tbl := table.New()
	require.NoError(t, tbl.SetNumbers("x", []float64{1}))
	s.Replace(tbl)
	s.SetColumn("coda:graph:x", []any{0.5})

	// A new table without the patched column replaces the sink wholesale.
	next := table.New()
	require.NoError(t, next.SetNumbers("x", []float64{2}))
	s.Replace(next)

	assert.Nil(t, s.Column("coda:graph:x"))
}

func TestSetSelectedNotifiesOnce(t *testing.T) {
	s := NewSource("vertices")

	var events [][]int
	s.OnSelectionChange(func(indices []int) {
		events = append(events, indices)
	})

	s.SetSelected([]int{2, 0})
	s.SetSelected([]int{0, 2}) // same set, no event
	s.SetSelected(nil)

	require.Len(t, events, 2)
	assert.Equal(t, []int{0, 2}, events[0])
	assert.Empty(t, events[1])
}

func TestSetColumnPatchObserver(t *testing.T) {
	s := NewSource("edges")
	var patched []string
	s.OnPatch(func(column string) { patched = append(patched, column) })

	s.SetColumn("coda:edge:color:glyph", []any{"#FF0000"})
	assert.Equal(t, []string{"coda:edge:color:glyph"}, patched)

	_, order, _ := s.Snapshot()
	assert.Contains(t, order, "coda:edge:color:glyph")
}
