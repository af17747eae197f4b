package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/factor"
	"github.com/zibamira/CTCoral-CoDA/provider"
	"github.com/zibamira/CTCoral-CoDA/table"
	"github.com/zibamira/CTCoral-CoDA/views"
)

// scriptProvider is a scripted in-memory provider recording all writebacks.
type scriptProvider struct {
	provider.Base

	reloads  int
	failNext bool

	nextVertices *table.Table
	nextEdges    *table.Table

	vertexSelections [][]int
	edgeSelections   [][]int
	vertexColormaps  [][]string
	edgeColormaps    [][]string
}

func newScriptProvider(t *testing.T) *scriptProvider {
	t.Helper()
	vertices := table.New()
	require.NoError(t, vertices.SetNumbers("volume", []float64{1, 2, 3, 4}))
	require.NoError(t, vertices.SetStrings("species", []string{"a", "b", "a", "b"}))

	edges := table.New()
	require.NoError(t, edges.SetNumbers("source", []float64{0, 1, 2}))
	require.NoError(t, edges.SetNumbers("target", []float64{1, 2, 3}))

	return &scriptProvider{
		Base:         provider.NewBase(),
		nextVertices: vertices,
		nextEdges:    edges,
	}
}

func (p *scriptProvider) Reload() error {
	p.reloads++
	if p.failNext {
		return errors.New("scripted failure")
	}
	p.SetTables(p.nextVertices, p.nextEdges)
	p.NotifyChange()
	return nil
}

func (p *scriptProvider) WriteVertexSelection(indices []int) error {
	p.vertexSelections = append(p.vertexSelections, append([]int{}, indices...))
	return nil
}

func (p *scriptProvider) WriteEdgeSelection(indices []int) error {
	p.edgeSelections = append(p.edgeSelections, append([]int{}, indices...))
	return nil
}

func (p *scriptProvider) WriteVertexColormap(glyphs []string) error {
	p.vertexColormaps = append(p.vertexColormaps, append([]string{}, glyphs...))
	return nil
}

func (p *scriptProvider) WriteEdgeColormap(glyphs []string) error {
	p.edgeColormaps = append(p.edgeColormaps, append([]string{}, glyphs...))
	return nil
}

func newApp(t *testing.T, p provider.DataProvider) *Application {
	t.Helper()
	return New(zap.NewNop().Sugar(), p)
}

func TestReloadReplacesTablesAndSinks(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)

	require.NoError(t, app.Reload())

	assert.True(t, app.Vertices().Has("volume"))
	assert.Equal(t, app.Vertices().Epoch(), app.VertexSink().Epoch())
	assert.Equal(t, app.Edges().Epoch(), app.EdgeSink().Epoch())

	sv, se := app.Status()
	assert.Equal(t, "4 vertices", sv)
	assert.Equal(t, "3 edges", se)
}

func TestReloadAtomicOnFailure(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	require.NoError(t, app.Reload())

	before := app.Vertices()
	beforeEpoch := app.ColorMap().Epoch()

	p.failNext = true
	err := app.Reload()
	require.Error(t, err)

	assert.Same(t, before, app.Vertices(), "tables must survive a failed reload")
	assert.Equal(t, beforeEpoch, app.ColorMap().Epoch())
	assert.False(t, app.isReloading.Load(), "guard must release on the error path")
}

func TestReentrantReloadIsNoOp(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)

	// A synchronous echo from inside the provider's reload must neither
	// recurse nor double-apply.
	p.OnChange(func() {
		require.NoError(t, app.Reload())
	})

	require.NoError(t, app.Reload())
	assert.Equal(t, 1, p.reloads)
}

type selectingView struct {
	app views.App
}

func (v *selectingView) Kind() string    { return "test-selecting" }
func (v *selectingView) ReloadDF() error { return nil }
func (v *selectingView) ReloadCDS() error {
	v.app.VertexSink().SetSelected([]int{1, 2})
	return nil
}

func TestSelectionWritebackSuppressedDuringReload(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	app.panels = append(app.panels, &selectingView{app: app})

	require.NoError(t, app.Reload())

	// Exactly one writeback, carrying the restored selection, after the
	// guard cleared. The in-reload selection event must not produce one.
	require.Len(t, p.vertexSelections, 1)
	assert.Equal(t, []int{1, 2}, p.vertexSelections[0])
}

func TestIdleSelectionPropagates(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	require.NoError(t, app.Reload())
	writebacks := len(p.vertexSelections)

	app.VertexSink().SetSelected([]int{0, 3})

	require.Len(t, p.vertexSelections, writebacks+1)
	assert.Equal(t, []int{0, 3}, p.vertexSelections[len(p.vertexSelections)-1])
}

func TestColumnFallbackAfterReload(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	app.ColorMap().ColumnName = "gone"

	require.NoError(t, app.Reload())

	assert.Equal(t, "", app.ColorMap().ColumnName)
	assert.Equal(t, []string{"None"}, app.ColorMap().Factors)
}

func TestColormapWritebackOnRecompute(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	require.NoError(t, app.Reload())
	before := len(p.vertexColormaps)

	require.NoError(t, app.SetColorColumn("species"))

	require.Len(t, p.vertexColormaps, before+1)
	glyphs := p.vertexColormaps[len(p.vertexColormaps)-1]
	require.Len(t, glyphs, 4)
	assert.NotEqual(t, glyphs[0], glyphs[1], "two species, two colors")
}

func TestManualReloadArmsControl(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	app.AutomaticReload = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Run(ctx)

	p.NotifyChange()

	require.Eventually(t, app.ReloadRequired, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, p.reloads)
}

func TestFactorChangeRebinsHistogram(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	view, err := app.OpenView(views.KindHistogram)
	require.NoError(t, err)
	hv := view.(*views.Histogram)
	require.NoError(t, app.Reload())

	// An idle colormap change must rebin the open histogram, not leave it
	// stacked by the previous factors.
	require.NoError(t, app.SetColorColumn("species"))

	result := hv.Result()
	require.NotNil(t, result)
	labels := make(map[string]bool)
	for _, l := range result.Selected.Label {
		labels[l] = true
	}
	assert.True(t, labels["a"], "bins must stack by the new factors, got %v", labels)
	assert.True(t, labels["b"])
	assert.False(t, labels["None"])
}

type failingView struct {
	failDF  bool
	failCDS bool
}

func (v *failingView) Kind() string { return "test-failing" }

func (v *failingView) ReloadDF() error {
	if v.failDF {
		return errors.New("df failure")
	}
	return nil
}

func (v *failingView) ReloadCDS() error {
	if v.failCDS {
		return errors.New("cds failure")
	}
	return nil
}

func TestReloadRestoresStateOnViewFailure(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)
	require.NoError(t, app.Reload())

	before := app.Vertices()
	beforeSinkEpoch := app.VertexSink().Epoch()

	fresh := table.New()
	require.NoError(t, fresh.SetNumbers("volume", []float64{9, 8, 7}))
	freshEdges := table.New()
	require.NoError(t, freshEdges.SetNumbers("source", []float64{0, 1}))
	require.NoError(t, freshEdges.SetNumbers("target", []float64{1, 2}))
	p.nextVertices, p.nextEdges = fresh, freshEdges

	fv := &failingView{failDF: true}
	app.panels = append(app.panels, fv)

	// Failure before the sinks were touched: tables roll back, sinks never
	// moved.
	require.Error(t, app.Reload())
	assert.Same(t, before, app.Vertices(), "tables must roll back on a late failure")
	assert.Equal(t, beforeSinkEpoch, app.VertexSink().Epoch())
	assert.False(t, app.isReloading.Load())

	// Failure after the sinks were replaced: sinks roll back too, tables
	// and sinks agree on the last-good epoch.
	fv.failDF, fv.failCDS = false, true
	require.Error(t, app.Reload())
	assert.Same(t, before, app.Vertices())
	assert.Equal(t, app.Vertices().Epoch(), app.VertexSink().Epoch())
	assert.Equal(t, app.Edges().Epoch(), app.EdgeSink().Epoch())

	// With the view healthy again the pending tables apply.
	fv.failCDS = false
	require.NoError(t, app.Reload())
	assert.Same(t, fresh, app.Vertices())
	assert.Equal(t, fresh.Epoch(), app.VertexSink().Epoch())
}

type palettedProvider struct {
	*scriptProvider
}

func (p *palettedProvider) LabelPalette() []string {
	return factor.AmiraLabelPalette()
}

func TestProviderPaletteAdopted(t *testing.T) {
	p := &palettedProvider{newScriptProvider(t)}
	app := newApp(t, p)

	palette := app.ColorMap().Palette()
	require.Len(t, palette, 256)
	assert.Equal(t, "#000000", palette[0])
}

func TestMenusAfterReload(t *testing.T) {
	p := newScriptProvider(t)
	require.NoError(t, p.nextVertices.SetStrings("paint",
		[]string{"#FF0000", "#00FF00", "#FF0000", "#0000FF"}))
	app := newApp(t, p)
	require.NoError(t, app.Reload())

	color, marker, edgeColor := app.Menus()
	assert.Contains(t, color, "species")
	assert.Contains(t, color, "paint")
	assert.Contains(t, marker, "species")
	assert.Contains(t, edgeColor, "source")

	seen := 0
	for _, name := range color {
		if name == "paint" {
			seen++
		}
	}
	assert.Equal(t, 1, seen, "color columns must not repeat in the menu")
}

func TestStatusReadsDoNotRaceReload(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			app.Status()
			app.Menus()
		}
	}()
	for i := 0; i < 50; i++ {
		require.NoError(t, app.Reload())
	}
	<-done
}

func TestOpenUnknownViewFails(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)

	_, err := app.OpenView("no-such-kind")
	require.Error(t, err)
}

func TestOpenViewsAndReload(t *testing.T) {
	p := newScriptProvider(t)
	app := newApp(t, p)

	for _, kind := range []string{views.KindScatter, views.KindGraph, views.KindHistogram, views.KindStatistics} {
		_, err := app.OpenView(kind)
		require.NoError(t, err)
	}
	require.NoError(t, app.Reload())
	assert.Len(t, app.Views(), 4)
}
