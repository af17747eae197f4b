// Package session owns the shared state of one dashboard session: the
// vertex and edge tables, the three factor maps, the render sinks and the
// view panels, and orchestrates the reload protocol between them.
//
// All shared-state mutation happens on a single update goroutine. Change
// notifications arriving from other goroutines (file watchers, websocket
// readers) are marshaled onto it through Dispatch.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/factor"
	"github.com/zibamira/CTCoral-CoDA/provider"
	"github.com/zibamira/CTCoral-CoDA/render"
	"github.com/zibamira/CTCoral-CoDA/table"
	"github.com/zibamira/CTCoral-CoDA/views"
)

// Application is one dashboard session. It implements views.App.
type Application struct {
	logger   *zap.SugaredLogger
	provider provider.DataProvider

	// AutomaticReload reloads on every provider change notification. When
	// false a notification only arms the reload control.
	AutomaticReload bool

	vertices *table.Table
	edges    *table.Table

	vertexSink *render.Source
	edgeSink   *render.Source

	colorMap     *factor.FactorMap
	markerMap    *factor.FactorMap
	edgeColorMap *factor.FactorMap

	panels []views.View

	// isReloading is the re-entrancy guard of the reload protocol. Read
	// from provider callback threads, written only on the update goroutine.
	isReloading atomic.Bool

	// reloadRequired arms the manual reload control.
	reloadRequired atomic.Bool

	// stateMu guards the status lines and column menus, written on the
	// update goroutine and read from the server's HTTP handlers.
	stateMu        sync.RWMutex
	statusVertices string
	statusEdges    string
	menuColor      []string
	menuMarker     []string
	menuEdgeColor  []string

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates a session around the provider. The factor maps carry the
// default palettes; the tables start empty until the first Reload.
func New(logger *zap.SugaredLogger, p provider.DataProvider) *Application {
	app := &Application{
		logger:          logger,
		provider:        p,
		AutomaticReload: true,
		vertices:        table.New(),
		edges:           table.New(),
		vertexSink:      render.NewSource("vertices"),
		edgeSink:        render.NewSource("edges"),
		colorMap:        factor.MustNew("coda:color", factor.VertexColorPalette, factor.ModeCycle),
		markerMap:       factor.MustNew("coda:marker", factor.MarkerPalette, factor.ModeRepeatLast),
		edgeColorMap:    factor.MustNew("coda:edge:color", factor.EdgeColorPalette, factor.ModeCycle),
		wake:            make(chan struct{}, 1),
	}

	// Providers tied to a label field rendering prescribe their own
	// colormap palette.
	if pp, ok := p.(provider.LabelPaletteProvider); ok {
		app.colorMap = factor.MustNew("coda:color", pp.LabelPalette(), factor.ModeCycle)
	}

	p.OnChange(app.onProviderChange)

	app.vertexSink.OnSelectionChange(app.onVertexSelection)
	app.edgeSink.OnSelectionChange(app.onEdgeSelection)

	app.colorMap.OnUpdate(app.onFactorMapUpdate)
	app.markerMap.OnUpdate(app.onFactorMapUpdate)
	app.edgeColorMap.OnUpdate(app.onFactorMapUpdate)
	return app
}

// Accessors implementing views.App.

func (app *Application) Vertices() *table.Table          { return app.vertices }
func (app *Application) Edges() *table.Table             { return app.edges }
func (app *Application) VertexSink() *render.Source      { return app.vertexSink }
func (app *Application) EdgeSink() *render.Source        { return app.edgeSink }
func (app *Application) ColorMap() *factor.FactorMap     { return app.colorMap }
func (app *Application) MarkerMap() *factor.FactorMap    { return app.markerMap }
func (app *Application) EdgeColorMap() *factor.FactorMap { return app.edgeColorMap }
func (app *Application) Logger() *zap.SugaredLogger      { return app.logger }

// Views returns the open panels.
func (app *Application) Views() []views.View { return app.panels }

// OpenView instantiates a view kind and adds it to the session.
func (app *Application) OpenView(kind string) (views.View, error) {
	view, err := views.New(kind, app)
	if err != nil {
		return nil, err
	}
	app.panels = append(app.panels, view)
	return view, nil
}

// CloseView removes a panel.
func (app *Application) CloseView(view views.View) {
	for i, p := range app.panels {
		if p == view {
			app.panels = append(app.panels[:i], app.panels[i+1:]...)
			return
		}
	}
}

// Dispatch marshals fn onto the update goroutine. Safe from any goroutine;
// the queue is unbounded so provider callbacks never block.
func (app *Application) Dispatch(fn func()) {
	app.mu.Lock()
	app.queue = append(app.queue, fn)
	app.mu.Unlock()

	select {
	case app.wake <- struct{}{}:
	default:
	}
}

// Run processes dispatched work until the context ends. This is the update
// goroutine; everything touching the tables runs inside it.
func (app *Application) Run(ctx context.Context) error {
	for {
		for {
			app.mu.Lock()
			if len(app.queue) == 0 {
				app.mu.Unlock()
				break
			}
			fn := app.queue[0]
			app.queue = app.queue[1:]
			app.mu.Unlock()
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-app.wake:
		}
	}
}

// onProviderChange runs on the provider's watcher goroutine. Notifications
// arriving while a reload is in flight are the provider's own echo and are
// dropped; everything else is marshaled onto the update goroutine.
func (app *Application) onProviderChange() {
	if app.isReloading.Load() {
		return
	}
	app.Dispatch(func() {
		if app.AutomaticReload {
			if err := app.Reload(); err != nil {
				app.logger.Errorw("reload failed", "error", err)
			}
			return
		}
		app.reloadRequired.Store(true)
		app.logger.Infow("data changed, reload required")
	})
}

// ReloadRequired reports whether a change notification arrived while
// automatic reloads are off.
func (app *Application) ReloadRequired() bool {
	return app.reloadRequired.Load()
}

// Reload runs the reload protocol. Call on the update goroutine. A reload
// already in flight makes the call a no-op, not an error. On failure the
// previous tables, factor maps and selection stay untouched.
func (app *Application) Reload() error {
	if !app.isReloading.CompareAndSwap(false, true) {
		return nil
	}

	err := func() error {
		defer app.isReloading.Store(false)
		return app.reload()
	}()
	if err != nil {
		return err
	}

	app.reloadRequired.Store(false)

	// Echo the restored selection and colormap outward only after the
	// guard cleared, so external tools never mistake the echo for a user
	// action.
	app.writeSelections()
	app.writeColormaps()
	return nil
}

func (app *Application) reload() error {
	if err := app.provider.Reload(); err != nil {
		return errors.Wrap(err, "provider reload failed")
	}

	vertices := app.provider.Vertices()
	edges := app.provider.Edges()
	if vertices == nil || edges == nil {
		return errors.NewDataInconsistencyError("provider returned no tables")
	}

	// A failure after the swap (factor realization, view hooks) must not
	// leave a half-applied state behind. Stash everything the steps below
	// mutate and roll back on any error.
	prevVertices, prevEdges := app.vertices, app.edges
	prevColor, prevMarker, prevEdgeColor := *app.colorMap, *app.markerMap, *app.edgeColorMap
	restore := func() {
		app.vertices, app.edges = prevVertices, prevEdges
		*app.colorMap = prevColor
		*app.markerMap = prevMarker
		*app.edgeColorMap = prevEdgeColor
		if app.vertexSink.Epoch() == vertices.Epoch() {
			app.vertexSink.Replace(prevVertices)
		}
		if app.edgeSink.Epoch() == edges.Epoch() {
			app.edgeSink.Replace(prevEdges)
		}
	}

	app.vertices = vertices
	app.edges = edges

	app.fallbackColumns()

	if err := app.colorMap.Recompute(app.vertices); err != nil {
		restore()
		return err
	}
	if err := app.markerMap.Recompute(app.vertices); err != nil {
		restore()
		return err
	}
	if err := app.edgeColorMap.Recompute(app.edges); err != nil {
		restore()
		return err
	}

	// View-owned derived columns must exist before the bulk replace, a
	// later patch would be dropped by the next replace.
	for _, view := range app.panels {
		if err := view.ReloadDF(); err != nil {
			restore()
			return errors.Wrapf(err, "%s view reload_df failed", view.Kind())
		}
	}

	app.vertexSink.Replace(app.vertices)
	app.edgeSink.Replace(app.edges)

	for _, view := range app.panels {
		if err := view.ReloadCDS(); err != nil {
			restore()
			return errors.Wrapf(err, "%s view reload_cds failed", view.Kind())
		}
	}

	app.stateMu.Lock()
	app.statusVertices = fmt.Sprintf("%d vertices", app.vertices.NumRows())
	app.statusEdges = fmt.Sprintf("%d edges", app.edges.NumRows())
	app.menuColor = columnMenu(table.LabelColumns(app.vertices), table.ColorColumns(app.vertices))
	app.menuMarker = columnMenu(table.LabelColumns(app.vertices))
	app.menuEdgeColor = columnMenu(table.LabelColumns(app.edges), table.ColorColumns(app.edges))
	app.stateMu.Unlock()

	app.logger.Infow("reload complete",
		"vertices", app.vertices.NumRows(),
		"edges", app.edges.NumRows(),
		"epoch", app.vertices.Epoch(),
	)
	return nil
}

// fallbackColumns drops factor map column choices that vanished from the
// reloaded tables, falling back to the no-column default.
func (app *Application) fallbackColumns() {
	for _, fm := range []*factor.FactorMap{app.colorMap, app.markerMap} {
		if fm.ColumnName != "" && !app.vertices.Has(fm.ColumnName) {
			app.logger.Warnw("column vanished, falling back",
				"factormap", fm.Name, "column", fm.ColumnName)
			fm.ColumnName = ""
		}
	}
	if app.edgeColorMap.ColumnName != "" && !app.edges.Has(app.edgeColorMap.ColumnName) {
		app.edgeColorMap.ColumnName = ""
	}
}

// columnMenu concatenates column lists, dropping duplicates while keeping
// the order.
func columnMenu(parts ...[]string) []string {
	var menu []string
	seen := make(map[string]struct{})
	for _, part := range parts {
		for _, name := range part {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			menu = append(menu, name)
		}
	}
	return menu
}

// Status returns the sidebar status lines.
func (app *Application) Status() (string, string) {
	app.stateMu.RLock()
	defer app.stateMu.RUnlock()
	return app.statusVertices, app.statusEdges
}

// Menus returns the column menus of the mapping controls: colormaps accept
// label columns plus columns already holding hex colors, markers accept
// label columns. Recomputed on every reload.
func (app *Application) Menus() (color, marker, edgeColor []string) {
	app.stateMu.RLock()
	defer app.stateMu.RUnlock()
	return app.menuColor, app.menuMarker, app.menuEdgeColor
}

// SetColorColumn changes the vertex color mapping and recomputes it
// immediately, pushing the new glyph columns and echoing the colormap
// outward.
func (app *Application) SetColorColumn(column string) error {
	app.colorMap.ColumnName = column
	return app.recomputeFactorMap(app.colorMap, app.vertices, app.vertexSink)
}

// SetMarkerColumn changes the vertex marker mapping.
func (app *Application) SetMarkerColumn(column string) error {
	app.markerMap.ColumnName = column
	return app.recomputeFactorMap(app.markerMap, app.vertices, app.vertexSink)
}

// SetEdgeColorColumn changes the edge color mapping.
func (app *Application) SetEdgeColorColumn(column string) error {
	app.edgeColorMap.ColumnName = column
	return app.recomputeFactorMap(app.edgeColorMap, app.edges, app.edgeSink)
}

func (app *Application) recomputeFactorMap(fm *factor.FactorMap, tbl *table.Table, sink *render.Source) error {
	if err := fm.Recompute(tbl); err != nil {
		return err
	}
	fm.Push(sink)
	if !app.isReloading.Load() {
		app.writeColormaps()
	}
	return nil
}

// onFactorMapUpdate runs after every factor map push. Views stacking or
// coloring by factors rebin against the new mapping. During a reload the
// views refresh through their reload hooks anyway.
func (app *Application) onFactorMapUpdate() {
	if app.isReloading.Load() {
		return
	}
	app.recomputeDerivedViews()
}

// onVertexSelection runs on sink selection changes. During a reload the
// change is the reload's own echo and stays inside; while idle it is
// forwarded to the provider and the selection-driven views recompute
// synchronously.
func (app *Application) onVertexSelection(indices []int) {
	if app.isReloading.Load() {
		return
	}
	if err := app.provider.WriteVertexSelection(indices); err != nil {
		app.logger.Warnw("vertex selection writeback failed", "error", err)
	}
	app.recomputeDerivedViews()
}

func (app *Application) onEdgeSelection(indices []int) {
	if app.isReloading.Load() {
		return
	}
	if err := app.provider.WriteEdgeSelection(indices); err != nil {
		app.logger.Warnw("edge selection writeback failed", "error", err)
	}
	app.recomputeDerivedViews()
}

// derivedView is implemented by views that re-derive their state from the
// selection or the factor maps.
type derivedView interface {
	Recompute() error
}

func (app *Application) recomputeDerivedViews() {
	for _, view := range app.panels {
		if dv, ok := view.(derivedView); ok {
			if err := dv.Recompute(); err != nil {
				app.logger.Warnw("view recompute failed",
					"view", view.Kind(), "error", err)
			}
		}
	}
}

func (app *Application) writeSelections() {
	if err := app.provider.WriteVertexSelection(app.vertexSink.Selected().Indices()); err != nil {
		app.logger.Warnw("vertex selection writeback failed", "error", err)
	}
	if err := app.provider.WriteEdgeSelection(app.edgeSink.Selected().Indices()); err != nil {
		app.logger.Warnw("edge selection writeback failed", "error", err)
	}
}

func (app *Application) writeColormaps() {
	if err := app.provider.WriteVertexColormap(app.colorMap.GlyphColumn); err != nil {
		app.logger.Warnw("vertex colormap writeback failed", "error", err)
	}
	if err := app.provider.WriteEdgeColormap(app.edgeColorMap.GlyphColumn); err != nil {
		app.logger.Warnw("edge colormap writeback failed", "error", err)
	}
}
