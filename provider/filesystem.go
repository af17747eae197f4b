package provider

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// fileKind distinguishes vertex from edge spreadsheets.
type fileKind int

const (
	vertexFile fileKind = iota
	edgeFile
)

// fileInfo tracks one watched spreadsheet.
type fileInfo struct {
	path   string
	kind   fileKind
	prefix string
	dirty  bool
	data   *table.Table
}

// Filesystem merges several CSV spreadsheets into the vertex and edge
// tables and watches them for modification so that the session can reload
// when the data changes on disk.
type Filesystem struct {
	Base

	logger *zap.SugaredLogger

	mu    sync.Mutex
	files map[string]*fileInfo

	// Output paths for the selection and colormap writebacks. Empty paths
	// disable the corresponding writeback.
	PathVertexSelection string
	PathEdgeSelection   string
	PathVertexColormap  string
	PathEdgeColormap    string

	watcher *fsnotify.Watcher
	// limiter collapses editor write storms (truncate+write+chmod) into a
	// single change notification.
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFilesystem creates a filesystem provider. Call AddVertexCSV/AddEdgeCSV
// before Start.
func NewFilesystem(logger *zap.SugaredLogger) *Filesystem {
	ctx, cancel := context.WithCancel(context.Background())
	return &Filesystem{
		Base:    NewBase(),
		logger:  logger,
		files:   make(map[string]*fileInfo),
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddVertexCSV registers a vertex spreadsheet. Columns are prefixed with
// "<prefix>:"; an empty prefix defaults to the file stem.
func (p *Filesystem) AddVertexCSV(path, prefix string) {
	p.addFile(path, prefix, vertexFile)
}

// AddEdgeCSV registers an edge spreadsheet.
func (p *Filesystem) AddEdgeCSV(path, prefix string) {
	p.addFile(path, prefix, edgeFile)
}

func (p *Filesystem) addFile(path, prefix string, kind fileKind) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}

	p.mu.Lock()
	p.files[abs] = &fileInfo{path: abs, kind: kind, prefix: prefix, dirty: true}
	p.mu.Unlock()
}

// Start begins watching the registered files for modification.
func (p *Filesystem) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	p.watcher = watcher

	// Watch the parent directories: editors and Amira replace files by
	// rename, which drops a watch on the file itself.
	dirs := make(map[string]struct{})
	p.mu.Lock()
	for path := range p.files {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	p.mu.Unlock()

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	p.wg.Add(1)
	go p.watchLoop()
	return nil
}

// Close stops the watcher.
func (p *Filesystem) Close() error {
	p.cancel()
	var err error
	if p.watcher != nil {
		err = p.watcher.Close()
	}
	p.wg.Wait()
	return err
}

func (p *Filesystem) watchLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !p.markDirty(event.Name) {
				continue
			}
			if !p.limiter.Allow() {
				continue
			}
			p.logger.Infow("Watched spreadsheet changed", "path", event.Name)
			p.NotifyChange()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warnw("File watcher error", "error", err)
		}
	}
}

func (p *Filesystem) markDirty(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.files[abs]
	if !ok {
		return false
	}
	info.dirty = true
	return true
}

// Reload re-reads every dirty spreadsheet and rebuilds the merged vertex
// and edge tables. A parse failure or a row-count mismatch leaves the
// previous tables in place.
func (p *Filesystem) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Reload dirty files first; only replace the snapshots when every file
	// loaded cleanly.
	for _, info := range p.files {
		if !info.dirty && info.data != nil {
			continue
		}
		data, err := table.ReadCSVFile(info.path)
		if err != nil {
			return errors.Wrapf(err, "failed to reload %s", info.path)
		}
		info.data = data
		info.dirty = false
	}

	vertices := table.New()
	edges := table.New()
	for _, info := range p.files {
		target := vertices
		if info.kind == edgeFile {
			target = edges
		}
		if err := target.Concat(info.data.AddPrefix(info.prefix)); err != nil {
			return errors.Wrapf(err, "failed to merge %s", info.path)
		}
	}

	p.Base.SetTables(vertices, edges)

	// Contract: exactly one change notification on success, none on failure.
	p.NotifyChange()
	return nil
}

// WriteVertexSelection persists the selection mask spreadsheet.
func (p *Filesystem) WriteVertexSelection(indices []int) error {
	if p.PathVertexSelection == "" {
		return nil
	}
	return WriteSelectionFile(p.PathVertexSelection, "CoDA vertex selection", p.Vertices().NumRows(), indices)
}

// WriteEdgeSelection persists the edge selection mask spreadsheet.
func (p *Filesystem) WriteEdgeSelection(indices []int) error {
	if p.PathEdgeSelection == "" {
		return nil
	}
	return WriteSelectionFile(p.PathEdgeSelection, "CoDA edge selection", p.Edges().NumRows(), indices)
}

// WriteVertexColormap persists the vertex glyph colors.
func (p *Filesystem) WriteVertexColormap(glyphs []string) error {
	if p.PathVertexColormap == "" {
		return nil
	}
	return WriteColormapFile(p.PathVertexColormap, "CoDA vertex colormap", glyphs)
}

// WriteEdgeColormap persists the edge glyph colors.
func (p *Filesystem) WriteEdgeColormap(glyphs []string) error {
	if p.PathEdgeColormap == "" {
		return nil
	}
	return WriteColormapFile(p.PathEdgeColormap, "CoDA edge colormap", glyphs)
}
