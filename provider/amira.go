package provider

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/factor"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Amira meta file names looked up in the shared directory. Each meta file
// is a small JSON document naming the CSV payloads Amira exported.
const (
	amiraLabelAnalysisMeta = "label_analysis.json"
	amiraSpatialGraphMeta  = "spatialgraph.json"
	amiraSelectionMask     = "coda_selection_mask.csv"
	amiraColormapFile      = "coda_colormap.csv"
)

// amiraMeta mirrors the hxipc meta document layout.
type amiraMeta struct {
	Type     string `json:"type"`
	Payload  string `json:"payload,omitempty"`
	Vertices string `json:"vertices,omitempty"`
	Edges    string `json:"edges,omitempty"`
}

// Amira links a session with a running Amira instance through a shared
// directory. Amira exports its label analysis spreadsheet and spatial graph
// as CSV payloads described by JSON meta files; the session writes the
// selection mask back into the same directory.
type Amira struct {
	Base

	logger *zap.SugaredLogger

	// DataDir is the directory shared with Amira.
	DataDir string

	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAmira creates a provider bound to the shared directory.
func NewAmira(logger *zap.SugaredLogger, dataDir string) *Amira {
	ctx, cancel := context.WithCancel(context.Background())
	return &Amira{
		Base:    NewBase(),
		logger:  logger,
		DataDir: dataDir,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ZeroConfDirectory looks for the newest Amira-CoDA shared directory. This
// works well when a single Amira instance is running. Returns ErrNotFound
// when no directory exists.
func ZeroConfDirectory() (string, error) {
	roots := []string{os.TempDir()}
	if cache, err := os.UserCacheDir(); err == nil {
		roots = append(roots, cache)
	}

	var candidates []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && strings.HasPrefix(entry.Name(), "amira-coda-") {
				candidates = append(candidates, filepath.Join(root, entry.Name()))
			}
		}
	}
	if len(candidates) == 0 {
		return "", errors.Wrap(errors.ErrNotFound, "no amira-coda directory found")
	}

	sort.Slice(candidates, func(i, j int) bool {
		return dirModTime(candidates[i]).After(dirModTime(candidates[j]))
	})
	return candidates[0], nil
}

func dirModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Start watches the shared directory for meta file updates.
func (p *Amira) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create amira watcher")
	}
	if err := watcher.Add(p.DataDir); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "failed to watch %s", p.DataDir)
	}
	p.watcher = watcher

	p.wg.Add(1)
	go p.watchLoop()
	return nil
}

// Close stops watching.
func (p *Amira) Close() error {
	p.cancel()
	var err error
	if p.watcher != nil {
		err = p.watcher.Close()
	}
	p.wg.Wait()
	return err
}

func (p *Amira) watchLoop() {
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
			name := filepath.Base(event.Name)
			if name != amiraLabelAnalysisMeta && name != amiraSpatialGraphMeta {
				continue
			}
			if !p.limiter.Allow() {
				continue
			}
			p.logger.Infow("Amira resource changed", "meta", name)
			p.NotifyChange()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warnw("Amira watcher error", "error", err)
		}
	}
}

// Reload reads the meta files and their CSV payloads and rebuilds the
// merged tables. Missing resources or a row-count mismatch abort the reload
// and keep the previous snapshots.
func (p *Amira) Reload() error {
	analysisMeta, err := p.readMeta(amiraLabelAnalysisMeta)
	if err != nil {
		return err
	}
	graphMeta, err := p.readMeta(amiraSpatialGraphMeta)
	if err != nil {
		return err
	}

	analysis, err := table.ReadCSVFile(filepath.Join(p.DataDir, analysisMeta.Payload))
	if err != nil {
		return errors.Wrap(err, "failed to read label analysis payload")
	}
	graphVertices, err := table.ReadCSVFile(filepath.Join(p.DataDir, graphMeta.Vertices))
	if err != nil {
		return errors.Wrap(err, "failed to read spatial graph vertices")
	}
	graphEdges, err := table.ReadCSVFile(filepath.Join(p.DataDir, graphMeta.Edges))
	if err != nil {
		return errors.Wrap(err, "failed to read spatial graph edges")
	}

	if analysis.NumRows() != graphVertices.NumRows() {
		return errors.NewDataInconsistencyError(
			"label analysis has %d rows, spatial graph has %d vertices",
			analysis.NumRows(), graphVertices.NumRows())
	}

	vertices := table.New()
	if err := vertices.Concat(analysis.AddPrefix("label_analysis")); err != nil {
		return err
	}
	if err := vertices.Concat(graphVertices.AddPrefix("spatialgraph")); err != nil {
		return err
	}

	edges := graphEdges.AddPrefix("spatialgraph")

	p.SetTables(vertices, edges)
	p.NotifyChange()
	return nil
}

func (p *Amira) readMeta(name string) (*amiraMeta, error) {
	raw, err := os.ReadFile(filepath.Join(p.DataDir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read amira meta %s", name)
	}
	var meta amiraMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrapf(err, "failed to parse amira meta %s", name)
	}
	return &meta, nil
}

// LabelPalette returns the 256-entry colormap of Amira's label field
// rendering, so the dashboard colors match the labels inside Amira.
func (p *Amira) LabelPalette() []string {
	return factor.AmiraLabelPalette()
}

// WriteVertexSelection writes the selection mask into the shared directory
// so that Amira can highlight the selected labels.
func (p *Amira) WriteVertexSelection(indices []int) error {
	path := filepath.Join(p.DataDir, amiraSelectionMask)
	return WriteSelectionFile(path, "CoDA selection mask", p.Vertices().NumRows(), indices)
}

// WriteVertexColormap mirrors the current vertex colormap for Amira's label
// field rendering.
func (p *Amira) WriteVertexColormap(glyphs []string) error {
	path := filepath.Join(p.DataDir, amiraColormapFile)
	return WriteColormapFile(path, "CoDA colormap", glyphs)
}
