// Package graphlayout derives 2D vertex positions and edge geometry from
// the edge table, so that the graph view can draw the colony framework.
//
// The directed graph is rebuilt from the configured source/target columns
// on every reload; the expensive layout step is skipped when the graph is
// structurally unchanged. Positions are z-score normalized and written back
// into the vertex and edge tables as coda:graph:* columns.
package graphlayout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Derived column names written by the aggregator.
const (
	ColVertexX    = "coda:graph:x"
	ColVertexY    = "coda:graph:y"
	ColArrowX0    = "coda:graph:arrow_x0"
	ColArrowY0    = "coda:graph:arrow_y0"
	ColArrowX1    = "coda:graph:arrow_x1"
	ColArrowY1    = "coda:graph:arrow_y1"
	ColArrowAngle = "coda:graph:arrow_angle"
)

// arrowTilt rotates the arrow head off the edge axis so that antiparallel
// edges stay distinguishable.
const arrowTilt = math.Pi / 6.0

// Positions maps a vertex row index to its 2D position. Layout algorithms
// are not required to cover every vertex; the aggregator substitutes a
// placeholder for missing ones.
type Positions map[int64][2]float64

// Aggregator owns the graph representation and layout state for one graph
// view.
type Aggregator struct {
	// SourceColumn and TargetColumn name the integral edge-table columns
	// holding vertex row indices. Empty values trigger auto-detection.
	SourceColumn string
	TargetColumn string

	// Algorithm is the layout algorithm name; see Algorithms().
	Algorithm string

	g           *simple.DirectedGraph
	fingerprint string
	positions   [][2]float64
	epoch       uint64
}

// NewAggregator creates an aggregator with no graph yet.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Epoch returns the table epoch of the last Apply.
func (a *Aggregator) Epoch() uint64 { return a.epoch }

// Positions returns the normalized vertex positions of the last layout.
func (a *Aggregator) Positions() [][2]float64 { return a.positions }

// DetectSourceTarget probes the edge table for conventional source/target
// column name pairs across every observed prefix. Only integral columns
// qualify, since the values index vertex rows. Surfaces ErrUndetectedColumns
// rather than guessing when nothing matches.
func DetectSourceTarget(edges *table.Table) (string, string, error) {
	integral := table.IntegralColumns(edges)

	// Case-insensitive lookup of the integral columns.
	byLower := make(map[string]string, len(integral))
	for _, name := range integral {
		byLower[strings.ToLower(name)] = name
	}

	// Collect the observed prefixes, keeping "" for unprefixed columns.
	prefixSeen := make(map[string]struct{})
	var prefixes []string
	for lower := range byLower {
		prefix := ""
		if i := strings.LastIndex(lower, ":"); i >= 0 {
			prefix = lower[:i+1]
		}
		if _, ok := prefixSeen[prefix]; !ok {
			prefixSeen[prefix] = struct{}{}
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)

	pairs := [][2]string{
		{"source", "target"},
		{"start", "end"},
		{"startnode.id", "endnode.id"},
	}

	for _, prefix := range prefixes {
		for _, pair := range pairs {
			source, okS := byLower[prefix+pair[0]]
			target, okT := byLower[prefix+pair[1]]
			if okS && okT {
				return source, target, nil
			}
		}
	}
	return "", "", errors.WithHint(errors.ErrUndetectedColumns,
		"configure the source and target columns explicitly")
}

// Rebuild replaces the internal directed graph from the edge table and
// reports whether it is structurally different from the previous one. An
// unchanged graph lets the caller skip the layout recomputation.
func (a *Aggregator) Rebuild(vertices, edges *table.Table) (bool, error) {
	source := edges.Numbers(a.SourceColumn)
	target := edges.Numbers(a.TargetColumn)
	if source == nil || target == nil {
		return false, errors.Wrapf(errors.ErrUndetectedColumns,
			"columns %q/%q not in the edge table", a.SourceColumn, a.TargetColumn)
	}

	n := vertices.NumRows()
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := range source {
		s, t := int64(source[i]), int64(target[i])
		if s < 0 || s >= int64(n) || t < 0 || t >= int64(n) {
			return false, errors.NewDataInconsistencyError(
				"edge %d references vertex (%d, %d) outside 0..%d", i, s, t, n-1)
		}
		if s == t {
			// Self loops carry no layout information.
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(s), simple.Node(t)))
	}

	fingerprint := graphFingerprint(g, n)
	changed := a.g == nil || fingerprint != a.fingerprint
	a.g = g
	a.fingerprint = fingerprint
	return changed, nil
}

// graphFingerprint canonicalizes the edge set. Two graphs with the same
// fingerprint are identical up to edge order, which is a stricter (and far
// cheaper) test than isomorphism: a relayout may run when only vertex
// identities were permuted, but never silently serves a wrong layout.
func graphFingerprint(g *simple.DirectedGraph, n int) string {
	var edges []string
	it := g.Edges()
	for it.Next() {
		e := it.Edge()
		edges = append(edges, fmt.Sprintf("%d>%d", e.From().ID(), e.To().ID()))
	}
	sort.Strings(edges)
	return fmt.Sprintf("n%d;%s", n, strings.Join(edges, ","))
}

// IsForest reports whether the current graph is a forest: acyclic with at
// most one parent per vertex. Forests default to the tree layout.
func (a *Aggregator) IsForest() bool {
	if a.g == nil {
		return false
	}
	if _, err := topo.Sort(a.g); err != nil {
		return false
	}
	nodes := a.g.Nodes()
	for nodes.Next() {
		if a.g.To(nodes.Node().ID()).Len() > 1 {
			return false
		}
	}
	return true
}

// DefaultAlgorithm picks the layout used when none is configured: tree for
// forests, spring otherwise.
func (a *Aggregator) DefaultAlgorithm() string {
	if a.IsForest() {
		return "tree"
	}
	return "spring"
}

// Layout runs the named layout algorithm and normalizes the result. Every
// vertex row receives a position: vertices the algorithm did not place get
// the deterministic placeholder (-1, 0) before normalization.
func (a *Aggregator) Layout(nvertices int) error {
	if a.g == nil {
		return errors.New("no graph built yet")
	}

	algorithm, ok := algorithms[a.Algorithm]
	if !ok {
		return errors.NewConfigurationError("unknown layout algorithm %q", a.Algorithm)
	}

	raw := algorithm.Compute(a.g)

	positions := make([][2]float64, nvertices)
	for i := 0; i < nvertices; i++ {
		if pos, ok := raw[int64(i)]; ok {
			positions[i] = pos
		} else {
			positions[i] = [2]float64{-1.0, 0.0}
		}
	}
	normalize(positions)
	a.positions = positions
	return nil
}

// normalize centers each axis on its mean and scales it by its standard
// deviation. A zero-variance axis divides by 1.0 instead.
func normalize(positions [][2]float64) {
	n := float64(len(positions))
	if n == 0 {
		return
	}

	for axis := 0; axis < 2; axis++ {
		mean := 0.0
		for _, p := range positions {
			mean += p[axis]
		}
		mean /= n

		variance := 0.0
		for _, p := range positions {
			d := p[axis] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1.0
		}

		for i := range positions {
			positions[i][axis] = (positions[i][axis] - mean) / std
		}
	}
}

// Apply writes the layout into the vertex and edge tables: per-vertex
// positions, and per-edge arrow start/end/angle fields for the directed
// rendering. The polyline endpoints consumed by the multiline rendering are
// the same four arrow coordinates.
func (a *Aggregator) Apply(vertices, edges *table.Table) error {
	n := vertices.NumRows()
	if len(a.positions) != n {
		return errors.Wrapf(errors.ErrStaleEpoch,
			"layout has %d positions, vertex table %d rows", len(a.positions), n)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range a.positions {
		x[i] = p[0]
		y[i] = p[1]
	}
	if err := vertices.SetNumbers(ColVertexX, x); err != nil {
		return err
	}
	if err := vertices.SetNumbers(ColVertexY, y); err != nil {
		return err
	}

	source := edges.Numbers(a.SourceColumn)
	target := edges.Numbers(a.TargetColumn)
	nedges := edges.NumRows()

	x0 := make([]float64, nedges)
	y0 := make([]float64, nedges)
	x1 := make([]float64, nedges)
	y1 := make([]float64, nedges)
	angle := make([]float64, nedges)
	for i := 0; i < nedges; i++ {
		s, t := int(source[i]), int(target[i])
		x0[i], y0[i] = x[s], y[s]
		x1[i], y1[i] = x[t], y[t]
		angle[i] = math.Atan2(y1[i]-y0[i], x1[i]-x0[i]) + arrowTilt
	}

	for name, values := range map[string][]float64{
		ColArrowX0:    x0,
		ColArrowY0:    y0,
		ColArrowX1:    x1,
		ColArrowY1:    y1,
		ColArrowAngle: angle,
	} {
		if err := edges.SetNumbers(name, values); err != nil {
			return err
		}
	}

	a.epoch = vertices.Epoch()
	return nil
}

var _ graph.Directed = (*simple.DirectedGraph)(nil)
