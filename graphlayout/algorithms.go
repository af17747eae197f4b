package graphlayout

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// LayoutAlgorithm computes raw 2D positions for the nodes of a directed
// graph. Implementations may omit nodes; callers substitute a placeholder.
type LayoutAlgorithm interface {
	Compute(g *simple.DirectedGraph) Positions
}

var algorithms = map[string]LayoutAlgorithm{
	"spring":   springLayout{iterations: 50},
	"circular": circularLayout{},
	"shell":    shellLayout{},
	"spiral":   spiralLayout{},
	"random":   randomLayout{},
	"tree":     treeLayout{},
}

// Algorithms lists the available layout algorithm names.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedNodeIDs(g *simple.DirectedGraph) []int64 {
	var ids []int64
	nodes := g.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// circularLayout places the nodes equidistantly on the unit circle, ordered
// by their row index.
type circularLayout struct{}

func (circularLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	pos := make(Positions, len(ids))
	n := float64(len(ids))
	for i, id := range ids {
		phi := 2.0 * math.Pi * float64(i) / n
		pos[id] = [2]float64{math.Cos(phi), math.Sin(phi)}
	}
	return pos
}

// shellLayout places the nodes on concentric circles, one shell per BFS
// depth measured from the root nodes (in-degree zero). Nodes unreachable
// from any root share the outermost shell.
type shellLayout struct{}

func (shellLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	depths := bfsDepths(g, ids)

	maxDepth := 0
	shells := make(map[int][]int64)
	for _, id := range ids {
		d := depths[id]
		if d < 0 {
			d = math.MaxInt32
		}
		shells[d] = append(shells[d], id)
		if d > maxDepth && d != math.MaxInt32 {
			maxDepth = d
		}
	}
	if unreached, ok := shells[math.MaxInt32]; ok {
		delete(shells, math.MaxInt32)
		shells[maxDepth+1] = append(shells[maxDepth+1], unreached...)
		maxDepth++
	}

	pos := make(Positions, len(ids))
	for depth, members := range shells {
		radius := float64(depth + 1)
		n := float64(len(members))
		for i, id := range members {
			phi := 2.0 * math.Pi * float64(i) / n
			pos[id] = [2]float64{radius * math.Cos(phi), radius * math.Sin(phi)}
		}
	}
	return pos
}

// spiralLayout places the nodes on an Archimedean spiral, ordered by row
// index.
type spiralLayout struct{}

func (spiralLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	pos := make(Positions, len(ids))
	for i, id := range ids {
		phi := 0.5 * math.Sqrt(float64(i)) * 2.0 * math.Pi / 3.0
		r := 0.5 + phi
		pos[id] = [2]float64{r * math.Cos(phi), r * math.Sin(phi)}
	}
	return pos
}

// randomLayout scatters the nodes uniformly in the unit square.
type randomLayout struct{}

func (randomLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	rng := rand.New(rand.NewSource(int64(len(ids))))
	pos := make(Positions, len(ids))
	for _, id := range ids {
		pos[id] = [2]float64{rng.Float64(), rng.Float64()}
	}
	return pos
}

// springLayout is a Fruchterman-Reingold force simulation with a cooling
// schedule. Deterministic: the initial placement is seeded by the node
// count so that repeated layouts of the same graph agree.
type springLayout struct {
	iterations int
}

func (l springLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	n := len(ids)
	if n == 0 {
		return Positions{}
	}

	index := make(map[int64]int, n)
	for i, id := range ids {
		index[id] = i
	}

	rng := rand.New(rand.NewSource(int64(n)))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64()
		y[i] = rng.Float64()
	}

	type pair struct{ a, b int }
	var springs []pair
	it := g.Edges()
	for it.Next() {
		e := it.Edge()
		springs = append(springs, pair{index[e.From().ID()], index[e.To().ID()]})
	}

	k := math.Sqrt(1.0 / float64(n))
	temperature := 0.1
	cooling := temperature / float64(l.iterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)
	for iter := 0; iter < l.iterations; iter++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		// Pairwise repulsion.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx := x[i] - x[j]
				ddy := y[i] - y[j]
				dist := math.Hypot(ddx, ddy)
				if dist < 1e-9 {
					ddx, ddy, dist = 1e-4, 1e-4, 1e-4*math.Sqrt2
				}
				f := k * k / dist
				dx[i] += ddx / dist * f
				dy[i] += ddy / dist * f
				dx[j] -= ddx / dist * f
				dy[j] -= ddy / dist * f
			}
		}

		// Spring attraction along the edges.
		for _, s := range springs {
			ddx := x[s.a] - x[s.b]
			ddy := y[s.a] - y[s.b]
			dist := math.Hypot(ddx, ddy)
			if dist < 1e-9 {
				continue
			}
			f := dist * dist / k
			dx[s.a] -= ddx / dist * f
			dy[s.a] -= ddy / dist * f
			dx[s.b] += ddx / dist * f
			dy[s.b] += ddy / dist * f
		}

		for i := 0; i < n; i++ {
			d := math.Hypot(dx[i], dy[i])
			if d < 1e-9 {
				continue
			}
			step := math.Min(d, temperature)
			x[i] += dx[i] / d * step
			y[i] += dy[i] / d * step
		}
		temperature -= cooling
	}

	pos := make(Positions, n)
	for i, id := range ids {
		pos[id] = [2]float64{x[i], y[i]}
	}
	return pos
}

// treeLayout stacks the nodes by BFS depth: depth determines the y
// coordinate, the position within the level the x coordinate. The default
// for forests, mirroring the growth direction of a colony.
type treeLayout struct{}

func (treeLayout) Compute(g *simple.DirectedGraph) Positions {
	ids := sortedNodeIDs(g)
	depths := bfsDepths(g, ids)

	levels := make(map[int][]int64)
	maxDepth := 0
	for _, id := range ids {
		d := depths[id]
		if d < 0 {
			d = 0
		}
		levels[d] = append(levels[d], id)
		if d > maxDepth {
			maxDepth = d
		}
	}

	pos := make(Positions, len(ids))
	for depth, members := range levels {
		n := float64(len(members))
		for i, id := range members {
			x := (float64(i) + 0.5) / n
			pos[id] = [2]float64{x, -float64(depth)}
		}
	}
	return pos
}

// bfsDepths returns the BFS depth of every node, measured from the roots
// (nodes without incoming edges). Unreachable nodes get depth -1.
func bfsDepths(g *simple.DirectedGraph, ids []int64) map[int64]int {
	depths := make(map[int64]int, len(ids))
	var queue []int64
	for _, id := range ids {
		if g.To(id).Len() == 0 {
			depths[id] = 0
			queue = append(queue, id)
		} else {
			depths[id] = -1
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next := g.From(id)
		for next.Next() {
			child := next.Node().ID()
			if depths[child] < 0 {
				depths[child] = depths[id] + 1
				queue = append(queue, child)
			}
		}
	}
	return depths
}
