package provider

import (
	"math/rand"

	"github.com/zibamira/CTCoral-CoDA/table"
)

// Random generates synthetic test data: six numeric feature columns, two
// label columns, locations scattered around a nice, local Berlin bakery and
// a spanning tree connecting the samples. Used by the "random" subcommand
// and by tests.
type Random struct {
	Base

	// Samples is the number of generated rows.
	Samples int

	// Seed makes the data reproducible. Zero means a new draw per reload.
	Seed int64
}

// NewRandom creates a random provider with the default sample count.
func NewRandom(seed int64) *Random {
	return &Random{
		Base:    NewBase(),
		Samples: 100,
		Seed:    seed,
	}
}

// Reload generates a new random data set.
func (p *Random) Reload() error {
	n := p.Samples
	rng := rand.New(rand.NewSource(p.Seed))
	if p.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	normal := func(mean, std float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = mean + std*rng.NormFloat64()
		}
		return out
	}
	uniform := func() []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = rng.Float64()
		}
		return out
	}
	choice := func(options ...string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = options[rng.Intn(len(options))]
		}
		return out
	}

	vertices := table.New()
	for name, values := range map[string][]float64{
		"input:col A": uniform(),
		"input:col B": normal(0.0, 1.0),
		"input:col C": uniform(),
		"input:col D": uniform(),
		"input:col E": uniform(),
		"input:col F": uniform(),
		// randomly distributed around a nice, local Berlin bakery
		"input:latitude":  normal(52.5211544, 0.004),
		"input:longitude": normal(13.3469807, 0.008),
	} {
		if err := vertices.SetNumbers(name, values); err != nil {
			return err
		}
	}
	if err := vertices.SetStrings("input:label A", choice("A1", "A2")); err != nil {
		return err
	}
	if err := vertices.SetStrings("input:label B", choice("B1", "B2", "B3")); err != nil {
		return err
	}

	// Spanning tree over a random vertex order: every vertex links to a
	// random earlier one, so the graph is connected with n-1 edges.
	perm := rng.Perm(n)
	source := make([]float64, 0, n-1)
	target := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		parent := perm[rng.Intn(i)]
		source = append(source, float64(parent))
		target = append(target, float64(perm[i]))
	}

	edges := table.New()
	if err := edges.SetNumbers("source", source); err != nil {
		return err
	}
	if err := edges.SetNumbers("target", target); err != nil {
		return err
	}

	p.SetTables(vertices, edges)
	p.NotifyChange()
	return nil
}
