package graph

import (
	"math"
	"math/rand"
	"time"
)

const (
	defaultIterations  = 100
	repulsionStrength  = 500.0
	repulsionPadding   = 100.0
	attractionStrength = 0.1
	damping            = 0.95
	initialSpread      = 1000.0
)

// LayoutOptions control the force simulation. A zero Seed picks a
// time-based one; tests inject a fixed seed for reproducible runs.
// ShouldContinue, when set, is checked once per iteration so callers can
// abandon long runs on large graphs.
type LayoutOptions struct {
	Iterations     int
	Seed           int64
	ShouldContinue func() bool
}

// Layout assigns 2D positions to the graph's nodes in place by running a
// fixed number of force-directed iterations: inverse-square repulsion
// between near pairs, spring attraction along links, damped unit-step
// integration. All forces in an iteration are computed from a position
// snapshot before any are applied. There is no convergence-based early
// exit.
func Layout(g *Graph, opts LayoutOptions) {
	if g == nil || len(g.Nodes) == 0 {
		return
	}
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	for _, n := range g.Nodes {
		n.X = (rng.Float64() - 0.5) * initialSpread
		n.Y = (rng.Float64() - 0.5) * initialSpread
	}

	index := make(map[string]int, len(g.Nodes))
	sizes := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
		sizes[i] = n.Size()
	}

	fx := make([]float64, len(g.Nodes))
	fy := make([]float64, len(g.Nodes))
	for iter := 0; iter < iterations; iter++ {
		if opts.ShouldContinue != nil && !opts.ShouldContinue() {
			return
		}
		for i := range fx {
			fx[i], fy[i] = 0, 0
		}

		// Repulsion between pairs whose centers are close enough to
		// interact. Sub-unit distances are skipped this iteration to
		// avoid the singularity.
		for i := 0; i < len(g.Nodes); i++ {
			for j := i + 1; j < len(g.Nodes); j++ {
				dx := g.Nodes[j].X - g.Nodes[i].X
				dy := g.Nodes[j].Y - g.Nodes[i].Y
				dist := math.Hypot(dx, dy)
				if dist < 1 || math.IsNaN(dist) {
					continue
				}
				if dist >= sizes[i]+sizes[j]+repulsionPadding {
					continue
				}
				push := repulsionStrength / (dist * dist) / 2
				ux, uy := dx/dist, dy/dist
				fx[i] -= ux * push
				fy[i] -= uy * push
				fx[j] += ux * push
				fy[j] += uy * push
			}
		}

		// Spring attraction along links toward a rest length that grows
		// with the edge weight.
		for _, l := range g.Links {
			si, ok1 := index[l.Source]
			ti, ok2 := index[l.Target]
			if !ok1 || !ok2 || si == ti {
				continue
			}
			dx := g.Nodes[ti].X - g.Nodes[si].X
			dy := g.Nodes[ti].Y - g.Nodes[si].Y
			dist := math.Hypot(dx, dy)
			if dist < 1 || math.IsNaN(dist) {
				continue
			}
			v := l.Value
			if v <= 0 {
				v = 1
			}
			ideal := 100 + math.Log10(v)*50
			force := (dist - ideal) * math.Log10(1+v) * attractionStrength / 2
			ux, uy := dx/dist, dy/dist
			fx[si] += ux * force
			fy[si] += uy * force
			fx[ti] -= ux * force
			fy[ti] -= uy * force
		}

		for i, n := range g.Nodes {
			if math.IsNaN(fx[i]) || math.IsNaN(fy[i]) {
				continue
			}
			n.X += fx[i] * damping
			n.Y += fy[i] * damping
		}
	}
}
