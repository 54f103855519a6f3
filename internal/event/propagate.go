// Package event implements BFS-based event/story propagation with
// exponential decay (C17) and per-region saturation caps (C18). See spec
// Sections 4.16-4.17. Grounded on katalvlaran/lvlath's graph.BFS traversal
// shape (visited-set cycle prevention, hop/depth bookkeeping), generalized
// from an unweighted shortest-path search to a probabilistic expansion with
// a per-hop acceptance roll.
package event

import (
	"math"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const (
	defaultK             = 0.8
	defaultMaxHops       = 6
	acceptanceThreshold  = 0.01
	storyCap             = 50
	eventCap             = 20
	softCapFraction      = 0.80
)

// DecayModel selects between exponential (default) and linear decay.
type DecayModel int

const (
	DecayExponential DecayModel = iota
	DecayLinear
)

// SaturationFactor returns max(0, 1 - currentCount/maxCap), the per-region
// multiplier applied to spawn/propagation probability (C18).
func SaturationFactor(currentCount, maxCap int) float64 {
	f := 1.0 - float64(currentCount)/float64(maxCap)
	if f < 0 {
		return 0
	}
	return f
}

// SoftCapTriggered reports whether currentCount has crossed 80% of maxCap.
func SoftCapTriggered(currentCount, maxCap int) bool {
	return float64(currentCount) >= float64(maxCap)*softCapFraction
}

// connectionFactor is read from a sparse override map keyed by the
// destination tile (from is not consulted), default 1.0 — spec §9 ("Event propagation using dynamic neighbor callbacks" ->
// replaced with a static 4-connected neighbor function plus this map).
func connectionFactor(overrides map[worldgrid.Coord]float64, from, to worldgrid.Coord) float64 {
	if overrides == nil {
		return 1.0
	}
	if f, ok := overrides[to]; ok {
		return f
	}
	return 1.0
}

// EffectiveProbability computes p_eff(h) = base * decay(h) * connection *
// saturation.
func EffectiveProbability(base float64, hop int, model DecayModel, k float64, connFactor, saturation float64) float64 {
	var decay float64
	switch model {
	case DecayLinear:
		decay = 1.0 - k*float64(hop)
		if decay < 0 {
			decay = 0
		}
	default:
		decay = math.Exp(-k * float64(hop))
	}
	return base * decay * connFactor * saturation
}

// Propagate performs a BFS-shaped expansion from origin, accepting each
// candidate tile with probability p_eff(hop), stopping at maxHops or when
// p_eff falls below acceptanceThreshold. Tie-breaking/acceptance rolls use
// an RNG seeded from (eventID, currentTick) so the result is deterministic.
func Propagate(g *worldgrid.Grid, eventID string, currentTick uint64, origin worldgrid.Coord, baseProbability float64, model DecayModel, k float64, maxHops int, saturation float64, connOverrides map[worldgrid.Coord]float64) map[worldgrid.Coord]bool {
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}
	if k <= 0 {
		k = defaultK
	}

	seed := rng.TickSeed(0, currentTick, hashEventID(eventID))
	src := rng.New(seed)

	affected := map[worldgrid.Coord]bool{origin: true}
	frontier := []worldgrid.Coord{origin}

	for hop := 1; hop <= maxHops; hop++ {
		pEff := EffectiveProbability(baseProbability, hop, model, k, 1.0, saturation)
		if pEff < acceptanceThreshold {
			break
		}

		var next []worldgrid.Coord
		for _, c := range frontier {
			for _, n := range c.Neighbors4() {
				if !g.InBounds(n) || affected[n] {
					continue
				}
				cf := connectionFactor(connOverrides, c, n)
				hopProb := EffectiveProbability(baseProbability, hop, model, k, cf, saturation)
				if src.Float64() < hopProb {
					affected[n] = true
					next = append(next, n)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	return affected
}

func hashEventID(id string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 1099511628211
	}
	return h
}

// StoryCap and EventCap expose the per-region caps. This package has no
// register/unregister functions: callers adjust entities.Region.ActiveStoryIDs /
// ActiveEventIDs directly; this package only computes the probability
// factors those counts feed into.
func StoryCap() int { return storyCap }
func EventCap() int { return eventCap }
