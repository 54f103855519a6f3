// Package hydrology implements river tracing from elevated sources down to
// sea level or a terminal lake, via a priority-queue downhill search.
// See spec Section 4.3 (C3 — Hydrology). Grounded on the teacher's
// internal/world river-tracing logic in internal/world/generation.go
// (steepest-descent walk) and internal/world/map.go (occupied-tile
// bookkeeping), adapted from single steepest-descent stepping to a proper
// priority-queue search so plateaus and micro-noise tie-breaking are handled
// per the spec's exact invariants.
package hydrology

import (
	"container/heap"
	"fmt"
	"log/slog"

	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const (
	sourceMinElevation = 0.6
	sourcePeakCutoff   = 0.95
	terminusElevation  = 0.2
	downhillSlack      = 1e-3
	tieBreakAmplitude  = 5e-5
	minRiverLength     = 5
)

// River is a traced watercourse from a source tile down to its terminus.
type River struct {
	ID         string
	Path       []worldgrid.Coord
	Elevations []float64 // true elevations, never priority-mixed
	IsLake     bool       // true if the search terminated by length, not by reaching sea level
}

// pqItem is one frontier entry in the downhill search.
type pqItem struct {
	coord    worldgrid.Coord
	priority float64 // true elevation + micro-noise tie-break
	parent   worldgrid.Coord
	hasParent bool
	pathLen  int
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// GenerateRivers finds every qualifying source tile and traces a river from
// each, skipping sources already occupied by an earlier river. Rivers
// shorter than minRiverLength tiles are discarded (and not marked occupied).
func GenerateRivers(g *worldgrid.Grid, worldSeed int64, occupied map[worldgrid.Coord]bool) []River {
	seed := rng.SubSeed(worldSeed, rng.StageHydrology)
	var rivers []River
	maxLen := g.Width
	if g.Height < maxLen {
		maxLen = g.Height
	}
	maxLen *= 2
	safetyLimit := maxLen * 4
	if budget := (g.Width * g.Height) / 4; budget < safetyLimit {
		safetyLimit = budget
	}

	index := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := worldgrid.Coord{X: x, Y: y}
			t := g.At(c)
			if t.Elevation < sourceMinElevation || t.Elevation >= sourcePeakCutoff {
				continue
			}
			if occupied[c] {
				continue
			}
			river, ok := traceRiver(g, seed, c, maxLen, safetyLimit, occupied, index)
			index++
			if !ok {
				continue
			}
			if len(river.Path) < minRiverLength {
				continue
			}
			for _, p := range river.Path {
				occupied[p] = true
			}
			rivers = append(rivers, river)
		}
	}

	slog.Info("hydrology generated", "rivers", len(rivers))
	return rivers
}

// traceRiver performs the priority-queue downhill search from a single
// source, returning the traced path or ok=false if it was discarded.
func traceRiver(g *worldgrid.Grid, seed int64, source worldgrid.Coord, maxLen, safetyLimit int, occupied map[worldgrid.Coord]bool, riverIndex int) (River, bool) {
	pq := &priorityQueue{}
	heap.Init(pq)

	visited := make(map[worldgrid.Coord]bool)
	parent := make(map[worldgrid.Coord]worldgrid.Coord)
	pathLenOf := make(map[worldgrid.Coord]int)

	heap.Push(pq, &pqItem{coord: source, priority: g.At(source).Elevation, pathLen: 1})

	explored := 0
	var terminus worldgrid.Coord
	found := false
	isLake := false

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		c := item.coord
		if visited[c] {
			continue
		}
		visited[c] = true
		if item.hasParent {
			parent[c] = item.parent
		}
		pathLenOf[c] = item.pathLen
		explored++

		t := g.At(c)
		if t.Elevation < terminusElevation {
			terminus = c
			found = true
			break
		}
		if item.pathLen >= maxLen {
			terminus = c
			found = true
			isLake = true
			break
		}
		if explored > safetyLimit {
			return River{}, false
		}

		for _, n := range c.Neighbors4() {
			if !g.InBounds(n) || visited[n] {
				continue
			}
			nt := g.At(n)
			if nt.Elevation > t.Elevation+downhillSlack {
				continue
			}
			tieBreak, err := rng.MicroNoise(seed, n.X, n.Y, tieBreakAmplitude)
			if err != nil {
				slog.Warn("river tie-break noise out of bounds, falling back to 0", "x", n.X, "y", n.Y, "err", err)
			}
			priority := nt.Elevation + tieBreak
			heap.Push(pq, &pqItem{
				coord:     n,
				priority:  priority,
				parent:    c,
				hasParent: true,
				pathLen:   item.pathLen + 1,
			})
		}
	}

	if !found {
		return River{}, false
	}

	path := []worldgrid.Coord{terminus}
	cur := terminus
	for {
		p, ok := parent[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	// reverse: path was built terminus -> source, flip to source -> terminus
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	elevations := make([]float64, len(path))
	for i, p := range path {
		elevations[i] = g.At(p).Elevation
	}

	return River{
		ID:         riverID(seed, source, riverIndex),
		Path:       path,
		Elevations: elevations,
		IsLake:     isLake,
	}, true
}

func riverID(seed int64, source worldgrid.Coord, index int) string {
	context := fmt.Sprintf("%d_%d", source.X, source.Y)
	return ids.Entity("river", context, seed, uint64(index))
}
