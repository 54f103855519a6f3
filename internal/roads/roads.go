// Package roads implements A* pathfinding between structure entrances and
// the resulting road-tile bookkeeping (traffic-driven surface upgrades).
// See spec Section 4.9 (C10 — Road Builder). Grounded on the teacher's
// internal/world pathing-adjacent code is absent (the teacher has no road
// system), so this is built from the more general katalvlaran/lvlath graph
// shape (core.Graph/BFS) generalized to a hand-rolled A* via container/heap
// — lvlath's Dijkstra only supports int64 edge weights and has no heuristic
// or early-termination hook, which the spec's continuous elevation-delta
// cost and goal-directed search both require (see DESIGN.md).
package roads

import (
	"container/heap"
	"log/slog"
	"sort"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const searchRadius = 10 // Chebyshev tiles: connect to every existing structure within this range

// astarNode is one entry in the A* open set.
type astarNode struct {
	coord  worldgrid.Coord
	g      float64 // cost so far
	f      float64 // g + heuristic
	parent worldgrid.Coord
	hasParent bool
	index  int
}

type openSet []*astarNode

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index, o[j].index = i, j
}
func (o *openSet) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}

// isPassable reports whether a tile can carry a road for the given
// structure type (water/mountain are impassable unless DOCK/FISHING_HUT).
func isPassable(g *worldgrid.Grid, c worldgrid.Coord, structType entities.StructureType) bool {
	if !g.InBounds(c) {
		return false
	}
	t := g.At(c)
	if t.Elevation > 0.7 {
		return false
	}
	if t.Elevation < 0.2 && !structType.IsWaterCompatible() {
		return false
	}
	return true
}

func moveCost(g *worldgrid.Grid, from, to worldgrid.Coord, roads map[worldgrid.Coord]*entities.RoadTile) float64 {
	delta := g.At(to).Elevation - g.At(from).Elevation
	if delta < 0 {
		delta = -delta
	}
	cost := 1.0 + 2.0*delta
	if _, existing := roads[to]; existing {
		cost *= 0.5
	}
	return cost
}

// FindPath runs A* from start to goal, returning the tile path (inclusive)
// or nil if no path was found within the safety budget.
func FindPath(g *worldgrid.Grid, start, goal worldgrid.Coord, structType entities.StructureType, roads map[worldgrid.Coord]*entities.RoadTile) []worldgrid.Coord {
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &astarNode{coord: start, g: 0, f: heuristic(start, goal)})

	best := make(map[worldgrid.Coord]float64)
	best[start] = 0
	parent := make(map[worldgrid.Coord]worldgrid.Coord)
	visited := make(map[worldgrid.Coord]bool)

	budget := g.Width * g.Height
	explored := 0

	for open.Len() > 0 {
		cur := heap.Pop(open).(*astarNode)
		if visited[cur.coord] {
			continue
		}
		visited[cur.coord] = true
		if cur.hasParent {
			parent[cur.coord] = cur.parent
		}
		explored++
		if explored > budget {
			return nil
		}

		if cur.coord == goal {
			return reconstruct(parent, start, goal)
		}

		for _, n := range cur.coord.Neighbors4() {
			if visited[n] || !isPassable(g, n, structType) {
				continue
			}
			tentative := cur.g + moveCost(g, cur.coord, n, roads)
			if prev, ok := best[n]; ok && tentative >= prev {
				continue
			}
			best[n] = tentative
			heap.Push(open, &astarNode{
				coord:     n,
				g:         tentative,
				f:         tentative + heuristic(n, goal),
				parent:    cur.coord,
				hasParent: true,
			})
		}
	}
	return nil
}

func heuristic(a, b worldgrid.Coord) float64 {
	return float64(worldgrid.ManhattanDistance(a, b))
}

func reconstruct(parent map[worldgrid.Coord]worldgrid.Coord, start, goal worldgrid.Coord) []worldgrid.Coord {
	path := []worldgrid.Coord{goal}
	cur := goal
	for cur != start {
		p, ok := parent[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ConnectNewStructure runs A* from the new structure's entrance to every
// existing structure's entrance within searchRadius Chebyshev tiles, laying
// road tiles along any path found. If the entrance still has no 4-adjacent
// road afterward, a final A* run connects it to the nearest existing road
// tile.
func ConnectNewStructure(g *worldgrid.Grid, tick uint64, newStruct *entities.Structure, existing []*entities.Structure, roads map[worldgrid.Coord]*entities.RoadTile) {
	origin := newStruct.EntranceTile()

	for _, other := range existing {
		if worldgrid.ChebyshevDistance(newStruct.Location, other.Location) > searchRadius {
			continue
		}
		goal := other.EntranceTile()
		path := FindPath(g, origin, goal, newStruct.Type, roads)
		layRoad(roads, path, tick)
	}

	if !hasAdjacentRoad(origin, roads) && len(roads) > 0 {
		nearest, ok := nearestRoadTile(origin, roads)
		if ok {
			path := FindPath(g, origin, nearest, newStruct.Type, roads)
			layRoad(roads, path, tick)
		}
	}

	slog.Debug("road connection attempted", "structure", newStruct.ID, "road_tiles", len(roads))
}

func layRoad(roads map[worldgrid.Coord]*entities.RoadTile, path []worldgrid.Coord, tick uint64) {
	if path == nil {
		return
	}
	for _, c := range path {
		if rt, ok := roads[c]; ok {
			IncrementTraffic(rt, 1)
			continue
		}
		roads[c] = &entities.RoadTile{
			Position:      c,
			Surface:       entities.RoadDirt,
			Traffic:       0,
			CreatedTick:   tick,
			AutoGenerated: true,
		}
	}
}

func hasAdjacentRoad(c worldgrid.Coord, roads map[worldgrid.Coord]*entities.RoadTile) bool {
	for _, n := range c.Neighbors4() {
		if _, ok := roads[n]; ok {
			return true
		}
	}
	_, onTile := roads[c]
	return onTile
}

func nearestRoadTile(c worldgrid.Coord, roads map[worldgrid.Coord]*entities.RoadTile) (worldgrid.Coord, bool) {
	positions := make([]worldgrid.Coord, 0, len(roads))
	for pos := range roads {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})

	best := c
	bestDist := -1
	found := false
	for _, pos := range positions {
		d := worldgrid.ManhattanDistance(c, pos)
		if !found || d < bestDist {
			bestDist = d
			best = pos
			found = true
		}
	}
	return best, found
}

// IncrementTraffic bumps a road tile's traffic level, capping at 100 and
// upgrading surface at 50 (STONE) and 80 (PAVED). Roads never downgrade or
// remove themselves.
func IncrementTraffic(rt *entities.RoadTile, amount int) {
	rt.Traffic += amount
	if rt.Traffic > 100 {
		rt.Traffic = 100
	}
	switch {
	case rt.Traffic >= 80:
		rt.Surface = entities.RoadPaved
	case rt.Traffic >= 50:
		if rt.Surface == entities.RoadDirt {
			rt.Surface = entities.RoadStone
		}
	}
}
