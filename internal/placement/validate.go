// Package placement implements the structure placement validator (C11):
// spacing, entrance clearance, terrain, and road-occupancy rules shared by
// the settlement seeder (C6) and clan AI expansion (C14).
// Grounded on the teacher's internal/world/settlement_placer.go candidate
// scoring (distance checks, terrain suitability gating).
package placement

import (
	"fmt"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/worldgrid"
)

// RejectionKind enumerates the typed placement failure reasons (spec §7).
type RejectionKind string

const (
	TooClose           RejectionKind = "TOO_CLOSE"
	BlockingEntrance    RejectionKind = "BLOCKING_ENTRANCE"
	OnRoad              RejectionKind = "ON_ROAD"
	UnsuitableTerrain   RejectionKind = "UNSUITABLE_TERRAIN"
	OutOfBounds         RejectionKind = "OUT_OF_BOUNDS"
)

// RejectionError is returned by Validate when placement fails.
type RejectionError struct {
	Kind    RejectionKind
	Message string
}

func (e *RejectionError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

const minStructureSpacing = 5

// Validate checks whether a structure of the given type can be placed at c
// with the given entrance side, against the existing structure and road
// collections.
func Validate(g *worldgrid.Grid, c worldgrid.Coord, entrance entities.EntranceSide, structType entities.StructureType, structures map[string]*entities.Structure, roads map[worldgrid.Coord]*entities.RoadTile) error {
	if !g.InBounds(c) {
		return &RejectionError{OutOfBounds, "coordinate outside world bounds"}
	}

	entranceTile := entranceTileFor(c, entrance)
	for _, s := range structures {
		if s.Location == entranceTile {
			return &RejectionError{BlockingEntrance, "entrance tile occupied by another structure"}
		}
	}

	for _, s := range structures {
		dist := centerDistance(c, s.Location)
		if dist < minStructureSpacing {
			return &RejectionError{TooClose, fmt.Sprintf("within %d tiles of structure %s", minStructureSpacing, s.ID)}
		}
	}

	if _, onRoad := roads[c]; onRoad {
		return &RejectionError{OnRoad, "target tile lies on an existing road"}
	}

	t := g.At(c)
	if t.Elevation > 0.7 {
		return &RejectionError{UnsuitableTerrain, "elevation too high (mountain)"}
	}
	if t.Elevation < 0.2 && !structType.IsWaterCompatible() {
		return &RejectionError{UnsuitableTerrain, "elevation too low (water) for non-aquatic structure"}
	}

	return nil
}

func centerDistance(a, b worldgrid.Coord) int {
	return worldgrid.ChebyshevDistance(a, b)
}

func entranceTileFor(c worldgrid.Coord, e entities.EntranceSide) worldgrid.Coord {
	switch e {
	case entities.EntranceNorth:
		return worldgrid.Coord{X: c.X, Y: c.Y - 1}
	case entities.EntranceEast:
		return worldgrid.Coord{X: c.X + 1, Y: c.Y}
	case entities.EntranceSouth:
		return worldgrid.Coord{X: c.X, Y: c.Y + 1}
	default:
		return worldgrid.Coord{X: c.X - 1, Y: c.Y}
	}
}
