// Package settlements builds one settlement per clan: a core structure
// (guild hall or temple), 3-5 residential structures, and 1-2 commercial
// structures, minimum 5-tile pairwise spacing, entrance side chosen by
// terrain. See spec Section 4.5 (C6). Grounded on the teacher's
// internal/world/settlement_placer.go (candidate scanning, spacing retry
// loop, entrance-facing heuristic), generalized from the teacher's single
// settlement-per-map placement to one settlement per clan with a fixed
// structure-type roster.
package settlements

import (
	"fmt"
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/placement"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/roads"
	"github.com/talgya/livingworld/internal/worldgrid"
)

// Seed places a settlement for each clan around its chosen center.
func Seed(g *worldgrid.Grid, worldSeed int64, tick uint64, clans []*entities.Clan, centers map[string]worldgrid.Coord, structures map[string]*entities.Structure, roadTiles map[worldgrid.Coord]*entities.RoadTile) []*entities.Settlement {
	seed := rng.SubSeed(worldSeed, rng.StageSettle)
	src := rng.New(seed)

	settlements := make([]*entities.Settlement, 0, len(clans))
	structIndex := 0

	for _, clan := range clans {
		center := centers[clan.ID]
		settlementID := ids.Entity("settlement", clan.ID, seed, uint64(structIndex))
		settlement := &entities.Settlement{
			ID:     settlementID,
			Name:   fmt.Sprintf("%s Settlement", clan.Name),
			ClanID: clan.ID,
			Center: center,
		}

		coreType := entities.StructureGuildHall
		if src.Float64() < 0.5 {
			coreType = entities.StructureTemple
		}
		var placedInSettlement []*entities.Structure
		core, ok := placeStructure(g, src, seed, tick, clan.ID, coreType, center, structures, roadTiles, &structIndex)
		if ok {
			settlement.StructureIDs = append(settlement.StructureIDs, core.ID)
			placedInSettlement = append(placedInSettlement, core)
		}

		residentialCount := 3 + src.Intn(3) // 3..5
		for i := 0; i < residentialCount; i++ {
			s, ok := placeStructure(g, src, seed, tick, clan.ID, entities.StructureHouse, center, structures, roadTiles, &structIndex)
			if !ok {
				continue
			}
			settlement.StructureIDs = append(settlement.StructureIDs, s.ID)
			placedInSettlement = append(placedInSettlement, s)
		}

		commercialCount := 1 + src.Intn(2) // 1..2
		for i := 0; i < commercialCount; i++ {
			t := entities.StructureMarket
			if src.Float64() < 0.5 {
				t = entities.StructureWorkshop
			}
			s, ok := placeStructure(g, src, seed, tick, clan.ID, t, center, structures, roadTiles, &structIndex)
			if !ok {
				continue
			}
			settlement.StructureIDs = append(settlement.StructureIDs, s.ID)
			placedInSettlement = append(placedInSettlement, s)
		}

		clan.SettlementID = settlement.ID
		settlements = append(settlements, settlement)
		_ = placedInSettlement
	}

	slog.Info("settlements seeded", "count", len(settlements))
	return settlements
}

// placeStructure scans outward from center for a valid placement spot,
// picks an entrance side facing flatter/lower terrain, validates via C11,
// registers the structure, and connects it to the road network (C10).
func placeStructure(g *worldgrid.Grid, src *rng.Source, seed int64, tick uint64, clanID string, structType entities.StructureType, center worldgrid.Coord, structures map[string]*entities.Structure, roadTiles map[worldgrid.Coord]*entities.RoadTile, structIndex *int) (*entities.Structure, bool) {
	const maxAttempts = 200
	const searchRadius = 20

	for attempt := 0; attempt < maxAttempts; attempt++ {
		dx := src.Intn(searchRadius*2+1) - searchRadius
		dy := src.Intn(searchRadius*2+1) - searchRadius
		c := worldgrid.Coord{X: center.X + dx, Y: center.Y + dy}
		if !g.InBounds(c) {
			continue
		}
		entrance := pickEntrance(g, c, src)

		if err := placement.Validate(g, c, entrance, structType, structures, roadTiles); err != nil {
			continue
		}

		id := ids.Entity("structure", clanID, seed, uint64(*structIndex))
		*structIndex++

		maxHealth := 100.0
		s := &entities.Structure{
			ID:              id,
			Type:            structType,
			Location:        c,
			Health:          maxHealth,
			MaxHealth:       maxHealth,
			Entrance:        entrance,
			OwnerID:         clanID,
			OwnerType:       "clan",
			Permissions:     map[string]string{"owner": "full"},
			CreatedAtTick:   tick,
			LastUpdatedTick: tick,
			Metadata:        map[string]string{},
		}

		existing := make([]*entities.Structure, 0, len(structures))
		for _, other := range structures {
			existing = append(existing, other)
		}

		structures[id] = s
		roads.ConnectNewStructure(g, tick, s, existing, roadTiles)

		return s, true
	}
	return nil, false
}

// pickEntrance faces the door toward the lowest-elevation neighbor,
// matching the spec's "entrance side chosen by biome/terrain" rule.
func pickEntrance(g *worldgrid.Grid, c worldgrid.Coord, src *rng.Source) entities.EntranceSide {
	sides := []entities.EntranceSide{entities.EntranceNorth, entities.EntranceEast, entities.EntranceSouth, entities.EntranceWest}
	best := sides[src.Intn(len(sides))]
	bestElev := 2.0
	for _, side := range sides {
		n := neighborFor(c, side)
		if t, ok := g.TryAt(n); ok && t.Elevation < bestElev {
			bestElev = t.Elevation
			best = side
		}
	}
	return best
}

func neighborFor(c worldgrid.Coord, e entities.EntranceSide) worldgrid.Coord {
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
