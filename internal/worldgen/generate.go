// Package worldgen orchestrates the full C1->C11 generation pipeline into a
// single populated worldstate.World, in dependency order: terrain ->
// hydrology -> features -> clans -> settlements -> NPCs -> prophecies/quests
// -> villages -> (roads are generated incrementally during settlement
// placement, per spec's "when a structure is placed" trigger). Grounded on
// the teacher's cmd/worldsim/main.go generate-or-load flow and
// internal/world/generation.go top-level Generate function.
package worldgen

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/clans"
	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/features"
	"github.com/talgya/livingworld/internal/hydrology"
	"github.com/talgya/livingworld/internal/npc"
	"github.com/talgya/livingworld/internal/quest"
	"github.com/talgya/livingworld/internal/settlements"
	"github.com/talgya/livingworld/internal/village"
	"github.com/talgya/livingworld/internal/worldgrid"
	"github.com/talgya/livingworld/internal/worldstate"
)

// Request is the external world-generation input contract (spec Section 6).
type Request struct {
	Seed    int64
	Width   int
	Height  int
	Preset  string
	Density float32
}

// Validate rejects malformed requests without touching any state (spec §7,
// "Invalid input").
func (r Request) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return ErrInvalidDimensions
	}
	return nil
}

var ErrInvalidDimensions = invalidInputError("world width/height must be positive")

type invalidInputError string

func (e invalidInputError) Error() string { return string(e) }

// Generate runs the full pipeline and returns a populated World.
func Generate(req Request) (*worldstate.World, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	density := float64(req.Density)
	if density <= 0 {
		density = 1.0
	}

	grid := worldgrid.Generate(worldgrid.Config{Width: req.Width, Height: req.Height, Seed: req.Seed})
	w := worldstate.New(req.Seed, grid)

	w.Rivers = hydrology.GenerateRivers(grid, req.Seed, w.OccupiedTiles)

	featureMap := features.Generate(grid, req.Seed, density, w.OccupiedTiles)
	w.Features = featureMap
	// features.Generate writes a fresh map directly (not via AddFeature), so
	// reorder deterministically now.
	w.ReorderFeaturesByID()

	clanList, centers := clans.Seed(grid, req.Seed, 0, w.OccupiedTiles)
	for _, c := range clanList {
		w.AddClan(c)
	}

	settlementList := settlements.Seed(grid, req.Seed, 0, clanList, centers, w.Structures, w.RoadTiles)
	for _, s := range settlementList {
		w.AddSettlement(s)
	}
	// The settlement seeder writes directly into w.Structures and w.RoadTiles
	// (raw maps) so it can be exercised independently of World; reorder
	// deterministically now.
	w.ReorderStructuresByID()
	w.ReorderRoadTilesByCoord()

	for _, c := range clanList {
		homes, workplaces := homesAndWorkplaces(c, w.Structures, settlementList)
		npcList := npc.SeedClan(req.Seed, 0, c, homes, workplaces)
		for _, n := range npcList {
			w.AddNPC(n)
		}
	}

	for _, p := range quest.SeedProphecies(req.Seed, 0, featureMap) {
		w.AddProphecy(p)
	}
	for _, q := range quest.SeedFeatureQuests(req.Seed, 0, featureMap, nil) {
		w.AddQuest(q)
	}

	villages := village.Detect(req.Seed, 0, w.Structures, w.NPCs, w.Villages)
	for _, v := range villages {
		w.AddVillage(v)
	}

	w.PartitionRegions()

	w.Summary()
	return w, nil
}

func homesAndWorkplaces(clan *entities.Clan, structures map[string]*entities.Structure, settlementList []*entities.Settlement) ([]*entities.Structure, []*entities.Structure) {
	var settlement *entities.Settlement
	for _, s := range settlementList {
		if s.ClanID == clan.ID {
			settlement = s
			break
		}
	}
	if settlement == nil {
		return nil, nil
	}
	var homes, workplaces []*entities.Structure
	for _, sid := range settlement.StructureIDs {
		s, ok := structures[sid]
		if !ok {
			continue
		}
		if s.Type.IsResidential() {
			homes = append(homes, s)
		}
		if s.Type.IsCommercial() || s.Type.IsCore() {
			workplaces = append(workplaces, s)
		}
	}
	if len(homes) == 0 {
		homes = []*entities.Structure{}
	}
	if len(workplaces) == 0 {
		workplaces = homes
	}
	slog.Debug("clan housing resolved", "clan", clan.ID, "homes", len(homes), "workplaces", len(workplaces))
	return homes, workplaces
}
