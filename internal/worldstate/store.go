// Package worldstate holds the single per-world context struct that every
// generator and subsystem is handed explicitly — there is no process-wide
// singleton or global registry anywhere in this module (spec Section 9,
// "Global mutable state"). Entities are kept in one collection per kind,
// addressed by id; nothing holds an owning pointer to another entity.
// Grounded on the teacher's internal/engine/simulation.go (one struct
// gathering every subsystem's live state) and internal/world/map.go (the
// world-grid-plus-derived-collections shape), generalized from a single
// global simulation to an explicit, passed-around context.
package worldstate

import (
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/hydrology"
	"github.com/talgya/livingworld/internal/worldgrid"
)

// World is the full live state of one generated, simulated world.
type World struct {
	Seed int64
	Grid *worldgrid.Grid
	Tick uint64

	// RegionSize is the side length in tiles of each square region chunk
	// (spec Section 4.11); Region.Bounds is that chunk's top-left corner.
	RegionSize int

	Rivers   []hydrology.River
	Features map[string]*entities.Feature

	Clans       map[string]*entities.Clan
	Settlements map[string]*entities.Settlement
	Structures  map[string]*entities.Structure
	NPCs        map[string]*entities.NPC
	Villages    map[string]*entities.Village
	RoadTiles   map[worldgrid.Coord]*entities.RoadTile
	Quests      map[string]*entities.Quest
	Prophecies  map[string]*entities.Prophecy
	Stories     map[string]*entities.Story
	Events      map[string]*entities.Event
	Regions     map[string]*entities.Region

	// OccupiedTiles tracks river/feature/structure/road footprints so
	// placement and generation stages never silently overlap.
	OccupiedTiles map[worldgrid.Coord]bool

	// insertion order per kind, preserved so canonical encoding (checksum,
	// persistence) is reproducible — ordering is by insertion, then by
	// stable id, per the determinism contract in spec Section 5.
	clanOrder       []string
	settlementOrder []string
	structureOrder  []string
	npcOrder        []string
	villageOrder    []string
	questOrder      []string
	prophecyOrder   []string
	storyOrder      []string
	eventOrder      []string
	featureOrder    []string
	roadTileOrder   []worldgrid.Coord
}

// New allocates an empty World ready to receive generation output.
func New(seed int64, grid *worldgrid.Grid) *World {
	return &World{
		Seed:          seed,
		Grid:          grid,
		Features:      make(map[string]*entities.Feature),
		Clans:         make(map[string]*entities.Clan),
		Settlements:   make(map[string]*entities.Settlement),
		Structures:    make(map[string]*entities.Structure),
		NPCs:          make(map[string]*entities.NPC),
		Villages:      make(map[string]*entities.Village),
		RoadTiles:     make(map[worldgrid.Coord]*entities.RoadTile),
		Quests:        make(map[string]*entities.Quest),
		Prophecies:    make(map[string]*entities.Prophecy),
		Stories:       make(map[string]*entities.Story),
		Events:        make(map[string]*entities.Event),
		Regions:       make(map[string]*entities.Region),
		OccupiedTiles: make(map[worldgrid.Coord]bool),
	}
}

func (w *World) AddClan(c *entities.Clan) {
	if _, exists := w.Clans[c.ID]; !exists {
		w.clanOrder = append(w.clanOrder, c.ID)
	}
	w.Clans[c.ID] = c
}

func (w *World) AddSettlement(s *entities.Settlement) {
	if _, exists := w.Settlements[s.ID]; !exists {
		w.settlementOrder = append(w.settlementOrder, s.ID)
	}
	w.Settlements[s.ID] = s
}

func (w *World) AddStructure(s *entities.Structure) {
	if _, exists := w.Structures[s.ID]; !exists {
		w.structureOrder = append(w.structureOrder, s.ID)
	}
	w.Structures[s.ID] = s
	w.OccupiedTiles[s.Location] = true
}

func (w *World) RemoveStructure(id string) {
	if s, ok := w.Structures[id]; ok {
		delete(w.OccupiedTiles, s.Location)
	}
	delete(w.Structures, id)
	w.structureOrder = removeString(w.structureOrder, id)
}

func (w *World) AddNPC(n *entities.NPC) {
	if _, exists := w.NPCs[n.ID]; !exists {
		w.npcOrder = append(w.npcOrder, n.ID)
	}
	w.NPCs[n.ID] = n
}

func (w *World) RemoveNPC(id string) {
	delete(w.NPCs, id)
	w.npcOrder = removeString(w.npcOrder, id)
}

func (w *World) AddFeature(f *entities.Feature) {
	if _, exists := w.Features[f.ID]; !exists {
		w.featureOrder = append(w.featureOrder, f.ID)
	}
	w.Features[f.ID] = f
}

func (w *World) AddRoadTile(pos worldgrid.Coord, rt *entities.RoadTile) {
	if _, exists := w.RoadTiles[pos]; !exists {
		w.roadTileOrder = append(w.roadTileOrder, pos)
	}
	w.RoadTiles[pos] = rt
}

func (w *World) AddVillage(v *entities.Village) {
	if _, exists := w.Villages[v.ID]; !exists {
		w.villageOrder = append(w.villageOrder, v.ID)
	}
	w.Villages[v.ID] = v
}

func (w *World) AddQuest(q *entities.Quest) {
	if _, exists := w.Quests[q.ID]; !exists {
		w.questOrder = append(w.questOrder, q.ID)
	}
	w.Quests[q.ID] = q
}

func (w *World) AddProphecy(p *entities.Prophecy) {
	if _, exists := w.Prophecies[p.ID]; !exists {
		w.prophecyOrder = append(w.prophecyOrder, p.ID)
	}
	w.Prophecies[p.ID] = p
}

func (w *World) AddStory(s *entities.Story) {
	if _, exists := w.Stories[s.ID]; !exists {
		w.storyOrder = append(w.storyOrder, s.ID)
	}
	w.Stories[s.ID] = s
}

func (w *World) AddEvent(e *entities.Event) {
	if _, exists := w.Events[e.ID]; !exists {
		w.eventOrder = append(w.eventOrder, e.ID)
	}
	w.Events[e.ID] = e
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// ClansInOrder returns clans by insertion order (determinism contract).
func (w *World) ClansInOrder() []*entities.Clan {
	out := make([]*entities.Clan, 0, len(w.clanOrder))
	for _, id := range w.clanOrder {
		out = append(out, w.Clans[id])
	}
	return out
}

// ReorderStructuresByID rebuilds the insertion-order index sorted by stable
// id. Used after generation stages that write directly into w.Structures
// (settlement/clan-AI placement helpers take a raw map so they can be
// exercised independently of World) bypassing AddStructure's ordering.
// Sorting by id is a deterministic fallback consistent with the
// determinism contract's "insertion, then stable id" ordering rule.
func (w *World) ReorderStructuresByID() {
	ids := maps.Keys(w.Structures)
	slices.Sort(ids)
	w.structureOrder = ids
	for _, s := range w.Structures {
		w.OccupiedTiles[s.Location] = true
	}
}

// StructuresInOrder returns structures by insertion order.
func (w *World) StructuresInOrder() []*entities.Structure {
	out := make([]*entities.Structure, 0, len(w.structureOrder))
	for _, id := range w.structureOrder {
		out = append(out, w.Structures[id])
	}
	return out
}

// ReorderNPCsByID rebuilds the insertion-order index sorted by stable id.
// Used after subsystems (NPC lifecycle births/deaths) mutate w.NPCs directly
// via the raw map handed to them, bypassing AddNPC/RemoveNPC's ordering.
func (w *World) ReorderNPCsByID() {
	ids := maps.Keys(w.NPCs)
	slices.Sort(ids)
	w.npcOrder = ids
}

// NPCsInOrder returns NPCs by insertion order.
func (w *World) NPCsInOrder() []*entities.NPC {
	out := make([]*entities.NPC, 0, len(w.npcOrder))
	for _, id := range w.npcOrder {
		out = append(out, w.NPCs[id])
	}
	return out
}

// VillagesInOrder returns villages by insertion order.
func (w *World) VillagesInOrder() []*entities.Village {
	out := make([]*entities.Village, 0, len(w.villageOrder))
	for _, id := range w.villageOrder {
		out = append(out, w.Villages[id])
	}
	return out
}

// PropheciesInOrder returns prophecies by insertion order.
func (w *World) PropheciesInOrder() []*entities.Prophecy {
	out := make([]*entities.Prophecy, 0, len(w.prophecyOrder))
	for _, id := range w.prophecyOrder {
		out = append(out, w.Prophecies[id])
	}
	return out
}

// ReorderFeaturesByID rebuilds the insertion-order index sorted by stable
// id. Used after generation stages (internal/features) that write directly
// into w.Features, bypassing AddFeature's ordering.
func (w *World) ReorderFeaturesByID() {
	ids := maps.Keys(w.Features)
	slices.Sort(ids)
	w.featureOrder = ids
}

// FeaturesInOrder returns features by insertion order.
func (w *World) FeaturesInOrder() []*entities.Feature {
	out := make([]*entities.Feature, 0, len(w.featureOrder))
	for _, id := range w.featureOrder {
		out = append(out, w.Features[id])
	}
	return out
}

// ReorderRoadTilesByCoord rebuilds the insertion-order index sorted by
// coordinate (Y then X). Used after the roads package writes directly into
// w.RoadTiles during settlement placement and clan-AI road construction,
// bypassing AddRoadTile's ordering; coordinates aren't otherwise orderable,
// so this is the deterministic fallback for this kind, the coordinate
// equivalent of ReorderStructuresByID/ReorderNPCsByID's sort-by-id.
func (w *World) ReorderRoadTilesByCoord() {
	coords := maps.Keys(w.RoadTiles)
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	w.roadTileOrder = coords
}

// RoadTilesInOrder returns road tiles by insertion order.
func (w *World) RoadTilesInOrder() []*entities.RoadTile {
	out := make([]*entities.RoadTile, 0, len(w.roadTileOrder))
	for _, pos := range w.roadTileOrder {
		out = append(out, w.RoadTiles[pos])
	}
	return out
}

// SettlementsInOrder returns settlements by insertion order.
func (w *World) SettlementsInOrder() []*entities.Settlement {
	out := make([]*entities.Settlement, 0, len(w.settlementOrder))
	for _, id := range w.settlementOrder {
		out = append(out, w.Settlements[id])
	}
	return out
}

// QuestsInOrder returns quests by insertion order.
func (w *World) QuestsInOrder() []*entities.Quest {
	out := make([]*entities.Quest, 0, len(w.questOrder))
	for _, id := range w.questOrder {
		out = append(out, w.Quests[id])
	}
	return out
}

// StoriesInOrder / EventsInOrder mirror the pattern for propagation sources.
func (w *World) StoriesInOrder() []*entities.Story {
	out := make([]*entities.Story, 0, len(w.storyOrder))
	for _, id := range w.storyOrder {
		out = append(out, w.Stories[id])
	}
	return out
}

func (w *World) EventsInOrder() []*entities.Event {
	out := make([]*entities.Event, 0, len(w.eventOrder))
	for _, id := range w.eventOrder {
		out = append(out, w.Events[id])
	}
	return out
}

// RegionsByID returns region ids sorted ascending, per spec §5 ("advance
// regions in ascending id order").
func (w *World) RegionsByID() []*entities.Region {
	ids := maps.Keys(w.Regions)
	slices.Sort(ids)
	out := make([]*entities.Region, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.Regions[id])
	}
	return out
}

// defaultRegionSize chunks a world into roughly 64x64 tile regions, the
// granularity the teacher partitions its hex world into subsystem-owned
// chunks at in internal/engine/simulation.go.
const defaultRegionSize = 64

// PartitionRegions carves the grid into defaultRegionSize square chunks, one
// Region per chunk, all starting Active. Must run once after generation,
// before the first simulation tick, so every structure/NPC/clan/village has
// an owning region (spec §4.11, §9 "no entity is regionless").
func (w *World) PartitionRegions() {
	if w.RegionSize <= 0 {
		w.RegionSize = defaultRegionSize
	}
	w.Regions = make(map[string]*entities.Region)
	for y := 0; y < w.Grid.Height; y += w.RegionSize {
		for x := 0; x < w.Grid.Width; x += w.RegionSize {
			id := regionID(x, y)
			w.Regions[id] = &entities.Region{
				ID:     id,
				Bounds: worldgrid.Coord{X: x, Y: y},
				State:  entities.RegionActive,
			}
		}
	}
	w.ReassignEntitiesToRegions()
}

func regionID(x, y int) string {
	return fmt.Sprintf("region_%d_%d", x, y)
}

// ReassignEntitiesToRegions recomputes each region's owned entity id lists
// from current structure/NPC/clan/village locations. Called after
// generation and after any tick that may have moved entities across region
// boundaries (new structures built by clan AI, newly ruined structures,
// newly detected villages).
func (w *World) ReassignEntitiesToRegions() {
	for _, r := range w.Regions {
		r.StructureIDs = r.StructureIDs[:0]
		r.NPCIDs = r.NPCIDs[:0]
		r.ClanIDs = r.ClanIDs[:0]
		r.VillageIDs = r.VillageIDs[:0]
	}

	clanSeen := make(map[string]map[string]bool)

	for _, s := range w.StructuresInOrder() {
		rid := w.regionIDFor(s.Location)
		if r, ok := w.Regions[rid]; ok {
			r.StructureIDs = append(r.StructureIDs, s.ID)
			if clanSeen[rid] == nil {
				clanSeen[rid] = make(map[string]bool)
			}
			if s.OwnerType == "clan" && s.OwnerID != "" && !clanSeen[rid][s.OwnerID] {
				clanSeen[rid][s.OwnerID] = true
				r.ClanIDs = append(r.ClanIDs, s.OwnerID)
			}
		}
	}

	for _, n := range w.NPCsInOrder() {
		home, ok := w.Structures[n.HomeStructureID]
		if !ok {
			continue
		}
		rid := w.regionIDFor(home.Location)
		if r, ok := w.Regions[rid]; ok {
			r.NPCIDs = append(r.NPCIDs, n.ID)
		}
	}

	for _, v := range w.VillagesInOrder() {
		rid := w.regionIDFor(v.Center)
		if r, ok := w.Regions[rid]; ok {
			r.VillageIDs = append(r.VillageIDs, v.ID)
		}
	}
}

func (w *World) regionIDFor(c worldgrid.Coord) string {
	size := w.RegionSize
	if size <= 0 {
		size = defaultRegionSize
	}
	rx := (c.X / size) * size
	ry := (c.Y / size) * size
	return regionID(rx, ry)
}

// Summary logs a one-line population/structure overview, mirroring the
// teacher's simulation summary logging.
func (w *World) Summary() {
	slog.Info("world summary",
		"tick", w.Tick,
		"clans", len(w.Clans),
		"structures", len(w.Structures),
		"npcs", len(w.NPCs),
		"villages", len(w.Villages),
		"quests", len(w.Quests),
		"rivers", len(w.Rivers),
		"features", len(w.Features),
	)
}
