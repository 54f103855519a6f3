// Package simulation wires the five per-tick subsystems (NPC lifecycle,
// clan AI, structure lifecycle, quest generation, village detection) to the
// region scheduler, in the fixed order spec Section 5 mandates, and keeps
// World's insertion-order indexes and region assignments consistent after
// each subsystem mutates its raw maps directly. Grounded on the teacher's
// internal/engine/simulation.go Simulation.Tick, which performs the same
// "drive every subsystem once per tick, then resync derived state" role for
// the teacher's agent/faction/settlement model.
package simulation

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/clanai"
	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/npc"
	"github.com/talgya/livingworld/internal/quest"
	"github.com/talgya/livingworld/internal/region"
	"github.com/talgya/livingworld/internal/structlife"
	"github.com/talgya/livingworld/internal/village"
	"github.com/talgya/livingworld/internal/worldstate"
)

// Simulation owns one World and the cross-tick state subsystems need
// (quest cooldowns, unpaid-tax flags) that doesn't belong on any one entity.
type Simulation struct {
	World       *worldstate.World
	Config      region.Config
	Cooldowns   quest.Cooldowns
	UnpaidTaxes map[string]bool // structure id -> neglected-by-owner flag

	// reassignNeeded is set whenever a subsystem may have moved a structure
	// or NPC across a region boundary (new construction, ruin conversion,
	// birth/death) so the next tick starts from correct region ownership.
	reassignNeeded bool

	// recentRuins / recentDamaged feed quest generation's ruin/disaster
	// triggers (spec §4.15), cleared after each tick's quest pass consumes
	// them.
	recentRuins   []string
	recentDamaged []string
}

// New constructs a Simulation ready to advance w one tick at a time.
func New(w *worldstate.World) *Simulation {
	return &Simulation{
		World:       w,
		Config:      region.DefaultConfig(),
		Cooldowns:   make(quest.Cooldowns),
		UnpaidTaxes: make(map[string]bool),
	}
}

// Tick advances every region of the world by exactly one tick, in ascending
// region-id order (spec §5 determinism contract), then resyncs derived
// indexes (structure/NPC ordering, region membership) before returning.
func (s *Simulation) Tick() {
	w := s.World
	tick := w.Tick

	subsystems := region.Subsystems{
		ResourceRegen:            func(regionID string, tick uint64) {},
		NPCLifecycle:             s.tickNPCLifecycle,
		ClanAI:                   s.tickClanAI,
		StructureLifecycle:       s.tickStructureLifecycle,
		QuestGeneration:          s.tickQuestGeneration,
		VillageRefresh:           s.tickVillageRefresh,
		BackgroundResourceRegen:  func(regionID string, elapsed uint64) {},
		BackgroundStructureDecay: s.catchUpStructureDecay,
		BackgroundSummary: func(regionID string, elapsed uint64) {
			slog.Debug("background region summary", "region", regionID, "elapsed_ticks", elapsed)
		},
	}

	s.updateRegionActivation(tick, subsystems)
	region.AdvanceWorld(s.Config, tick, w.RegionsByID(), subsystems)

	w.ReorderStructuresByID()
	w.ReorderNPCsByID()
	w.ReorderRoadTilesByCoord()
	if s.reassignNeeded {
		w.ReassignEntitiesToRegions()
		s.reassignNeeded = false
	}

	w.Tick = tick + 1

	if tick%10000 == 0 {
		w.Summary()
	}
}

func (s *Simulation) clansInRegion(r *entities.Region) []*entities.Clan {
	seen := make(map[string]bool, len(r.ClanIDs))
	out := make([]*entities.Clan, 0, len(r.ClanIDs))
	for _, id := range r.ClanIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := s.World.Clans[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Simulation) tickNPCLifecycle(regionID string, tick uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	for _, clan := range s.clansInRegion(r) {
		result := npc.Tick(s.World.Seed, tick, clan, s.World.NPCs, s.World.Structures)
		if len(result.Births) > 0 || len(result.Deaths) > 0 {
			s.reassignNeeded = true
		}
	}
}

func (s *Simulation) tickClanAI(regionID string, tick uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	clanMap := make(map[string]*entities.Clan, len(r.ClanIDs))
	for _, clan := range s.clansInRegion(r) {
		clanMap[clan.ID] = clan
	}
	structCountBefore := len(s.World.Structures)
	clanai.Tick(s.World.Grid, s.World.Seed, tick, clanMap, s.World.NPCs, s.World.Structures, s.World.Settlements, s.World.RoadTiles)
	if len(s.World.Structures) != structCountBefore {
		s.reassignNeeded = true
	}

	settlementsByClan := make(map[string][]string)
	for _, st := range s.World.Settlements {
		settlementsByClan[st.ClanID] = append(settlementsByClan[st.ClanID], st.ID)
	}
	for _, clan := range s.clansInRegion(r) {
		if child := clanai.TrySplit(s.World.Seed, tick, clan, s.World.Clans, settlementsByClan); child != nil {
			s.World.AddClan(child)
			r.ClanIDs = append(r.ClanIDs, child.ID)
			slog.Info("clan split", "parent", clan.ID, "child", child.ID)
		}
	}
}

func (s *Simulation) tickStructureLifecycle(regionID string, tick uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	structMap := make(map[string]*entities.Structure, len(r.StructureIDs))
	for _, id := range r.StructureIDs {
		if st, ok := s.World.Structures[id]; ok {
			structMap[id] = st
		}
	}
	ruins, damaged := structlife.Tick(s.World.Grid, s.World.Seed, tick, structMap, s.World.Clans, s.UnpaidTaxes)
	for _, ruin := range ruins {
		delete(s.World.Structures, ruin.OriginalID)
		s.World.Structures[ruin.RuinID] = structMap[ruin.RuinID]
		s.reassignNeeded = true
		s.recentRuins = append(s.recentRuins, ruin.RuinID)
	}
	s.recentDamaged = append(s.recentDamaged, damaged...)
}

// catchUpStructureDecay is the region scheduler's BackgroundStructureDecay
// hook: it replays neglect decay for every structure in a reactivated
// region over the ticks it spent in background state.
func (s *Simulation) catchUpStructureDecay(regionID string, elapsedTicks uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	structMap := make(map[string]*entities.Structure, len(r.StructureIDs))
	for _, id := range r.StructureIDs {
		if st, ok := s.World.Structures[id]; ok {
			structMap[id] = st
		}
	}
	ruins := structlife.CatchUpDecay(s.World.Tick, elapsedTicks, structMap, s.UnpaidTaxes)
	for _, ruin := range ruins {
		delete(s.World.Structures, ruin.OriginalID)
		s.World.Structures[ruin.RuinID] = structMap[ruin.RuinID]
		s.reassignNeeded = true
		s.recentRuins = append(s.recentRuins, ruin.RuinID)
	}
}

// updateRegionActivation keeps a region active while any player-controlled
// clan has members there, and lets it fall back to coarse background
// processing otherwise (spec §4.11's active/background split, C12). This is
// the in-repo stand-in for the external "region activation" driver the spec
// otherwise leaves to the excluded CLI/server layer.
func (s *Simulation) updateRegionActivation(tick uint64, subsystems region.Subsystems) {
	for _, r := range s.World.RegionsByID() {
		hasPlayer := false
		for _, clan := range s.clansInRegion(r) {
			if clanai.IsPlayerControlled(clan, s.World.NPCs) {
				hasPlayer = true
				break
			}
		}
		switch {
		case hasPlayer && r.State == entities.RegionBackground:
			region.Activate(tick, r, subsystems)
		case !hasPlayer && r.State == entities.RegionActive:
			region.Deactivate(tick, r)
		}
	}
}

func (s *Simulation) tickQuestGeneration(regionID string, tick uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	structMap := make(map[string]*entities.Structure, len(r.StructureIDs))
	for _, id := range r.StructureIDs {
		if st, ok := s.World.Structures[id]; ok {
			structMap[id] = st
		}
	}

	hostile := hostileClanPairs(s.clansInRegion(r))
	stories := s.World.StoriesInOrder()

	quests := quest.GenerateFromEvents(s.World.Seed, tick, s.recentRuins, hostile, s.recentDamaged, stories, structMap, s.Cooldowns)
	for _, q := range quests {
		s.World.AddQuest(q)
	}
	s.recentRuins = nil
	s.recentDamaged = nil
}

func (s *Simulation) tickVillageRefresh(regionID string, tick uint64) {
	r, ok := s.World.Regions[regionID]
	if !ok {
		return
	}
	structMap := make(map[string]*entities.Structure, len(r.StructureIDs))
	for _, id := range r.StructureIDs {
		if st, ok := s.World.Structures[id]; ok {
			structMap[id] = st
		}
	}
	npcMap := make(map[string]*entities.NPC, len(r.NPCIDs))
	for _, id := range r.NPCIDs {
		if n, ok := s.World.NPCs[id]; ok {
			npcMap[id] = n
		}
	}
	updated := village.Detect(s.World.Seed, tick, structMap, npcMap, s.World.Villages)
	for _, v := range updated {
		s.World.AddVillage(v)
	}
}

func hostileClanPairs(clans []*entities.Clan) [][2]string {
	var pairs [][2]string
	for i, a := range clans {
		for _, b := range clans[i+1:] {
			rec, ok := a.Relationships[b.ID]
			if ok && rec.Reputation < -50 {
				pairs = append(pairs, [2]string{a.ID, b.ID})
			}
		}
	}
	return pairs
}
