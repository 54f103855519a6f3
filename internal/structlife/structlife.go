// Package structlife implements structure lifecycle (C15): disaster rolls,
// neglect decay, and ruin conversion. See spec Section 4.14. Grounded on
// the teacher's internal/world terrain-derived suitability checks
// (wooden/low-elevation sensitivity reused here for fire/flood weighting);
// the teacher has no disaster model of its own.
package structlife

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/worldgrid"
)

type disasterType int

const (
	disasterEarthquake disasterType = iota
	disasterFire
	disasterFlood
)

// RuinEvent reports a structure converted to ANCIENT_RUINS this tick.
type RuinEvent struct {
	OriginalID   string
	RuinID       string
	OriginalType entities.StructureType
	OriginalOwner string
}

// Tick runs disaster and neglect checks for every structure, converting any
// that reach zero health into a ruin. unpaidTaxesFlag is an abstract input
// per the spec's "taxation subsystem is outside this spec" note. Structures
// that take disaster damage but survive are reported in damaged, feeding
// quest generation's disaster-quest trigger (spec §4.15).
func Tick(g *worldgrid.Grid, worldSeed int64, tick uint64, structures map[string]*entities.Structure, clans map[string]*entities.Clan, unpaidTaxesFlag map[string]bool) (ruins []RuinEvent, damaged []string) {
	ids := make([]string, 0, len(structures))
	for id := range structures {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}

	for _, id := range ids {
		s := structures[id]
		seed := rng.TickSeed(worldSeed, tick, uint64(hashString(id)))
		src := rng.New(seed)

		if tick%1000 == 0 {
			if applyDisasterRoll(g, src, s) {
				damaged = append(damaged, id)
			}
		}
		applyNeglect(tick, s, unpaidTaxesFlag[s.OwnerID])

		if s.Health <= 0 {
			ruinID := id + "_ruin"
			ruins = append(ruins, RuinEvent{OriginalID: id, RuinID: ruinID, OriginalType: s.Type, OriginalOwner: s.OwnerID})
			convertToRuin(structures, s, ruinID, tick)
		}
	}

	return ruins, damaged
}

// CatchUpDecay replays neglect decay for a region that sat in background
// state for elapsed ticks, so a structure's health reflects the full gap
// instead of silently resuming as if no time had passed (spec §4.11's
// "resources, NPC ages, and structure decay" resync requirement). Disaster
// rolls are not replayed here: they're a per-tick event stream, not a
// monotonic accumulation, so background regions simply forgo them, the same
// tradeoff the coarse background resource-regen pass already makes.
func CatchUpDecay(tick uint64, elapsed uint64, structures map[string]*entities.Structure, unpaidTaxesFlag map[string]bool) []RuinEvent {
	var ruins []RuinEvent

	ids := make([]string, 0, len(structures))
	for id := range structures {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}

	for _, id := range ids {
		s := structures[id]
		if !neglected(tick, s, unpaidTaxesFlag[s.OwnerID]) {
			continue
		}
		intervals := elapsed / 7000
		if intervals == 0 {
			continue
		}
		s.Health -= s.MaxHealth * 0.05 * float64(intervals)
		if s.Health < 0 {
			s.Health = 0
		}
		if s.Health <= 0 {
			ruinID := id + "_ruin"
			ruins = append(ruins, RuinEvent{OriginalID: id, RuinID: ruinID, OriginalType: s.Type, OriginalOwner: s.OwnerID})
			convertToRuin(structures, s, ruinID, tick)
		}
	}

	return ruins
}

func applyDisasterRoll(g *worldgrid.Grid, src *rng.Source, s *entities.Structure) bool {
	if src.Float64() >= 0.05 {
		return false
	}

	t := g.At(s.Location)
	weights := map[disasterType]float64{
		disasterEarthquake: 0.4,
		disasterFire:       0.3,
		disasterFlood:      0.3,
	}
	if isWooden(s.Type) {
		weights[disasterFire] += 0.2
	}
	if t.Elevation < 0.3 {
		weights[disasterFlood] += 0.2
	}

	kind := weightedDisaster(src, weights)

	switch kind {
	case disasterEarthquake:
		if src.Float64() < 0.10 {
			s.Health = 0
			return false
		}
		damageFrac := 0.30 + src.Float64()*0.20
		s.Health -= s.MaxHealth * damageFrac
	case disasterFire:
		damageFrac := 0.40 + src.Float64()*0.20
		if isWooden(s.Type) {
			damageFrac += 0.10
		}
		s.Health -= s.MaxHealth * damageFrac
	case disasterFlood:
		damageFrac := 0.20 + src.Float64()*0.10
		if t.Elevation < 0.3 {
			damageFrac += 0.10
		}
		s.Health -= s.MaxHealth * damageFrac
	}
	if s.Health < 0 {
		s.Health = 0
	}
	return s.Health > 0
}

func isWooden(t entities.StructureType) bool {
	return t == entities.StructureHouse || t == entities.StructureWorkshop
}

func weightedDisaster(src *rng.Source, weights map[disasterType]float64) disasterType {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := src.Float64() * total
	order := []disasterType{disasterEarthquake, disasterFire, disasterFlood}
	for _, k := range order {
		w := weights[k]
		if r < w {
			return k
		}
		r -= w
	}
	return disasterEarthquake
}

// applyNeglect decays 5% health per 7000 ticks once a structure is neglected
// (unpaid taxes, abstractly flagged, or stale for >=50,000 ticks).
func applyNeglect(tick uint64, s *entities.Structure, unpaidTaxes bool) {
	if !neglected(tick, s, unpaidTaxes) {
		return
	}
	if tick%7000 != 0 {
		return
	}
	s.Health -= s.MaxHealth * 0.05
	if s.Health < 0 {
		s.Health = 0
	}
}

func neglected(tick uint64, s *entities.Structure, unpaidTaxes bool) bool {
	stale := tick > s.LastUpdatedTick && tick-s.LastUpdatedTick >= 50000
	return unpaidTaxes || stale
}

func convertToRuin(structures map[string]*entities.Structure, s *entities.Structure, ruinID string, tick uint64) {
	delete(structures, s.ID)
	structures[ruinID] = &entities.Structure{
		ID:              ruinID,
		Type:            entities.StructureAncientRuins,
		Location:        s.Location,
		Health:          s.MaxHealth,
		MaxHealth:       s.MaxHealth,
		Entrance:        s.Entrance,
		OwnerID:         "",
		OwnerType:       "",
		CreatedAtTick:   tick,
		LastUpdatedTick: tick,
		Metadata: map[string]string{
			"original_owner": s.OwnerID,
			"original_type":  structTypeName(s.Type),
			"original_id":    s.ID,
		},
	}
	slog.Info("structure ruined", "original", s.ID, "ruin", ruinID)
}

func structTypeName(t entities.StructureType) string {
	names := []string{"house", "guild_hall", "temple", "market", "workshop", "dock", "fishing_hut", "ancient_ruins"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
