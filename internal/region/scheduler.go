// Package region implements the active/background region tick scheduler and
// resynchronization (C12). See spec Section 4.11. Grounded on the teacher's
// internal/engine/tick.go Engine.step() dispatch-by-tick-modulo pattern,
// generalized from one global engine loop to per-region active/background
// dispatch with a resynchronization pass on background->active transition.
package region

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
)

// Config mirrors the teacher's Engine fields, scaled to region semantics.
type Config struct {
	TickLength           float64 // seconds per tick, default 1.0
	ActiveMultiplier     float64 // default 1.0
	BackgroundMultiplier float64 // default 1/60
}

// DefaultConfig returns the canonical parameter defaults (spec Section 6).
func DefaultConfig() Config {
	return Config{TickLength: 1.0, ActiveMultiplier: 1.0, BackgroundMultiplier: 1.0 / 60.0}
}

const backgroundInterval = 60 // 1 / (1/60)

// Subsystems bundles the per-tick hooks run on an active region, in the
// fixed order mandated by spec Section 5:
// resource regen -> NPC lifecycle -> clan AI -> structure lifecycle ->
// quest generation -> village refresh.
type Subsystems struct {
	ResourceRegen    func(regionID string, tick uint64)
	NPCLifecycle     func(regionID string, tick uint64)
	ClanAI           func(regionID string, tick uint64)
	StructureLifecycle func(regionID string, tick uint64)
	QuestGeneration  func(regionID string, tick uint64)
	VillageRefresh   func(regionID string, tick uint64)

	// BackgroundResourceRegen and BackgroundSummary are the "coarse"
	// equivalents used while a region is in background state.
	BackgroundResourceRegen func(regionID string, elapsedTicks uint64)
	BackgroundSummary       func(regionID string, elapsedTicks uint64)

	// BackgroundStructureDecay replays neglect decay accumulated while a
	// region sat in background state, run during Activate's resync so a
	// reactivated region's structures reflect the full elapsed gap.
	BackgroundStructureDecay func(regionID string, elapsedTicks uint64)
}

// AdvanceWorld advances every region in ascending id order by one world
// tick, per the determinism contract in spec Section 5.
func AdvanceWorld(cfg Config, currentTick uint64, regions []*entities.Region, subsystems Subsystems) {
	for _, r := range regions {
		AdvanceRegion(cfg, currentTick, r, subsystems)
	}
}

// AdvanceRegion advances a single region by one world tick, dispatching to
// the active or background path and resynchronizing on transition.
func AdvanceRegion(cfg Config, currentTick uint64, r *entities.Region, subsystems Subsystems) {
	if r.State == entities.RegionActive {
		runActiveTick(currentTick, r, subsystems)
		r.LastProcessedTick = currentTick
		return
	}

	// Background region: only process every backgroundInterval ticks.
	if currentTick-r.LastProcessedTick < backgroundInterval {
		return
	}
	elapsed := currentTick - r.LastProcessedTick
	if subsystems.BackgroundResourceRegen != nil {
		subsystems.BackgroundResourceRegen(r.ID, elapsed)
	}
	if subsystems.BackgroundSummary != nil {
		subsystems.BackgroundSummary(r.ID, elapsed)
	}
	r.LastProcessedTick = currentTick
}

// Activate transitions a region from background to active, resynchronizing
// by running the background model over the elapsed gap first so resources,
// NPC ages, and structure decay match continuous low-rate processing.
func Activate(currentTick uint64, r *entities.Region, subsystems Subsystems) {
	if r.State == entities.RegionActive {
		return
	}
	elapsed := currentTick - r.LastProcessedTick
	if elapsed > 0 {
		if subsystems.BackgroundResourceRegen != nil {
			subsystems.BackgroundResourceRegen(r.ID, elapsed)
		}
		if subsystems.BackgroundStructureDecay != nil {
			subsystems.BackgroundStructureDecay(r.ID, elapsed)
		}
		slog.Info("region resynchronized", "region", r.ID, "elapsed_ticks", elapsed)
	}
	r.State = entities.RegionActive
	r.LastProcessedTick = currentTick
}

// Deactivate transitions a region to background state.
func Deactivate(currentTick uint64, r *entities.Region) {
	r.State = entities.RegionBackground
	r.LastProcessedTick = currentTick
}

func runActiveTick(tick uint64, r *entities.Region, s Subsystems) {
	if s.ResourceRegen != nil {
		s.ResourceRegen(r.ID, tick)
	}
	if s.NPCLifecycle != nil {
		s.NPCLifecycle(r.ID, tick)
	}
	if s.ClanAI != nil {
		s.ClanAI(r.ID, tick)
	}
	if s.StructureLifecycle != nil {
		s.StructureLifecycle(r.ID, tick)
	}
	if s.QuestGeneration != nil {
		s.QuestGeneration(r.ID, tick)
	}
	if s.VillageRefresh != nil {
		s.VillageRefresh(r.ID, tick)
	}
}
