// Dynamic quest generation (C16): inspects recent per-tick events and
// emits new quests with a per-(type, source-id) cooldown.
package quest

import (
	"fmt"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
)

const questCooldownTicks = 10000

// conflictQuestProbability is pinned at 100% (not the production 50%) for
// test determinism, per the spec's Open Questions / Design Notes — the
// source itself ships this way for the same reason.
const conflictQuestProbability = 1.0

// Cooldowns tracks last-emitted tick per (type, source-id) key.
type Cooldowns map[string]uint64

func cooldownKey(questType, sourceID string) string { return questType + "|" + sourceID }

func (c Cooldowns) ready(questType, sourceID string, tick uint64) bool {
	last, ok := c[cooldownKey(questType, sourceID)]
	return !ok || tick-last >= questCooldownTicks
}

func (c Cooldowns) mark(questType, sourceID string, tick uint64) {
	c[cooldownKey(questType, sourceID)] = tick
}

// GenerateFromEvents emits ruin/conflict/disaster/story quests for the
// current tick, consulting and updating cooldowns so duplicates are
// suppressed for questCooldownTicks.
func GenerateFromEvents(worldSeed int64, tick uint64, freshRuinStructureIDs []string, hostileClanPairs [][2]string, damagedStructureIDs []string, activeStories []*entities.Story, structures map[string]*entities.Structure, cooldowns Cooldowns) []*entities.Quest {
	seed := rng.TickSeed(worldSeed, tick, 0x5155_4553_5445)
	src := rng.New(seed)

	var out []*entities.Quest
	index := 0

	for _, sid := range freshRuinStructureIDs {
		if !cooldowns.ready("ruin", sid, tick) {
			continue
		}
		if src.Float64() >= 0.30 {
			continue
		}
		s, ok := structures[sid]
		if !ok {
			continue
		}
		out = append(out, &entities.Quest{
			ID:          questID(seed, "ruin", sid, index),
			Title:       fmt.Sprintf("Explore the ruins of %s", sid),
			Type:        "explore",
			Status:      entities.QuestAvailable,
			Objectives:  []entities.Objective{{Description: "explore", TargetX: s.Location.X, TargetY: s.Location.Y}},
			Rewards:     []entities.Reward{{Gold: 50, Reputation: 5}},
			CreatedTick: tick,
			SourceID:    sid,
		})
		cooldowns.mark("ruin", sid, tick)
		index++
	}

	for _, pair := range hostileClanPairs {
		key := pair[0] + "_" + pair[1]
		if !cooldowns.ready("mediation", key, tick) {
			continue
		}
		if src.Float64() >= conflictQuestProbability {
			continue
		}
		out = append(out, &entities.Quest{
			ID:          questID(seed, "mediation", key, index),
			Title:       fmt.Sprintf("Mediate between %s and %s", pair[0], pair[1]),
			Type:        "mediation",
			Status:      entities.QuestAvailable,
			Rewards:     []entities.Reward{{Gold: 30, Reputation: 10}},
			CreatedTick: tick,
			SourceID:    key,
		})
		cooldowns.mark("mediation", key, tick)
		index++
	}

	for _, sid := range damagedStructureIDs {
		if !cooldowns.ready("repair", sid, tick) {
			continue
		}
		if src.Float64() >= 0.15 {
			continue
		}
		s, ok := structures[sid]
		if !ok {
			continue
		}
		out = append(out, &entities.Quest{
			ID:          questID(seed, "repair", sid, index),
			Title:       fmt.Sprintf("Repair %s", sid),
			Type:        "repair",
			Status:      entities.QuestAvailable,
			Objectives:  []entities.Objective{{Description: "repair", TargetX: s.Location.X, TargetY: s.Location.Y}},
			Rewards:     []entities.Reward{{Gold: 20, Reputation: 3}},
			CreatedTick: tick,
			SourceID:    sid,
		})
		cooldowns.mark("repair", sid, tick)
		index++
	}

	for _, s := range activeStories {
		if s.Status != entities.StoryActive {
			continue
		}
		if !cooldowns.ready("story_investigate", s.ID, tick) {
			continue
		}
		if src.Float64() >= 0.10 {
			continue
		}
		out = append(out, &entities.Quest{
			ID:            questID(seed, "story_investigate", s.ID, index),
			Title:         fmt.Sprintf("Investigate %s", s.ID),
			Type:          "investigate",
			Status:        entities.QuestAvailable,
			Objectives:    []entities.Objective{{Description: "investigate", TargetX: s.Origin.X, TargetY: s.Origin.Y}},
			Rewards:       []entities.Reward{{Gold: 15, Reputation: 2}},
			LinkedStoryID: s.ID,
			CreatedTick:   tick,
			SourceID:      s.ID,
		})
		cooldowns.mark("story_investigate", s.ID, tick)
		index++
	}

	return out
}

func questID(seed int64, kind, source string, index int) string {
	return ids.Entity("quest", kind+"_"+source, seed, uint64(index))
}
