// Package quest seeds prophecies and feature-linked quests at world
// creation (C8) and generates new quests dynamically from world events
// during simulation (C16). See spec Sections 4.7 and 4.15. Grounded on the
// teacher's internal/world settlement/feature naming conventions for
// flavor text; the teacher has no quest system of its own, so structure and
// cooldown bookkeeping follow the general seeded-collection pattern used
// throughout internal/social.
package quest

import (
	"fmt"
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
)

// featureQuestType maps a feature type to its quest archetype.
func featureQuestType(ft entities.FeatureType) string {
	switch ft {
	case entities.FeatureMagicZone:
		return "investigate"
	case entities.FeatureAncientRuin:
		return "explore"
	case entities.FeatureSubmergedCity:
		return "retrieve"
	case entities.FeatureVolcano:
		return "defeat"
	default:
		return "investigate"
	}
}

// SeedProphecies creates 1-3 major prophecies, linked to the first features
// in sorted id order (one each), with a hybrid (countdown + condition)
// trigger.
func SeedProphecies(worldSeed int64, tick uint64, features map[string]*entities.Feature) []*entities.Prophecy {
	seed := rng.SubSeed(worldSeed, rng.StageQuest)
	src := rng.New(seed)

	featureIDs := sortedFeatureIDs(features)
	if len(featureIDs) == 0 {
		return nil
	}

	count := 1 + src.Intn(3)
	if count > len(featureIDs) {
		count = len(featureIDs)
	}

	prophecies := make([]*entities.Prophecy, 0, count)
	for i := 0; i < count; i++ {
		fid := featureIDs[i%len(featureIDs)]
		countdown := uint64(50000 + src.Intn(150000))
		p := &entities.Prophecy{
			ID:               ids.Entity("prophecy", fid, seed, uint64(i)),
			Title:            fmt.Sprintf("The Omen of %s", fid),
			Type:             "omen",
			TriggerTick:      tick + countdown,
			TriggerCondition: "feature_disturbed",
			LinkedFeatureID:  fid,
			Status:           entities.ProphecyPending,
		}
		prophecies = append(prophecies, p)
	}

	slog.Info("prophecies seeded", "count", len(prophecies))
	return prophecies
}

// SeedFeatureQuests creates one quest per feature (mapped by type), plus a
// ~10% chance per story of an extra investigate quest.
func SeedFeatureQuests(worldSeed int64, tick uint64, features map[string]*entities.Feature, stories []*entities.Story) []*entities.Quest {
	seed := rng.SubSeed(worldSeed, rng.StageQuest) ^ 0x5155_4553_5445
	src := rng.New(seed)

	var quests []*entities.Quest
	index := 0
	for _, fid := range sortedFeatureIDs(features) {
		f := features[fid]
		qType := featureQuestType(f.Type)
		q := &entities.Quest{
			ID:     ids.Entity("quest", fid, seed, uint64(index)),
			Title:  fmt.Sprintf("%s at %s", qType, fid),
			Type:   qType,
			Status: entities.QuestAvailable,
			Objectives: []entities.Objective{
				{Description: qType, TargetX: f.Position.X, TargetY: f.Position.Y},
			},
			Rewards:         []entities.Reward{rewardFor(src)},
			LinkedFeatureID: fid,
			RequiredLevel:   1 + src.Intn(10),
			CreatedTick:     tick,
			SourceID:        fid,
		}
		quests = append(quests, q)
		index++
	}

	for _, s := range stories {
		if src.Float64() >= 0.10 {
			continue
		}
		q := &entities.Quest{
			ID:              ids.Entity("quest", s.ID, seed, uint64(index)),
			Title:           fmt.Sprintf("investigate %s", s.ID),
			Type:            "investigate",
			Status:          entities.QuestAvailable,
			Objectives:      []entities.Objective{{Description: "investigate", TargetX: s.Origin.X, TargetY: s.Origin.Y}},
			Rewards:         []entities.Reward{rewardFor(src)},
			LinkedStoryID:   s.ID,
			RequiredLevel:   1 + src.Intn(10),
			CreatedTick:     tick,
			SourceID:        s.ID,
		}
		quests = append(quests, q)
		index++
	}

	return quests
}

func rewardFor(src *rng.Source) entities.Reward {
	r := entities.Reward{
		Gold:       10 + src.Float64()*90,
		Reputation: src.Float64() * 20,
	}
	if src.Float64() < 0.15 {
		r.RareItem = "rare_relic"
	}
	return r
}

func sortedFeatureIDs(features map[string]*entities.Feature) []string {
	ids := make([]string, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	// deterministic order: lexical on id, which is itself hash-derived but
	// stable across runs with the same seed
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
