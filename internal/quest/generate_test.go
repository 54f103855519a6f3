package quest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/quest"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func TestGenerateMediationQuestIsAlwaysEmitted(t *testing.T) {
	cooldowns := quest.Cooldowns{}
	structures := map[string]*entities.Structure{}

	quests := quest.GenerateFromEvents(1, 100, nil, [][2]string{{"clan_a", "clan_b"}}, nil, nil, structures, cooldowns)

	require.Equal(t, 1, len(quests))
	require.Equal(t, "mediation", quests[0].Type)
}

func TestGenerateMediationQuestRespectsCooldown(t *testing.T) {
	cooldowns := quest.Cooldowns{}
	structures := map[string]*entities.Structure{}
	pairs := [][2]string{{"clan_a", "clan_b"}}

	first := quest.GenerateFromEvents(1, 100, nil, pairs, nil, nil, structures, cooldowns)
	require.Equal(t, 1, len(first))

	second := quest.GenerateFromEvents(1, 200, nil, pairs, nil, nil, structures, cooldowns)
	require.Empty(t, second, "same pair must not re-quest within the cooldown window")

	third := quest.GenerateFromEvents(1, 10201, nil, pairs, nil, nil, structures, cooldowns)
	require.Equal(t, 1, len(third), "cooldown must expire after questCooldownTicks")
}

func TestGenerateRuinQuestReferencesStructureLocation(t *testing.T) {
	cooldowns := quest.Cooldowns{}
	structures := map[string]*entities.Structure{
		"ruin_1": {ID: "ruin_1", Location: worldgrid.Coord{X: 3, Y: 4}},
	}

	for tick := uint64(0); tick < 50; tick++ {
		qs := quest.GenerateFromEvents(int64(tick), tick, []string{"ruin_1"}, nil, nil, nil, structures, cooldowns)
		if len(qs) > 0 {
			require.Equal(t, 3, qs[0].Objectives[0].TargetX)
			require.Equal(t, 4, qs[0].Objectives[0].TargetY)
			return
		}
	}
}

func TestGenerateStoryQuestOnlyForActiveStories(t *testing.T) {
	cooldowns := quest.Cooldowns{}
	structures := map[string]*entities.Structure{}
	dormant := &entities.Story{ID: "story_1", Status: entities.StoryDormant}

	qs := quest.GenerateFromEvents(1, 1, nil, nil, nil, []*entities.Story{dormant}, structures, cooldowns)
	require.Empty(t, qs)
}
