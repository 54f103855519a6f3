package quest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/quest"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func sampleFeatures() map[string]*entities.Feature {
	return map[string]*entities.Feature{
		"feature_volcano_abc": {ID: "feature_volcano_abc", Type: entities.FeatureVolcano, Position: worldgrid.Coord{X: 5, Y: 5}},
		"feature_ruin_def":    {ID: "feature_ruin_def", Type: entities.FeatureAncientRuin, Position: worldgrid.Coord{X: 20, Y: 20}},
	}
}

func TestSeedPropheciesWithinOneToThree(t *testing.T) {
	features := sampleFeatures()
	prophecies := quest.SeedProphecies(1, 0, features)
	require.GreaterOrEqual(t, len(prophecies), 1)
	require.LessOrEqual(t, len(prophecies), 3)
	for _, p := range prophecies {
		require.Equal(t, entities.ProphecyPending, p.Status)
		require.Greater(t, p.TriggerTick, uint64(0))
	}
}

func TestSeedPropheciesEmptyWithoutFeatures(t *testing.T) {
	prophecies := quest.SeedProphecies(1, 0, map[string]*entities.Feature{})
	require.Empty(t, prophecies)
}

func TestSeedFeatureQuestsOnePerFeature(t *testing.T) {
	features := sampleFeatures()
	quests := quest.SeedFeatureQuests(1, 0, features, nil)
	require.Equal(t, len(features), len(quests))

	byFeature := make(map[string]*entities.Quest, len(quests))
	for _, q := range quests {
		byFeature[q.LinkedFeatureID] = q
	}

	volcanoQuest := byFeature["feature_volcano_abc"]
	require.NotNil(t, volcanoQuest)
	require.Equal(t, "defeat", volcanoQuest.Type)

	ruinQuest := byFeature["feature_ruin_def"]
	require.NotNil(t, ruinQuest)
	require.Equal(t, "explore", ruinQuest.Type)

	for _, q := range quests {
		require.GreaterOrEqual(t, q.RequiredLevel, 1)
		require.LessOrEqual(t, q.RequiredLevel, 10)
		require.Len(t, q.Rewards, 1)
		require.GreaterOrEqual(t, q.Rewards[0].Gold, 10.0)
		require.Less(t, q.Rewards[0].Gold, 100.0)
		require.GreaterOrEqual(t, q.Rewards[0].Reputation, 0.0)
		require.Less(t, q.Rewards[0].Reputation, 20.0)
	}
}

func TestSeedFeatureQuestsIncludesStoryQuestsWhenRolled(t *testing.T) {
	features := sampleFeatures()
	stories := make([]*entities.Story, 0, 40)
	for i := 0; i < 40; i++ {
		stories = append(stories, &entities.Story{ID: ids.Entity("story", "test", 1, uint64(i))})
	}

	quests := quest.SeedFeatureQuests(1, 0, features, stories)
	require.GreaterOrEqual(t, len(quests), len(features), "some story rolls should land given 40 attempts at ~10%%")

	storyLinked := 0
	for _, q := range quests {
		if q.LinkedStoryID != "" {
			storyLinked++
		}
	}
	require.Greater(t, storyLinked, 0)
}

func TestSeedIsDeterministic(t *testing.T) {
	features := sampleFeatures()
	a := quest.SeedFeatureQuests(9, 0, features, nil)
	b := quest.SeedFeatureQuests(9, 0, features, nil)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].ID, b[i].ID)
		require.Equal(t, a[i].Type, b[i].Type)
	}
}
