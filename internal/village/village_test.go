package village_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/village"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func makeCluster(n int, ownerID string) map[string]*entities.Structure {
	out := make(map[string]*entities.Structure, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("struct_%02d", i)
		out[id] = &entities.Structure{
			ID:       id,
			Location: worldgrid.Coord{X: i % 5, Y: i / 5},
			OwnerID:  ownerID,
			Type:     entities.StructureHouse,
		}
	}
	return out
}

func TestDetectClustersFormVillage(t *testing.T) {
	structures := makeCluster(5, "clan_a")
	villages := village.Detect(1, 0, structures, map[string]*entities.NPC{}, nil)

	require.Equal(t, 1, len(villages))
	for _, v := range villages {
		require.Equal(t, entities.TierVillage, v.Tier)
		require.Equal(t, 5, len(v.StructureIDs))
		require.Equal(t, "clan_a", v.GoverningClan)
	}
}

func TestDetectIgnoresSmallClusters(t *testing.T) {
	structures := makeCluster(2, "clan_a")
	villages := village.Detect(1, 0, structures, map[string]*entities.NPC{}, nil)
	require.Empty(t, villages, "clusters below minClusterSize must not become villages")
}

func TestDetectIsolatedStructuresFormSeparateClusters(t *testing.T) {
	structures := map[string]*entities.Structure{
		"a1": {ID: "a1", Location: worldgrid.Coord{X: 0, Y: 0}, OwnerID: "clan_a"},
		"a2": {ID: "a2", Location: worldgrid.Coord{X: 1, Y: 0}, OwnerID: "clan_a"},
		"a3": {ID: "a3", Location: worldgrid.Coord{X: 2, Y: 0}, OwnerID: "clan_a"},
		"b1": {ID: "b1", Location: worldgrid.Coord{X: 500, Y: 500}, OwnerID: "clan_b"},
		"b2": {ID: "b2", Location: worldgrid.Coord{X: 501, Y: 500}, OwnerID: "clan_b"},
		"b3": {ID: "b3", Location: worldgrid.Coord{X: 502, Y: 500}, OwnerID: "clan_b"},
	}
	villages := village.Detect(1, 0, structures, map[string]*entities.NPC{}, nil)
	require.Equal(t, 2, len(villages))
}

func TestDetectTierNeverDemotes(t *testing.T) {
	structures := makeCluster(5, "clan_a")
	firstPass := village.Detect(1, 0, structures, map[string]*entities.NPC{}, nil)

	var promoted *entities.Village
	for _, v := range firstPass {
		promoted = v
	}
	promoted.Tier = entities.TierCity

	secondPass := village.Detect(1, 1, structures, map[string]*entities.NPC{}, firstPass)
	require.Equal(t, 1, len(secondPass))
	for _, v := range secondPass {
		require.Equal(t, promoted.ID, v.ID, "stable id must be reused when membership is unchanged")
		require.Equal(t, entities.TierCity, v.Tier, "tier must never drop back down")
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	structures := makeCluster(8, "clan_a")
	a := village.Detect(99, 0, structures, map[string]*entities.NPC{}, nil)
	b := village.Detect(99, 0, structures, map[string]*entities.NPC{}, nil)

	require.Equal(t, len(a), len(b))
	for id, va := range a {
		vb, ok := b[id]
		require.True(t, ok)
		require.Equal(t, va.StructureIDs, vb.StructureIDs)
		require.Equal(t, va.Center, vb.Center)
	}
}
