package region_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/region"
)

func TestAdvanceWorldRunsSubsystemsInFixedOrder(t *testing.T) {
	r := &entities.Region{ID: "region_0_0", State: entities.RegionActive}

	var order []string
	subsystems := region.Subsystems{
		ResourceRegen:      func(string, uint64) { order = append(order, "resource") },
		NPCLifecycle:       func(string, uint64) { order = append(order, "npc") },
		ClanAI:             func(string, uint64) { order = append(order, "clan") },
		StructureLifecycle: func(string, uint64) { order = append(order, "structure") },
		QuestGeneration:    func(string, uint64) { order = append(order, "quest") },
		VillageRefresh:     func(string, uint64) { order = append(order, "village") },
	}

	region.AdvanceWorld(region.DefaultConfig(), 1, []*entities.Region{r}, subsystems)

	require.Equal(t, []string{"resource", "npc", "clan", "structure", "quest", "village"}, order)
	require.Equal(t, uint64(1), r.LastProcessedTick)
}

func TestBackgroundRegionSkipsUntilInterval(t *testing.T) {
	r := &entities.Region{ID: "region_1_0", State: entities.RegionBackground, LastProcessedTick: 0}

	calls := 0
	subsystems := region.Subsystems{
		BackgroundResourceRegen: func(string, uint64) { calls++ },
	}

	for tick := uint64(1); tick < 60; tick++ {
		region.AdvanceRegion(region.DefaultConfig(), tick, r, subsystems)
	}
	require.Equal(t, 0, calls, "background region must not tick before the interval elapses")

	region.AdvanceRegion(region.DefaultConfig(), 60, r, subsystems)
	require.Equal(t, 1, calls)
}

func TestActivateResynchronizesElapsedTicks(t *testing.T) {
	r := &entities.Region{ID: "region_2_0", State: entities.RegionBackground, LastProcessedTick: 100}

	var elapsedSeen uint64
	subsystems := region.Subsystems{
		BackgroundResourceRegen: func(_ string, elapsed uint64) { elapsedSeen = elapsed },
	}

	region.Activate(1000, r, subsystems)

	require.Equal(t, entities.RegionActive, r.State)
	require.Equal(t, uint64(900), elapsedSeen)
	require.Equal(t, uint64(1000), r.LastProcessedTick)
}

func TestDeactivateSetsBackgroundState(t *testing.T) {
	r := &entities.Region{ID: "region_3_0", State: entities.RegionActive}
	region.Deactivate(50, r)
	require.Equal(t, entities.RegionBackground, r.State)
	require.Equal(t, uint64(50), r.LastProcessedTick)
}
