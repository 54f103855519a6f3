package structlife_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/structlife"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func flatGrid(width, height int, elev float64) *worldgrid.Grid {
	g := worldgrid.NewGrid(width, height, 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(worldgrid.Tile{Coord: worldgrid.Coord{X: x, Y: y}, Elevation: elev})
		}
	}
	return g
}

func TestTickConvertsDestroyedStructureToRuin(t *testing.T) {
	g := flatGrid(20, 20, 0.5)
	structures := map[string]*entities.Structure{
		"house_1": {ID: "house_1", Type: entities.StructureHouse, Location: worldgrid.Coord{X: 5, Y: 5}, Health: 0, MaxHealth: 100, OwnerID: "clan_1"},
	}
	clans := map[string]*entities.Clan{}

	ruins, _ := structlife.Tick(g, 1, 100, structures, clans, map[string]bool{})

	require.Equal(t, 1, len(ruins))
	require.Equal(t, "house_1", ruins[0].OriginalID)
	_, stillThere := structures["house_1"]
	require.False(t, stillThere)
	ruin, ok := structures[ruins[0].RuinID]
	require.True(t, ok)
	require.Equal(t, entities.StructureAncientRuins, ruin.Type)
	require.Equal(t, ruin.MaxHealth, ruin.Health)
}

func TestTickHealthyStructureSurvives(t *testing.T) {
	g := flatGrid(20, 20, 0.5)
	structures := map[string]*entities.Structure{
		"house_1": {ID: "house_1", Type: entities.StructureHouse, Location: worldgrid.Coord{X: 5, Y: 5}, Health: 100, MaxHealth: 100, LastUpdatedTick: 999},
	}
	clans := map[string]*entities.Clan{}

	ruins, _ := structlife.Tick(g, 1, 999, structures, clans, map[string]bool{})

	require.Empty(t, ruins)
	_, ok := structures["house_1"]
	require.True(t, ok)
}

func TestTickIsDeterministic(t *testing.T) {
	g := flatGrid(20, 20, 0.4)
	build := func() map[string]*entities.Structure {
		return map[string]*entities.Structure{
			"house_1": {ID: "house_1", Type: entities.StructureHouse, Location: worldgrid.Coord{X: 5, Y: 5}, Health: 100, MaxHealth: 100},
			"house_2": {ID: "house_2", Type: entities.StructureWorkshop, Location: worldgrid.Coord{X: 6, Y: 5}, Health: 100, MaxHealth: 100},
		}
	}
	a := build()
	b := build()

	structlife.Tick(g, 7, 1000, a, map[string]*entities.Clan{}, map[string]bool{})
	structlife.Tick(g, 7, 1000, b, map[string]*entities.Clan{}, map[string]bool{})

	require.Equal(t, a["house_1"].Health, b["house_1"].Health)
	require.Equal(t, a["house_2"].Health, b["house_2"].Health)
}
