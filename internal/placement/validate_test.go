package placement_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/placement"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func flatGrid(width, height int, elev float64) *worldgrid.Grid {
	g := worldgrid.NewGrid(width, height, 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(worldgrid.Tile{Coord: worldgrid.Coord{X: x, Y: y}, Elevation: elev, Biome: worldgrid.BiomeGrassland})
		}
	}
	return g
}

func TestValidateOutOfBounds(t *testing.T) {
	g := flatGrid(10, 10, 0.5)
	err := placement.Validate(g, worldgrid.Coord{X: 20, Y: 20}, entities.EntranceNorth, entities.StructureHouse, nil, nil)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.OutOfBounds, rej.Kind)
}

func TestValidateTooClose(t *testing.T) {
	g := flatGrid(30, 30, 0.5)
	structures := map[string]*entities.Structure{
		"s1": {ID: "s1", Location: worldgrid.Coord{X: 10, Y: 10}},
	}
	err := placement.Validate(g, worldgrid.Coord{X: 12, Y: 10}, entities.EntranceNorth, entities.StructureHouse, structures, nil)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.TooClose, rej.Kind)
}

func TestValidateBlockingEntrance(t *testing.T) {
	g := flatGrid(30, 30, 0.5)
	structures := map[string]*entities.Structure{
		"s1": {ID: "s1", Location: worldgrid.Coord{X: 10, Y: 9}},
	}
	err := placement.Validate(g, worldgrid.Coord{X: 10, Y: 10}, entities.EntranceNorth, entities.StructureHouse, structures, nil)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.BlockingEntrance, rej.Kind)
}

func TestValidateOnRoad(t *testing.T) {
	g := flatGrid(30, 30, 0.5)
	roads := map[worldgrid.Coord]*entities.RoadTile{
		{X: 10, Y: 10}: {},
	}
	err := placement.Validate(g, worldgrid.Coord{X: 10, Y: 10}, entities.EntranceNorth, entities.StructureHouse, nil, roads)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.OnRoad, rej.Kind)
}

func TestValidateUnsuitableTerrainMountain(t *testing.T) {
	g := flatGrid(30, 30, 0.9)
	err := placement.Validate(g, worldgrid.Coord{X: 10, Y: 10}, entities.EntranceNorth, entities.StructureHouse, nil, nil)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.UnsuitableTerrain, rej.Kind)
}

func TestValidateUnsuitableTerrainWaterForNonAquatic(t *testing.T) {
	g := flatGrid(30, 30, 0.1)
	err := placement.Validate(g, worldgrid.Coord{X: 10, Y: 10}, entities.EntranceNorth, entities.StructureHouse, nil, nil)
	require.Error(t, err)
	var rej *placement.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, placement.UnsuitableTerrain, rej.Kind)
}

func TestValidateWaterCompatibleStructureAllowedInWater(t *testing.T) {
	g := flatGrid(30, 30, 0.1)
	err := placement.Validate(g, worldgrid.Coord{X: 10, Y: 10}, entities.EntranceNorth, entities.StructureDock, nil, nil)
	require.NoError(t, err)
}

func TestValidateAccepts(t *testing.T) {
	g := flatGrid(30, 30, 0.5)
	err := placement.Validate(g, worldgrid.Coord{X: 15, Y: 15}, entities.EntranceNorth, entities.StructureHouse, nil, nil)
	require.NoError(t, err)
}
