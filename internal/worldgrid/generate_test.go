package worldgrid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/worldgrid"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := worldgrid.Config{Width: 48, Height: 48, Seed: 777}
	a := worldgrid.Generate(cfg)
	b := worldgrid.Generate(cfg)

	require.Equal(t, len(a.Tiles()), len(b.Tiles()))
	for i := range a.Tiles() {
		ta, tb := a.Tiles()[i], b.Tiles()[i]
		require.Equal(t, ta.Coord, tb.Coord)
		require.Equal(t, ta.Elevation, tb.Elevation)
		require.Equal(t, ta.Temperature, tb.Temperature)
		require.Equal(t, ta.Moisture, tb.Moisture)
		require.Equal(t, ta.Biome, tb.Biome)
		require.Equal(t, ta.PlateID, tb.PlateID)
	}
}

func TestGenerateDiffersByseed(t *testing.T) {
	a := worldgrid.Generate(worldgrid.Config{Width: 32, Height: 32, Seed: 1})
	b := worldgrid.Generate(worldgrid.Config{Width: 32, Height: 32, Seed: 2})

	differs := false
	for i := range a.Tiles() {
		if a.Tiles()[i].Elevation != b.Tiles()[i].Elevation {
			differs = true
			break
		}
	}
	require.True(t, differs, "expected different seeds to produce different terrain")
}

func TestElevationBounds(t *testing.T) {
	g := worldgrid.Generate(worldgrid.Config{Width: 40, Height: 40, Seed: 99})
	for _, tile := range g.Tiles() {
		require.GreaterOrEqual(t, tile.Elevation, 0.0)
		require.LessOrEqual(t, tile.Elevation, 1.0)
		require.GreaterOrEqual(t, tile.Moisture, 0.0)
		require.LessOrEqual(t, tile.Moisture, 1.0)
	}
}

func TestInBounds(t *testing.T) {
	g := worldgrid.NewGrid(10, 10, 1)
	require.True(t, g.InBounds(worldgrid.Coord{X: 0, Y: 0}))
	require.True(t, g.InBounds(worldgrid.Coord{X: 9, Y: 9}))
	require.False(t, g.InBounds(worldgrid.Coord{X: 10, Y: 0}))
	require.False(t, g.InBounds(worldgrid.Coord{X: -1, Y: 0}))
}

func TestDefaultPlateCount(t *testing.T) {
	require.Equal(t, 4, worldgrid.DefaultPlateCount(10, 10))
	require.Equal(t, 25, worldgrid.DefaultPlateCount(500, 500))
}

func TestDistanceHelpers(t *testing.T) {
	a := worldgrid.Coord{X: 0, Y: 0}
	b := worldgrid.Coord{X: 3, Y: -4}
	require.Equal(t, 7, worldgrid.ManhattanDistance(a, b))
	require.Equal(t, 4, worldgrid.ChebyshevDistance(a, b))
}
