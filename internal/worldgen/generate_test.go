package worldgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/worldgen"
)

func TestGenerateRejectsInvalidDimensions(t *testing.T) {
	_, err := worldgen.Generate(worldgen.Request{Seed: 1, Width: 0, Height: 10})
	require.Error(t, err)
}

func TestGenerateIsDeterministic(t *testing.T) {
	req := worldgen.Request{Seed: 1234, Width: 80, Height: 80, Density: 1.0}

	a, err := worldgen.Generate(req)
	require.NoError(t, err)
	b, err := worldgen.Generate(req)
	require.NoError(t, err)

	require.Equal(t, len(a.Structures), len(b.Structures))
	require.Equal(t, len(a.NPCs), len(b.NPCs))
	require.Equal(t, len(a.Clans), len(b.Clans))
	require.Equal(t, len(a.Villages), len(b.Villages))
	require.Equal(t, len(a.Rivers), len(b.Rivers))

	structsA := a.StructuresInOrder()
	structsB := b.StructuresInOrder()
	require.Equal(t, len(structsA), len(structsB))
	for i := range structsA {
		require.Equal(t, structsA[i].ID, structsB[i].ID)
		require.Equal(t, structsA[i].Location, structsB[i].Location)
	}

	npcsA := a.NPCsInOrder()
	npcsB := b.NPCsInOrder()
	require.Equal(t, len(npcsA), len(npcsB))
	for i := range npcsA {
		require.Equal(t, npcsA[i].ID, npcsB[i].ID)
	}

	featuresA, featuresB := a.FeaturesInOrder(), b.FeaturesInOrder()
	require.Equal(t, len(featuresA), len(featuresB))
	for i := range featuresA {
		require.Equal(t, featuresA[i].ID, featuresB[i].ID)
	}

	villagesA, villagesB := a.VillagesInOrder(), b.VillagesInOrder()
	require.Equal(t, len(villagesA), len(villagesB))
	for i := range villagesA {
		require.Equal(t, villagesA[i].ID, villagesB[i].ID)
	}

	propheciesA, propheciesB := a.PropheciesInOrder(), b.PropheciesInOrder()
	require.Equal(t, len(propheciesA), len(propheciesB))
	for i := range propheciesA {
		require.Equal(t, propheciesA[i].ID, propheciesB[i].ID)
	}

	roadsA, roadsB := a.RoadTilesInOrder(), b.RoadTilesInOrder()
	require.Equal(t, len(roadsA), len(roadsB))
	for i := range roadsA {
		require.Equal(t, roadsA[i].Position, roadsB[i].Position)
	}
}

func TestGenerateProducesNonEmptyWorld(t *testing.T) {
	req := worldgen.Request{Seed: 99, Width: 100, Height: 100, Density: 1.0}
	w, err := worldgen.Generate(req)
	require.NoError(t, err)

	require.NotEmpty(t, w.Clans)
	require.NotEmpty(t, w.Structures)
	require.NotEmpty(t, w.NPCs)
	require.NotEmpty(t, w.Regions, "PartitionRegions must populate at least one region")
}

func TestGenerateDiffersBySeed(t *testing.T) {
	a, err := worldgen.Generate(worldgen.Request{Seed: 1, Width: 60, Height: 60, Density: 1.0})
	require.NoError(t, err)
	b, err := worldgen.Generate(worldgen.Request{Seed: 2, Width: 60, Height: 60, Density: 1.0})
	require.NoError(t, err)

	require.NotEqual(t, a.StructuresInOrder()[0].ID, b.StructuresInOrder()[0].ID)
}
