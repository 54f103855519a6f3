package rng_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/rng"
)

func TestNoiseDeterministic(t *testing.T) {
	a, err := rng.Noise(42, 10, 20)
	require.NoError(t, err)
	b, err := rng.Noise(42, 10, 20)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 0.0)
	require.Less(t, a, 1.0)
}

func TestNoiseVariesByCoordinate(t *testing.T) {
	a, err := rng.Noise(42, 10, 20)
	require.NoError(t, err)
	b, err := rng.Noise(42, 11, 20)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNoiseVariesBySeed(t *testing.T) {
	a, err := rng.Noise(1, 5, 5)
	require.NoError(t, err)
	b, err := rng.Noise(2, 5, 5)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNoiseRejectsOutOfBoundsCoordinate(t *testing.T) {
	_, err := rng.Noise(1, math.MaxInt32+1, 0)
	require.ErrorIs(t, err, rng.ErrInvalidCoordinate)
}

func TestSubSeedIsolatesStages(t *testing.T) {
	terrain := rng.SubSeed(7, rng.StageTerrain)
	hydro := rng.SubSeed(7, rng.StageHydrology)
	require.NotEqual(t, terrain, hydro)
}

func TestTickSeedDeterministic(t *testing.T) {
	a := rng.TickSeed(42, 100, 99)
	b := rng.TickSeed(42, 100, 99)
	require.Equal(t, a, b)

	c := rng.TickSeed(42, 101, 99)
	require.NotEqual(t, a, c)
}

func TestSourceReproducibleSequence(t *testing.T) {
	a := rng.New(123)
	b := rng.New(123)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestMicroNoiseNeverOutweighsElevationPrecision(t *testing.T) {
	v, err := rng.MicroNoise(1, 3, 4, 5e-5)
	require.NoError(t, err)
	require.Less(t, v, 5e-5)
	require.GreaterOrEqual(t, v, 0.0)
}
