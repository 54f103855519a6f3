package event_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/event"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func TestSaturationFactorBounds(t *testing.T) {
	require.Equal(t, 1.0, event.SaturationFactor(0, 50))
	require.Equal(t, 0.5, event.SaturationFactor(25, 50))
	require.Equal(t, 0.0, event.SaturationFactor(50, 50))
	require.Equal(t, 0.0, event.SaturationFactor(75, 50), "factor must never go negative past full capacity")
}

func TestSoftCapTriggered(t *testing.T) {
	require.False(t, event.SoftCapTriggered(39, 50))
	require.True(t, event.SoftCapTriggered(40, 50))
	require.True(t, event.SoftCapTriggered(50, 50))
}

func TestEffectiveProbabilityDecaysMonotonically(t *testing.T) {
	prev := event.EffectiveProbability(1.0, 0, event.DecayExponential, 0.8, 1.0, 1.0)
	for hop := 1; hop <= 6; hop++ {
		cur := event.EffectiveProbability(1.0, hop, event.DecayExponential, 0.8, 1.0, 1.0)
		require.Less(t, cur, prev, "exponential decay must strictly decrease with hop count")
		prev = cur
	}
}

func TestEffectiveProbabilityLinearNeverNegative(t *testing.T) {
	p := event.EffectiveProbability(1.0, 100, event.DecayLinear, 0.8, 1.0, 1.0)
	require.GreaterOrEqual(t, p, 0.0)
}

func TestPropagateDeterministic(t *testing.T) {
	g := worldgrid.NewGrid(30, 30, 1)
	origin := worldgrid.Coord{X: 15, Y: 15}

	a := event.Propagate(g, "evt_1", 500, origin, 0.9, event.DecayExponential, 0.8, 6, 1.0, nil)
	b := event.Propagate(g, "evt_1", 500, origin, 0.9, event.DecayExponential, 0.8, 6, 1.0, nil)

	require.Equal(t, a, b)
	require.True(t, a[origin], "origin tile is always affected")
}

func TestPropagateRespectsSaturationZero(t *testing.T) {
	g := worldgrid.NewGrid(30, 30, 1)
	origin := worldgrid.Coord{X: 15, Y: 15}

	affected := event.Propagate(g, "evt_2", 1, origin, 0.9, event.DecayExponential, 0.8, 6, 0.0, nil)
	require.Equal(t, 1, len(affected), "zero saturation must prevent any spread beyond the origin")
}
