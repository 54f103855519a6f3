package entities_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/worldgrid"
)

func TestClanWithdrawNeverNegative(t *testing.T) {
	c := entities.NewClan("clan_1", "Testers", entities.ClanSettled, 0)
	c.Deposit(100)

	require.True(t, c.Withdraw(40))
	require.Equal(t, 60.0, c.Treasury)

	require.False(t, c.Withdraw(1000))
	require.Equal(t, 60.0, c.Treasury, "a rejected withdrawal must not touch the treasury")
}

func TestNewRelationshipRecordClamps(t *testing.T) {
	r := entities.NewRelationshipRecord(500, -10, -500, 1000, 42)
	require.Equal(t, 100.0, r.Reputation)
	require.Equal(t, 0.0, r.Influence)
	require.Equal(t, -100.0, r.Alignment)
	require.Equal(t, 50.0, r.RaceAffinity)
	require.Equal(t, uint64(42), r.LastUpdatedTick)
}

func TestFertilityPeaksAt27AndZeroOutsideRange(t *testing.T) {
	require.Equal(t, 100.0, entities.Fertility(27))
	require.Equal(t, 0.0, entities.Fertility(17))
	require.Equal(t, 0.0, entities.Fertility(46))
	require.Equal(t, 75.0, entities.Fertility(22))
	require.Equal(t, 75.0, entities.Fertility(32))
}

func TestNPCAge(t *testing.T) {
	n := &entities.NPC{BirthTick: 10000}
	require.Equal(t, 0, n.Age(10000))
	require.Equal(t, 1, n.Age(20000))
	require.Equal(t, 5, n.Age(60000))
	require.Equal(t, 0, n.Age(0), "a tick before birth must not underflow")
}

func TestStructureOccupancyAndEntranceTile(t *testing.T) {
	s := &entities.Structure{
		Location: worldgrid.Coord{X: 10, Y: 10},
		Entrance: entities.EntranceSouth,
	}
	require.Equal(t, 0, s.OccupantCount())
	s.OccupantIDs = append(s.OccupantIDs, "npc_a", "npc_b")
	require.Equal(t, 2, s.OccupantCount())
	require.Equal(t, worldgrid.Coord{X: 10, Y: 11}, s.EntranceTile())
}
