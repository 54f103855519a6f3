package clanai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/clanai"
	"github.com/talgya/livingworld/internal/entities"
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

func TestIsPlayerControlledByMember(t *testing.T) {
	clan := entities.NewClan("clan_1", "Test", entities.ClanSettled, 0)
	clan.MemberIDs = []string{"npc_1"}
	npcs := map[string]*entities.NPC{
		"npc_1": {ID: "npc_1", IsPlayer: true},
	}
	require.True(t, clanai.IsPlayerControlled(clan, npcs))
}

func TestIsPlayerControlledByFlag(t *testing.T) {
	clan := entities.NewClan("clan_1", "Test", entities.ClanSettled, 0)
	clan.IsPlayerControlled = true
	require.True(t, clanai.IsPlayerControlled(clan, map[string]*entities.NPC{}))
}

func TestTickSkipsPlayerControlledClan(t *testing.T) {
	g := flatGrid(200, 200, 0.5)

	memberIDs := make([]string, 0, 15)
	npcs := make(map[string]*entities.NPC, 15)
	for i := 0; i < 15; i++ {
		id := "npc_" + string(rune('a'+i))
		memberIDs = append(memberIDs, id)
		npcs[id] = &entities.NPC{ID: id, IsPlayer: i == 0}
	}

	clan := entities.NewClan("clan_player", "Heroes", entities.ClanSettled, 0)
	clan.MemberIDs = memberIDs
	clan.Treasury = 10000
	clan.SettlementID = "settle_1"

	settlements := map[string]*entities.Settlement{
		"settle_1": {ID: "settle_1", ClanID: clan.ID, Center: worldgrid.Coord{X: 100, Y: 100}},
	}
	structures := map[string]*entities.Structure{}
	roadTiles := map[worldgrid.Coord]*entities.RoadTile{}
	clans := map[string]*entities.Clan{clan.ID: clan}

	clanai.Tick(g, 1, 100, clans, npcs, structures, settlements, roadTiles)

	require.Equal(t, 10000.0, clan.Treasury, "player-controlled clan's treasury must never be touched by clan AI")
	require.Empty(t, structures, "player-controlled clan must never trigger expansion")
}

func TestTrySplitMovesMinorityToOffshoot(t *testing.T) {
	clan := entities.NewClan("clan_big", "Big", entities.ClanSettled, 0)
	for i := 0; i < 60; i++ {
		clan.MemberIDs = append(clan.MemberIDs, "npc_"+string(rune('a'+i%26))+string(rune('0'+i/26)))
	}
	clan.Treasury = 1000
	clans := map[string]*entities.Clan{clan.ID: clan}
	settlementsByClan := map[string][]string{clan.ID: {"settle_1", "settle_2"}}

	offshoot := clanai.TrySplit(1, 500, clan, clans, settlementsByClan)

	require.NotNil(t, offshoot)
	require.Equal(t, 36, len(clan.MemberIDs))
	require.Equal(t, 24, len(offshoot.MemberIDs))
	require.InDelta(t, 600.0, clan.Treasury, 1e-9)
	require.InDelta(t, 400.0, offshoot.Treasury, 1e-9)
	require.Contains(t, clans, offshoot.ID)
}

func TestTrySplitNoOpBelowThreshold(t *testing.T) {
	clan := entities.NewClan("clan_small", "Small", entities.ClanSettled, 0)
	clan.MemberIDs = []string{"a", "b", "c"}
	clans := map[string]*entities.Clan{clan.ID: clan}
	settlementsByClan := map[string][]string{clan.ID: {"settle_1", "settle_2"}}

	offshoot := clanai.TrySplit(1, 1, clan, clans, settlementsByClan)
	require.Nil(t, offshoot)
}
