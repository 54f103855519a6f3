package npc_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/npc"
)

func buildMarriedCouple(homeID string) (map[string]*entities.NPC, map[string]*entities.Structure, *entities.Clan) {
	home := &entities.Structure{ID: homeID, Type: entities.StructureHouse, MaxHealth: 100, Health: 100}
	husband := &entities.NPC{ID: "npc_husband", ClanID: "clan_1", Gender: entities.GenderMale, BirthTick: 0, HomeStructureID: homeID, SpouseID: "npc_wife"}
	wife := &entities.NPC{ID: "npc_wife", ClanID: "clan_1", Gender: entities.GenderFemale, BirthTick: 0, HomeStructureID: homeID, SpouseID: "npc_husband"}
	home.OccupantIDs = []string{husband.ID, wife.ID}

	npcs := map[string]*entities.NPC{husband.ID: husband, wife.ID: wife}
	structures := map[string]*entities.Structure{home.ID: home}
	clan := entities.NewClan("clan_1", "Founders", entities.ClanSettled, 0)
	clan.MemberIDs = []string{husband.ID, wife.ID}
	return npcs, structures, clan
}

func TestLifecycleSweepProducesChildAndAges(t *testing.T) {
	npcs, structures, clan := buildMarriedCouple("home_1")

	const ticksPerYear = 10000
	startTick := uint64(250000) // both adults are 25 at tick 250000 given birth ticks above
	endTick := startTick + 50000

	gotBirth := false
	for tick := startTick; tick <= endTick; tick += 5000 {
		result := npc.Tick(42, tick, clan, npcs, structures)
		if len(result.Births) > 0 {
			gotBirth = true
		}
	}

	require.True(t, gotBirth, "expected at least one child born over 50,000 ticks with fertile married adults")
	_, husbandAlive := npcs["npc_husband"]
	_, wifeAlive := npcs["npc_wife"]
	require.True(t, husbandAlive)
	require.True(t, wifeAlive)

	require.GreaterOrEqual(t, npcs["npc_husband"].Age(endTick)-npcs["npc_husband"].Age(startTick), 5)
}

func TestLifecycleSweepDeterministic(t *testing.T) {
	run := func() []string {
		npcs, structures, clan := buildMarriedCouple("home_1")
		var births []string
		for tick := uint64(250000); tick <= 300000; tick += 5000 {
			result := npc.Tick(42, tick, clan, npcs, structures)
			for _, c := range result.Births {
				births = append(births, c.ID)
			}
		}
		return births
	}

	require.Equal(t, run(), run())
}

func TestTickRegistersChildAsClanMember(t *testing.T) {
	npcs, structures, clan := buildMarriedCouple("home_1")
	before := len(clan.MemberIDs)

	var totalBirths int
	for tick := uint64(250000); tick <= 350000; tick += 5000 {
		result := npc.Tick(7, tick, clan, npcs, structures)
		totalBirths += len(result.Births)
	}

	if totalBirths > 0 {
		require.Greater(t, len(clan.MemberIDs), before)
	}
}

func TestDeathClearsSpouseReciprocally(t *testing.T) {
	npcs, structures, clan := buildMarriedCouple("home_1")
	npcs["npc_husband"].BirthTick = 0 // force very old age so death rolls are certain
	npcs["npc_wife"].BirthTick = 750000 // wife is 25 at tick 1,000,000, below the age-70 death-roll threshold

	for tick := uint64(1000000); tick <= 1000000+70000; tick += 5000 {
		npc.Tick(11, tick, clan, npcs, structures)
		if _, alive := npcs["npc_husband"]; !alive {
			break
		}
	}

	_, husbandAlive := npcs["npc_husband"]
	if !husbandAlive {
		wife, ok := npcs["npc_wife"]
		require.True(t, ok)
		require.Empty(t, wife.SpouseID, "surviving spouse's SpouseID must clear when the other dies")
	}
}

func TestHomeCapacityNeverExceedsFour(t *testing.T) {
	home := &entities.Structure{ID: "home_full", Type: entities.StructureHouse, MaxHealth: 100, Health: 100}
	npcs := make(map[string]*entities.NPC)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("npc_%d", i)
		npcs[id] = &entities.NPC{ID: id, ClanID: "clan_1", BirthTick: 0, HomeStructureID: home.ID, SpouseID: fmt.Sprintf("npc_%d", (i+1)%4)}
		home.OccupantIDs = append(home.OccupantIDs, id)
	}
	structures := map[string]*entities.Structure{home.ID: home}
	clan := entities.NewClan("clan_1", "Crowded", entities.ClanSettled, 0)
	for id := range npcs {
		clan.MemberIDs = append(clan.MemberIDs, id)
	}

	for tick := uint64(250000); tick <= 300000; tick += 5000 {
		npc.Tick(3, tick, clan, npcs, structures)
		require.LessOrEqual(t, home.OccupantCount(), 4)
	}
}
