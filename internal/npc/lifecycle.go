// Lifecycle implements C13: aging, marriage, reproduction, and death,
// ticked once per non-player NPC per simulation tick. Grounded on the
// teacher's internal/engine/population.go per-tick demographic sweep,
// adapted from its free-running needs model to the spec's exact
// probability tables and cooldown intervals.
package npc

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
)

const ticksPerYear = 10000
const marriageCheckInterval = 5000
const reproductionCheckInterval = 5000

// LifecycleResult communicates what happened so callers (clan AI, quest
// generation) can react without re-deriving it.
type LifecycleResult struct {
	Births []*entities.NPC
	Deaths []string // npc ids removed this tick
}

// Tick advances every non-player NPC in a clan by one tick: age transition,
// marriage rolls, reproduction rolls, and death rolls, all seeded from
// currentTick XOR hash(npc_id) per the determinism contract.
func Tick(worldSeed int64, currentTick uint64, clan *entities.Clan, npcs map[string]*entities.NPC, structures map[string]*entities.Structure) LifecycleResult {
	var result LifecycleResult

	for _, id := range clan.MemberIDs {
		n, ok := npcs[id]
		if !ok || n.IsPlayer {
			continue
		}

		ageBefore := n.Age(currentTick - 1)
		ageAfter := n.Age(currentTick)
		if ageBefore == 17 && ageAfter == 18 {
			n.Job = "unassigned"
		}

		seed := rng.TickSeed(worldSeed, currentTick, uint64(hashString(n.ID)))
		src := rng.New(seed)

		if currentTick-n.LastMarriageCheckTick >= marriageCheckInterval {
			tryMarriage(src, n, clan, npcs, structures, currentTick)
			n.LastMarriageCheckTick = currentTick
		}

		if currentTick-n.LastReproductionCheckTick >= reproductionCheckInterval && n.SpouseID != "" {
			if child := tryReproduction(src, n, npcs, structures, worldSeed, currentTick); child != nil {
				result.Births = append(result.Births, child)
			}
			n.LastReproductionCheckTick = currentTick
		}

		if ageAfter >= 70 {
			if rollDeath(src, ageAfter) {
				result.Deaths = append(result.Deaths, n.ID)
			}
		}
	}

	recordBirths(clan, result.Births)

	for _, deadID := range result.Deaths {
		applyDeath(deadID, npcs, clan)
	}

	return result
}

func tryMarriage(src *rng.Source, n *entities.NPC, clan *entities.Clan, npcs map[string]*entities.NPC, structures map[string]*entities.Structure, tick uint64) {
	if n.SpouseID != "" || n.Age(tick) < 18 {
		return
	}
	var candidates []*entities.NPC
	for _, id := range clan.MemberIDs {
		other, ok := npcs[id]
		if !ok || other.ID == n.ID || other.SpouseID != "" || other.Age(tick) < 18 {
			continue
		}
		diff := n.Age(tick) - other.Age(tick)
		if diff < 0 {
			diff = -diff
		}
		if diff > 10 {
			continue
		}
		candidates = append(candidates, other)
	}
	if len(candidates) == 0 {
		return
	}
	if src.Float64() >= 0.10 {
		return
	}
	partner := candidates[src.Intn(len(candidates))]
	n.SpouseID = partner.ID
	partner.SpouseID = n.ID

	if oldHome, ok := structures[partner.HomeStructureID]; ok {
		oldHome.OccupantIDs = removeOccupant(oldHome.OccupantIDs, partner.ID)
	}
	partner.HomeStructureID = n.HomeStructureID
	if home, ok := structures[n.HomeStructureID]; ok {
		home.OccupantIDs = append(home.OccupantIDs, partner.ID)
	}
}

func removeOccupant(occupants []string, id string) []string {
	out := occupants[:0]
	for _, x := range occupants {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func tryReproduction(src *rng.Source, n *entities.NPC, npcs map[string]*entities.NPC, structures map[string]*entities.Structure, worldSeed int64, tick uint64) *entities.NPC {
	home, ok := structures[n.HomeStructureID]
	if !ok || home.OccupantCount() >= 4 {
		return nil
	}
	fertility := entities.Fertility(n.Age(tick))
	if fertility <= 0 {
		return nil
	}
	if src.Float64() >= fertility/100.0 {
		return nil
	}

	gender := entities.GenderFemale
	if src.Float64() < 0.5 {
		gender = entities.GenderMale
	}
	names := femaleNames
	if gender == entities.GenderMale {
		names = maleNames
	}
	name := names[src.Intn(len(names))]

	childID := ids.Entity("npc", n.ClanID, worldSeed, tick^uint64(hashString(n.ID)))
	child := &entities.NPC{
		ID:              childID,
		Name:            name,
		ClanID:          n.ClanID,
		Gender:          gender,
		BirthTick:       tick,
		Job:             "child",
		HomeStructureID: n.HomeStructureID,
	}
	npcs[childID] = child
	home.OccupantIDs = append(home.OccupantIDs, childID)
	n.ChildrenIDs = append(n.ChildrenIDs, childID)
	if spouse, ok := npcs[n.SpouseID]; ok {
		spouse.ChildrenIDs = append(spouse.ChildrenIDs, childID)
	}

	slog.Debug("npc born", "id", childID, "clan", n.ClanID)
	return child
}

func recordBirths(clan *entities.Clan, births []*entities.NPC) {
	for _, child := range births {
		clan.MemberIDs = append(clan.MemberIDs, child.ID)
	}
}

// rollDeath applies the stepped mortality table: 1% 70-74, 5% 75-79,
// 20% 80-84, 50% 85-89, 90% 90-94, 100% >=95.
func rollDeath(src *rng.Source, age int) bool {
	var p float64
	switch {
	case age >= 95:
		p = 1.0
	case age >= 90:
		p = 0.90
	case age >= 85:
		p = 0.50
	case age >= 80:
		p = 0.20
	case age >= 75:
		p = 0.05
	default:
		p = 0.01
	}
	return src.Float64() < p
}

func applyDeath(deadID string, npcs map[string]*entities.NPC, clan *entities.Clan) {
	dead, ok := npcs[deadID]
	if !ok {
		return
	}
	if dead.SpouseID != "" {
		if spouse, ok := npcs[dead.SpouseID]; ok {
			spouse.SpouseID = ""
		}
	}
	delete(npcs, deadID)
	for i, id := range clan.MemberIDs {
		if id == deadID {
			clan.MemberIDs = append(clan.MemberIDs[:i], clan.MemberIDs[i+1:]...)
			break
		}
	}
}
