// Package npc seeds the named population (C7: age/gender/job/home/spouse)
// and drives NPC lifecycle ticks (C13: aging, marriage, reproduction,
// death). See spec Sections 4.6 and 4.12. Grounded on the teacher's
// internal/agents/spawner.go (weighted age/name generation structure) and
// internal/engine/population.go (per-tick aging/marriage/birth/death
// sweep), generalized from the teacher's free-running Tier0/1/2 cognition
// model to the spec's fixed demographic/marriage/fertility formulas.
package npc

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
)

var femaleNames = []string{"Aria", "Brynn", "Cora", "Dahlia", "Elowen", "Freya", "Greta", "Hazel", "Iris", "Juniper", "Kira", "Lena", "Mira", "Nadia", "Opal", "Petra", "Quinn", "Rosalind", "Saoirse", "Talia"}
var maleNames = []string{"Aldric", "Bram", "Cedric", "Dorian", "Edric", "Falk", "Garrick", "Hale", "Ivor", "Jorah", "Kael", "Lorcan", "Magnus", "Nolan", "Osric", "Perrin", "Quill", "Rowan", "Stellan", "Torin"}

// targetJob picks a job name for an adult based on the structure they're
// assigned to work at.
func targetJob(structType entities.StructureType) string {
	switch structType {
	case entities.StructureMarket:
		return "merchant"
	case entities.StructureWorkshop:
		return "craftsman"
	case entities.StructureTemple:
		return "priest"
	case entities.StructureGuildHall:
		return "administrator"
	case entities.StructureDock:
		return "fisher"
	default:
		return "laborer"
	}
}

// SeedClan populates one clan's target population with NPCs: a 20/50/30
// child/adult/elder age split (+-10% tolerance is inherent to rounding),
// 50/50 gender, homes capped at 4 occupants, adult job assignment from the
// clan's own workplace structures, and finally shuffle-and-pair marriage at
// probability 0.5 per adjacent pair.
func SeedClan(worldSeed int64, tick uint64, clan *entities.Clan, homes, workplaces []*entities.Structure) []*entities.NPC {
	seed := rng.SubSeed(worldSeed, rng.StageNPC) ^ int64(hashString(clan.ID))
	src := rng.New(seed)

	n := clan.TargetPopulation
	childCount := int(float64(n) * 0.20)
	elderCount := int(float64(n) * 0.30)
	adultCount := n - childCount - elderCount

	npcs := make([]*entities.NPC, 0, n)
	index := 0

	addBatch := func(count int, ageMin, ageMax int) {
		for i := 0; i < count; i++ {
			gender := entities.GenderFemale
			if src.Float64() < 0.5 {
				gender = entities.GenderMale
			}
			names := femaleNames
			if gender == entities.GenderMale {
				names = maleNames
			}
			name := names[src.Intn(len(names))]
			age := ageMin + src.Intn(ageMax-ageMin+1)
			birthTick := tick - uint64(age)*10000

			id := ids.Entity("npc", clan.ID, seed, uint64(index))
			index++

			npc := &entities.NPC{
				ID:        id,
				Name:      name,
				ClanID:    clan.ID,
				Gender:    gender,
				BirthTick: birthTick,
			}
			npcs = append(npcs, npc)
		}
	}

	addBatch(childCount, 0, 17)
	addBatch(adultCount, 18, 60)
	addBatch(elderCount, 60, 80)

	assignHomes(npcs, homes)
	assignJobs(npcs, workplaces, tick)
	marry(src, npcs, tick, homes)

	for _, n := range npcs {
		clan.MemberIDs = append(clan.MemberIDs, n.ID)
	}

	slog.Info("npcs seeded", "clan", clan.ID, "count", len(npcs))
	return npcs
}

func assignHomes(npcs []*entities.NPC, homes []*entities.Structure) {
	if len(homes) == 0 {
		return
	}
	homeIdx := 0
	for _, n := range npcs {
		scanned := 0
		for homes[homeIdx].OccupantCount() >= 4 && scanned < len(homes) {
			homeIdx = (homeIdx + 1) % len(homes)
			scanned++
		}
		homes[homeIdx].OccupantIDs = append(homes[homeIdx].OccupantIDs, n.ID)
		n.HomeStructureID = homes[homeIdx].ID
	}
}

func assignJobs(npcs []*entities.NPC, workplaces []*entities.Structure, tick uint64) {
	if len(workplaces) == 0 {
		return
	}
	wIdx := 0
	for _, n := range npcs {
		if n.Age(tick) < 18 {
			n.Job = "child"
			continue
		}
		w := workplaces[wIdx%len(workplaces)]
		wIdx++
		n.WorkplaceStructureID = w.ID
		n.Job = targetJob(w.Type)
	}
}

// marry shuffles adults and pairs adjacent entries, each pair marrying with
// probability 0.5; the second spouse moves into the first's home.
func marry(src *rng.Source, npcs []*entities.NPC, tick uint64, homes []*entities.Structure) {
	var adults []*entities.NPC
	for _, n := range npcs {
		if n.Age(tick) >= 18 {
			adults = append(adults, n)
		}
	}
	src.Shuffle(len(adults), func(i, j int) { adults[i], adults[j] = adults[j], adults[i] })

	homeByID := make(map[string]*entities.Structure, len(homes))
	for _, h := range homes {
		homeByID[h.ID] = h
	}

	for i := 0; i+1 < len(adults); i += 2 {
		if src.Float64() >= 0.5 {
			continue
		}
		a, b := adults[i], adults[i+1]
		if a.SpouseID != "" || b.SpouseID != "" {
			continue
		}
		a.SpouseID = b.ID
		b.SpouseID = a.ID

		if oldHome, ok := homeByID[b.HomeStructureID]; ok {
			oldHome.OccupantIDs = removeOccupant(oldHome.OccupantIDs, b.ID)
		}
		b.HomeStructureID = a.HomeStructureID
		if newHome, ok := homeByID[a.HomeStructureID]; ok {
			newHome.OccupantIDs = append(newHome.OccupantIDs, b.ID)
		}
	}
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
