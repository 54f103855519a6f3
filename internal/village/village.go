// Package village implements density-based structure clustering and tier
// promotion (C9). See spec Section 4.8. Grounded on
// katalvlaran/lvlath's graph.BFS for the clustering traversal itself (the
// teacher has no equivalent clustering code); ids and naming conventions
// follow the teacher's internal/social/settlement.go Settlement struct.
package village

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/graph"
	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const clusterRadius = 10
const minClusterSize = 3

// Detect builds a proximity graph over all structures (edge when Chebyshev
// distance <= clusterRadius) and BFS-clusters it; clusters of >=3 members
// become villages, tiered per spec thresholds. Village ids are kept stable
// across recomputations when a cluster's member set is unchanged, by
// reusing the previous village whose member-id set matches exactly.
func Detect(worldSeed int64, tick uint64, structures map[string]*entities.Structure, npcs map[string]*entities.NPC, previous map[string]*entities.Village) map[string]*entities.Village {
	g := graph.NewGraph(false, false)

	ids_ := make([]string, 0, len(structures))
	for id := range structures {
		ids_ = append(ids_, id)
	}
	sort.Strings(ids_)

	for _, id := range ids_ {
		g.AddVertex(&graph.Vertex{ID: id})
	}
	for i, a := range ids_ {
		for _, b := range ids_[i+1:] {
			if worldgrid.ChebyshevDistance(structures[a].Location, structures[b].Location) <= clusterRadius {
				g.AddEdge(a, b, 1)
				g.AddEdge(b, a, 1)
			}
		}
	}

	visited := make(map[string]bool)
	villages := make(map[string]*entities.Village)
	clusterIndex := 0

	for _, start := range ids_ {
		if visited[start] {
			continue
		}
		res, err := g.BFS(start, nil)
		if err != nil {
			continue
		}
		var members []string
		for _, v := range res.Order {
			if !visited[v.ID] {
				members = append(members, v.ID)
				visited[v.ID] = true
			}
		}
		if len(members) < minClusterSize {
			continue
		}
		sort.Strings(members)

		v := buildVillage(worldSeed, tick, members, structures, npcs, previous, clusterIndex)
		villages[v.ID] = v
		clusterIndex++
	}

	return villages
}

func buildVillage(worldSeed int64, tick uint64, members []string, structures map[string]*entities.Structure, npcs map[string]*entities.NPC, previous map[string]*entities.Village, clusterIndex int) *entities.Village {
	id, prevTier := stableID(members, previous, worldSeed, clusterIndex)

	sumX, sumY := 0, 0
	ownerCounts := make(map[string]int)
	hasMarket := false
	hasCore := false
	for _, sid := range members {
		s := structures[sid]
		sumX += s.Location.X
		sumY += s.Location.Y
		ownerCounts[s.OwnerID]++
		if s.Type == entities.StructureMarket {
			hasMarket = true
		}
		if s.Type.IsCore() {
			hasCore = true
		}
	}
	center := worldgrid.Coord{X: sumX / len(members), Y: sumY / len(members)}

	population := 0
	for _, n := range npcs {
		for _, sid := range members {
			if n.HomeStructureID == sid {
				population++
				break
			}
		}
	}

	governingClan := pluralityOwner(ownerCounts)

	tier := classify(len(members), population, hasMarket, hasCore)
	if tier < prevTier {
		tier = prevTier // promotions only go up
	}

	return &entities.Village{
		ID:            id,
		Name:          fmt.Sprintf("Settlement-%s", id[len(id)-6:]),
		Tier:          tier,
		Center:        center,
		StructureIDs:  members,
		Population:    population,
		GoverningClan: governingClan,
	}
}

// classify implements the spec's structure-count/population/special-
// building tier thresholds.
func classify(structureCount, population int, hasMarket, hasCore bool) entities.VillageTier {
	if structureCount >= 30 || (structureCount >= 20 && population >= 50 && hasCore) {
		return entities.TierCity
	}
	if structureCount >= 15 || hasMarket {
		return entities.TierTown
	}
	return entities.TierVillage
}

func pluralityOwner(counts map[string]int) string {
	best := ""
	bestCount := -1
	owners := make([]string, 0, len(counts))
	for o := range counts {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	for _, o := range owners {
		if counts[o] > bestCount {
			bestCount = counts[o]
			best = o
		}
	}
	return best
}

// stableID reuses a previous village's id if its member set matches
// exactly, preserving identity across recomputations; otherwise derives a
// fresh hash-based id from the sorted member list.
func stableID(members []string, previous map[string]*entities.Village, worldSeed int64, clusterIndex int) (string, entities.VillageTier) {
	key := memberKey(members)
	for _, v := range previous {
		if memberKey(v.StructureIDs) == key {
			return v.ID, v.Tier
		}
	}
	return ids.Entity("village", key, worldSeed, uint64(clusterIndex)), entities.TierVillage
}

func memberKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	out := ""
	for _, m := range sorted {
		out += m + "|"
	}
	return out
}
