// Package clans seeds the initial societies (C5): clan count, size tiers,
// and biome-driven type affinity. See spec Section 4.5.
// Grounded on the teacher's internal/social/faction.go SeedFactions (count
// derivation, founding-tick stamping), generalized from a fixed faction
// roster to a world-size-scaled clan count with hash-derived ids.
package clans

import (
	"fmt"
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/worldgrid"
)

var clanNameStems = []string{
	"Ashford", "Brightwater", "Cael", "Dunmoor", "Emberfall", "Fenwick",
	"Gravemoor", "Highmere", "Ironhold", "Juniper", "Kestrel", "Larkspur",
	"Moorwind", "Nightshade", "Oakhaven", "Pinecrest", "Quillfeather",
	"Ravensworth", "Stonebridge", "Thornfield", "Underhill", "Vesper",
	"Wrenfield", "Yewgrove", "Zephyrwood",
}

// Count derives the clan count from world area: max(3, min(50, W*H/20000)).
func Count(width, height int) int {
	n := (width * height) / 20000
	if n < 3 {
		n = 3
	}
	if n > 50 {
		n = 50
	}
	return n
}

// dominantBiome samples a handful of tiles around (cx,cy) and returns the
// most common biome, used to pick clan type affinity.
func dominantBiome(g *worldgrid.Grid, cx, cy int) worldgrid.Biome {
	counts := make(map[worldgrid.Biome]int)
	const r = 5
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c := worldgrid.Coord{X: cx + dx, Y: cy + dy}
			if t, ok := g.TryAt(c); ok {
				counts[t.Biome]++
			}
		}
	}
	biomes := make([]worldgrid.Biome, 0, len(counts))
	for b := range counts {
		biomes = append(biomes, b)
	}
	for i := 1; i < len(biomes); i++ {
		for j := i; j > 0 && biomes[j-1] > biomes[j]; j-- {
			biomes[j-1], biomes[j] = biomes[j], biomes[j-1]
		}
	}

	best := worldgrid.BiomeGrassland
	bestCount := -1
	for _, b := range biomes {
		if counts[b] > bestCount {
			bestCount = counts[b]
			best = b
		}
	}
	return best
}

func typeFromBiome(b worldgrid.Biome) entities.ClanType {
	switch b {
	case worldgrid.BiomeDesert:
		return entities.ClanNomadic
	case worldgrid.BiomeForest, worldgrid.BiomeTropicalRainforest:
		return entities.ClanMercantile
	default:
		return entities.ClanSettled
	}
}

// pickCenter finds a flat-land (non-water, non-mountain) tile for a clan's
// settlement center, sampling deterministically from the RNG source.
func pickCenter(g *worldgrid.Grid, src *rng.Source, occupied map[worldgrid.Coord]bool) worldgrid.Coord {
	for attempt := 0; attempt < 500; attempt++ {
		x, y := src.Intn(g.Width), src.Intn(g.Height)
		c := worldgrid.Coord{X: x, Y: y}
		if occupied[c] {
			continue
		}
		t := g.At(c)
		if t.Elevation >= 0.2 && t.Elevation <= 0.7 {
			return c
		}
	}
	return worldgrid.Coord{X: g.Width / 2, Y: g.Height / 2}
}

// Seed produces `Count(W,H)` clans: exactly one "large" (20-30 members), the
// rest "small" (5-15 members). Each clan also gets a chosen settlement
// center (flat land) that the settlement seeder (C6) will build around.
func Seed(g *worldgrid.Grid, worldSeed int64, foundingTick uint64, occupied map[worldgrid.Coord]bool) ([]*entities.Clan, map[string]worldgrid.Coord) {
	seed := rng.SubSeed(worldSeed, rng.StageClans)
	src := rng.New(seed)

	n := Count(g.Width, g.Height)
	largeIndex := src.Intn(n)

	clans := make([]*entities.Clan, 0, n)
	centers := make(map[string]worldgrid.Coord)

	for i := 0; i < n; i++ {
		center := pickCenter(g, src, occupied)
		occupied[center] = true

		memberCount := 5 + src.Intn(11) // 5..15
		if i == largeIndex {
			memberCount = 20 + src.Intn(11) // 20..30
		}

		biome := dominantBiome(g, center.X, center.Y)
		kind := typeFromBiome(biome)

		name := fmt.Sprintf("Clan of %s", clanNameStems[i%len(clanNameStems)])
		id := ids.Entity("clan", name, seed, uint64(i))

		clan := entities.NewClan(id, name, kind, foundingTick)
		clan.TargetPopulation = memberCount
		clan.Treasury = 100 + src.Float64()*400

		clans = append(clans, clan)
		centers[id] = center
	}

	slog.Info("clans seeded", "count", len(clans), "large_index", largeIndex)
	return clans, centers
}
