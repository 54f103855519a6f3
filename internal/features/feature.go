// Package features places weighted, compatibility-filtered regional
// landmarks onto the generated world grid. See spec Section 4.4 (C4).
// Grounded on the teacher's internal/world/settlement_placer.go scoring-
// and-placement loop (candidate scan + minimum-separation retry), adapted
// from settlement scoring to landmark-type compatibility filters.
package features

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const minFeatureSeparation = 10

// typeWeights is the relative placement weight of each feature type.
var typeWeights = map[entities.FeatureType]float64{
	entities.FeatureVolcano:       0.2,
	entities.FeatureMagicZone:     0.25,
	entities.FeatureSubmergedCity: 0.15,
	entities.FeatureAncientRuin:   0.25,
	entities.FeatureCrystalCave:   0.15,
}

var orderedTypes = []entities.FeatureType{
	entities.FeatureVolcano,
	entities.FeatureMagicZone,
	entities.FeatureSubmergedCity,
	entities.FeatureAncientRuin,
	entities.FeatureCrystalCave,
}

// compatible reports whether a tile's terrain is suitable for a feature type.
func compatible(ft entities.FeatureType, t *worldgrid.Tile) bool {
	switch ft {
	case entities.FeatureSubmergedCity:
		return t.Biome.IsWater()
	case entities.FeatureVolcano:
		return !t.Biome.IsWater() && t.Elevation > 0.5
	case entities.FeatureCrystalCave:
		return t.Biome.IsMountainous()
	case entities.FeatureMagicZone, entities.FeatureAncientRuin:
		return !t.Biome.IsWater()
	default:
		return false
	}
}

// Generate places `(W*H/5000)*density` features (minimum 3), each at least
// minFeatureSeparation tiles from every other, capped at 10x target attempts.
func Generate(g *worldgrid.Grid, worldSeed int64, density float64, occupied map[worldgrid.Coord]bool) map[string]*entities.Feature {
	seed := rng.SubSeed(worldSeed, rng.StageFeatures)
	src := rng.New(seed)

	target := int(float64(g.Width*g.Height) / 5000.0 * density)
	if target < 3 {
		target = 3
	}
	maxAttempts := target * 10

	result := make(map[string]*entities.Feature)
	var placed []worldgrid.Coord
	attempts := 0
	index := 0

	for len(result) < target && attempts < maxAttempts {
		attempts++
		ft := weightedPick(src)
		x, y := src.Intn(g.Width), src.Intn(g.Height)
		c := worldgrid.Coord{X: x, Y: y}
		if occupied[c] {
			continue
		}
		t := g.At(c)
		if !compatible(ft, t) {
			continue
		}
		if tooClose(c, placed) {
			continue
		}

		f := &entities.Feature{
			ID:        ids.Entity("feature", featureTypeName(ft), seed, uint64(index)),
			Type:      ft,
			Position:  c,
			Intensity: 0.3 + src.Float64()*0.7,
		}
		result[f.ID] = f
		placed = append(placed, c)
		occupied[c] = true
		index++
	}

	slog.Info("features placed", "count", len(result), "target", target, "attempts", attempts)
	return result
}

func tooClose(c worldgrid.Coord, placed []worldgrid.Coord) bool {
	for _, p := range placed {
		if worldgrid.ChebyshevDistance(c, p) < minFeatureSeparation {
			return true
		}
	}
	return false
}

func weightedPick(src *rng.Source) entities.FeatureType {
	total := 0.0
	for _, w := range typeWeights {
		total += w
	}
	r := src.Float64() * total
	for _, ft := range orderedTypes {
		w := typeWeights[ft]
		if r < w {
			return ft
		}
		r -= w
	}
	return orderedTypes[len(orderedTypes)-1]
}

func featureTypeName(ft entities.FeatureType) string {
	switch ft {
	case entities.FeatureVolcano:
		return "volcano"
	case entities.FeatureMagicZone:
		return "magiczone"
	case entities.FeatureSubmergedCity:
		return "submergedcity"
	case entities.FeatureAncientRuin:
		return "ancientruin"
	case entities.FeatureCrystalCave:
		return "crystalcave"
	default:
		return "unknown"
	}
}
