package worldgrid

// Biome enumerates the terrain/biome classification of a tile.
type Biome uint8

const (
	BiomeDeepWater Biome = iota
	BiomeShallowWater
	BiomeAlpine
	BiomeMountain
	BiomeTundra
	BiomeTaiga
	BiomeTropicalRainforest
	BiomeSavanna
	BiomeDesert
	BiomeForest
	BiomeGrassland
	BiomeSwamp
)

// BiomeName returns a human-readable biome name, mirroring the teacher's
// TerrainName convention.
func BiomeName(b Biome) string {
	switch b {
	case BiomeDeepWater:
		return "DeepWater"
	case BiomeShallowWater:
		return "ShallowWater"
	case BiomeAlpine:
		return "Alpine"
	case BiomeMountain:
		return "Mountain"
	case BiomeTundra:
		return "Tundra"
	case BiomeTaiga:
		return "Taiga"
	case BiomeTropicalRainforest:
		return "TropicalRainforest"
	case BiomeSavanna:
		return "Savanna"
	case BiomeDesert:
		return "Desert"
	case BiomeForest:
		return "Forest"
	case BiomeGrassland:
		return "Grassland"
	case BiomeSwamp:
		return "Swamp"
	default:
		return "Unknown"
	}
}

// IsWater reports whether a biome counts as water for placement/pathing
// purposes (spec C11: elevation<0.2 is water terrain).
func (b Biome) IsWater() bool {
	return b == BiomeDeepWater || b == BiomeShallowWater
}

// IsMountainous reports whether a biome is Alpine or Mountain, which
// DeriveBiome assigns above elevation 0.75. Placement validation applies its
// own elevation > 0.7 cutoff and does not call this.
func (b Biome) IsMountainous() bool {
	return b == BiomeAlpine || b == BiomeMountain
}

// DeriveBiome is a pure function of (elevation, temperature, moisture),
// priority-ordered exactly as spec C2 describes: water, mountain, cold, hot,
// otherwise temperate.
func DeriveBiome(elevation, temperatureC, moisture float64) Biome {
	switch {
	case elevation < 0.2:
		if elevation < 0.1 {
			return BiomeDeepWater
		}
		return BiomeShallowWater
	case elevation > 0.75:
		if elevation > 0.88 {
			return BiomeAlpine
		}
		return BiomeMountain
	case temperatureC < 0:
		if moisture > 0.5 {
			return BiomeTaiga
		}
		return BiomeTundra
	case temperatureC > 22:
		switch {
		case moisture > 0.6:
			return BiomeTropicalRainforest
		case moisture > 0.3:
			return BiomeSavanna
		default:
			return BiomeDesert
		}
	default:
		switch {
		case moisture > 0.65:
			return BiomeSwamp
		case moisture > 0.4:
			return BiomeForest
		default:
			return BiomeGrassland
		}
	}
}
