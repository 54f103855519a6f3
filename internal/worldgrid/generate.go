// Generation of plates, elevation, temperature, moisture and biome —
// see spec Section 4.2 (C2). Grounded on the teacher's
// internal/world/generation.go octave-noise and continental-shaping
// structure, adapted from a hex grid to the spec's square W×H grid and from
// opensimplex noise to the spec-mandated deterministic hash noise (rng.Noise).
package worldgrid

import (
	"log/slog"
	"math"

	"github.com/talgya/livingworld/internal/rng"
)

// Config holds world generation parameters for C2.
type Config struct {
	Width, Height int
	Seed          int64
}

// DefaultPlateCount follows spec: max(4, W*H/10000).
func DefaultPlateCount(width, height int) int {
	n := (width * height) / 10000
	if n < 4 {
		return 4
	}
	return n
}

// Generate builds the complete world grid: plates, elevation, temperature,
// moisture, and biome for every tile.
func Generate(cfg Config) *Grid {
	seed := rng.SubSeed(cfg.Seed, rng.StageTerrain)
	src := rng.New(seed)

	plates := generatePlates(cfg.Width, cfg.Height, src)
	g := NewGrid(cfg.Width, cfg.Height, cfg.Seed)
	g.Plates = plates

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := Coord{X: x, Y: y}
			plate := nearestPlate(plates, x, y)
			elev := elevation(seed, x, y, cfg.Width, cfg.Height, plate, plates)
			temp := temperature(y, cfg.Height, elev)
			moist := moisture(seed, x, y, elev)
			biome := DeriveBiome(elev, temp, moist)

			g.Set(Tile{
				Coord:       c,
				Elevation:   elev,
				Temperature: temp,
				Moisture:    moist,
				Biome:       biome,
				PlateID:     plate.ID,
			})
		}
	}

	slog.Info("terrain generated", "width", cfg.Width, "height", cfg.Height, "plates", len(plates))
	return g
}

// generatePlates creates plate centers and drift vectors: ~70% continental,
// 30% oceanic, count = max(4, W*H/10000).
func generatePlates(width, height int, src *rng.Source) []Plate {
	n := DefaultPlateCount(width, height)
	plates := make([]Plate, n)
	for i := 0; i < n; i++ {
		oceanic := src.Float64() >= 0.70
		plates[i] = Plate{
			ID:        i,
			CenterX:   src.Intn(width),
			CenterY:   src.Intn(height),
			DriftX:    src.Float64()*1.0 - 0.5,
			DriftY:    src.Float64()*1.0 - 0.5,
			IsOceanic: oceanic,
		}
	}
	return plates
}

// nearestPlate performs Voronoi partitioning by squared Euclidean distance.
func nearestPlate(plates []Plate, x, y int) Plate {
	best := plates[0]
	bestDist := math.MaxFloat64
	for _, p := range plates {
		dx := float64(x - p.CenterX)
		dy := float64(y - p.CenterY)
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// elevation blends three noise octaves (weights 0.6/0.3/0.1 at frequencies
// 1/2/4), adds a plate-type base, and applies convergent-boundary uplift.
func elevation(seed int64, x, y, width, height int, plate Plate, plates []Plate) float64 {
	weights := []float64{0.6, 0.3, 0.1}
	frequencies := []float64{1.0 / float64(width), 2.0 / float64(width), 4.0 / float64(width)}
	noiseVal, err := rng.OctaveNoise(seed, float64(x), float64(y), weights, frequencies)
	if err != nil {
		slog.Warn("elevation noise out of bounds, falling back to 0", "x", x, "y", y, "err", err)
	}

	base := 0.15
	if !plate.IsOceanic {
		base = 0.5
	}
	elev := base*0.7 + noiseVal*0.3

	// Convergent-boundary uplift: find the nearest *other* plate and check
	// whether centers are converging (dot(center_delta, drift_delta) < 0
	// means plates drift toward one another).
	uplift := 0.0
	nearestOther := nearestDifferentPlate(plates, plate, x, y)
	if nearestOther != nil {
		cdx := float64(nearestOther.CenterX - plate.CenterX)
		cdy := float64(nearestOther.CenterY - plate.CenterY)
		ddx := nearestOther.DriftX - plate.DriftX
		ddy := nearestOther.DriftY - plate.DriftY
		dot := cdx*ddx + cdy*ddy
		if dot < 0 {
			mag2 := ddx*ddx + ddy*ddy
			scale := mag2 / 4.0
			if scale > 1 {
				scale = 1
			}
			// Only tiles near the boundary get uplift, tapering with distance.
			distToOther := math.Hypot(cdx, cdy)
			boundaryFalloff := math.Exp(-distToOther / (float64(width) * 0.08))
			uplift = 0.3 * scale * boundaryFalloff
		}
	}
	elev += uplift

	if elev < 0 {
		elev = 0
	}
	if elev > 1 {
		elev = 1
	}
	return elev
}

func nearestDifferentPlate(plates []Plate, self Plate, x, y int) *Plate {
	var best *Plate
	bestDist := math.MaxFloat64
	for i := range plates {
		p := &plates[i]
		if p.ID == self.ID {
			continue
		}
		dx := float64(x - p.CenterX)
		dy := float64(y - p.CenterY)
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// temperature is latitude-based (equator ~+25C, poles ~-10C) minus an
// altitude lapse of -6C per unit elevation.
func temperature(y, height int, elev float64) float64 {
	latFactor := math.Abs(2.0*float64(y)/float64(height) - 1.0) // 0 at equator, 1 at poles
	base := 25.0 - latFactor*35.0
	lapse := -6.0 * elev
	return base + lapse
}

// moisture is 60% water-proximity and 40% noise. Water proximity here uses
// a cheap proxy: lower elevation implies closer to sea level / basins.
func moisture(seed int64, x, y int, elev float64) float64 {
	waterProximity := 1.0 - elev
	if waterProximity < 0 {
		waterProximity = 0
	}
	noiseVal, err := rng.Noise(seed^0x4D4F_4953, x, y)
	if err != nil {
		slog.Warn("moisture noise out of bounds, falling back to 0", "x", x, "y", y, "err", err)
	}
	m := waterProximity*0.6 + noiseVal*0.4
	if m < 0 {
		m = 0
	}
	if m > 1 {
		m = 1
	}
	return m
}
