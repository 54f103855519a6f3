package worldgrid

import "fmt"

// Tile is one cell of the dense world grid.
type Tile struct {
	Coord       Coord   `json:"coord"`
	Elevation   float64 `json:"elevation"`   // 0..1
	Temperature float64 `json:"temperature"` // degrees C
	Moisture    float64 `json:"moisture"`    // 0..1
	Biome       Biome   `json:"biome"`
	PlateID     int     `json:"plate_id"`
}

// Grid holds the complete, immutable-after-generation world grid.
type Grid struct {
	Width, Height int
	Seed          int64
	tiles         []Tile // row-major, len == Width*Height
	Plates        []Plate
}

// NewGrid allocates an empty grid of the given dimensions.
func NewGrid(width, height int, seed int64) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Seed:   seed,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether coord lies within the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// At returns the tile at c. Panics if out of bounds — callers must check
// InBounds first; this mirrors the "Invalid input" contract in spec §7.1
// rather than returning a zero-value tile that could be silently wrong.
func (g *Grid) At(c Coord) *Tile {
	return &g.tiles[c.Y*g.Width+c.X]
}

// TryAt returns the tile at c and whether it was in bounds.
func (g *Grid) TryAt(c Coord) (*Tile, bool) {
	if !g.InBounds(c) {
		return nil, false
	}
	return g.At(c), true
}

// Set writes a fully-formed tile into the grid.
func (g *Grid) Set(t Tile) {
	g.tiles[t.Coord.Y*g.Width+t.Coord.X] = t
}

// Tiles returns all tiles in row-major order (deterministic iteration).
func (g *Grid) Tiles() []Tile {
	return g.tiles
}

// Plate describes one tectonic plate.
type Plate struct {
	ID           int     `json:"id"`
	CenterX      int     `json:"center_x"`
	CenterY      int     `json:"center_y"`
	DriftX       float64 `json:"drift_x"` // -0.5..0.5
	DriftY       float64 `json:"drift_y"`
	IsOceanic    bool    `json:"is_oceanic"`
}

// BiomeCounts returns a summary of biome distribution, mirroring the
// teacher's TerrainCounts.
func BiomeCounts(g *Grid) map[Biome]int {
	counts := make(map[Biome]int)
	for _, t := range g.tiles {
		counts[t.Biome]++
	}
	return counts
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d seed=%d plates=%d)", g.Width, g.Height, g.Seed, len(g.Plates))
}
