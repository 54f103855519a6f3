// Command worldsim generates a world from a seed, runs it forward a fixed
// number of ticks, and persists the result, mirroring the teacher's
// generate-or-load-then-run flow stripped of its LLM/weather/API layers.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/talgya/livingworld/internal/persistence"
	"github.com/talgya/livingworld/internal/simulation"
	"github.com/talgya/livingworld/internal/worldgen"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := int64(42)
	width, height := 256, 256
	targetTick := uint64(50000)
	dbPath := "data/world.db"

	os.MkdirAll("data", 0o755)

	db, err := persistence.LoadVerified(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	slog.Info("generating world", "seed", seed, "width", width, "height", height)
	w, err := worldgen.Generate(worldgen.Request{Seed: seed, Width: width, Height: height, Density: 1.0})
	if err != nil {
		slog.Error("world generation failed", "error", err)
		os.Exit(1)
	}

	if db.HasWorldState() {
		slog.Info("found saved world state, loading mutable entities...")
		if err := db.LoadWorldState(w); err != nil {
			slog.Error("failed to load world state", "error", err)
			os.Exit(1)
		}
		w.ReorderStructuresByID()
		w.ReorderNPCsByID()
		w.ReassignEntitiesToRegions()
	}

	slog.Info("world ready",
		"clans", len(w.Clans),
		"npcs", len(w.NPCs),
		"structures", len(w.Structures),
		"villages", len(w.Villages),
		"tick", w.Tick,
	)

	sim := simulation.New(w)

	for w.Tick < targetTick {
		sim.Tick()
		if w.Tick%5000 == 0 {
			slog.Info("tick checkpoint", "tick", w.Tick, "npcs", len(w.NPCs), "structures", len(w.Structures))
		}
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	checksum, err := db.SaveWithChecksum(w, timestamp)
	if err != nil {
		slog.Error("failed to save world state", "error", err)
		os.Exit(1)
	}

	slog.Info("world state saved", "tick", w.Tick, "checksum", checksum[:16]+"...")
	fmt.Println("final tick: " + strconv.FormatUint(w.Tick, 10))
}
