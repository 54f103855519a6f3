package persistence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/hydrology"
	"github.com/talgya/livingworld/internal/worldgrid"
	"github.com/talgya/livingworld/internal/worldstate"
)

// maxBackups is the number of rotating timestamped backups kept per database
// file, per spec §7 ("Checksum mismatch on load -> restore from most recent
// valid backup").
const maxBackups = 5

const backupTimeLayout = "20060102_150405"

// canonicalWorld is the stable field-ordered encoding hashed by Checksum:
// the grid in row-major order plus every seeded/simulated entity collection
// in its insertion-then-id order (spec §6's "canonical hash ... over a
// stable field-ordered encoding of the world grid and seeded entity
// collections"). Two saves of the same world, even to a freshly rewritten
// SQLite file, must encode to the same bytes here.
type canonicalWorld struct {
	Seed   int64
	Tick   uint64
	Width  int
	Height int
	Tiles  []worldgrid.Tile

	Rivers      []hydrology.River
	Features    []*entities.Feature
	Clans       []*entities.Clan
	Settlements []*entities.Settlement
	Structures  []*entities.Structure
	NPCs        []*entities.NPC
	Villages    []*entities.Village
	RoadTiles   []*entities.RoadTile
	Quests      []*entities.Quest
	Prophecies  []*entities.Prophecy
}

func canonicalEncode(w *worldstate.World) ([]byte, error) {
	cw := canonicalWorld{
		Seed:        w.Seed,
		Tick:        w.Tick,
		Width:       w.Grid.Width,
		Height:      w.Grid.Height,
		Tiles:       w.Grid.Tiles(),
		Rivers:      w.Rivers,
		Features:    w.FeaturesInOrder(),
		Clans:       w.ClansInOrder(),
		Settlements: w.SettlementsInOrder(),
		Structures:  w.StructuresInOrder(),
		NPCs:        w.NPCsInOrder(),
		Villages:    w.VillagesInOrder(),
		RoadTiles:   w.RoadTilesInOrder(),
		Quests:      w.QuestsInOrder(),
		Prophecies:  w.PropheciesInOrder(),
	}
	// json.Marshal sorts any map-typed fields nested in these structs
	// (e.g. Clan.Relationships) by key, so the byte stream stays
	// deterministic even though every slice here is already ordered.
	return json.Marshal(cw)
}

// Checksum computes a SHA-256 digest over w's canonical encoding, not the
// database file's raw bytes: two saves of the same logical world state must
// hash identically even if SQLite's on-disk layout differs between writes
// (spec §6, determinism/checksum-stability).
func (db *DB) Checksum(w *worldstate.World) (string, error) {
	encoded, err := canonicalEncode(w)
	if err != nil {
		return "", fmt.Errorf("canonicalize world: %w", err)
	}
	h := sha256.New()
	h.Write(encoded)
	slog.Debug("computed world checksum", "bytes", humanize.Bytes(uint64(len(encoded))))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksumSidecar computes w's checksum and writes it to
// "<path>.sha256" alongside the database.
func (db *DB) WriteChecksumSidecar(w *worldstate.World) (string, error) {
	sum, err := db.Checksum(w)
	if err != nil {
		return "", err
	}
	sidecar := db.path + ".sha256"
	if err := os.WriteFile(sidecar, []byte(sum+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write checksum sidecar: %w", err)
	}
	return sum, nil
}

// VerifyChecksum re-derives w's canonical checksum and compares it against
// the sidecar written by WriteChecksumSidecar, returning false on mismatch
// or a missing sidecar (treated as "cannot verify", per spec §7).
func (db *DB) VerifyChecksum(w *worldstate.World) (bool, error) {
	sidecar := db.path + ".sha256"
	want, err := os.ReadFile(sidecar)
	if err != nil {
		return false, fmt.Errorf("read checksum sidecar: %w", err)
	}
	got, err := db.Checksum(w)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(want)) == got, nil
}

// RotateBackup copies the database file to "<path>.backup.<timestamp>" and
// deletes the oldest backups beyond maxBackups. timestamp must be supplied
// by the caller (stamped at save time) since this package never calls the
// clock directly.
func (db *DB) RotateBackup(timestamp string) (string, error) {
	dst := fmt.Sprintf("%s.backup.%s", db.path, timestamp)
	if err := copyFile(db.path, dst); err != nil {
		return "", fmt.Errorf("rotate backup: %w", err)
	}

	info, err := os.Stat(dst)
	if err == nil {
		slog.Info("backup written", "path", dst, "size", humanize.Bytes(uint64(info.Size())))
	}

	if err := pruneOldBackups(db.path); err != nil {
		return dst, fmt.Errorf("prune old backups: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// pruneOldBackups keeps only the maxBackups most recent "<base>.backup.*"
// files (sorted lexically, which sorts chronologically given the zero-padded
// timestamp layout), deleting the rest.
func pruneOldBackups(dbPath string) error {
	dir := filepath.Dir(dbPath)
	base := filepath.Base(dbPath)
	prefix := base + ".backup."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			backups = append(backups, e.Name())
		}
	}
	sort.Strings(backups)

	if len(backups) <= maxBackups {
		return nil
	}
	toRemove := backups[:len(backups)-maxBackups]
	for _, name := range toRemove {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return err
		}
		slog.Info("pruned old backup", "path", path)
	}
	return nil
}

// RestoreFromLatestBackup overwrites the live database file with the most
// recent backup, for use when VerifyChecksum reports corruption (spec §7).
func RestoreFromLatestBackup(dbPath string) (string, error) {
	dir := filepath.Dir(dbPath)
	base := filepath.Base(dbPath)
	prefix := base + ".backup."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups available for %s", dbPath)
	}
	sort.Strings(backups)
	latest := backups[len(backups)-1]
	latestPath := filepath.Join(dir, latest)

	if err := copyFile(latestPath, dbPath); err != nil {
		return "", fmt.Errorf("restore from backup: %w", err)
	}
	slog.Warn("restored database from backup", "backup", latestPath)
	return latestPath, nil
}
