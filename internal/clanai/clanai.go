// Package clanai drives NPC-only clan behavior (C14): expansion, warfare,
// alliance, trade, and splitting. Player-controlled clans are skipped
// entirely. See spec Section 4.13. Grounded on the teacher's
// internal/engine/factions.go and relationships.go per-tick faction sweep,
// generalized from the teacher's simpler relationship drift to the spec's
// full expansion/war/alliance/trade/split rule set.
package clanai

import (
	"log/slog"

	"github.com/talgya/livingworld/internal/entities"
	"github.com/talgya/livingworld/internal/ids"
	"github.com/talgya/livingworld/internal/placement"
	"github.com/talgya/livingworld/internal/rng"
	"github.com/talgya/livingworld/internal/roads"
	"github.com/talgya/livingworld/internal/worldgrid"
)

const warCooldownTicks = 500

// IsPlayerControlled reports whether any member NPC is flagged is_player or
// the clan itself carries the IsPlayerControlled flag.
func IsPlayerControlled(clan *entities.Clan, npcs map[string]*entities.NPC) bool {
	for _, id := range clan.MemberIDs {
		if n, ok := npcs[id]; ok && n.IsPlayer {
			return true
		}
	}
	return clan.IsPlayerControlled
}

// Tick runs one tick of clan AI for every NPC-only clan. Structures created
// here are written into structures (and the clan's settlement) and connected
// to the road network in place; nothing is returned.
func Tick(g *worldgrid.Grid, worldSeed int64, tick uint64, clans map[string]*entities.Clan, npcs map[string]*entities.NPC, structures map[string]*entities.Structure, settlements map[string]*entities.Settlement, roadTiles map[worldgrid.Coord]*entities.RoadTile) {
	clanIDs := sortedKeys(clans)

	for _, id := range clanIDs {
		clan := clans[id]
		if IsPlayerControlled(clan, npcs) {
			continue
		}

		seed := rng.TickSeed(worldSeed, tick, uint64(hashString(clan.ID)))
		src := rng.New(seed)

		tryExpansion(g, src, worldSeed, tick, clan, npcs, structures, settlements, roadTiles)

		for _, rivalID := range clanIDs {
			if rivalID == clan.ID {
				continue
			}
			rival := clans[rivalID]
			tryWarfare(src, tick, clan, rival, structures)
			tryAlliance(clan, rival)
			tryTrade(g, tick, clan, rival, settlements, roadTiles)
		}
	}
}

func sortedKeys(clans map[string]*entities.Clan) []string {
	keys := make([]string, 0, len(clans))
	for k := range clans {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func sortedStructureKeys(structures map[string]*entities.Structure) []string {
	keys := make([]string, 0, len(structures))
	for k := range structures {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// tryExpansion builds a new structure when treasury>500, population>10, and
// suitable land exists. The structure type is drawn by population phase
// (see pickConstruction): under 20 members 80% house / 20% market; 20-50
// members 50/30/20 house/market/workshop; over 50 members 30/40/20/10
// house/market/workshop/guild hall.
func tryExpansion(g *worldgrid.Grid, src *rng.Source, worldSeed int64, tick uint64, clan *entities.Clan, npcs map[string]*entities.NPC, structures map[string]*entities.Structure, settlements map[string]*entities.Settlement, roadTiles map[worldgrid.Coord]*entities.RoadTile) {
	if clan.Treasury <= 500 || len(clan.MemberIDs) <= 10 {
		return
	}
	settlement, ok := settlements[clan.SettlementID]
	if !ok {
		return
	}

	structType := pickConstruction(src, len(clan.MemberIDs))
	center := settlement.Center

	const maxAttempts = 100
	for attempt := 0; attempt < maxAttempts; attempt++ {
		dx := src.Intn(41) - 20
		dy := src.Intn(41) - 20
		c := worldgrid.Coord{X: center.X + dx, Y: center.Y + dy}
		entrance := entities.EntranceSide(src.Intn(4))

		if err := placement.Validate(g, c, entrance, structType, structures, roadTiles); err != nil {
			continue
		}

		cost := 50.0 + src.Float64()*150.0
		if !clan.Withdraw(cost) {
			return
		}

		id := ids.Entity("structure", clan.ID, worldSeed, tick^uint64(hashString(clan.ID))^uint64(attempt))
		s := &entities.Structure{
			ID:              id,
			Type:            structType,
			Location:        c,
			Health:          100,
			MaxHealth:       100,
			Entrance:        entrance,
			OwnerID:         clan.ID,
			OwnerType:       "clan",
			Permissions:     map[string]string{"owner": "full"},
			CreatedAtTick:   tick,
			LastUpdatedTick: tick,
			Metadata:        map[string]string{},
		}

		existing := make([]*entities.Structure, 0, len(structures))
		for _, other := range structures {
			existing = append(existing, other)
		}
		structures[id] = s
		settlement.StructureIDs = append(settlement.StructureIDs, id)
		roads.ConnectNewStructure(g, tick, s, existing, roadTiles)

		slog.Debug("clan expanded", "clan", clan.ID, "structure", id)
		return
	}
}

func pickConstruction(src *rng.Source, population int) entities.StructureType {
	r := src.Float64()
	switch {
	case population < 20:
		if r < 0.80 {
			return entities.StructureHouse
		}
		return entities.StructureMarket
	case population <= 50:
		switch {
		case r < 0.50:
			return entities.StructureHouse
		case r < 0.80:
			return entities.StructureMarket
		default:
			return entities.StructureWorkshop
		}
	default:
		switch {
		case r < 0.30:
			return entities.StructureHouse
		case r < 0.70:
			return entities.StructureMarket
		case r < 0.90:
			return entities.StructureWorkshop
		default:
			return entities.StructureGuildHall
		}
	}
}

// tryWarfare attacks a rival with relationship < -50 when own strength
// exceeds 1.5x theirs, subject to a 500-tick per-pair cooldown.
func tryWarfare(src *rng.Source, tick uint64, clan, rival *entities.Clan, structures map[string]*entities.Structure) {
	rec, ok := clan.Relationships[rival.ID]
	if !ok || rec.Reputation >= -50 {
		return
	}
	cooldownKey := clan.ID + "|" + rival.ID
	if last, ok := clan.AtWarCooldowns[cooldownKey]; ok && tick-last < warCooldownTicks {
		return
	}

	ownStrength := float64(len(clan.MemberIDs))
	rivalStrength := float64(len(rival.MemberIDs))
	if rivalStrength <= 0 || ownStrength <= rivalStrength*1.5 {
		return
	}

	var target *entities.Structure
	for _, id := range sortedStructureKeys(structures) {
		if s := structures[id]; s.OwnerID == rival.ID {
			target = s
			break
		}
	}
	if target == nil {
		return
	}

	damageFrac := 0.50 + src.Float64()*0.20
	target.Health -= target.MaxHealth * damageFrac
	if target.Health < 0 {
		target.Health = 0
	}
	target.LastUpdatedTick = tick
	clan.AtWarCooldowns[cooldownKey] = tick

	slog.Debug("clan attacked", "attacker", clan.ID, "target_clan", rival.ID, "structure", target.ID)
}

// tryAlliance sets a pairwise relationship to 75 when both sides already
// like each other and share a common enemy.
func tryAlliance(clan, rival *entities.Clan) {
	rec, ok := clan.Relationships[rival.ID]
	if !ok || rec.Reputation <= 50 {
		return
	}
	if !shareCommonEnemy(clan, rival) {
		return
	}
	clan.Relationships[rival.ID] = entities.NewRelationshipRecord(75, rec.Influence, rec.Alignment, rec.RaceAffinity, rec.LastUpdatedTick)
}

func shareCommonEnemy(a, b *entities.Clan) bool {
	for enemyID, rec := range a.Relationships {
		if rec.Reputation >= -30 {
			continue
		}
		if other, ok := b.Relationships[enemyID]; ok && other.Reputation < -30 {
			return true
		}
	}
	return false
}

// tryTrade pays both clans +10 gold every 100 ticks when relationship>0 and
// their settlement centers are within 50 tiles (Manhattan); relationship
// drifts +5/1000 ticks. It lays no road between the two settlements: g and
// roadTiles are not used.
func tryTrade(g *worldgrid.Grid, tick uint64, clan, rival *entities.Clan, settlements map[string]*entities.Settlement, roadTiles map[worldgrid.Coord]*entities.RoadTile) {
	rec, ok := clan.Relationships[rival.ID]
	if !ok || rec.Reputation <= 0 {
		return
	}
	own, ok1 := settlements[clan.SettlementID]
	other, ok2 := settlements[rival.SettlementID]
	if !ok1 || !ok2 {
		return
	}
	if worldgrid.ManhattanDistance(own.Center, other.Center) > 50 {
		return
	}

	if tick%100 == 0 {
		clan.Deposit(10)
		rival.Deposit(10)
	}
	if tick%1000 == 0 {
		updated := rec
		updated.Reputation = clampReputation(rec.Reputation + 5)
		updated.LastUpdatedTick = tick
		clan.Relationships[rival.ID] = updated
	}
}

func clampReputation(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}

// TrySplit splits a clan whose membership exceeds 50 and which owns
// structures across multiple settlements: 60% of members/treasury stay
// with the original clan, 40% form a new clan that copies relationships.
func TrySplit(worldSeed int64, tick uint64, clan *entities.Clan, clans map[string]*entities.Clan, settlementsByClan map[string][]string) *entities.Clan {
	if len(clan.MemberIDs) <= 50 || len(settlementsByClan[clan.ID]) <= 1 {
		return nil
	}

	splitCount := len(clan.MemberIDs) * 40 / 100
	if splitCount == 0 {
		return nil
	}
	departing := append([]string(nil), clan.MemberIDs[len(clan.MemberIDs)-splitCount:]...)
	clan.MemberIDs = clan.MemberIDs[:len(clan.MemberIDs)-splitCount]

	newID := ids.Entity("clan", clan.ID, worldSeed, tick)
	newClan := entities.NewClan(newID, clan.Name+" (Offshoot)", clan.Type, tick)
	newClan.MemberIDs = departing
	newClan.Treasury = clan.Treasury * 0.40
	clan.Treasury *= 0.60
	for rivalID, rec := range clan.Relationships {
		newClan.Relationships[rivalID] = rec
	}
	clans[newID] = newClan

	slog.Info("clan split", "original", clan.ID, "offshoot", newID, "departing", len(departing))
	return newClan
}
