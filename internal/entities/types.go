// Package entities holds the shared data model: plain structs plus free
// functions, keyed on id, with no owning pointers between entities (cyclic
// relationships such as clan<->NPC<->structure are represented as id
// references into per-kind collections). See spec Section 3 (Data Model)
// and Section 9 (Design Notes — "Global mutable state", "Cyclic references").
// Grounded on the teacher's internal/social/settlement.go and faction.go
// (struct shape for settlements/factions) and internal/agents/types.go
// (NPC-ish struct shape), generalized from the teacher's hex-world single
// global simulation to an id-referenced, per-kind-collection arena model.
package entities

import "github.com/talgya/livingworld/internal/worldgrid"

// EntranceSide is a cardinal direction a structure's door faces.
type EntranceSide uint8

const (
	EntranceNorth EntranceSide = iota
	EntranceEast
	EntranceSouth
	EntranceWest
)

// StructureType enumerates the kinds of buildings the world can contain.
type StructureType uint8

const (
	StructureHouse StructureType = iota
	StructureGuildHall
	StructureTemple
	StructureMarket
	StructureWorkshop
	StructureDock
	StructureFishingHut
	StructureAncientRuins
)

func (t StructureType) IsResidential() bool { return t == StructureHouse }
func (t StructureType) IsCommercial() bool {
	return t == StructureMarket || t == StructureWorkshop
}
func (t StructureType) IsCore() bool {
	return t == StructureGuildHall || t == StructureTemple
}
func (t StructureType) IsWaterCompatible() bool {
	return t == StructureDock || t == StructureFishingHut
}

// FeatureType enumerates regional landmark kinds (C4).
type FeatureType uint8

const (
	FeatureVolcano FeatureType = iota
	FeatureMagicZone
	FeatureSubmergedCity
	FeatureAncientRuin
	FeatureCrystalCave
)

// Feature is a placed regional landmark.
type Feature struct {
	ID        string
	Type      FeatureType
	Position  worldgrid.Coord
	Intensity float64
}

// RelationshipRecord is stored on one side of a clan pair.
type RelationshipRecord struct {
	Reputation      float64 // -100..100
	Influence       float64 // 0..100
	Alignment       float64 // -100..100
	RaceAffinity    float64 // -50..50, non-decaying per spec Open Questions
	LastUpdatedTick uint64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewRelationshipRecord clamps all fields at construction per spec §3.
func NewRelationshipRecord(reputation, influence, alignment, raceAffinity float64, tick uint64) RelationshipRecord {
	return RelationshipRecord{
		Reputation:      clamp(reputation, -100, 100),
		Influence:       clamp(influence, 0, 100),
		Alignment:       clamp(alignment, -100, 100),
		RaceAffinity:    clamp(raceAffinity, -50, 50),
		LastUpdatedTick: tick,
	}
}

// ClanType reflects biome affinity at founding.
type ClanType uint8

const (
	ClanNomadic ClanType = iota
	ClanSettled
	ClanMercantile
)

// Clan is a society: a treasury, a member-id set, and per-rival relationship
// records keyed by rival clan id.
type Clan struct {
	ID               string
	Name             string
	Type             ClanType
	MemberIDs        []string // npc ids, insertion order
	TargetPopulation int      // seeded target member count, consulted by the NPC seeder
	Treasury         float64
	Relationships    map[string]RelationshipRecord // rival clan id -> record
	FoundingTick     uint64
	LastActiveTick   uint64
	SettlementID     string
	IsPlayerControlled bool
	AtWarCooldowns   map[string]uint64 // "attackerID|targetID" -> tick of last attack
}

// NewClan constructs a clan with an empty relationship map.
func NewClan(id, name string, kind ClanType, foundingTick uint64) *Clan {
	return &Clan{
		ID:             id,
		Name:           name,
		Type:           kind,
		Relationships:  make(map[string]RelationshipRecord),
		AtWarCooldowns: make(map[string]uint64),
		FoundingTick:   foundingTick,
		LastActiveTick: foundingTick,
	}
}

// Deposit adds gold to the treasury; Withdraw never drives it negative.
func (c *Clan) Deposit(amount float64) { c.Treasury += amount }

func (c *Clan) Withdraw(amount float64) bool {
	if amount > c.Treasury {
		return false
	}
	c.Treasury -= amount
	return true
}

// Structure is a single building.
type Structure struct {
	ID              string
	Type            StructureType
	Location        worldgrid.Coord
	Health          float64
	MaxHealth       float64
	Entrance        EntranceSide
	OwnerID         string // clan id
	OwnerType       string // "clan"
	Permissions     map[string]string // role -> access level
	Rooms           []string
	Upgrades        []string
	CreatedAtTick   uint64
	LastUpdatedTick uint64
	OccupantIDs     []string // npc ids living/working here
	Metadata        map[string]string
}

func (s *Structure) IsDestroyed() bool { return s.Health <= 0 }
func (s *Structure) IsDamaged() bool   { return s.Health < s.MaxHealth }

// OccupantCount returns how many NPCs currently live/work here.
func (s *Structure) OccupantCount() int { return len(s.OccupantIDs) }

// EntranceTile returns the tile immediately in front of the structure's door.
func (s *Structure) EntranceTile() worldgrid.Coord {
	c := s.Location
	switch s.Entrance {
	case EntranceNorth:
		return worldgrid.Coord{X: c.X, Y: c.Y - 1}
	case EntranceEast:
		return worldgrid.Coord{X: c.X + 1, Y: c.Y}
	case EntranceSouth:
		return worldgrid.Coord{X: c.X, Y: c.Y + 1}
	default:
		return worldgrid.Coord{X: c.X - 1, Y: c.Y}
	}
}

// Gender of an NPC.
type Gender uint8

const (
	GenderFemale Gender = iota
	GenderMale
)

// NPC is a named inhabitant.
type NPC struct {
	ID                        string
	Name                      string
	ClanID                    string
	Gender                    Gender
	BirthTick                 uint64
	Job                       string
	HomeStructureID           string
	WorkplaceStructureID      string
	SpouseID                  string // "" if unmarried
	ChildrenIDs               []string
	IsPlayer                  bool
	LastReproductionCheckTick uint64
	LastMarriageCheckTick     uint64
}

// Age computes the NPC's age in whole years at the given tick, per the
// "one year = 10,000 ticks" rule (C13).
func (n *NPC) Age(currentTick uint64) int {
	if currentTick < n.BirthTick {
		return 0
	}
	return int((currentTick - n.BirthTick) / 10000)
}

// Fertility peaks at 100 at age 27, decreasing 5 per year of deviation, zero
// outside [18,45].
func Fertility(age int) float64 {
	if age < 18 || age > 45 {
		return 0
	}
	delta := age - 27
	if delta < 0 {
		delta = -delta
	}
	f := 100.0 - 5.0*float64(delta)
	if f < 0 {
		f = 0
	}
	return f
}

// Settlement groups structures under a clan.
type Settlement struct {
	ID           string
	Name         string
	ClanID       string
	Center       worldgrid.Coord
	StructureIDs []string
}

// VillageTier is the derived settlement classification (C9).
type VillageTier uint8

const (
	TierVillage VillageTier = iota
	TierTown
	TierCity
)

// Village is a recomputed, density-clustered settlement tier.
type Village struct {
	ID             string
	Name           string
	Tier           VillageTier
	Center         worldgrid.Coord
	StructureIDs   []string
	Population     int
	GoverningClan  string
}

// RoadSurface is the wear-derived road material.
type RoadSurface uint8

const (
	RoadDirt RoadSurface = iota
	RoadStone
	RoadPaved
)

// RoadTile is one tile of generated road.
type RoadTile struct {
	Position    worldgrid.Coord
	Surface     RoadSurface
	Traffic     int // 0..100
	CreatedTick uint64
	AutoGenerated bool
}

// QuestStatus tracks a quest's lifecycle (AVAILABLE -> ACTIVE -> COMPLETED/FAILED).
type QuestStatus uint8

const (
	QuestAvailable QuestStatus = iota
	QuestActive
	QuestCompleted
	QuestFailed
)

// Objective is one step of a quest, anchored to a tile.
type Objective struct {
	Description string
	TargetX     int
	TargetY     int
	Done        bool
}

// Reward combines gold, reputation and an optional rare item.
type Reward struct {
	Gold       float64
	Reputation float64
	RareItem   string // "" if none
}

// Quest is a mission offered to players.
type Quest struct {
	ID               string
	Title            string
	Type             string
	Status           QuestStatus
	Objectives       []Objective
	Rewards          []Reward
	LinkedFeatureID  string
	LinkedStoryID    string
	RequiredLevel    int
	ExpirationTick   uint64
	SourceID         string // cooldown key: (type, source-id)
	CreatedTick      uint64
}

// ProphecyStatus tracks a prophecy's lifecycle.
type ProphecyStatus uint8

const (
	ProphecyPending ProphecyStatus = iota
	ProphecyTriggered
	ProphecyExpired
)

// Prophecy is a long-horizon world event with a hybrid trigger.
type Prophecy struct {
	ID              string
	Title           string
	Type            string
	TriggerTick     uint64
	TriggerCondition string
	LinkedFeatureID string
	Status          ProphecyStatus
}

// StoryStatus / EventStatus implement the state machines of spec §4.17.
type StoryStatus uint8

const (
	StoryActive StoryStatus = iota
	StoryDormant
	StoryResolved
	StoryDiscredited
	StoryArchived
)

type EventStatus uint8

const (
	EventPending EventStatus = iota
	EventActive
	EventPropagating
	EventCompleted
	EventCancelled
)

// Story / Event share a propagation shape: an origin tile, a decay model,
// and a growing set of affected tiles.
type Story struct {
	ID              string
	Category        string
	Status          StoryStatus
	Origin          worldgrid.Coord
	OriginTick      uint64
	BaseProbability float64
	HopCount        int
	MaxHops         int
	Priority        int
	AffectedTiles   map[worldgrid.Coord]bool
	Metadata        map[string]string
}

type Event struct {
	ID              string
	Category        string
	Status          EventStatus
	Origin          worldgrid.Coord
	OriginTick      uint64
	BaseProbability float64
	HopCount        int
	MaxHops         int
	Priority        int
	AffectedTiles   map[worldgrid.Coord]bool
	Metadata        map[string]string
}

// RegionState is active or background (C12).
type RegionState uint8

const (
	RegionActive RegionState = iota
	RegionBackground
)

// Region owns a disjoint set of entity ids and a scheduling cursor.
type Region struct {
	ID               string
	Bounds           worldgrid.Coord // top-left; size is implicit from World.RegionSize
	State            RegionState
	LastProcessedTick uint64
	ClanIDs          []string
	NPCIDs           []string
	StructureIDs     []string
	VillageIDs       []string
	ActiveStoryIDs   []string
	ActiveEventIDs   []string
}
