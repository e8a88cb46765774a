package model

import (
	"fmt"
	"strings"
)

// EntityType identifies a unit, building or neutral resource node. The
// declaration order is significant: planners scan types in this order when
// several are equally deficient.
type EntityType uint8

const (
	EntityNone EntityType = iota

	// Units
	EntityMiner
	EntityCowboy
	EntityBandit
	EntityWagon
	EntityJockey
	EntitySapper
	EntityPyro
	EntityDetective
	EntityBalloon
	EntitySoldier
	EntityCannon
	EntityLandmine

	// Buildings
	EntityHall
	EntityHouse
	EntitySaloon
	EntityBunker
	EntityCoop
	EntityWorkshop
	EntityBarracks
	EntitySheriff

	// Neutral
	EntityGoldMine

	NumEntityTypes
)

// FirstUnit and FirstBuilding bound the unit and building ranges of EntityType.
const (
	FirstUnit     = EntityMiner
	FirstBuilding = EntityHall
)

// UpgradeType identifies a researchable upgrade.
type UpgradeType uint8

const (
	UpgradeNone UpgradeType = iota
	UpgradeWagonArmor
	UpgradeBayonets
	UpgradePrivateEye
	NumUpgradeTypes
)

const (
	// MaxPopulation is the hard population ceiling per player.
	MaxPopulation = 100
	// MaxSelection caps how many entities one command may carry.
	MaxSelection = 16
	// LayMineEnergy is the energy a sapper spends per landmine.
	LayMineEnergy = 50
	// MolotovEnergy is the energy a pyro spends per molotov.
	MolotovEnergy = 40
	// MolotovRange is the throw range of a pyro in cells.
	MolotovRange = 5
	// MolotovRadius is the burn radius around the impact cell.
	MolotovRadius = 1
)

// EntityData is the static catalog row for one entity type.
type EntityData struct {
	Name               string
	Building           bool
	Size               int
	Gold               int
	Population         int
	PopulationProvided int
	ProducedAt         EntityType // production building, or EntityMiner for buildings
	Prerequisite       EntityType // building that must exist before this can be made
	GarrisonCapacity   int
	Garrisons          bool // may enter bunkers and wagons
	Heavy              bool
	Detector           bool
	Stealth            bool
	Flying             bool
	MaxEnergy          int
	Sight              int
	AttackPriority     int
}

// UpgradeData is the static catalog row for one upgrade.
type UpgradeData struct {
	Name         string
	Gold         int
	ResearchedAt EntityType
}

var entityData = [NumEntityTypes]EntityData{
	EntityNone:      {Name: "none"},
	EntityMiner:     {Name: "miner", Size: 1, Gold: 50, Population: 1, ProducedAt: EntityHall, Garrisons: true, Sight: 7, AttackPriority: 1},
	EntityCowboy:    {Name: "cowboy", Size: 1, Gold: 75, Population: 1, ProducedAt: EntitySaloon, Garrisons: true, Sight: 7, AttackPriority: 3},
	EntityBandit:    {Name: "bandit", Size: 1, Gold: 100, Population: 1, ProducedAt: EntitySaloon, Garrisons: true, Sight: 7, AttackPriority: 3},
	EntityWagon:     {Name: "wagon", Size: 1, Gold: 200, Population: 2, ProducedAt: EntityWorkshop, GarrisonCapacity: 4, Sight: 9, AttackPriority: 2},
	EntityJockey:    {Name: "jockey", Size: 1, Gold: 100, Population: 1, ProducedAt: EntityCoop, Sight: 9, AttackPriority: 3},
	EntitySapper:    {Name: "sapper", Size: 1, Gold: 125, Population: 1, ProducedAt: EntityBarracks, Garrisons: true, MaxEnergy: 200, Sight: 7, AttackPriority: 4},
	EntityPyro:      {Name: "pyro", Size: 1, Gold: 150, Population: 1, ProducedAt: EntityWorkshop, Garrisons: true, MaxEnergy: 120, Sight: 7, AttackPriority: 4},
	EntityDetective: {Name: "detective", Size: 1, Gold: 150, Population: 1, ProducedAt: EntitySheriff, Garrisons: true, Detector: true, Stealth: true, Sight: 9, AttackPriority: 3},
	EntityBalloon:   {Name: "balloon", Size: 1, Gold: 100, Population: 1, ProducedAt: EntityWorkshop, Detector: true, Flying: true, Sight: 11, AttackPriority: 2},
	EntitySoldier:   {Name: "soldier", Size: 1, Gold: 125, Population: 1, ProducedAt: EntityBarracks, Garrisons: true, Sight: 7, AttackPriority: 3},
	EntityCannon:    {Name: "cannon", Size: 1, Gold: 250, Population: 2, ProducedAt: EntityBarracks, Heavy: true, Sight: 9, AttackPriority: 5},
	EntityLandmine:  {Name: "landmine", Size: 1, Stealth: true, Sight: 1},

	EntityHall:     {Name: "hall", Building: true, Size: 4, Gold: 400, PopulationProvided: 10, ProducedAt: EntityMiner, Sight: 9, AttackPriority: 1},
	EntityHouse:    {Name: "house", Building: true, Size: 2, Gold: 100, PopulationProvided: 10, ProducedAt: EntityMiner, Prerequisite: EntityHall, Sight: 5},
	EntitySaloon:   {Name: "saloon", Building: true, Size: 3, Gold: 150, ProducedAt: EntityMiner, Prerequisite: EntityHall, Sight: 7, AttackPriority: 1},
	EntityBunker:   {Name: "bunker", Building: true, Size: 2, Gold: 150, ProducedAt: EntityMiner, Prerequisite: EntitySaloon, GarrisonCapacity: 4, Sight: 9, AttackPriority: 2},
	EntityCoop:     {Name: "coop", Building: true, Size: 3, Gold: 150, ProducedAt: EntityMiner, Prerequisite: EntitySaloon, Sight: 7, AttackPriority: 1},
	EntityWorkshop: {Name: "workshop", Building: true, Size: 3, Gold: 200, ProducedAt: EntityMiner, Prerequisite: EntitySaloon, Sight: 7, AttackPriority: 1},
	EntityBarracks: {Name: "barracks", Building: true, Size: 3, Gold: 200, ProducedAt: EntityMiner, Prerequisite: EntityWorkshop, Sight: 7, AttackPriority: 1},
	EntitySheriff:  {Name: "sheriff", Building: true, Size: 3, Gold: 200, ProducedAt: EntityMiner, Prerequisite: EntityWorkshop, Sight: 7, AttackPriority: 1},

	EntityGoldMine: {Name: "goldmine", Building: true, Size: 3},
}

var upgradeData = [NumUpgradeTypes]UpgradeData{
	UpgradeNone:       {Name: "none"},
	UpgradeWagonArmor: {Name: "wagon_armor", Gold: 200, ResearchedAt: EntityWorkshop},
	UpgradeBayonets:   {Name: "bayonets", Gold: 200, ResearchedAt: EntityBarracks},
	UpgradePrivateEye: {Name: "private_eye", Gold: 150, ResearchedAt: EntitySheriff},
}

// Data returns the catalog row for t.
func (t EntityType) Data() EntityData {
	if t >= NumEntityTypes {
		return entityData[EntityNone]
	}
	return entityData[t]
}

func (t EntityType) String() string { return t.Data().Name }

// IsUnit reports whether t is a mobile unit (landmines excluded).
func (t EntityType) IsUnit() bool { return t >= FirstUnit && t < EntityLandmine }

// IsBuilding reports whether t is a player-owned structure.
func (t EntityType) IsBuilding() bool { return t >= FirstBuilding && t < EntityGoldMine }

// IsCombat reports whether t is a unit that fights; workers, wagons and
// balloons are excluded.
func (t EntityType) IsCombat() bool {
	switch t {
	case EntityCowboy, EntityBandit, EntityJockey, EntitySapper, EntityPyro,
		EntityDetective, EntitySoldier, EntityCannon:
		return true
	}
	return false
}

// IsProducer reports whether t trains units or researches upgrades.
func (t EntityType) IsProducer() bool {
	switch t {
	case EntityHall, EntitySaloon, EntityCoop, EntityWorkshop, EntityBarracks, EntitySheriff:
		return true
	}
	return false
}

// IsMilitaryBuilding reports whether t is a structure that produces or
// supports fighting units.
func (t EntityType) IsMilitaryBuilding() bool {
	switch t {
	case EntitySaloon, EntityBunker, EntityCoop, EntityWorkshop, EntityBarracks, EntitySheriff:
		return true
	}
	return false
}

func (t EntityType) MarshalText() ([]byte, error) {
	if t >= NumEntityTypes {
		return nil, fmt.Errorf("unknown entity type %d", t)
	}
	return []byte(t.String()), nil
}

func (t *EntityType) UnmarshalText(b []byte) error {
	v, ok := ParseEntityType(string(b))
	if !ok {
		return fmt.Errorf("unknown entity type %q", b)
	}
	*t = v
	return nil
}

// ParseEntityType resolves a catalog name (case-insensitive).
func ParseEntityType(name string) (EntityType, bool) {
	for t := EntityNone; t < NumEntityTypes; t++ {
		if strings.EqualFold(entityData[t].Name, name) {
			return t, true
		}
	}
	return EntityNone, false
}

// Data returns the catalog row for u.
func (u UpgradeType) Data() UpgradeData {
	if u >= NumUpgradeTypes {
		return upgradeData[UpgradeNone]
	}
	return upgradeData[u]
}

func (u UpgradeType) String() string { return u.Data().Name }

func (u UpgradeType) MarshalText() ([]byte, error) {
	if u >= NumUpgradeTypes {
		return nil, fmt.Errorf("unknown upgrade %d", u)
	}
	return []byte(u.String()), nil
}

func (u *UpgradeType) UnmarshalText(b []byte) error {
	v, ok := ParseUpgradeType(string(b))
	if !ok {
		return fmt.Errorf("unknown upgrade %q", b)
	}
	*u = v
	return nil
}

// ParseUpgradeType resolves an upgrade name (case-insensitive).
func ParseUpgradeType(name string) (UpgradeType, bool) {
	for u := UpgradeNone; u < NumUpgradeTypes; u++ {
		if strings.EqualFold(upgradeData[u].Name, name) {
			return u, true
		}
	}
	return UpgradeNone, false
}
