package model

// EntityID is the simulation's stable identifier for an entity. Zero is
// never a live entity.
type EntityID uint32

// PlayerID indexes a player slot. Neutral entities (gold mines) use NeutralPlayer.
type PlayerID int

const NeutralPlayer PlayerID = -1

// EntityMode is the simulation-side activity of an entity.
type EntityMode string

const (
	ModeIdle              EntityMode = "idle"
	ModeMoving            EntityMode = "moving"
	ModeAttackMoving      EntityMode = "attack_moving"
	ModeAttacking         EntityMode = "attacking"
	ModeGathering         EntityMode = "gathering"
	ModeBuilding          EntityMode = "building"
	ModeRepairing         EntityMode = "repairing"
	ModeHolding           EntityMode = "holding"
	ModeGarrisoned        EntityMode = "garrisoned"
	ModeUnderConstruction EntityMode = "under_construction"
)

// TargetKind tags which field of a Target is valid.
type TargetKind string

const (
	TargetNone   TargetKind = ""
	TargetCell   TargetKind = "cell"
	TargetEntity TargetKind = "entity"
)

// Target is an order destination: either a cell or an entity.
type Target struct {
	Kind   TargetKind `json:"kind,omitempty"`
	Cell   Cell       `json:"cell"`
	Entity EntityID   `json:"entity,omitempty"`
}

func CellTarget(c Cell) Target       { return Target{Kind: TargetCell, Cell: c} }
func EntityTarget(id EntityID) Target { return Target{Kind: TargetEntity, Entity: id} }

// QueueItemKind tags which field of a QueueItem is valid.
type QueueItemKind string

const (
	QueueUnit    QueueItemKind = "unit"
	QueueUpgrade QueueItemKind = "upgrade"
)

// QueueItem is one production slot: a unit to train or an upgrade to research.
type QueueItem struct {
	Kind    QueueItemKind `json:"kind"`
	Unit    EntityType    `json:"unit,omitempty"`
	Upgrade UpgradeType   `json:"upgrade,omitempty"`
}

func UnitItem(t EntityType) QueueItem     { return QueueItem{Kind: QueueUnit, Unit: t} }
func UpgradeItem(u UpgradeType) QueueItem { return QueueItem{Kind: QueueUpgrade, Upgrade: u} }

// Gold returns the cost of the queued item.
func (q QueueItem) Gold() int {
	if q.Kind == QueueUpgrade {
		return q.Upgrade.Data().Gold
	}
	return q.Unit.Data().Gold
}

// Entity is one unit, building or resource node as seen in a snapshot.
type Entity struct {
	ID           EntityID    `json:"id"`
	Type         EntityType  `json:"type"`
	Owner        PlayerID    `json:"owner"`
	Cell         Cell        `json:"cell"` // top-left corner for buildings
	Health       int         `json:"health"`
	MaxHealth    int         `json:"maxHealth"`
	Mode         EntityMode  `json:"mode"`
	Target       Target      `json:"target"`
	BuildType    EntityType  `json:"buildType,omitempty"` // structure a miner is on its way to build
	Garrison     []EntityID  `json:"garrison,omitempty"`
	GarrisonedIn EntityID    `json:"garrisonedIn,omitempty"`
	Energy       int         `json:"energy,omitempty"`
	Stealthed    bool        `json:"stealthed,omitempty"`
	TakingDamage bool        `json:"takingDamage,omitempty"`
	Queue        []QueueItem `json:"queue,omitempty"`
	RallyPoint   *Cell       `json:"rallyPoint,omitempty"`
	Gold         int         `json:"gold,omitempty"` // remaining gold in a mine
}

func (e *Entity) Data() EntityData { return e.Type.Data() }

// Footprint returns the cells the entity occupies.
func (e *Entity) Footprint() Rect {
	size := e.Type.Data().Size
	if size < 1 {
		size = 1
	}
	return Rect{Origin: e.Cell, Size: size}
}

// Center returns the middle cell of the entity's footprint.
func (e *Entity) Center() Cell { return e.Footprint().Center() }

// Alive reports whether the entity still has health.
func (e *Entity) Alive() bool { return e.Health > 0 }

// Idle reports whether the entity has no current order.
func (e *Entity) Idle() bool { return e.Mode == ModeIdle }

// Garrisoned reports whether the entity is inside a bunker or wagon.
func (e *Entity) Garrisoned() bool { return e.GarrisonedIn != 0 }

// Complete reports whether a building has finished construction.
func (e *Entity) Complete() bool { return e.Mode != ModeUnderConstruction }

// Producing reports whether the entity has anything queued.
func (e *Entity) Producing() bool { return len(e.Queue) > 0 }

// Player is per-player match metadata.
type Player struct {
	ID          PlayerID      `json:"id"`
	Team        int           `json:"team"`
	Name        string        `json:"name"`
	Gold        int           `json:"gold"`
	Upgrades    []UpgradeType `json:"upgrades,omitempty"`
	Researching []UpgradeType `json:"researching,omitempty"`
	Defeated    bool          `json:"defeated,omitempty"`
}

// HasUpgrade reports whether u has finished researching.
func (p *Player) HasUpgrade(u UpgradeType) bool {
	for _, have := range p.Upgrades {
		if have == u {
			return true
		}
	}
	return false
}

// UpgradeStarted reports whether u is researched or currently researching.
func (p *Player) UpgradeStarted(u UpgradeType) bool {
	if p.HasUpgrade(u) {
		return true
	}
	for _, r := range p.Researching {
		if r == u {
			return true
		}
	}
	return false
}

// Vision is one player's fog-of-war state, row-major like Map.Tiles.
type Vision struct {
	Player   PlayerID `json:"player"`
	Explored []bool   `json:"explored"`
	Visible  []bool   `json:"visible"`
}

// Snapshot is the read-only match state handed to a bot each tick.
type Snapshot struct {
	Map      Map      `json:"map"`
	Players  []Player `json:"players"`
	Entities []Entity `json:"entities"`
	Vision   []Vision `json:"vision"`
}

// Player returns the metadata for id.
func (s *Snapshot) Player(id PlayerID) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], true
		}
	}
	return nil, false
}

// Allied reports whether two players share a team. A player is allied with itself.
func (s *Snapshot) Allied(a, b PlayerID) bool {
	if a == b {
		return true
	}
	pa, okA := s.Player(a)
	pb, okB := s.Player(b)
	return okA && okB && pa.Team == pb.Team
}

func (s *Snapshot) vision(id PlayerID) *Vision {
	for i := range s.Vision {
		if s.Vision[i].Player == id {
			return &s.Vision[i]
		}
	}
	return nil
}

// CellVisible reports whether player currently sees c.
func (s *Snapshot) CellVisible(player PlayerID, c Cell) bool {
	v := s.vision(player)
	if v == nil || !s.Map.InBounds(c) {
		return false
	}
	i := s.Map.Index(c)
	return i < len(v.Visible) && v.Visible[i]
}

// CellExplored reports whether player has ever seen c.
func (s *Snapshot) CellExplored(player PlayerID, c Cell) bool {
	v := s.vision(player)
	if v == nil || !s.Map.InBounds(c) {
		return false
	}
	i := s.Map.Index(c)
	return i < len(v.Explored) && v.Explored[i]
}

// EntityVisible reports whether player can observe e, accounting for fog,
// stealth and detection. Allied entities are always visible.
func (s *Snapshot) EntityVisible(player PlayerID, e *Entity) bool {
	if e.Owner != NeutralPlayer && s.Allied(player, e.Owner) {
		return true
	}
	fp := e.Footprint()
	seen := false
	for y := fp.Origin.Y; y < fp.Origin.Y+fp.Size && !seen; y++ {
		for x := fp.Origin.X; x < fp.Origin.X+fp.Size; x++ {
			if s.CellVisible(player, Cell{X: x, Y: y}) {
				seen = true
				break
			}
		}
	}
	if !seen {
		return false
	}
	if !e.Stealthed && e.Type != EntityLandmine {
		return true
	}
	return s.Detected(player, e.Cell)
}

// Detected reports whether any detector allied with player covers c.
func (s *Snapshot) Detected(player PlayerID, c Cell) bool {
	for i := range s.Entities {
		d := &s.Entities[i]
		if !d.Alive() || !d.Type.Data().Detector || d.Owner == NeutralPlayer || !s.Allied(player, d.Owner) {
			continue
		}
		if d.Type == EntityDetective && d.Stealthed {
			continue
		}
		if d.Cell.Within(c, d.Type.Data().Sight) {
			return true
		}
	}
	return false
}
