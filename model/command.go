package model

import "fmt"

// CommandKind tags a Command; it determines which payload fields are valid.
type CommandKind string

const (
	CommandNone         CommandKind = ""
	CommandMove         CommandKind = "move"           // Entities, Cell
	CommandMoveToEntity CommandKind = "move_to_entity" // Entities, Target
	CommandAttackMove   CommandKind = "attack_move"    // Entities, Cell
	CommandAttack       CommandKind = "attack"         // Entities, Target
	CommandRepair       CommandKind = "repair"         // Entities, Target
	CommandUnload       CommandKind = "unload"         // Entities (transport), Target (passenger, zero = all)
	CommandStop         CommandKind = "stop"           // Entities
	CommandHold         CommandKind = "hold"           // Entities
	CommandBuild        CommandKind = "build"          // Entities (builder), Cell, Building
	CommandCancelBuild  CommandKind = "cancel_build"   // Entities (construction site)
	CommandEnqueue      CommandKind = "enqueue"        // Entities (producer), Item
	CommandDequeue      CommandKind = "dequeue"        // Entities (producer), Index
	CommandSetRally     CommandKind = "set_rally"      // Entities (producer), Cell
	CommandLayMine      CommandKind = "lay_mine"       // Entities (sapper), Cell
	CommandMolotov      CommandKind = "molotov"        // Entities (pyro), Cell
	CommandCamouflage   CommandKind = "camouflage"     // Entities (detective)
	CommandDecamouflage CommandKind = "decamouflage"   // Entities (detective)
)

// Command is the single order a bot emits per step. The zero value is
// "no command".
type Command struct {
	Kind     CommandKind `json:"kind"`
	Entities []EntityID  `json:"entities,omitempty"`
	Cell     Cell        `json:"cell"`
	Target   EntityID    `json:"target,omitempty"`
	Building EntityType  `json:"building,omitempty"`
	Item     *QueueItem  `json:"item,omitempty"`
	Index    int         `json:"index,omitempty"`
}

// Empty reports whether c is the "no command" value.
func (c Command) Empty() bool { return c.Kind == CommandNone }

func (c Command) String() string {
	switch c.Kind {
	case CommandNone:
		return "none"
	case CommandMove, CommandAttackMove, CommandSetRally, CommandLayMine, CommandMolotov:
		return fmt.Sprintf("%s %v -> (%d,%d)", c.Kind, c.Entities, c.Cell.X, c.Cell.Y)
	case CommandBuild:
		return fmt.Sprintf("%s %v %s at (%d,%d)", c.Kind, c.Entities, c.Building, c.Cell.X, c.Cell.Y)
	case CommandEnqueue:
		if c.Item != nil && c.Item.Kind == QueueUpgrade {
			return fmt.Sprintf("%s %v %s", c.Kind, c.Entities, c.Item.Upgrade)
		}
		if c.Item != nil {
			return fmt.Sprintf("%s %v %s", c.Kind, c.Entities, c.Item.Unit)
		}
	case CommandMoveToEntity, CommandAttack, CommandRepair, CommandUnload:
		return fmt.Sprintf("%s %v -> #%d", c.Kind, c.Entities, c.Target)
	}
	return fmt.Sprintf("%s %v", c.Kind, c.Entities)
}

// Selection truncates ids to MaxSelection.
func Selection(ids []EntityID) []EntityID {
	if len(ids) > MaxSelection {
		ids = ids[:MaxSelection]
	}
	out := make([]EntityID, len(ids))
	copy(out, ids)
	return out
}

func Move(ids []EntityID, c Cell) Command {
	return Command{Kind: CommandMove, Entities: Selection(ids), Cell: c}
}

func MoveToEntity(ids []EntityID, target EntityID) Command {
	return Command{Kind: CommandMoveToEntity, Entities: Selection(ids), Target: target}
}

func AttackMove(ids []EntityID, c Cell) Command {
	return Command{Kind: CommandAttackMove, Entities: Selection(ids), Cell: c}
}

func Attack(ids []EntityID, target EntityID) Command {
	return Command{Kind: CommandAttack, Entities: Selection(ids), Target: target}
}

func Repair(ids []EntityID, target EntityID) Command {
	return Command{Kind: CommandRepair, Entities: Selection(ids), Target: target}
}

// Unload empties a transport; passenger zero unloads everyone.
func Unload(transport, passenger EntityID) Command {
	return Command{Kind: CommandUnload, Entities: []EntityID{transport}, Target: passenger}
}

func Stop(ids []EntityID) Command {
	return Command{Kind: CommandStop, Entities: Selection(ids)}
}

func Hold(ids []EntityID) Command {
	return Command{Kind: CommandHold, Entities: Selection(ids)}
}

func Build(builder EntityID, t EntityType, c Cell) Command {
	return Command{Kind: CommandBuild, Entities: []EntityID{builder}, Cell: c, Building: t}
}

func CancelBuild(site EntityID) Command {
	return Command{Kind: CommandCancelBuild, Entities: []EntityID{site}}
}

func Enqueue(producer EntityID, item QueueItem) Command {
	return Command{Kind: CommandEnqueue, Entities: []EntityID{producer}, Item: &item}
}

func Dequeue(producer EntityID, index int) Command {
	return Command{Kind: CommandDequeue, Entities: []EntityID{producer}, Index: index}
}

func SetRally(producer EntityID, c Cell) Command {
	return Command{Kind: CommandSetRally, Entities: []EntityID{producer}, Cell: c}
}

func LayMine(sapper EntityID, c Cell) Command {
	return Command{Kind: CommandLayMine, Entities: []EntityID{sapper}, Cell: c}
}

func Molotov(pyro EntityID, c Cell) Command {
	return Command{Kind: CommandMolotov, Entities: []EntityID{pyro}, Cell: c}
}

func Camouflage(detective EntityID) Command {
	return Command{Kind: CommandCamouflage, Entities: []EntityID{detective}}
}

func Decamouflage(detective EntityID) Command {
	return Command{Kind: CommandDecamouflage, Entities: []EntityID{detective}}
}
