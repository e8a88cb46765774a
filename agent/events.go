package agent

import (
	"fmt"
	"strings"

	"github.com/nstehr/deadeye/model"
)

// EventKind identifies a notable change between consecutive snapshots.
// Events only feed the match log; the bot never reads them.
type EventKind string

const (
	EventCriticalBuildingLost EventKind = "critical_building_lost"
	EventArmyDevastated       EventKind = "army_devastated"
	EventEnemyBaseDiscovered  EventKind = "enemy_base_discovered"
	EventPhaseTransition      EventKind = "phase_transition"
	EventEconomyCrisis        EventKind = "economy_crisis"
	EventFirstContact         EventKind = "first_contact"
	EventStealthSpotted       EventKind = "stealth_spotted"
)

// Event is one change detected by diffing snapshots.
type Event struct {
	Kind   EventKind
	Time   int
	Detail string
}

// Phase thresholds in ticks, used when buildings alone do not settle it.
const (
	midGameTime  = 6000
	lateGameTime = 15000
)

// matchSnapshot captures the diffable fields of one snapshot from a single
// player's side. The agent keeps one and compares the next against it.
type matchSnapshot struct {
	buildings   []model.Entity // owned buildings, snapshot order
	buildingIDs map[model.EntityID]bool
	combatCount int
	minerCount  int
	gold        int
	phase       string
	enemyBase   bool
	enemiesSeen bool
	stealthSeen bool
}

// criticalBuildingTypes are structures whose loss changes what the bot can build.
var criticalBuildingTypes = map[model.EntityType]bool{
	model.EntityHall:     true,
	model.EntitySaloon:   true,
	model.EntityCoop:     true,
	model.EntityWorkshop: true,
	model.EntityBarracks: true,
	model.EntitySheriff:  true,
}

// gamePhase determines the phase from tech milestones, with time as a
// fallback for stalled matches. A saloon alone counts as mid game once it
// has fielded five fighters.
func gamePhase(buildings []model.Entity, combat, now int) string {
	hasLate, hasMid, hasSaloon := false, false, false
	for _, b := range buildings {
		if !b.Complete() {
			continue
		}
		switch b.Type {
		case model.EntityBarracks, model.EntitySheriff:
			hasLate = true
		case model.EntityWorkshop, model.EntityCoop:
			hasMid = true
		case model.EntitySaloon:
			hasSaloon = true
		}
	}
	switch {
	case hasLate || now > lateGameTime:
		return "Late Game"
	case hasMid || now > midGameTime || (hasSaloon && combat >= 5):
		return "Mid Game"
	}
	return "Early Game"
}

func hostile(snap *model.Snapshot, player model.PlayerID, e *model.Entity) bool {
	return e.Owner != model.NeutralPlayer && !snap.Allied(player, e.Owner)
}

// takeSnapshot captures the current diffable state for the next comparison.
func takeSnapshot(snap *model.Snapshot, player model.PlayerID, now int) matchSnapshot {
	ms := matchSnapshot{buildingIDs: make(map[model.EntityID]bool)}
	if p, ok := snap.Player(player); ok {
		ms.gold = p.Gold
	}
	for i := range snap.Entities {
		e := &snap.Entities[i]
		if !e.Alive() {
			continue
		}
		if e.Owner == player {
			switch {
			case e.Type.IsBuilding():
				ms.buildings = append(ms.buildings, *e)
				ms.buildingIDs[e.ID] = true
			case e.Type == model.EntityMiner:
				ms.minerCount++
			case e.Type.IsCombat():
				ms.combatCount++
			}
			continue
		}
		if !hostile(snap, player, e) || !snap.EntityVisible(player, e) {
			continue
		}
		ms.enemiesSeen = true
		if e.Type == model.EntityHall {
			ms.enemyBase = true
		}
		if e.Type.Data().Stealth {
			ms.stealthSeen = true
		}
	}
	ms.phase = gamePhase(ms.buildings, ms.combatCount, now)
	return ms
}

// detectEvents compares cur against prev and returns any triggered events.
// Returns nil if prev is nil (first snapshot).
func detectEvents(cur matchSnapshot, prev *matchSnapshot, now int) []Event {
	if prev == nil {
		return nil
	}
	var events []Event

	// One building loss per snapshot is enough.
	for _, b := range prev.buildings {
		if criticalBuildingTypes[b.Type] && !cur.buildingIDs[b.ID] {
			events = append(events, Event{
				Kind:   EventCriticalBuildingLost,
				Time:   now,
				Detail: fmt.Sprintf("lost %s (id %d)", b.Type, b.ID),
			})
			break
		}
	}

	// More than half the army gone, with a floor of six to skip early skirmishes.
	if prev.combatCount >= 6 {
		lost := prev.combatCount - cur.combatCount
		if lost > 0 && lost*2 > prev.combatCount {
			events = append(events, Event{
				Kind:   EventArmyDevastated,
				Time:   now,
				Detail: fmt.Sprintf("combat units %d -> %d (lost %d%%)", prev.combatCount, cur.combatCount, 100*lost/prev.combatCount),
			})
		}
	}

	if !prev.enemyBase && cur.enemyBase {
		events = append(events, Event{Kind: EventEnemyBaseDiscovered, Time: now, Detail: "enemy hall sighted"})
	}

	if prev.phase != cur.phase {
		events = append(events, Event{
			Kind:   EventPhaseTransition,
			Time:   now,
			Detail: fmt.Sprintf("%s -> %s", prev.phase, cur.phase),
		})
	}

	switch {
	case prev.minerCount > 0 && cur.minerCount == 0:
		events = append(events, Event{Kind: EventEconomyCrisis, Time: now, Detail: "all miners lost"})
	case prev.gold > 1000 && cur.gold < 200:
		events = append(events, Event{
			Kind:   EventEconomyCrisis,
			Time:   now,
			Detail: fmt.Sprintf("gold collapsed %d -> %d", prev.gold, cur.gold),
		})
	}

	if !prev.enemiesSeen && cur.enemiesSeen {
		events = append(events, Event{Kind: EventFirstContact, Time: now, Detail: "enemies visible"})
	}

	if !prev.stealthSeen && cur.stealthSeen {
		events = append(events, Event{Kind: EventStealthSpotted, Time: now, Detail: "stealthed enemy visible"})
	}

	return events
}

// formatEvents renders events one per line for a match summary.
func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "- [t=%d] %s: %s\n", e.Time, e.Kind, e.Detail)
	}
	return b.String()
}
