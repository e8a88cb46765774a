package rules

import "github.com/nstehr/deadeye/model"

// Env is the match assessment a goal rule is evaluated against. The bot
// fills it once per goal selection; exported methods are callable from
// rule expressions.
type Env struct {
	Time          int
	Gold          int
	Population    int
	PopulationCap int

	Bases          int
	EnemyBases     int
	UnclaimedMines int
	Bunkers        int

	ArmyScore      int
	EnemyArmyScore int

	MilitaryBuildings      int
	EnemyMilitaryBuildings int
	UndefendedEnemyBases   int

	// EnemyStealth is set once enemy detectives or landmines were observed.
	EnemyStealth bool
	// EnemyDetection is set once enemy balloons, detectives or a sheriff were observed.
	EnemyDetection bool
	// HasDetectorSquad is set while any squad carries a detector.
	HasDetectorSquad bool

	OpeningDone     bool
	MinesGoalIssued bool

	Composition Composition
	// Counts holds unreserved owned entities per type, including queued and
	// under-construction ones.
	Counts [model.NumEntityTypes]int
	// Squads holds the number of live squads per type.
	Squads [NumSquadTypes]int
}

// Count returns the unreserved count of the named entity type.
func (e Env) Count(name string) int {
	t, ok := model.ParseEntityType(name)
	if !ok {
		return 0
	}
	return e.Counts[t]
}

// SquadCount returns the number of live squads of the named type.
func (e Env) SquadCount(name string) int {
	s, ok := ParseSquadType(name)
	if !ok {
		return 0
	}
	return e.Squads[s]
}

// CoreUnits counts the composition's two bulk unit types.
func (e Env) CoreUnits() int {
	core := e.Composition.Core()
	return e.Counts[core[0]] + e.Counts[core[1]]
}

// Outnumbered reports whether the known enemy army exceeds pct percent of ours.
func (e Env) Outnumbered(pct int) bool {
	return e.EnemyArmyScore*100 > e.ArmyScore*pct
}

// OutBuilt reports whether the enemy fields more military structures per
// base than we do.
func (e Env) OutBuilt() bool {
	if e.EnemyMilitaryBuildings == 0 {
		return false
	}
	return e.EnemyMilitaryBuildings*max(e.Bases, 1) > e.MilitaryBuildings*max(e.EnemyBases, 1)
}

// PopulationMaxed reports whether the player is within margin of the hard cap.
func (e Env) PopulationMaxed(margin int) bool {
	return e.Population+margin >= model.MaxPopulation
}
