package rules

import (
	"fmt"
	"strings"

	"github.com/nstehr/deadeye/model"
)

// SquadType tags what a squad is for.
type SquadType uint8

const (
	SquadNone SquadType = iota
	SquadHarass
	SquadPush
	SquadBunkerDefense
	SquadLandmines
	SquadReserves
	SquadDefense
	NumSquadTypes
)

var squadNames = [NumSquadTypes]string{
	SquadNone:          "none",
	SquadHarass:        "harass",
	SquadPush:          "push",
	SquadBunkerDefense: "bunker_defense",
	SquadLandmines:     "landmines",
	SquadReserves:      "reserves",
	SquadDefense:       "defense",
}

func (s SquadType) String() string {
	if s >= NumSquadTypes {
		return fmt.Sprintf("squad(%d)", s)
	}
	return squadNames[s]
}

// ParseSquadType resolves a squad type name (case-insensitive).
func ParseSquadType(name string) (SquadType, bool) {
	for s := SquadNone; s < NumSquadTypes; s++ {
		if strings.EqualFold(squadNames[s], name) {
			return s, true
		}
	}
	return SquadNone, false
}

// Offensive reports whether squads of this type leave home to attack.
func (s SquadType) Offensive() bool {
	switch s {
	case SquadHarass, SquadPush, SquadLandmines:
		return true
	}
	return false
}

// Goal is what the bot is currently building towards. Desired holds
// absolute unreserved counts per entity type; zero means no requirement.
type Goal struct {
	Name    string
	Desired [model.NumEntityTypes]int
	Upgrade model.UpgradeType
	Squad   SquadType
	// Precondition names an entity type the goal hinges on. Once one exists
	// the tracker binds it, and the goal is abandoned if that entity dies.
	Precondition model.EntityType
}

func newGoal(name string, squad SquadType) Goal {
	return Goal{Name: name, Squad: squad}
}

// Add asks for n more of t than the player currently has.
func (g *Goal) Add(env Env, t model.EntityType, n int) *Goal {
	g.Desired[t] = max(g.Desired[t], env.Counts[t]+n)
	return g
}

// Ensure asks for at least n of t in total.
func (g *Goal) Ensure(t model.EntityType, n int) *Goal {
	g.Desired[t] = max(g.Desired[t], n)
	return g
}

// AddArmy spreads n more units over the composition's core types, weighting
// the first type two to one.
func (g *Goal) AddArmy(env Env, c Composition, n int) *Goal {
	core := c.Core()
	first := (2*n + 2) / 3
	g.Add(env, core[0], first)
	if rest := n - first; rest > 0 {
		g.Add(env, core[1], rest)
	}
	return g
}

// Wants reports whether the goal asks for any t.
func (g *Goal) Wants(t model.EntityType) bool { return g.Desired[t] > 0 }

// Deficit returns how many more of t are needed given have.
func (g *Goal) Deficit(t model.EntityType, have int) int {
	return max(0, g.Desired[t]-have)
}

// Offensive reports whether the goal forms an attacking squad.
func (g *Goal) Offensive() bool { return g.Squad.Offensive() }

func (g *Goal) String() string {
	var parts []string
	for t := model.EntityType(0); t < model.NumEntityTypes; t++ {
		if g.Desired[t] > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", t, g.Desired[t]))
		}
	}
	if g.Upgrade != model.UpgradeNone {
		parts = append(parts, "upgrade:"+g.Upgrade.String())
	}
	return fmt.Sprintf("%s{%s} -> %s", g.Name, strings.Join(parts, " "), g.Squad)
}
