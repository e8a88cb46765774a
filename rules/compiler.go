package rules

import (
	"fmt"

	"github.com/nstehr/deadeye/model"
)

// CompileDoctrine generates the goal-selection rule set for a doctrine.
// Conditions are built via fmt.Sprintf with interpolated integers only, so
// the compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()
	comp := d.Composition

	rushUnits := lerp(3, 6, d.Aggression)
	pushGroup := lerp(10, 6, d.Aggression)
	harassGroup := lerp(3, 6, d.Aggression)
	defenseGroup := lerp(3, 8, d.DefensePriority)
	outnumberedPct := lerp(175, 110, d.DefensePriority)
	coreMin := lerp(6, 12, d.DefensePriority)
	bunkersPerBase := lerp(1, 3, d.DefensePriority)
	expandMiners := lerp(3, 8, d.EconomyPriority)
	economicBases := clampInt(lerp(1, 4, d.EconomyPriority), 1, 4)

	var rules []*Rule

	// --- Opening (once per match) ---

	rules = append(rules, &Rule{
		Name:         "opening-" + d.Opening.String(),
		Priority:     1000,
		ConditionSrc: `!OpeningDone`,
		Goal:         openingGoal(d.Opening, rushUnits, expandMiners),
	})

	// --- Fixed-order scan ---

	rules = append(rules, &Rule{
		Name:         "detection-counter",
		Priority:     900,
		ConditionSrc: `EnemyStealth && !HasDetectorSquad`,
		Goal: func(env Env) Goal {
			g := newGoal("detection-counter", SquadPush)
			g.Add(env, comp.Detector(), 1).AddArmy(env, comp, 3)
			return g
		},
	})

	rules = append(rules, &Rule{
		Name:         "core-reinforcement",
		Priority:     850,
		ConditionSrc: fmt.Sprintf(`EnemyDetection && CoreUnits() < %d`, coreMin),
		Goal: func(env Env) Goal {
			g := newGoal("core-reinforcement", SquadPush)
			g.AddArmy(env, comp, max(coreMin-env.CoreUnits(), 2))
			return g
		},
	})

	rules = append(rules, &Rule{
		Name:         "defensive-structure",
		Priority:     800,
		ConditionSrc: fmt.Sprintf(`OutBuilt() && Bunkers < Bases * %d`, bunkersPerBase),
		Goal: func(env Env) Goal {
			g := newGoal("defensive-structure", SquadBunkerDefense)
			g.Add(env, model.EntityBunker, 1).Add(env, model.EntityCowboy, model.EntityBunker.Data().GarrisonCapacity)
			return g
		},
	})

	rules = append(rules, &Rule{
		Name:         "general-defense",
		Priority:     750,
		ConditionSrc: fmt.Sprintf(`Outnumbered(%d) && SquadCount("defense") < Bases`, outnumberedPct),
		Goal: func(env Env) Goal {
			g := newGoal("general-defense", SquadDefense)
			g.AddArmy(env, comp, defenseGroup)
			return g
		},
	})

	rules = append(rules, &Rule{
		Name:         "expand",
		Priority:     700,
		ConditionSrc: `UnclaimedMines > 0 && Bases < EnemyBases`,
		Goal:         expandGoal(expandMiners),
	})

	rules = append(rules, &Rule{
		Name:         "economic-expand",
		Priority:     690,
		ConditionSrc: fmt.Sprintf(`UnclaimedMines > 0 && Bases < %d && !Outnumbered(100)`, economicBases),
		Goal:         expandGoal(expandMiners),
	})

	if comp.LaysMines() {
		rules = append(rules, &Rule{
			Name:         "landmines",
			Priority:     650,
			ConditionSrc: `!MinesGoalIssued`,
			Goal: func(env Env) Goal {
				g := newGoal("landmines", SquadLandmines)
				g.Add(env, model.EntitySapper, 2)
				return g
			},
		})
	}

	rules = append(rules, &Rule{
		Name:         "harass",
		Priority:     600,
		ConditionSrc: `UndefendedEnemyBases > 0 && SquadCount("harass") == 0`,
		Goal: func(env Env) Goal {
			g := newGoal("harass", SquadHarass)
			g.Add(env, comp.Raider(), harassGroup)
			return g
		},
	})

	rules = append(rules, &Rule{
		Name:         "push",
		Priority:     100,
		ConditionSrc: `true`,
		Goal: func(env Env) Goal {
			g := newGoal("push", SquadPush)
			g.AddArmy(env, comp, pushGroup).Add(env, comp.Specialist(), 1)
			g.Upgrade = pushUpgrade(comp)
			return g
		},
	})

	return rules
}

func openingGoal(o Opening, rushUnits, expandMiners int) GoalFunc {
	switch o {
	case OpeningBanditRush:
		return func(env Env) Goal {
			g := newGoal("bandit-rush", SquadHarass)
			g.Ensure(model.EntitySaloon, 1).Add(env, model.EntityBandit, rushUnits)
			g.Precondition = model.EntitySaloon
			return g
		}
	case OpeningBunker:
		return func(env Env) Goal {
			g := newGoal("bunker-first", SquadBunkerDefense)
			g.Ensure(model.EntityBunker, 1).Add(env, model.EntityCowboy, model.EntityBunker.Data().GarrisonCapacity)
			return g
		}
	}
	return expandGoal(expandMiners)
}

func expandGoal(miners int) GoalFunc {
	return func(env Env) Goal {
		g := newGoal("expand", SquadNone)
		g.Add(env, model.EntityHall, 1).Add(env, model.EntityMiner, miners)
		return g
	}
}

func pushUpgrade(c Composition) model.UpgradeType {
	switch c {
	case CompositionSoldiers:
		return model.UpgradeBayonets
	case CompositionRiders:
		return model.UpgradeWagonArmor
	}
	return model.UpgradeNone
}
