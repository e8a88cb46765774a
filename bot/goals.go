package bot

import (
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

// runGoals abandons or completes the current goal and picks a new one when
// none is active.
func (b *Bot) runGoals(w *World) {
	if b.goal != nil {
		if reason, abandon := b.shouldAbandon(w); abandon {
			b.log.Info("goal abandoned", "goal", b.goal.String(), "reason", reason)
			b.finishGoal()
		} else if b.goalMet(w) {
			b.log.Info("goal met", "goal", b.goal.String())
			b.spawnGoalSquad(w, *b.goal)
			b.finishGoal()
		}
	}
	if b.goal == nil {
		b.chooseGoal(w)
	}
}

func (b *Bot) finishGoal() {
	b.goal = nil
	b.anchor = 0
	b.openingDone = true
}

func (b *Bot) chooseGoal(w *World) {
	env := b.assess(w)
	g, ok := b.engine.Evaluate(env)
	if !ok {
		return
	}
	if g.Squad == rules.SquadLandmines {
		b.minesGoalIssued = true
	}
	b.goal = &g
	b.log.Info("goal selected", "goal", g.String(), "army", env.ArmyScore, "enemyArmy", env.EnemyArmyScore)
}

// shouldAbandon binds the goal's precondition entity once one exists and
// abandons the goal if it dies. Offensive goals are also dropped while a
// base is under attack.
func (b *Bot) shouldAbandon(w *World) (string, bool) {
	g := b.goal
	if g.Precondition != model.EntityNone {
		if b.anchor == 0 {
			for _, e := range w.OwnOfType(g.Precondition) {
				if e.Complete() {
					b.anchor = e.ID
					b.log.Debug("goal precondition bound", "goal", g.Name, "entity", e.ID)
					break
				}
			}
		} else if _, ok := w.Entity(b.anchor); !ok {
			return "precondition lost", true
		}
	}
	if g.Offensive() && b.underAttack() {
		return "base under attack", true
	}
	return "", false
}

// goalMet reports whether every desired count is satisfied by existing
// unreserved entities, or population is maxed with no structure outstanding.
func (b *Bot) goalMet(w *World) bool {
	g := b.goal
	st := b.takeStock(w)
	met := true
	buildingsDone := true
	for t := model.FirstUnit; t < model.NumEntityTypes; t++ {
		if g.Deficit(t, st.have[t]) > 0 {
			met = false
			if t.IsBuilding() {
				buildingsDone = false
			}
		}
	}
	if g.Upgrade != model.UpgradeNone && (w.Self == nil || !w.Self.HasUpgrade(g.Upgrade)) {
		met = false
	}
	if met {
		return true
	}
	return w.Population+b.cfg.Production.PopulationMargin >= model.MaxPopulation && buildingsDone
}

// spawnGoalSquad forms the goal's squad from unreserved units of the types
// the goal asked for.
func (b *Bot) spawnGoalSquad(w *World, g rules.Goal) {
	if g.Squad == rules.SquadNone {
		return
	}
	var members []*model.Entity
	for _, e := range w.Own {
		if !e.Type.IsUnit() || e.Type == model.EntityMiner || b.ledger.IsReserved(e.ID) {
			continue
		}
		if g.Wants(e.Type) {
			members = append(members, e)
		}
	}
	if len(members) == 0 {
		return
	}
	home := w.Home(Centroid(members))
	target, objective := home, model.EntityID(0)
	switch g.Squad {
	case rules.SquadHarass, rules.SquadPush:
		own := b.scorer(w).ScoreEntities(members)
		if c, id, ok := b.offensiveTarget(w, g.Squad, own, home); ok {
			target, objective = c, id
		} else if wps := waypoints(w.Snap.Map.Width, w.Snap.Map.Height); len(wps) > 0 {
			target = wps[0]
		}
	case rules.SquadBunkerDefense:
		if bunker, ok := b.freeBunker(w); ok {
			target, objective = bunker.Center(), bunker.ID
		}
	}
	b.newSquad(g.Squad, members, target, objective)
}

// assess builds the match assessment goal rules are evaluated against.
func (b *Bot) assess(w *World) rules.Env {
	st := b.takeStock(w)
	sc := b.scorer(w)
	env := rules.Env{
		Time:            w.Now,
		Gold:            b.gold(w),
		Population:      w.Population,
		PopulationCap:   w.PopulationCap,
		Bases:           len(w.Halls),
		EnemyBases:      b.intel.MaxBasesPerPlayer(),
		UnclaimedMines:  len(b.unclaimedMines(w)),
		EnemyArmyScore:  b.intel.ArmyScore(sc.TypeScore),
		EnemyStealth:    b.intel.stealthSeen,
		EnemyDetection:  b.intel.detectionSeen,
		OpeningDone:     b.openingDone,
		MinesGoalIssued: b.minesGoalIssued,
		Composition:     b.doctrine.Composition,

		EnemyMilitaryBuildings: b.intel.MilitaryBuildings(),
	}
	for t := range env.Counts {
		env.Counts[t] = st.total(model.EntityType(t))
	}
	for _, e := range w.Own {
		switch {
		case e.Type == model.EntityBunker:
			env.Bunkers++
		case e.Type.IsUnit() && e.Type != model.EntityMiner:
			env.ArmyScore += sc.Score(e)
		}
		if e.Type.IsMilitaryBuilding() {
			env.MilitaryBuildings++
		}
	}
	radius := b.cfg.Strategy.BaseRadius
	for _, kb := range b.intel.Bases() {
		if b.intel.BaseDefense(kb, radius, sc.TypeScore, b.cfg.Scoring.GarrisonOccupant) == 0 {
			env.UndefendedEnemyBases++
		}
	}
	for _, sq := range b.squads {
		env.Squads[sq.Type]++
		for _, id := range sq.Members {
			if e, ok := w.Entity(id); ok && e.Type.Data().Detector {
				env.HasDetectorSquad = true
			}
		}
	}
	return env
}
