package bot

import (
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

// threat is one of our bases with hostile units inside its radius.
type threat struct {
	Base    *model.Entity
	Attack  int
	Defense int
}

// findThreats scores attackers against defenders around every hall.
func (b *Bot) findThreats(w *World) []threat {
	sc := b.scorer(w)
	radius := b.cfg.Strategy.BaseRadius
	var out []threat
	for _, hall := range w.Halls {
		c := hall.Center()
		attack := 0
		for _, e := range w.EnemiesNear(c, radius) {
			if e.Type.IsUnit() {
				attack += sc.Score(e)
			}
		}
		if attack == 0 {
			continue
		}
		defense := 0
		for _, e := range w.Own {
			if e.Garrisoned() || !e.Footprint().Nearest(c).Within(c, radius) {
				continue
			}
			if (e.Type.IsUnit() && e.Type != model.EntityMiner) || e.Type == model.EntityBunker {
				defense += sc.Score(e)
			}
		}
		out = append(out, threat{Base: hall, Attack: attack, Defense: defense})
	}
	return out
}

func (b *Bot) underAttack() bool { return len(b.threats) > 0 }

// HasSurrendered reports whether the bot has given up the match.
func (b *Bot) HasSurrendered() bool { return b.surrendered }

// defend answers the first threatened base that is not already covered.
// Responses are tried in order: send an idle defense squad, form a squad
// from free combat units, recall an offensive squad still on its way out,
// counter-attack a weak enemy base, arm the miners. When nothing works and
// the last base is badly outmatched, the bot surrenders.
func (b *Bot) defend(w *World) model.Command {
	for _, t := range b.threats {
		if t.Defense >= t.Attack && b.covered(t.Base) {
			continue
		}
		if cmd := b.sendDefenders(w, t); !cmd.Empty() {
			return cmd
		}
		if cmd := b.raiseDefense(w, t); !cmd.Empty() {
			return cmd
		}
		if cmd := b.recallSquad(w, t); !cmd.Empty() {
			return cmd
		}
		if b.covered(t.Base) {
			continue
		}
		if cmd := b.counterAttack(w, t); !cmd.Empty() {
			return cmd
		}
		if cmd := b.armMiners(w, t); !cmd.Empty() {
			return cmd
		}
		if b.shouldSurrender(w, t) {
			b.surrendered = true
			b.log.Info("surrendering", "base", t.Base.ID, "attack", t.Attack, "defense", t.Defense)
			return model.Command{}
		}
	}
	return model.Command{}
}

// covered reports whether a defense squad is already assigned to base.
func (b *Bot) covered(base *model.Entity) bool {
	for _, sq := range b.squads {
		if !sq.dissolved && sq.Type == rules.SquadDefense && sq.Objective == base.ID {
			return true
		}
	}
	return false
}

func defensive(t rules.SquadType) bool {
	return t == rules.SquadDefense || t == rules.SquadReserves
}

// sendDefenders points an idle defense or reserve squad at the base.
func (b *Bot) sendDefenders(w *World, t threat) model.Command {
	for _, sq := range b.squads {
		if sq.dissolved || !defensive(sq.Type) || sq.Objective == t.Base.ID || sq.State == SquadEngaged {
			continue
		}
		if b.threatened(sq.Objective) {
			continue
		}
		sq.Type = rules.SquadDefense
		sq.State = SquadAdvancing
		sq.Target = t.Base.Center()
		sq.Objective = t.Base.ID
		b.log.Info("defense squad reassigned", "squad", sq.ID, "base", t.Base.ID)
		return model.AttackMove(ids(outside(b.members(w, sq))), sq.Target)
	}
	return model.Command{}
}

func (b *Bot) threatened(base model.EntityID) bool {
	for _, t := range b.threats {
		if t.Base.ID == base {
			return true
		}
	}
	return false
}

// raiseDefense forms a defense squad from unreserved combat units.
func (b *Bot) raiseDefense(w *World, t threat) model.Command {
	var free []*model.Entity
	for _, e := range w.Own {
		if e.Type.IsCombat() && !e.Garrisoned() && !b.ledger.IsReserved(e.ID) {
			free = append(free, e)
		}
	}
	if len(free) == 0 {
		return model.Command{}
	}
	sq := b.newSquad(rules.SquadDefense, free, t.Base.Center(), t.Base.ID)
	return model.AttackMove(sq.Members, sq.Target)
}

// recallSquad turns the nearest offensive squad that has not yet engaged
// into a defense squad for the base.
func (b *Bot) recallSquad(w *World, t threat) model.Command {
	c := t.Base.Center()
	var best *Squad
	bestD := 0
	for _, sq := range b.squads {
		if sq.dissolved || !sq.Type.Offensive() || sq.Type == rules.SquadLandmines || sq.State != SquadAdvancing {
			continue
		}
		d := Centroid(outside(b.members(w, sq))).DistSq(c)
		if best == nil || d < bestD {
			best, bestD = sq, d
		}
	}
	if best == nil {
		return model.Command{}
	}
	b.log.Info("squad recalled", "squad", best.ID, "from", best.Type, "base", t.Base.ID)
	best.Type = rules.SquadDefense
	best.Target = c
	best.Objective = t.Base.ID
	return model.AttackMove(ids(outside(b.members(w, best))), c)
}

// counterAttack sends engaged offensive squads at the least defended known
// enemy base when their combined score clears it by CounterAttackPct.
func (b *Bot) counterAttack(w *World, t threat) model.Command {
	sc := b.scorer(w)
	radius := b.cfg.Strategy.BaseRadius
	var weakest knownBuilding
	weakestDef := -1
	for _, kb := range b.intel.Bases() {
		d := b.intel.BaseDefense(kb, radius, sc.TypeScore, b.cfg.Scoring.GarrisonOccupant)
		if weakestDef < 0 || d < weakestDef {
			weakest, weakestDef = kb, d
		}
	}
	if weakestDef < 0 {
		return model.Command{}
	}
	var strike []*Squad
	force := 0
	for _, sq := range b.squads {
		if sq.dissolved || !sq.Type.Offensive() || sq.Type == rules.SquadLandmines || sq.Objective == weakest.ID {
			continue
		}
		strike = append(strike, sq)
		force += sc.ScoreList(sq.Members)
	}
	if len(strike) == 0 || force*100 <= weakestDef*b.cfg.Strategy.CounterAttackPct {
		return model.Command{}
	}
	var units []model.EntityID
	for _, sq := range strike {
		sq.Target = weakest.Center
		sq.Objective = weakest.ID
		sq.State = SquadAdvancing
		units = append(units, ids(outside(b.members(w, sq)))...)
	}
	b.log.Info("counter-attack", "target", weakest.ID, "force", force, "defense", weakestDef, "threatened", t.Base.ID)
	return model.AttackMove(units, weakest.Center)
}

// armMiners commits free miners near the base when they, with the existing
// defense, stand a chance against the attackers.
func (b *Bot) armMiners(w *World, t threat) model.Command {
	sc := b.scorer(w)
	c := t.Base.Center()
	var miners []*model.Entity
	score := 0
	for _, e := range w.Own {
		if b.freeMiner(e) && e.Cell.Within(c, b.cfg.Strategy.BaseRadius) {
			miners = append(miners, e)
			score += sc.Score(e)
		}
	}
	if len(miners) == 0 || (t.Defense+score)*2 <= t.Attack {
		return model.Command{}
	}
	b.log.Info("miners called to arms", "base", t.Base.ID, "miners", len(miners))
	sq := b.newSquad(rules.SquadDefense, miners, c, t.Base.ID)
	return model.AttackMove(sq.Members, c)
}

// shouldSurrender reports whether the bot is down to its last base and the
// defense there is at most 1/SurrenderRatio of the attack.
func (b *Bot) shouldSurrender(w *World, t threat) bool {
	return len(w.Halls) <= 1 && t.Defense*b.cfg.Strategy.SurrenderRatio <= t.Attack
}
