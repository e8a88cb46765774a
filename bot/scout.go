package bot

import (
	"slices"

	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/pathfind"
)

// DangerKind tags which kind of hazard a Danger records.
type DangerKind uint8

const (
	// DangerSighting is a time-boxed "hostiles seen here" record.
	DangerSighting DangerKind = iota
	// DangerBunker lasts as long as the bunker it refers to stands.
	DangerBunker
)

// Danger is a spot the scout keeps away from.
type Danger struct {
	Kind    DangerKind
	Cell    model.Cell
	Expires int            // sighting only
	Bunker  model.EntityID // bunker only
}

func (d Danger) active(w *World, in *intel) bool {
	switch d.Kind {
	case DangerSighting:
		return w.Now < d.Expires
	case DangerBunker:
		if e, ok := w.Entity(d.Bunker); ok {
			return w.Hostile(e)
		}
		_, remembered := in.Building(d.Bunker)
		return remembered
	}
	return false
}

// Scout is the state of the single roaming scout.
type Scout struct {
	ID      model.EntityID
	targets []model.EntityID
	current model.EntityID
	dangers []Danger
	// assumed holds enemy sites we treat as scouted without having seen
	// them, after walking into an ambush on the way there.
	assumed map[model.EntityID]bool
	last    int
	nextAt  int
}

func newScout() Scout {
	return Scout{assumed: make(map[model.EntityID]bool)}
}

// Dangers returns the live danger records.
func (s *Scout) Dangers() []Danger { return s.dangers }

// runScout advances the scout one tick.
func (b *Bot) runScout(w *World) model.Command {
	s := &b.scout
	b.refreshDangers(w)

	if s.ID == 0 {
		if w.Now < s.nextAt {
			return model.Command{}
		}
		if !b.assignScout(w) {
			return model.Command{}
		}
	}
	unit, _ := w.Entity(s.ID)

	s.targets = slices.DeleteFunc(s.targets, func(id model.EntityID) bool {
		return b.scouted(w, id)
	})
	if len(s.targets) == 0 {
		return b.scoutingDone(w, unit)
	}

	if unit.TakingDamage {
		return b.flee(w, unit)
	}
	if cmd := b.explore(w, unit); !cmd.Empty() || len(s.targets) > 0 {
		return cmd
	}
	return b.scoutingDone(w, unit)
}

func (b *Bot) scoutingDone(w *World, unit *model.Entity) model.Command {
	home := w.Home(unit.Cell)
	b.log.Info("scouting complete", "unit", unit.ID)
	b.endScouting(w)
	return model.Move([]model.EntityID{unit.ID}, home)
}

// scouted reports whether a target no longer needs a visit.
func (b *Bot) scouted(w *World, id model.EntityID) bool {
	if b.intel.Observed(id) || b.scout.assumed[id] {
		return true
	}
	e, ok := w.Entity(id)
	if !ok || w.Visible(e) {
		return true
	}
	if e.Owner != model.NeutralPlayer {
		p, ok := w.Snap.Player(e.Owner)
		return !ok || p.Defeated
	}
	return false
}

// explorationTargets lists unseen enemy structures and gold mines.
func (b *Bot) explorationTargets(w *World) []model.EntityID {
	var out []model.EntityID
	for i := range w.Snap.Entities {
		e := &w.Snap.Entities[i]
		switch {
		case e.Type == model.EntityGoldMine:
			if e.Gold <= 0 {
				continue
			}
		case e.Type.IsBuilding() && w.Hostile(e):
		default:
			continue
		}
		if !b.scouted(w, e.ID) {
			out = append(out, e.ID)
		}
	}
	return out
}

// assignScout picks the nearest eligible unit to our main base and
// reserves it. Idle wagons and idle or gathering miners qualify.
func (b *Bot) assignScout(w *World) bool {
	s := &b.scout
	targets := b.explorationTargets(w)
	if len(targets) == 0 {
		b.scheduleScout(w)
		return false
	}
	var candidates []*model.Entity
	for _, e := range w.Own {
		if b.ledger.IsReserved(e.ID) || e.Garrisoned() {
			continue
		}
		switch {
		case e.Type == model.EntityWagon && e.Idle():
		case e.Type == model.EntityMiner && (e.Idle() || e.Mode == model.ModeGathering):
		default:
			continue
		}
		candidates = append(candidates, e)
	}
	origin := model.Cell{}
	if main, ok := w.MainBase(); ok {
		origin = main.Center()
	}
	unit, ok := Nearest(candidates, origin)
	if !ok {
		return false
	}
	b.ledger.Reserve(unit.ID, ScoutHolder)
	s.ID = unit.ID
	s.targets = targets
	s.current = 0
	b.log.Info("scout assigned", "unit", unit.ID, "type", unit.Type, "targets", len(targets))
	return true
}

func (b *Bot) endScouting(w *World) {
	s := &b.scout
	if b.ledger.IsReserved(s.ID) {
		b.ledger.Release(s.ID)
	}
	s.ID = 0
	s.targets = nil
	s.current = 0
	s.last = w.Now
	b.scheduleScout(w)
}

// scheduleScout sets the next time a scout may go out. The wait grows with
// match time.
func (b *Bot) scheduleScout(w *World) {
	cfg := b.cfg.Scout
	wait := cfg.Cooldown * (1 + w.Now/cfg.ThrottleInterval)
	b.scout.nextAt = b.scout.last + wait + b.rng.Intn(cfg.Jitter+1)
}

// refreshDangers expires old records and adds a persistent danger for every
// visible manned enemy bunker.
func (b *Bot) refreshDangers(w *World) {
	s := &b.scout
	s.dangers = slices.DeleteFunc(s.dangers, func(d Danger) bool { return !d.active(w, b.intel) })
	for _, e := range w.Enemies {
		if e.Type != model.EntityBunker || len(e.Garrison) == 0 {
			continue
		}
		known := slices.ContainsFunc(s.dangers, func(d Danger) bool {
			return d.Kind == DangerBunker && d.Bunker == e.ID
		})
		if !known {
			s.dangers = append(s.dangers, Danger{Kind: DangerBunker, Cell: e.Center(), Bunker: e.ID})
		}
	}
}

// flee records where the scout was hit, writes off the enemy base it was
// probably heading for, and runs for home.
func (b *Bot) flee(w *World, unit *model.Entity) model.Command {
	s := &b.scout
	radius := b.cfg.Scout.DangerRadius

	at := unit.Cell
	var attackers []*model.Entity
	for _, e := range w.EnemiesNear(unit.Cell, radius*2) {
		if e.Type.IsCombat() || e.Type == model.EntityBunker {
			attackers = append(attackers, e)
		}
	}
	if a, ok := Nearest(attackers, unit.Cell); ok {
		at = a.Center()
	}
	covered := slices.ContainsFunc(s.dangers, func(d Danger) bool { return d.Cell.Within(at, radius) })
	if !covered {
		s.dangers = append(s.dangers, Danger{Kind: DangerSighting, Cell: at, Expires: w.Now + b.cfg.Scout.DangerLifetime})
		b.log.Info("scout ambushed", "unit", unit.ID, "at", at)
	}
	b.assumeNearestBase(w, unit.Cell)
	s.current = 0
	home := w.Home(unit.Cell)
	if unit.Cell == home || (unit.Mode == model.ModeMoving && unit.Target == model.CellTarget(home)) {
		return model.Command{}
	}
	return model.Move([]model.EntityID{unit.ID}, home)
}

// assumeNearestBase marks the nearest unseen enemy hall and the gold mine
// beside it as scouted.
func (b *Bot) assumeNearestBase(w *World, from model.Cell) {
	s := &b.scout
	var halls []*model.Entity
	for _, id := range s.targets {
		if e, ok := w.Entity(id); ok && e.Type == model.EntityHall {
			halls = append(halls, e)
		}
	}
	hall, ok := Nearest(halls, from)
	if !ok {
		return
	}
	s.assumed[hall.ID] = true
	r := b.cfg.Production.HallMineRadius
	for _, id := range s.targets {
		if e, ok := w.Entity(id); ok && e.Type == model.EntityGoldMine && e.Center().Within(hall.Center(), r) {
			s.assumed[e.ID] = true
			break
		}
	}
	s.targets = slices.DeleteFunc(s.targets, func(id model.EntityID) bool { return s.assumed[id] })
}

// crossesDanger reports whether path passes through a danger on the same
// height level as the path cell. A danger the path starts inside is ignored
// so the scout can walk out of it.
func (b *Bot) crossesDanger(w *World, path []model.Cell) bool {
	if len(path) == 0 {
		return false
	}
	r := b.cfg.Scout.DangerRadius
	for _, d := range b.scout.dangers {
		if d.Cell.Within(path[0], r) {
			continue
		}
		for _, c := range path {
			if d.Cell.Within(c, r) && w.SameElevation(c, d.Cell) {
				return true
			}
		}
	}
	return false
}

// explore heads for the nearest target whose route avoids known danger.
// Targets behind danger, or that the scout can get no closer to, are dropped.
func (b *Bot) explore(w *World, unit *model.Entity) model.Command {
	s := &b.scout
	var hazards []model.Cell
	for _, e := range w.Enemies {
		if e.Type == model.EntityLandmine {
			hazards = append(hazards, e.Cell)
		}
	}
	opts := pathfind.Options{Budget: b.cfg.Search.PathBudget, Hazards: hazards}

	if cur, ok := w.Entity(s.current); ok && !unit.Idle() && slices.Contains(s.targets, s.current) {
		path := pathfind.FindPath(w, unit.Cell, cur.Footprint().Nearest(unit.Cell), opts)
		if !b.crossesDanger(w, path) {
			return model.Command{}
		}
		s.targets = slices.DeleteFunc(s.targets, func(id model.EntityID) bool { return id == cur.ID })
		s.current = 0
		b.log.Debug("scout target abandoned", "target", cur.ID, "type", cur.Type)
		return model.Stop([]model.EntityID{unit.ID})
	}

	for len(s.targets) > 0 {
		var ts []*model.Entity
		for _, id := range s.targets {
			if e, ok := w.Entity(id); ok {
				ts = append(ts, e)
			}
		}
		target, ok := Nearest(ts, unit.Cell)
		if !ok {
			return model.Command{}
		}
		dest := target.Footprint().Nearest(unit.Cell)
		path := pathfind.FindPath(w, unit.Cell, dest, opts)
		if b.crossesDanger(w, path) {
			s.targets = slices.DeleteFunc(s.targets, func(id model.EntityID) bool { return id == target.ID })
			b.log.Debug("scout target abandoned", "target", target.ID, "type", target.Type)
			continue
		}
		// A best-effort path that ends where we stand makes no progress.
		if !pathfind.Reached(path, dest) && path[len(path)-1] == unit.Cell {
			s.targets = slices.DeleteFunc(s.targets, func(id model.EntityID) bool { return id == target.ID })
			b.log.Debug("scout target out of reach", "target", target.ID, "type", target.Type)
			continue
		}
		s.current = target.ID
		return model.Move([]model.EntityID{unit.ID}, path[len(path)-1])
	}
	return model.Command{}
}
