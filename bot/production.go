package bot

import (
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

// stock is the unreserved entity count per type, split into what exists
// and what is on its way (queued, under construction or with a builder
// walking to the site).
type stock struct {
	have    [model.NumEntityTypes]int
	pending [model.NumEntityTypes]int
}

func (s *stock) total(t model.EntityType) int { return s.have[t] + s.pending[t] }

func (b *Bot) takeStock(w *World) stock {
	var s stock
	for _, e := range w.Own {
		if b.ledger.IsReserved(e.ID) {
			continue
		}
		if e.Type.IsBuilding() && !e.Complete() {
			s.pending[e.Type]++
		} else {
			s.have[e.Type]++
		}
		for _, q := range e.Queue {
			if q.Kind == model.QueueUnit {
				s.pending[q.Unit]++
			}
		}
		if e.Type == model.EntityMiner && e.BuildType != model.EntityNone {
			s.pending[e.BuildType]++
		}
	}
	return s
}

// queuedPopulation is the population of every unit in our production queues.
func queuedPopulation(w *World) int {
	n := 0
	for _, e := range w.Own {
		for _, q := range e.Queue {
			if q.Kind == model.QueueUnit {
				n += q.Unit.Data().Population
			}
		}
	}
	return n
}

func (b *Bot) gold(w *World) int {
	if w.Self == nil {
		return 0
	}
	return w.Self.Gold
}

// produce returns the single production order for this tick.
func (b *Bot) produce(w *World) model.Command {
	if cmd := b.saturate(w); !cmd.Empty() {
		return cmd
	}
	if cmd := b.supplyHouses(w); !cmd.Empty() {
		return cmd
	}
	if b.goal == nil {
		return model.Command{}
	}
	g := b.goal
	st := b.takeStock(w)

	if cmd := b.research(w, g.Upgrade, st); !cmd.Empty() {
		return cmd
	}
	for t := model.FirstUnit; t < model.NumEntityTypes; t++ {
		if g.Deficit(t, st.total(t)) == 0 {
			continue
		}
		if p, ok := b.missingPrerequisite(t, st); ok {
			if cmd := b.construct(w, p, st); !cmd.Empty() {
				return cmd
			}
		}
	}
	if cmd := b.train(w, g, st); !cmd.Empty() {
		return cmd
	}
	if b.underAttack() {
		return model.Command{}
	}
	for t := model.FirstBuilding; t < model.EntityGoldMine; t++ {
		if g.Deficit(t, st.total(t)) == 0 {
			continue
		}
		if cmd := b.construct(w, t, st); !cmd.Empty() {
			return cmd
		}
	}
	return model.Command{}
}

// mineFor returns the gold mine a complete hall harvests from.
func (b *Bot) mineFor(w *World, hall *model.Entity) (*model.Entity, bool) {
	r := b.cfg.Production.HallMineRadius
	var near []*model.Entity
	for _, m := range w.GoldMines {
		if m.Center().Within(hall.Center(), r) {
			near = append(near, m)
		}
	}
	return Nearest(near, hall.Center())
}

func (b *Bot) freeMiner(e *model.Entity) bool {
	return e.Type == model.EntityMiner && !e.Garrisoned() && !b.ledger.IsReserved(e.ID) && e.BuildType == model.EntityNone
}

// saturate keeps every hall's gold mine worked by MinersPerMine miners:
// it stops miners whose hall is gone, sends idle ones to undermanned mines,
// trains more when none are idle and dequeues training once full.
func (b *Bot) saturate(w *World) model.Command {
	served := make(map[model.EntityID]bool)
	var orphans []model.EntityID
	for _, hall := range w.Halls {
		if !hall.Complete() {
			continue
		}
		if mine, ok := b.mineFor(w, hall); ok {
			served[mine.ID] = true
		}
	}
	working := make(map[model.EntityID]int)
	var idle []*model.Entity
	for _, e := range w.Own {
		if !b.freeMiner(e) {
			continue
		}
		switch {
		case e.Mode == model.ModeGathering && e.Target.Kind == model.TargetEntity:
			if served[e.Target.Entity] {
				working[e.Target.Entity]++
			} else {
				orphans = append(orphans, e.ID)
			}
		case e.Mode == model.ModeMoving && e.Target.Kind == model.TargetEntity && served[e.Target.Entity]:
			// Sent to the mine but not there yet.
			working[e.Target.Entity]++
		case e.Idle():
			idle = append(idle, e)
		}
	}
	if len(orphans) > 0 {
		b.log.Debug("stopping orphaned miners", "count", len(orphans))
		return model.Stop(orphans)
	}

	want := b.cfg.Production.MinersPerMine
	for _, hall := range w.Halls {
		if !hall.Complete() {
			continue
		}
		mine, ok := b.mineFor(w, hall)
		if !ok {
			continue
		}
		queued := -1
		for i, q := range hall.Queue {
			if q.Kind == model.QueueUnit && q.Unit == model.EntityMiner {
				queued = i
			}
		}
		have := working[mine.ID]
		if have >= want {
			if queued >= 0 && !b.goalWants(model.EntityMiner) {
				return model.Dequeue(hall.ID, queued)
			}
			continue
		}
		if len(idle) > 0 {
			n := min(want-have, len(idle))
			var send []*model.Entity
			for n > 0 {
				m, _ := Nearest(idle, mine.Center())
				send = append(send, m)
				idle = removeEntity(idle, m)
				n--
			}
			return model.MoveToEntity(ids(send), mine.ID)
		}
		if queued < 0 && !hall.Producing() {
			if cmd := b.enqueueUnit(w, hall, model.EntityMiner); !cmd.Empty() {
				return cmd
			}
		}
	}
	return model.Command{}
}

func (b *Bot) goalWants(t model.EntityType) bool {
	return b.goal != nil && b.goal.Wants(t)
}

func removeEntity(es []*model.Entity, e *model.Entity) []*model.Entity {
	out := es[:0]
	for _, o := range es {
		if o != e {
			out = append(out, o)
		}
	}
	return out
}

// supplyHouses builds a house once projected capacity runs within the
// margin of projected population.
func (b *Bot) supplyHouses(w *World) model.Command {
	if w.PopulationCap >= model.MaxPopulation {
		return model.Command{}
	}
	capacity := w.PopulationCap
	for _, e := range w.Own {
		if e.Type.IsBuilding() && !e.Complete() {
			capacity += e.Type.Data().PopulationProvided
		}
		if e.Type == model.EntityMiner && e.BuildType != model.EntityNone {
			capacity += e.BuildType.Data().PopulationProvided
		}
	}
	population := w.Population + queuedPopulation(w)
	if capacity-population > b.cfg.Production.PopulationMargin || capacity >= model.MaxPopulation {
		return model.Command{}
	}
	return b.construct(w, model.EntityHouse, b.takeStock(w))
}

// research starts the goal's upgrade at an idle research building, or
// builds that building first.
func (b *Bot) research(w *World, u model.UpgradeType, st stock) model.Command {
	if u == model.UpgradeNone || w.Self == nil || w.Self.UpgradeStarted(u) {
		return model.Command{}
	}
	at := u.Data().ResearchedAt
	for _, e := range w.OwnOfType(at) {
		if !e.Complete() || e.Producing() {
			continue
		}
		if b.gold(w) < u.Data().Gold {
			return model.Command{}
		}
		b.log.Debug("research", "upgrade", u, "at", e.ID)
		return model.Enqueue(e.ID, model.UpgradeItem(u))
	}
	if st.total(at) > 0 {
		return model.Command{}
	}
	if p, ok := b.missingPrerequisite(at, st); ok {
		return b.construct(w, p, st)
	}
	return b.construct(w, at, st)
}

// requirement is the building that must stand before t can be made: the
// producer for units, the prerequisite for buildings.
func requirement(t model.EntityType) model.EntityType {
	d := t.Data()
	if t.IsUnit() {
		return d.ProducedAt
	}
	return d.Prerequisite
}

// missingPrerequisite walks t's requirement chain and returns the deepest
// building we lack, so chains are built from the bottom up.
func (b *Bot) missingPrerequisite(t model.EntityType, st stock) (model.EntityType, bool) {
	req := requirement(t)
	if req == model.EntityNone || req == model.EntityMiner || st.total(req) > 0 {
		return model.EntityNone, false
	}
	if deeper, ok := b.missingPrerequisite(req, st); ok {
		return deeper, true
	}
	return req, true
}

// train enqueues the first deficient unit type, in catalog order, at an
// idle producer.
func (b *Bot) train(w *World, g *rules.Goal, st stock) model.Command {
	for t := model.FirstUnit; t < model.EntityLandmine; t++ {
		if g.Deficit(t, st.total(t)) == 0 {
			continue
		}
		for _, p := range w.OwnOfType(t.Data().ProducedAt) {
			if !p.Complete() || p.Producing() {
				continue
			}
			if cmd := b.enqueueUnit(w, p, t); !cmd.Empty() {
				return cmd
			}
			break
		}
	}
	return model.Command{}
}

func (b *Bot) enqueueUnit(w *World, producer *model.Entity, t model.EntityType) model.Command {
	d := t.Data()
	if b.gold(w) < d.Gold {
		return model.Command{}
	}
	if w.Population+queuedPopulation(w)+d.Population > w.PopulationCap {
		return model.Command{}
	}
	b.log.Debug("train", "unit", t, "at", producer.ID)
	return model.Enqueue(producer.ID, model.UnitItem(t))
}

// construct orders the nearest free miner to build t at a placement site.
func (b *Bot) construct(w *World, t model.EntityType, st stock) model.Command {
	d := t.Data()
	if b.gold(w) < d.Gold {
		return model.Command{}
	}
	if req := d.Prerequisite; req != model.EntityNone && st.have[req] == 0 {
		return model.Command{}
	}
	site, ok := b.placeBuilding(w, t)
	if !ok {
		return model.Command{}
	}
	var builders []*model.Entity
	for _, e := range w.Own {
		if b.freeMiner(e) && (e.Idle() || e.Mode == model.ModeGathering) {
			builders = append(builders, e)
		}
	}
	builder, ok := Nearest(builders, site)
	if !ok {
		return model.Command{}
	}
	b.log.Debug("build", "building", t, "site", site, "builder", builder.ID)
	return model.Build(builder.ID, t, buildSite(t, site))
}

// maintain fixes rally points that no longer lead anywhere and sends a miner
// to repair a damaged building.
func (b *Bot) maintain(w *World) model.Command {
	for _, e := range w.Own {
		if !e.Type.IsProducer() || !e.Complete() || e.RallyPoint == nil || w.ValidRally(*e.RallyPoint) {
			continue
		}
		if c, ok := rallyCell(w, e); ok {
			return model.SetRally(e.ID, c)
		}
	}

	repairing := make(map[model.EntityID]bool)
	var free []*model.Entity
	for _, e := range w.Own {
		if e.Type != model.EntityMiner {
			continue
		}
		if e.Mode == model.ModeRepairing && e.Target.Kind == model.TargetEntity {
			repairing[e.Target.Entity] = true
		}
		if b.freeMiner(e) && (e.Idle() || e.Mode == model.ModeGathering) {
			free = append(free, e)
		}
	}
	threshold := b.cfg.Production.RepairThreshold
	for _, e := range w.Own {
		if !e.Type.IsBuilding() || !e.Complete() || repairing[e.ID] || e.MaxHealth == 0 {
			continue
		}
		if e.Health*100 >= e.MaxHealth*threshold {
			continue
		}
		if m, ok := Nearest(free, e.Center()); ok {
			return model.Repair([]model.EntityID{m.ID}, e.ID)
		}
	}
	return model.Command{}
}
