package bot

import (
	"slices"

	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/pathfind"
	"github.com/nstehr/deadeye/rules"
)

// SquadState is where a squad is in its advance/engage/retreat cycle.
type SquadState uint8

const (
	SquadAdvancing SquadState = iota
	SquadEngaged
	SquadRetreating
)

func (s SquadState) String() string {
	switch s {
	case SquadAdvancing:
		return "advancing"
	case SquadEngaged:
		return "engaged"
	case SquadRetreating:
		return "retreating"
	}
	return "unknown"
}

// abilityCooldown is how many ticks a member waits between special actions.
const abilityCooldown = 24

// Squad gives units persistent identity across ticks so the bot can keep
// coherent attack groups instead of reselecting units every tick.
type Squad struct {
	ID      int
	Type    rules.SquadType
	Members []model.EntityID
	Target  model.Cell
	State   SquadState
	// Objective is the entity the target was taken from: an enemy base for
	// offensive squads, a bunker for bunker defense, our base for defense.
	Objective model.EntityID

	waypoint  int
	lastUsed  map[model.EntityID]int
	dissolved bool
}

// RetreatMemory records how hard an enemy base pushed back last time.
type RetreatMemory struct {
	EnemyScore  int
	DesiredLead int
}

// maxLead caps escalation so the lead stays finite.
const maxLead = 1 << 12

// Escalate folds a new repulse into the record. Meeting an equal or stronger
// force doubles the lead we want before trying again; a weaker force resets it.
func (m RetreatMemory) Escalate(enemyScore, initialLead int) RetreatMemory {
	lead := initialLead
	if m.DesiredLead > 0 && enemyScore >= m.EnemyScore {
		lead = min(max(m.DesiredLead*2, initialLead), maxLead)
	}
	return RetreatMemory{EnemyScore: enemyScore, DesiredLead: lead}
}

// Allows reports whether a force of the given score has enough lead to go back.
func (m RetreatMemory) Allows(own int) bool {
	return m.DesiredLead == 0 || own >= m.EnemyScore+m.DesiredLead
}

// newSquad reserves members and registers the squad.
func (b *Bot) newSquad(t rules.SquadType, members []*model.Entity, target model.Cell, objective model.EntityID) *Squad {
	b.nextSquadID++
	sq := &Squad{
		ID:        b.nextSquadID,
		Type:      t,
		Target:    target,
		Objective: objective,
		lastUsed:  make(map[model.EntityID]int),
	}
	for _, m := range members {
		b.ledger.Reserve(m.ID, Holder(sq.ID))
		sq.Members = append(sq.Members, m.ID)
	}
	b.squads = append(b.squads, sq)
	b.log.Info("squad formed", "squad", sq.ID, "type", t, "members", len(sq.Members), "target", target)
	return sq
}

// dissolve releases every member. The squad is dropped from the roster at
// the end of the current squad pass.
func (b *Bot) dissolve(sq *Squad, reason string) {
	if sq.dissolved {
		return
	}
	for _, id := range sq.Members {
		b.ledger.Release(id)
	}
	sq.Members = nil
	sq.dissolved = true
	b.log.Info("squad dissolved", "squad", sq.ID, "type", sq.Type, "reason", reason)
}

func (b *Bot) removeMember(sq *Squad, id model.EntityID) {
	i := slices.Index(sq.Members, id)
	if i < 0 {
		return
	}
	b.ledger.Release(id)
	sq.Members = slices.Delete(sq.Members, i, i+1)
	delete(sq.lastUsed, id)
}

func (b *Bot) compactSquads() {
	b.squads = slices.DeleteFunc(b.squads, func(sq *Squad) bool { return sq.dissolved })
	if len(b.squads) == 0 {
		b.squadCursor = 0
	} else {
		b.squadCursor %= len(b.squads)
	}
}

// pruneSquads drops dead members and dissolves squads left empty.
func (b *Bot) pruneSquads(w *World) {
	for _, sq := range b.squads {
		for _, id := range slices.Clone(sq.Members) {
			if _, ok := w.Entity(id); !ok {
				b.removeMember(sq, id)
			}
		}
		if len(sq.Members) == 0 {
			b.dissolve(sq, "no members left")
		}
	}
	b.compactSquads()
}

// runSquads updates squads in round-robin order starting after the last
// squad that issued a command, so one busy squad cannot starve the rest.
func (b *Bot) runSquads(w *World) model.Command {
	var cmd model.Command
	n := len(b.squads)
	for i := 0; i < n && cmd.Empty(); i++ {
		idx := (b.squadCursor + i) % n
		sq := b.squads[idx]
		if sq.dissolved {
			continue
		}
		cmd = b.updateSquad(w, sq)
		if !cmd.Empty() {
			b.squadCursor = idx + 1
		}
	}
	b.compactSquads()
	return cmd
}

func (b *Bot) members(w *World, sq *Squad) []*model.Entity {
	out := make([]*model.Entity, 0, len(sq.Members))
	for _, id := range sq.Members {
		if e, ok := w.Entity(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func outside(es []*model.Entity) []*model.Entity {
	var out []*model.Entity
	for _, e := range es {
		if !e.Garrisoned() {
			out = append(out, e)
		}
	}
	return out
}

// fighter reports whether e takes part in attack-moves; wagons are driven
// separately.
func fighter(e *model.Entity) bool {
	return e.Type.IsUnit() && e.Type != model.EntityWagon
}

func (b *Bot) updateSquad(w *World, sq *Squad) model.Command {
	members := b.members(w, sq)
	if len(members) == 0 {
		b.dissolve(sq, "no members left")
		return model.Command{}
	}
	if sq.State == SquadRetreating {
		b.dissolve(sq, "retreated")
		return model.Command{}
	}
	if sq.Type == rules.SquadBunkerDefense {
		return b.holdBunker(w, sq, members)
	}

	radius := b.cfg.Squad.GatherRadius
	sc := b.scorer(w)
	center := Centroid(outside(members))
	enemies := w.EnemiesNear(center, radius)
	own := sc.ScoreList(sq.Members)
	if enemyScore := sc.ScoreEntities(enemies); sq.Type != rules.SquadDefense && enemyScore > own+b.cfg.Squad.RetreatMargin {
		return b.retreat(w, sq, members, center, enemyScore)
	}
	if len(enemies) > 0 {
		sq.State = SquadEngaged
	} else {
		sq.State = SquadAdvancing
	}

	if sq.Type == rules.SquadLandmines {
		return b.layMines(w, sq, members)
	}

	for _, m := range members {
		if cmd := b.specialist(w, sq, m); !cmd.Empty() {
			return cmd
		}
	}
	if sq.State == SquadEngaged {
		if cmd := b.engage(w, members); !cmd.Empty() {
			return cmd
		}
	}
	if cmd := b.advance(w, sq, members); !cmd.Empty() {
		return cmd
	}
	for _, m := range members {
		if m.Type == model.EntityWagon {
			if cmd := b.transport(w, sq, m, members); !cmd.Empty() {
				return cmd
			}
		}
	}
	return b.review(w, sq, members)
}

func (b *Bot) retreat(w *World, sq *Squad, members []*model.Entity, center model.Cell, enemyScore int) model.Command {
	if sq.Type.Offensive() && sq.Objective != 0 {
		mem := b.retreats[sq.Objective].Escalate(enemyScore, b.cfg.Squad.InitialLead)
		b.retreats[sq.Objective] = mem
		b.log.Info("retreat recorded", "base", sq.Objective, "enemyScore", mem.EnemyScore, "lead", mem.DesiredLead)
	}
	sq.State = SquadRetreating
	home := w.Home(center)
	b.log.Info("squad retreating", "squad", sq.ID, "type", sq.Type, "enemyScore", enemyScore, "home", home)
	return model.Move(ids(outside(members)), home)
}

func (b *Bot) abilityReady(w *World, sq *Squad, id model.EntityID) bool {
	last, used := sq.lastUsed[id]
	return !used || w.Now-last >= abilityCooldown
}

// specialist fires a member's special action when an enemy is near, or
// ejects the member if it cannot pay for the action.
func (b *Bot) specialist(w *World, sq *Squad, m *model.Entity) model.Command {
	if m.Garrisoned() || !b.abilityReady(w, sq, m.ID) {
		return model.Command{}
	}
	near := w.EnemiesNear(m.Cell, b.cfg.Squad.GatherRadius)

	var cmd model.Command
	switch m.Type {
	case model.EntitySapper:
		if len(near) == 0 {
			return cmd
		}
		if m.Energy < model.LayMineEnergy {
			return b.eject(w, sq, m, "out of energy")
		}
		enemy, _ := Nearest(near, m.Cell)
		c := stepToward(m.Cell, enemy.Footprint().Nearest(m.Cell), 2)
		if !w.Passable(c) {
			return cmd
		}
		cmd = model.LayMine(m.ID, c)
	case model.EntityPyro:
		if len(near) == 0 {
			return cmd
		}
		if m.Energy < model.MolotovEnergy {
			return b.eject(w, sq, m, "out of energy")
		}
		c, ok := b.molotovCell(w, m)
		if !ok {
			return cmd
		}
		cmd = model.Molotov(m.ID, c)
	case model.EntityDetective:
		switch {
		case len(near) > 0 && !m.Stealthed:
			cmd = model.Camouflage(m.ID)
		case len(near) == 0 && m.Stealthed:
			cmd = model.Decamouflage(m.ID)
		}
	}
	if !cmd.Empty() {
		sq.lastUsed[m.ID] = w.Now
		b.log.Debug("specialist action", "squad", sq.ID, "unit", m.ID, "command", cmd.String())
	}
	return cmd
}

func (b *Bot) eject(w *World, sq *Squad, m *model.Entity, reason string) model.Command {
	b.removeMember(sq, m.ID)
	b.log.Debug("member ejected", "squad", sq.ID, "unit", m.ID, "type", m.Type, "reason", reason)
	return model.Move([]model.EntityID{m.ID}, w.Home(m.Cell))
}

// pickTarget ranks enemies by attack priority, then distance.
func pickTarget(enemies []*model.Entity, from model.Cell) (*model.Entity, bool) {
	var best *model.Entity
	bestPri, bestD := 0, 0
	for _, e := range enemies {
		pri := e.Type.Data().AttackPriority
		if pri == 0 {
			continue
		}
		d := e.Footprint().Nearest(from).DistSq(from)
		if best == nil || pri > bestPri || (pri == bestPri && d < bestD) {
			best, bestPri, bestD = e, pri, d
		}
	}
	return best, best != nil
}

// engage sends the first idle fighter with an enemy in reach at the best
// target, batching idle squad-mates within gather radius into the order.
func (b *Bot) engage(w *World, members []*model.Entity) model.Command {
	radius := b.cfg.Squad.GatherRadius
	for _, m := range members {
		if !fighter(m) || m.Garrisoned() || !m.Idle() {
			continue
		}
		target, ok := pickTarget(w.EnemiesNear(m.Cell, radius), m.Cell)
		if !ok {
			continue
		}
		batch := []model.EntityID{m.ID}
		for _, o := range members {
			if o != m && fighter(o) && !o.Garrisoned() && o.Idle() && o.Cell.Within(m.Cell, radius) {
				batch = append(batch, o.ID)
			}
		}
		return model.AttackMove(batch, target.Footprint().Nearest(m.Cell))
	}
	return model.Command{}
}

// inbound returns members heading into the wagon.
func inbound(wagon *model.Entity, members []*model.Entity) []*model.Entity {
	var out []*model.Entity
	for _, m := range members {
		if m.Target.Kind == model.TargetEntity && m.Target.Entity == wagon.ID && !m.Garrisoned() && m.Mode == model.ModeMoving {
			out = append(out, m)
		}
	}
	return out
}

// advance moves idle members that are far from the objective: into a wagon
// with room when the squad has one, otherwise by attack-move.
func (b *Bot) advance(w *World, sq *Squad, members []*model.Entity) model.Command {
	radius := b.cfg.Squad.GatherRadius
	var far []*model.Entity
	for _, m := range members {
		if fighter(m) && !m.Garrisoned() && m.Idle() && m.Cell.Chebyshev(sq.Target) > radius {
			far = append(far, m)
		}
	}
	if len(far) == 0 {
		return model.Command{}
	}
	for _, m := range far {
		if !m.Type.Data().Garrisons {
			continue
		}
		for _, wg := range members {
			if wg.Type != model.EntityWagon || wg.Cell.Chebyshev(sq.Target) <= radius {
				continue
			}
			if len(wg.Garrison)+len(inbound(wg, members)) < wg.Type.Data().GarrisonCapacity {
				return model.MoveToEntity([]model.EntityID{m.ID}, wg.ID)
			}
		}
	}
	return model.AttackMove(ids(far), sq.Target)
}

// transport drives a wagon: carry passengers to the objective and unload
// near it or near enemies, fetch inbound passengers, else head home.
func (b *Bot) transport(w *World, sq *Squad, wg *model.Entity, members []*model.Entity) model.Command {
	radius := b.cfg.Squad.GatherRadius
	self := []model.EntityID{wg.ID}
	if len(wg.Garrison) > 0 {
		nearTarget := wg.Cell.Chebyshev(sq.Target) <= radius
		if (nearTarget || len(w.EnemiesNear(wg.Cell, radius)) > 0) && b.abilityReady(w, sq, wg.ID) {
			sq.lastUsed[wg.ID] = w.Now
			return model.Unload(wg.ID, 0)
		}
		if wg.Idle() && !nearTarget {
			return model.Move(self, sq.Target)
		}
		return model.Command{}
	}
	if riders := inbound(wg, members); len(riders) > 0 {
		r, _ := Nearest(riders, wg.Cell)
		if wg.Idle() && r.Cell.Chebyshev(wg.Cell) > 2 {
			return model.Move(self, r.Cell)
		}
		return model.Command{}
	}
	home := w.Home(wg.Cell)
	if wg.Idle() && wg.Cell.Chebyshev(home) > radius {
		return model.Move(self, home)
	}
	return model.Command{}
}

// review handles a squad that has arrived with nothing left to fight:
// offensive squads move on to the next target, defensive ones disband once
// the threat is gone.
func (b *Bot) review(w *World, sq *Squad, members []*model.Entity) model.Command {
	radius := b.cfg.Squad.GatherRadius
	fighters := make([]*model.Entity, 0, len(members))
	for _, m := range members {
		if fighter(m) && !m.Garrisoned() {
			if !m.Idle() || m.Cell.Chebyshev(sq.Target) > radius {
				return model.Command{}
			}
			fighters = append(fighters, m)
		}
	}
	switch sq.Type {
	case rules.SquadDefense, rules.SquadReserves:
		if len(w.EnemiesNear(sq.Target, b.cfg.Strategy.BaseRadius)) == 0 {
			b.dissolve(sq, "threat cleared")
		}
		return model.Command{}
	}
	if len(fighters) == 0 {
		return model.Command{}
	}
	own := b.scorer(w).ScoreList(sq.Members)
	if target, obj, ok := b.offensiveTarget(w, sq.Type, own, sq.Target); ok {
		if !b.setTarget(w, sq, target, obj) {
			return model.Command{}
		}
	} else {
		wps := waypoints(w.Snap.Map.Width, w.Snap.Map.Height)
		if len(wps) == 0 {
			return model.Command{}
		}
		sq.waypoint = (sq.waypoint + 1) % len(wps)
		if !b.setTarget(w, sq, wps[sq.waypoint], 0) {
			return model.Command{}
		}
	}
	return model.AttackMove(ids(fighters), sq.Target)
}

// setTarget points the squad at c, dissolving it if c is provably
// unreachable from where the squad stands.
func (b *Bot) setTarget(w *World, sq *Squad, c model.Cell, objective model.EntityID) bool {
	from := Centroid(outside(b.members(w, sq)))
	opts := pathfind.Options{Budget: b.cfg.Search.PathBudget}
	if w.Passable(from) && pathfind.Unreachable(w, from, c, opts) {
		b.dissolve(sq, "objective unreachable")
		return false
	}
	sq.Target = c
	sq.Objective = objective
	b.log.Debug("squad retargeted", "squad", sq.ID, "target", c, "objective", objective)
	return true
}

// offensiveTarget picks the remembered enemy structure an offensive squad
// should go for. Harass squads prefer the least defended base, pushes the
// nearest. Bases that repelled us are skipped until we have the lead.
func (b *Bot) offensiveTarget(w *World, t rules.SquadType, own int, from model.Cell) (model.Cell, model.EntityID, bool) {
	sc := b.scorer(w)
	radius := b.cfg.Strategy.BaseRadius
	var best knownBuilding
	found := false
	bestKey := 0
	for _, kb := range b.intel.Bases() {
		if mem, ok := b.retreats[kb.ID]; ok && !mem.Allows(own) {
			continue
		}
		key := kb.Center.DistSq(from)
		if t == rules.SquadHarass {
			key = b.intel.BaseDefense(kb, radius, sc.TypeScore, b.cfg.Scoring.GarrisonOccupant)*1_000_000 + key
		}
		if !found || key < bestKey {
			best, bestKey, found = kb, key, true
		}
	}
	if !found && t == rules.SquadPush {
		for _, kb := range b.intel.buildings {
			if key := kb.Center.DistSq(from); !found || key < bestKey {
				best, bestKey, found = kb, key, true
			}
		}
	}
	if !found {
		return model.Cell{}, 0, false
	}
	return best.Center, best.ID, true
}

// waypoints is a 9-point search pattern (center, corners, edges) with 10%
// margins to avoid map-edge pathing issues.
func waypoints(mapW, mapH int) []model.Cell {
	if mapW == 0 || mapH == 0 {
		return nil
	}
	marginX := mapW / 10
	marginY := mapH / 10
	minX, maxX := marginX, mapW-1-marginX
	minY, maxY := marginY, mapH-1-marginY
	midX := mapW / 2
	midY := mapH / 2

	return []model.Cell{
		{X: midX, Y: midY}, // center
		{X: minX, Y: minY}, // top-left
		{X: maxX, Y: minY}, // top-right
		{X: maxX, Y: maxY}, // bottom-right
		{X: minX, Y: maxY}, // bottom-left
		{X: midX, Y: minY}, // top-mid
		{X: maxX, Y: midY}, // right-mid
		{X: midX, Y: maxY}, // bottom-mid
		{X: minX, Y: midY}, // left-mid
	}
}

// holdBunker garrisons the squad into its bunker, binding one first if the
// squad was formed before the bunker stood.
func (b *Bot) holdBunker(w *World, sq *Squad, members []*model.Entity) model.Command {
	bunker, ok := w.Entity(sq.Objective)
	if !ok || bunker.Owner != w.Player {
		if sq.Objective != 0 {
			b.dissolve(sq, "bunker lost")
			return model.Command{}
		}
		bunker, ok = b.freeBunker(w)
		if !ok {
			return model.Command{}
		}
		sq.Objective = bunker.ID
		sq.Target = bunker.Center()
	}
	var idle []*model.Entity
	for _, m := range members {
		if !m.Garrisoned() && m.Idle() {
			idle = append(idle, m)
		}
	}
	if len(idle) == 0 {
		return model.Command{}
	}
	if !bunker.Complete() {
		var far []model.EntityID
		for _, m := range idle {
			if m.Cell.Chebyshev(sq.Target) > 3 {
				far = append(far, m.ID)
			}
		}
		if len(far) > 0 {
			return model.Move(far, sq.Target)
		}
		return model.Command{}
	}
	room := bunker.Type.Data().GarrisonCapacity - len(bunker.Garrison) - len(inbound(bunker, members))
	var enter []model.EntityID
	for _, m := range idle {
		if len(enter) < room && m.Type.Data().Garrisons {
			enter = append(enter, m.ID)
		}
	}
	if len(enter) > 0 {
		return model.MoveToEntity(enter, bunker.ID)
	}
	var stray []model.EntityID
	for _, m := range idle {
		if m.Cell.Chebyshev(sq.Target) > b.cfg.Squad.GatherRadius {
			stray = append(stray, m.ID)
		}
	}
	if len(stray) > 0 {
		return model.AttackMove(stray, sq.Target)
	}
	return model.Command{}
}

// freeBunker returns our bunker nearest the main base that no other bunker
// squad holds.
func (b *Bot) freeBunker(w *World) (*model.Entity, bool) {
	var free []*model.Entity
	for _, e := range w.OwnOfType(model.EntityBunker) {
		taken := false
		for _, sq := range b.squads {
			if sq.Type == rules.SquadBunkerDefense && sq.Objective == e.ID && !sq.dissolved {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, e)
		}
	}
	main, ok := w.MainBase()
	if !ok {
		return Nearest(free, model.Cell{})
	}
	return Nearest(free, main.Center())
}

// layMines sends idle sappers to seed mines on the approaches to our bases.
// Bases are served nearest first until each holds its quota; the squad
// disbands when no base needs more.
func (b *Bot) layMines(w *World, sq *Squad, members []*model.Entity) model.Command {
	var planned []model.Cell
	for _, e := range w.OwnOfType(model.EntityLandmine) {
		planned = append(planned, e.Cell)
	}
	for _, m := range members {
		if m.Type == model.EntitySapper && !m.Idle() && m.Target.Kind == model.TargetCell {
			planned = append(planned, m.Target.Cell)
		}
	}

	for _, m := range members {
		if m.Type != model.EntitySapper || m.Garrisoned() || !m.Idle() || m.Energy < model.LayMineEnergy {
			continue
		}
		base, ok := b.baseNeedingMines(w, m.Cell, planned)
		if !ok {
			b.dissolve(sq, "mines placed")
			return model.Command{}
		}
		toward := model.Cell{X: w.Snap.Map.Width / 2, Y: w.Snap.Map.Height / 2}
		bestD := -1
		for _, kb := range b.intel.Bases() {
			if d := kb.Center.DistSq(base.Center()); bestD < 0 || d < bestD {
				toward, bestD = kb.Center, d
			}
		}
		c, ok := b.mineCell(w, base, toward, planned)
		if !ok {
			b.dissolve(sq, "no mine site")
			return model.Command{}
		}
		sq.Target = c
		return model.LayMine(m.ID, c)
	}
	return model.Command{}
}

// baseNeedingMines returns the base nearest from still under its mine quota.
// Each mine counts toward the base nearest to it.
func (b *Bot) baseNeedingMines(w *World, from model.Cell, planned []model.Cell) (*model.Entity, bool) {
	laid := make(map[model.EntityID]int, len(w.Halls))
	for _, c := range planned {
		if h, ok := w.NearestBase(c); ok {
			laid[h.ID]++
		}
	}
	var open []*model.Entity
	for _, h := range w.Halls {
		if laid[h.ID] < b.cfg.Squad.MinesPerBase {
			open = append(open, h)
		}
	}
	return Nearest(open, from)
}
