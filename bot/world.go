package bot

import "github.com/nstehr/deadeye/model"

// World is one tick's view of the snapshot from a single player's side. It
// indexes entities once so the controllers can run lookups without rescans.
type World struct {
	Snap   *model.Snapshot
	Player model.PlayerID
	Self   *model.Player
	Now    int

	byID     map[model.EntityID]*model.Entity
	occupied map[model.Cell]model.EntityID
	visible  map[model.EntityID]bool

	// Own holds this player's live entities in snapshot order.
	Own []*model.Entity
	// Enemies holds visible hostile live entities in snapshot order.
	Enemies []*model.Entity
	// Halls holds this player's halls, complete or not.
	Halls []*model.Entity
	// GoldMines holds gold mines on explored ground that still hold gold.
	GoldMines []*model.Entity

	Population    int
	PopulationCap int
}

func newWorld(snap *model.Snapshot, player model.PlayerID, now int) *World {
	w := &World{
		Snap:     snap,
		Player:   player,
		Now:      now,
		byID:     make(map[model.EntityID]*model.Entity, len(snap.Entities)),
		occupied: make(map[model.Cell]model.EntityID),
		visible:  make(map[model.EntityID]bool),
	}
	w.Self, _ = snap.Player(player)

	for i := range snap.Entities {
		e := &snap.Entities[i]
		if !e.Alive() && e.Type != model.EntityGoldMine {
			continue
		}
		w.byID[e.ID] = e
		if e.Type.Data().Building {
			fp := e.Footprint()
			for y := fp.Origin.Y; y < fp.Origin.Y+fp.Size; y++ {
				for x := fp.Origin.X; x < fp.Origin.X+fp.Size; x++ {
					w.occupied[model.Cell{X: x, Y: y}] = e.ID
				}
			}
		}
		switch {
		case e.Owner == player:
			w.Own = append(w.Own, e)
			if e.Type == model.EntityHall {
				w.Halls = append(w.Halls, e)
			}
			if e.Type.IsUnit() {
				w.Population += e.Type.Data().Population
			}
			if e.Type.IsBuilding() && e.Complete() {
				w.PopulationCap += e.Type.Data().PopulationProvided
			}
		case e.Type == model.EntityGoldMine:
			if e.Gold > 0 && snap.CellExplored(player, e.Center()) {
				w.GoldMines = append(w.GoldMines, e)
			}
		case w.Hostile(e) && w.Visible(e):
			w.Enemies = append(w.Enemies, e)
		}
	}
	w.PopulationCap = min(w.PopulationCap, model.MaxPopulation)
	return w
}

// Entity resolves a live entity (or any gold mine) by id.
func (w *World) Entity(id model.EntityID) (*model.Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// Hostile reports whether e belongs to a player not allied with us.
func (w *World) Hostile(e *model.Entity) bool {
	return e.Owner != model.NeutralPlayer && !w.Snap.Allied(w.Player, e.Owner)
}

// Visible reports whether we can observe e this tick.
func (w *World) Visible(e *model.Entity) bool {
	if v, ok := w.visible[e.ID]; ok {
		return v
	}
	v := w.Snap.EntityVisible(w.Player, e)
	w.visible[e.ID] = v
	return v
}

// InBounds implements pathfind.Grid.
func (w *World) InBounds(c model.Cell) bool { return w.Snap.Map.InBounds(c) }

// Passable implements pathfind.Grid: walkable terrain not covered by a building.
func (w *World) Passable(c model.Cell) bool {
	if !w.Snap.Map.Walkable(c) {
		return false
	}
	_, blocked := w.occupied[c]
	return !blocked
}

// OccupiedBy returns the building covering c, if any.
func (w *World) OccupiedBy(c model.Cell) (model.EntityID, bool) {
	id, ok := w.occupied[c]
	return id, ok
}

// NearestBase returns our hall closest to c.
func (w *World) NearestBase(c model.Cell) (*model.Entity, bool) {
	var best *model.Entity
	for _, h := range w.Halls {
		if best == nil || h.Center().DistSq(c) < best.Center().DistSq(c) {
			best = h
		}
	}
	return best, best != nil
}

// Home returns the rally cell units retreat to: the nearest base to c, or c
// itself when we have no base left.
func (w *World) Home(c model.Cell) model.Cell {
	if h, ok := w.NearestBase(c); ok {
		return h.Center()
	}
	return c
}

// MainBase returns our first hall.
func (w *World) MainBase() (*model.Entity, bool) {
	if len(w.Halls) == 0 {
		return nil, false
	}
	return w.Halls[0], true
}

// EnemiesNear returns visible hostile entities whose footprint comes within
// r of c. Garrisoned units are skipped; their container stands in for them.
func (w *World) EnemiesNear(c model.Cell, r int) []*model.Entity {
	var out []*model.Entity
	for _, e := range w.Enemies {
		if e.Garrisoned() {
			continue
		}
		if e.Footprint().Nearest(c).Within(c, r) {
			out = append(out, e)
		}
	}
	return out
}

// OwnOfType returns our live entities of type t in snapshot order.
func (w *World) OwnOfType(t model.EntityType) []*model.Entity {
	var out []*model.Entity
	for _, e := range w.Own {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// SameElevation reports whether two cells sit on the same height level.
func (w *World) SameElevation(a, b model.Cell) bool {
	return w.Snap.Map.Elevation(a) == w.Snap.Map.Elevation(b)
}

// Centroid returns the mean cell of the given entities.
func Centroid(es []*model.Entity) model.Cell {
	if len(es) == 0 {
		return model.Cell{}
	}
	var sx, sy int
	for _, e := range es {
		sx += e.Cell.X
		sy += e.Cell.Y
	}
	return model.Cell{X: sx / len(es), Y: sy / len(es)}
}

// Nearest returns the entity in es closest to c; ties keep the earliest.
func Nearest(es []*model.Entity, c model.Cell) (*model.Entity, bool) {
	var best *model.Entity
	bestD := 0
	for _, e := range es {
		d := e.Footprint().Nearest(c).DistSq(c)
		if best == nil || d < bestD {
			best, bestD = e, d
		}
	}
	return best, best != nil
}

func ids(es []*model.Entity) []model.EntityID {
	out := make([]model.EntityID, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
