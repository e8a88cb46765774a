package bot

import "github.com/nstehr/deadeye/model"

// knownBuilding is an enemy structure we have seen at least once.
type knownBuilding struct {
	ID        model.EntityID
	Type      model.EntityType
	Owner     model.PlayerID
	Cell      model.Cell
	Center    model.Cell
	Occupants int
	LastSeen  int
}

// armySighting is the last time an enemy unit was observed.
type armySighting struct {
	Type model.EntityType
	Cell model.Cell
	Seen int
}

// intel remembers what fog of war hides: enemy structures, bunker occupancy
// and recently seen enemy units.
type intel struct {
	buildings []knownBuilding
	index     map[model.EntityID]int
	army      map[model.EntityID]armySighting
	observed  map[model.EntityID]bool

	stealthSeen   bool
	detectionSeen bool
}

func newIntel() *intel {
	return &intel{
		index:    make(map[model.EntityID]int),
		army:     make(map[model.EntityID]armySighting),
		observed: make(map[model.EntityID]bool),
	}
}

// update folds this tick's observations into memory. Records of entities
// that should be visible but are gone are dropped.
func (in *intel) update(w *World, armyLifetime int) {
	for _, e := range w.Enemies {
		in.observed[e.ID] = true
		switch {
		case e.Type.IsBuilding():
			kb := knownBuilding{
				ID:        e.ID,
				Type:      e.Type,
				Owner:     e.Owner,
				Cell:      e.Cell,
				Center:    e.Center(),
				Occupants: len(e.Garrison),
				LastSeen:  w.Now,
			}
			if i, ok := in.index[e.ID]; ok {
				in.buildings[i] = kb
			} else {
				in.index[e.ID] = len(in.buildings)
				in.buildings = append(in.buildings, kb)
			}
			if e.Type == model.EntitySheriff {
				in.detectionSeen = true
			}
		case e.Type.IsUnit():
			in.army[e.ID] = armySighting{Type: e.Type, Cell: e.Cell, Seen: w.Now}
			d := e.Type.Data()
			if d.Detector {
				in.detectionSeen = true
			}
			if d.Stealth {
				in.stealthSeen = true
			}
		case e.Type == model.EntityLandmine:
			in.stealthSeen = true
		}
	}
	for _, m := range w.GoldMines {
		if w.Visible(m) {
			in.observed[m.ID] = true
		}
	}

	kept := in.buildings[:0]
	for _, kb := range in.buildings {
		e, alive := w.Entity(kb.ID)
		gone := !alive && w.Snap.CellVisible(w.Player, kb.Center)
		if gone || (alive && e.Owner != kb.Owner) || in.ownerDefeated(w, kb.Owner) {
			continue
		}
		kept = append(kept, kb)
	}
	in.buildings = kept
	clear(in.index)
	for i, kb := range in.buildings {
		in.index[kb.ID] = i
	}

	for id, s := range in.army {
		_, alive := w.Entity(id)
		expired := w.Now-s.Seen > armyLifetime
		if expired || (!alive && w.Snap.CellVisible(w.Player, s.Cell)) {
			delete(in.army, id)
		}
	}
}

func (in *intel) ownerDefeated(w *World, owner model.PlayerID) bool {
	p, ok := w.Snap.Player(owner)
	return !ok || p.Defeated
}

// Observed reports whether we have ever seen the entity.
func (in *intel) Observed(id model.EntityID) bool { return in.observed[id] }

// Building returns the remembered record for an enemy structure.
func (in *intel) Building(id model.EntityID) (knownBuilding, bool) {
	i, ok := in.index[id]
	if !ok {
		return knownBuilding{}, false
	}
	return in.buildings[i], true
}

// Bases returns remembered enemy halls in discovery order.
func (in *intel) Bases() []knownBuilding {
	var out []knownBuilding
	for _, kb := range in.buildings {
		if kb.Type == model.EntityHall {
			out = append(out, kb)
		}
	}
	return out
}

// MaxBasesPerPlayer returns the largest remembered hall count of any enemy.
func (in *intel) MaxBasesPerPlayer() int {
	counts := make(map[model.PlayerID]int)
	best := 0
	for _, kb := range in.buildings {
		if kb.Type != model.EntityHall {
			continue
		}
		counts[kb.Owner]++
		best = max(best, counts[kb.Owner])
	}
	return best
}

// MilitaryBuildings counts remembered enemy military structures.
func (in *intel) MilitaryBuildings() int {
	n := 0
	for _, kb := range in.buildings {
		if kb.Type.IsMilitaryBuilding() {
			n++
		}
	}
	return n
}

// ArmyNear sums remembered enemy units within r of c using score.
func (in *intel) ArmyNear(c model.Cell, r int, score func(model.EntityType) int) int {
	total := 0
	for _, s := range in.army {
		if s.Cell.Within(c, r) {
			total += score(s.Type)
		}
	}
	return total
}

// ArmyScore sums every remembered enemy unit, workers excluded.
func (in *intel) ArmyScore(score func(model.EntityType) int) int {
	total := 0
	for _, s := range in.army {
		if s.Type != model.EntityMiner {
			total += score(s.Type)
		}
	}
	return total
}

// BaseDefense estimates how strongly a remembered enemy base is held.
func (in *intel) BaseDefense(base knownBuilding, r int, score func(model.EntityType) int, occupant int) int {
	total := in.ArmyNear(base.Center, r, func(t model.EntityType) int {
		if t == model.EntityMiner {
			return 0
		}
		return score(t)
	})
	for _, kb := range in.buildings {
		if kb.Type == model.EntityBunker && kb.Owner == base.Owner && kb.Center.Within(base.Center, r) {
			total += kb.Occupants * occupant
		}
	}
	return total
}
