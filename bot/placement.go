package bot

import (
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/pathfind"
)

// CanPlace reports whether a building of type t fits with its top-left
// corner at origin. The footprint must be buildable ground and a one-cell
// margin around it must be free of other structures so lanes stay open.
func (w *World) CanPlace(t model.EntityType, origin model.Cell) bool {
	size := max(t.Data().Size, 1)
	fp := model.Rect{Origin: origin, Size: size}
	for y := origin.Y - 1; y <= origin.Y+size; y++ {
		for x := origin.X - 1; x <= origin.X+size; x++ {
			c := model.Cell{X: x, Y: y}
			if fp.Contains(c) && !w.Snap.Map.Buildable(c) {
				return false
			}
			if _, taken := w.occupied[c]; taken {
				return false
			}
		}
	}
	return true
}

// ValidRally reports whether units can gather on c.
func (w *World) ValidRally(c model.Cell) bool {
	return w.InBounds(c) && w.Passable(c)
}

func originFor(t model.EntityType, center model.Cell) model.Cell {
	half := max(t.Data().Size, 1) / 2
	return model.Cell{X: center.X - half, Y: center.Y - half}
}

func centerOf(t model.EntityType, origin model.Cell) model.Cell {
	return model.Rect{Origin: origin, Size: max(t.Data().Size, 1)}.Center()
}

// unclaimedMines returns known gold mines with no hall, ours or a remembered
// enemy one, within the claim radius.
func (b *Bot) unclaimedMines(w *World) []*model.Entity {
	r := b.cfg.Production.HallMineRadius
	var out []*model.Entity
	for _, m := range w.GoldMines {
		claimed := false
		for _, h := range w.Halls {
			if h.Center().Within(m.Center(), r) {
				claimed = true
				break
			}
		}
		for _, kb := range b.intel.Bases() {
			if claimed {
				break
			}
			if kb.Center.Within(m.Center(), r) {
				claimed = true
			}
		}
		if !claimed {
			out = append(out, m)
		}
	}
	return out
}

// placeBuilding finds a site for a new structure of type t.
func (b *Bot) placeBuilding(w *World, t model.EntityType) (model.Cell, bool) {
	if t == model.EntityHall {
		return b.placeHall(w)
	}
	main, ok := w.MainBase()
	if !ok {
		return model.Cell{}, false
	}
	radius := b.cfg.Search.PlacementRadius

	anchor := main.Center()
	if t == model.EntityBunker {
		anchor = b.bunkerAnchor(w, main)
	}
	inner := 0
	if t != model.EntityBunker {
		inner = main.Type.Data().Size/2 + 2
	}
	return pathfind.BestInRings(anchor, inner, radius, true, func(c model.Cell) (int, bool) {
		origin := originFor(t, c)
		if !w.CanPlace(t, origin) || b.nearGoldMine(w, centerOf(t, origin), 3) {
			return 0, false
		}
		return -c.DistSq(anchor), true
	})
}

func (b *Bot) nearGoldMine(w *World, c model.Cell, r int) bool {
	for _, m := range w.GoldMines {
		if m.Footprint().Nearest(c).Within(c, r) {
			return true
		}
	}
	return false
}

// bunkerAnchor is a point a few cells out from the hall toward the nearest
// known enemy base, or toward the map center when none is known.
func (b *Bot) bunkerAnchor(w *World, main *model.Entity) model.Cell {
	from := main.Center()
	toward := model.Cell{X: w.Snap.Map.Width / 2, Y: w.Snap.Map.Height / 2}
	bestD := -1
	for _, kb := range b.intel.Bases() {
		if d := kb.Center.DistSq(from); bestD < 0 || d < bestD {
			toward, bestD = kb.Center, d
		}
	}
	return stepToward(from, toward, 5)
}

// stepToward moves n cells from a along the straight line to b, stopping at b.
func stepToward(a, b model.Cell, n int) model.Cell {
	d := a.Chebyshev(b)
	if d <= n || d == 0 {
		return b
	}
	return model.Cell{
		X: a.X + (b.X-a.X)*n/d,
		Y: a.Y + (b.Y-a.Y)*n/d,
	}
}

// placeHall picks the unclaimed gold mine nearest our main base (or our
// first unit) and finds a hall site within claim range of it.
func (b *Bot) placeHall(w *World) (model.Cell, bool) {
	var from model.Cell
	if main, ok := w.MainBase(); ok {
		from = main.Center()
	} else if len(w.Own) > 0 {
		from = w.Own[0].Cell
	} else {
		return model.Cell{}, false
	}
	mines := b.unclaimedMines(w)
	mine, ok := Nearest(mines, from)
	if !ok {
		return model.Cell{}, false
	}
	size := model.EntityHall.Data().Size
	mc := mine.Center()
	r := b.cfg.Production.HallMineRadius
	return pathfind.BestInRings(mc, size, size+4, false, func(c model.Cell) (int, bool) {
		origin := originFor(model.EntityHall, c)
		center := centerOf(model.EntityHall, origin)
		if !center.Within(mc, r) || !w.CanPlace(model.EntityHall, origin) {
			return 0, false
		}
		return -center.DistSq(mc)*4 - center.DistSq(from)/16, true
	})
}

// buildSite converts the ring cell chosen by placeBuilding into the origin
// sent with the build command.
func buildSite(t model.EntityType, c model.Cell) model.Cell { return originFor(t, c) }

// rallyCell finds a passable cell just outside a producer's footprint.
func rallyCell(w *World, producer *model.Entity) (model.Cell, bool) {
	half := producer.Type.Data().Size / 2
	return pathfind.BestInRings(producer.Center(), half+1, half+4, true, func(c model.Cell) (int, bool) {
		return 0, w.ValidRally(c)
	})
}

// molotovCell finds the impact cell within throw range of the pyro that
// burns the most enemy value without touching friendly units.
func (b *Bot) molotovCell(w *World, pyro *model.Entity) (model.Cell, bool) {
	var friendly []*model.Entity
	for _, e := range w.Own {
		if e.Type.IsUnit() && !e.Garrisoned() && e.Cell.Chebyshev(pyro.Cell) <= model.MolotovRange+model.MolotovRadius {
			friendly = append(friendly, e)
		}
	}
	near := w.EnemiesNear(pyro.Cell, model.MolotovRange+model.MolotovRadius+1)
	sc := b.scorer(w)
	return pathfind.BestInRings(pyro.Cell, 0, model.MolotovRange, false, func(c model.Cell) (int, bool) {
		if !w.InBounds(c) {
			return 0, false
		}
		for _, f := range friendly {
			if f.Cell.Chebyshev(c) <= model.MolotovRadius {
				return 0, false
			}
		}
		value := 0
		for _, e := range near {
			if e.Type.IsUnit() && e.Cell.Chebyshev(c) <= model.MolotovRadius {
				value += sc.Score(e)
			}
		}
		return value, value > 0
	})
}

// mineCell picks a landmine site on the likely approach between a friendly
// base and the enemy: MineDistance steps along the path that leaves the base
// on the side facing toward, nudged so no two mines sit within spacing of
// each other.
func (b *Bot) mineCell(w *World, base *model.Entity, toward model.Cell, planned []model.Cell) (model.Cell, bool) {
	half := base.Type.Data().Size / 2
	exit, ok := pathfind.BestInRings(base.Center(), half+1, half+4, true, func(c model.Cell) (int, bool) {
		return -c.DistSq(toward), w.ValidRally(c)
	})
	if !ok {
		return model.Cell{}, false
	}
	path := pathfind.FindPath(w, exit, toward, pathfind.Options{Budget: b.cfg.Search.PathBudget})
	anchor := path[min(b.cfg.Squad.MineDistance, len(path)-1)]
	spacing := b.cfg.Squad.MineSpacing
	return pathfind.BestInRings(anchor, 0, spacing+1, true, func(c model.Cell) (int, bool) {
		if !w.InBounds(c) || !w.Passable(c) {
			return 0, false
		}
		for _, m := range planned {
			if m.Chebyshev(c) < spacing {
				return 0, false
			}
		}
		return -c.DistSq(anchor), true
	})
}
