package bot

import (
	"testing"

	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

const (
	us   model.PlayerID = 0
	them model.PlayerID = 1
)

// fixture builds snapshots by hand. Player 0 sees the whole map unless
// cells are hidden.
type fixture struct {
	snap *model.Snapshot
	next model.EntityID
}

func newFixture(width, height int) *fixture {
	n := width * height
	explored := make([]bool, n)
	visible := make([]bool, n)
	for i := range visible {
		explored[i] = true
		visible[i] = true
	}
	return &fixture{
		snap: &model.Snapshot{
			Map: model.Map{Width: width, Height: height, Tiles: make([]model.Tile, n)},
			Players: []model.Player{
				{ID: us, Team: 0, Name: "us", Gold: 1000},
				{ID: them, Team: 1, Name: "them", Gold: 1000},
			},
			Vision: []model.Vision{{Player: us, Explored: explored, Visible: visible}},
		},
		next: 1,
	}
}

// add places an idle, full-health entity and returns its id.
func (f *fixture) add(t model.EntityType, owner model.PlayerID, x, y int, opts ...func(*model.Entity)) model.EntityID {
	e := model.Entity{
		ID:        f.next,
		Type:      t,
		Owner:     owner,
		Cell:      model.Cell{X: x, Y: y},
		Health:    100,
		MaxHealth: 100,
		Mode:      model.ModeIdle,
	}
	if t == model.EntityGoldMine {
		e.Owner = model.NeutralPlayer
		e.Gold = 5000
	}
	for _, o := range opts {
		o(&e)
	}
	f.next++
	f.snap.Entities = append(f.snap.Entities, e)
	return e.ID
}

func (f *fixture) entity(id model.EntityID) *model.Entity {
	for i := range f.snap.Entities {
		if f.snap.Entities[i].ID == id {
			return &f.snap.Entities[i]
		}
	}
	return nil
}

func (f *fixture) remove(id model.EntityID) {
	for i := range f.snap.Entities {
		if f.snap.Entities[i].ID == id {
			f.snap.Entities = append(f.snap.Entities[:i], f.snap.Entities[i+1:]...)
			return
		}
	}
}

// hide removes player 0's sight of the rectangle [x0,x1] x [y0,y1].
func (f *fixture) hide(x0, y0, x1, y1 int) {
	v := &f.snap.Vision[0]
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			v.Visible[y*f.snap.Map.Width+x] = false
		}
	}
}

func (f *fixture) wall(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		f.snap.Map.Tiles[y*f.snap.Map.Width+x] = model.Tile{Kind: model.Blocked}
	}
}

func (f *fixture) setGold(gold int) { f.snap.Players[0].Gold = gold }

func (f *fixture) world(now int) *World { return newWorld(f.snap, us, now) }

func mode(m model.EntityMode) func(*model.Entity) {
	return func(e *model.Entity) { e.Mode = m }
}

func gathering(mine model.EntityID) func(*model.Entity) {
	return func(e *model.Entity) {
		e.Mode = model.ModeGathering
		e.Target = model.EntityTarget(mine)
	}
}

func walkingTo(id model.EntityID) func(*model.Entity) {
	return func(e *model.Entity) {
		e.Mode = model.ModeMoving
		e.Target = model.EntityTarget(id)
	}
}

func garrison(ids ...model.EntityID) func(*model.Entity) {
	return func(e *model.Entity) { e.Garrison = ids }
}

func inside(container model.EntityID) func(*model.Entity) {
	return func(e *model.Entity) {
		e.GarrisonedIn = container
		e.Mode = model.ModeGarrisoned
	}
}

func energy(n int) func(*model.Entity) {
	return func(e *model.Entity) { e.Energy = n }
}

func queue(items ...model.QueueItem) func(*model.Entity) {
	return func(e *model.Entity) { e.Queue = items }
}

func testBot(t *testing.T) *Bot {
	t.Helper()
	return NewWithDoctrine(1, us, config.Default(), rules.DefaultDoctrine())
}

func entitiesByID(w *World, list ...model.EntityID) []*model.Entity {
	out := make([]*model.Entity, 0, len(list))
	for _, id := range list {
		e, ok := w.Entity(id)
		if !ok {
			panic("fixture: unknown entity")
		}
		out = append(out, e)
	}
	return out
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// checkExclusive asserts that every reserved id has exactly one holder and
// the ledger agrees with squad rosters and the scout.
func checkExclusive(t *testing.T, b *Bot) {
	t.Helper()
	seen := make(map[model.EntityID]Holder)
	for _, sq := range b.squads {
		for _, id := range sq.Members {
			if prev, dup := seen[id]; dup {
				t.Fatalf("entity %d in %s and squad-%d", id, prev, sq.ID)
			}
			seen[id] = Holder(sq.ID)
			if h, ok := b.ledger.Owner(id); !ok || h != Holder(sq.ID) {
				t.Fatalf("entity %d in squad-%d but ledger says %v (reserved=%v)", id, sq.ID, h, ok)
			}
		}
	}
	if id := b.scout.ID; id != 0 {
		if prev, dup := seen[id]; dup {
			t.Fatalf("scout %d also in %s", id, prev)
		}
		seen[id] = ScoutHolder
		if h, ok := b.ledger.Owner(id); !ok || h != ScoutHolder {
			t.Fatalf("scout %d not reserved by scout: %v", id, h)
		}
	}
	if b.ledger.Len() != len(seen) {
		t.Fatalf("ledger holds %d ids, rosters hold %d", b.ledger.Len(), len(seen))
	}
}
