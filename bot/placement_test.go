package bot

import (
	"testing"

	"github.com/nstehr/deadeye/model"
)

func TestCanPlace(t *testing.T) {
	f := newFixture(32, 32)
	f.add(model.EntityHall, us, 10, 10)
	f.wall(3, 20, 21)
	w := f.world(0)

	tests := []struct {
		name   string
		origin model.Cell
		want   bool
	}{
		{"open ground", model.Cell{X: 2, Y: 2}, true},
		{"margin touches hall", model.Cell{X: 8, Y: 10}, false},
		{"one cell gap", model.Cell{X: 7, Y: 10}, true},
		{"on rock", model.Cell{X: 3, Y: 20}, false},
		{"rock in margin only", model.Cell{X: 4, Y: 20}, true},
		{"off the map", model.Cell{X: 31, Y: 31}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.CanPlace(model.EntityHouse, tt.origin); got != tt.want {
				t.Errorf("CanPlace(house, %v) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestPlaceBuilding(t *testing.T) {
	f := newFixture(40, 40)
	f.add(model.EntityHall, us, 10, 10)
	f.add(model.EntityGoldMine, model.NeutralPlayer, 30, 30)
	b := testBot(t)
	w := f.world(0)

	c, ok := b.placeBuilding(w, model.EntityHouse)
	if !ok {
		t.Fatal("no site for a house")
	}
	anchor := model.Cell{X: 12, Y: 12}
	if d := c.Chebyshev(anchor); d != 4 {
		t.Errorf("house site %v is %d from the hall center, want the first free ring (4)", c, d)
	}
	if !w.CanPlace(model.EntityHouse, buildSite(model.EntityHouse, c)) {
		t.Errorf("house site %v cannot be placed", c)
	}

	c, ok = b.placeBuilding(w, model.EntityHall)
	if !ok {
		t.Fatal("no site for a hall")
	}
	origin := buildSite(model.EntityHall, c)
	if !centerOf(model.EntityHall, origin).Within(model.Cell{X: 31, Y: 31}, b.cfg.Production.HallMineRadius) {
		t.Errorf("hall at %v is out of claim range of the mine", origin)
	}
	if !w.CanPlace(model.EntityHall, origin) {
		t.Errorf("hall at %v cannot be placed", origin)
	}
}

func TestStepToward(t *testing.T) {
	tests := []struct {
		a, b model.Cell
		n    int
		want model.Cell
	}{
		{model.Cell{}, model.Cell{X: 10}, 4, model.Cell{X: 4}},
		{model.Cell{}, model.Cell{X: 2, Y: 2}, 5, model.Cell{X: 2, Y: 2}},
		{model.Cell{}, model.Cell{X: 10, Y: 5}, 4, model.Cell{X: 4, Y: 2}},
		{model.Cell{X: 3, Y: 3}, model.Cell{X: 3, Y: 3}, 2, model.Cell{X: 3, Y: 3}},
	}
	for _, tt := range tests {
		if got := stepToward(tt.a, tt.b, tt.n); got != tt.want {
			t.Errorf("stepToward(%v, %v, %d) = %v, want %v", tt.a, tt.b, tt.n, got, tt.want)
		}
	}
}

func TestMolotovCell(t *testing.T) {
	f := newFixture(32, 32)
	pyro := f.add(model.EntityPyro, us, 10, 10, energy(120))
	friend := f.add(model.EntityCowboy, us, 13, 10)
	f.add(model.EntityCowboy, them, 14, 10)
	f.add(model.EntityCowboy, them, 15, 10)
	b := testBot(t)
	w := f.world(0)
	p, _ := w.Entity(pyro)

	c, ok := b.molotovCell(w, p)
	if !ok {
		t.Fatal("no impact cell")
	}
	if c.X != 15 || c.Y < 9 || c.Y > 11 {
		t.Errorf("impact %v, want a cell at x=15 covering both cowboys", c)
	}
	fr, _ := w.Entity(friend)
	if fr.Cell.Chebyshev(c) <= model.MolotovRadius {
		t.Errorf("impact %v burns the friendly cowboy", c)
	}

	f.snap.Entities = f.snap.Entities[:1]
	if _, ok := b.molotovCell(f.world(0), p); ok {
		t.Error("impact cell found with no enemies in range")
	}
}
