package bot

import (
	"testing"

	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/model"
)

func TestTypeScore(t *testing.T) {
	s := Scorer{cfg: config.Default().Scoring}
	tests := []struct {
		typ  model.EntityType
		want int
	}{
		{model.EntityMiner, 1},
		{model.EntityCowboy, 4},
		{model.EntitySapper, 4},
		{model.EntityCannon, 8},
		{model.EntityBalloon, 1},
		{model.EntityWagon, 0},
		{model.EntityLandmine, 0},
		{model.EntityHall, 0},
		{model.EntitySaloon, 0},
	}
	for _, tt := range tests {
		if got := s.TypeScore(tt.typ); got != tt.want {
			t.Errorf("TypeScore(%s) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestScoreContainers(t *testing.T) {
	f := newFixture(32, 32)
	wagon := f.add(model.EntityWagon, us, 5, 5)
	c1 := f.add(model.EntityCowboy, us, 5, 5, inside(wagon))
	c2 := f.add(model.EntityCannon, us, 5, 5, inside(wagon))
	f.entity(wagon).Garrison = []model.EntityID{c1, c2}

	bunker := f.add(model.EntityBunker, us, 10, 10)
	var occupants []model.EntityID
	for range 3 {
		occupants = append(occupants, f.add(model.EntitySoldier, us, 10, 10, inside(bunker)))
	}
	f.entity(bunker).Garrison = occupants

	// Enemy bunker in fog, seen earlier with two occupants.
	hidden := f.add(model.EntityBunker, them, 25, 25)
	f.hide(20, 20, 31, 31)

	b := testBot(t)
	w := f.world(0)
	b.intel.buildings = []knownBuilding{{ID: hidden, Type: model.EntityBunker, Owner: them, Occupants: 2}}
	b.intel.index[hidden] = 0
	sc := b.scorer(w)

	tests := []struct {
		name string
		id   model.EntityID
		want int
	}{
		{"wagon scores passengers", wagon, 4 + 8},
		{"bunker scores occupants", bunker, 3 * 4},
		{"hidden enemy bunker uses memory", hidden, 2 * 4},
	}
	for _, tt := range tests {
		e, _ := w.Entity(tt.id)
		if got := sc.Score(e); got != tt.want {
			t.Errorf("%s: Score = %d, want %d", tt.name, got, tt.want)
		}
	}

	if got := sc.ScoreList([]model.EntityID{c1, 999, c2}); got != 12 {
		t.Errorf("ScoreList skipping unknown = %d, want 12", got)
	}
}
