package model

import (
	"encoding/json"
	"testing"
)

func visionSnapshot() *Snapshot {
	m := Map{Width: 10, Height: 10, Tiles: make([]Tile, 100)}
	visible := make([]bool, 100)
	for x := 0; x < 5; x++ {
		for y := 0; y < 10; y++ {
			visible[y*10+x] = true
		}
	}
	return &Snapshot{
		Map: m,
		Players: []Player{
			{ID: 0, Team: 0},
			{ID: 1, Team: 1},
			{ID: 2, Team: 0},
		},
		Vision: []Vision{
			{Player: 0, Explored: visible, Visible: visible},
		},
	}
}

func TestEntityVisible(t *testing.T) {
	s := visionSnapshot()

	tests := []struct {
		name   string
		entity Entity
		extra  []Entity
		want   bool
	}{
		{
			name:   "own unit in fog",
			entity: Entity{ID: 1, Type: EntityCowboy, Owner: 0, Cell: Cell{9, 9}, Health: 10},
			want:   true,
		},
		{
			name:   "ally unit in fog",
			entity: Entity{ID: 1, Type: EntityCowboy, Owner: 2, Cell: Cell{9, 9}, Health: 10},
			want:   true,
		},
		{
			name:   "enemy in sight",
			entity: Entity{ID: 1, Type: EntityCowboy, Owner: 1, Cell: Cell{2, 2}, Health: 10},
			want:   true,
		},
		{
			name:   "enemy in fog",
			entity: Entity{ID: 1, Type: EntityCowboy, Owner: 1, Cell: Cell{8, 2}, Health: 10},
			want:   false,
		},
		{
			name:   "building partly in sight",
			entity: Entity{ID: 1, Type: EntityHall, Owner: 1, Cell: Cell{3, 3}, Health: 10},
			want:   true,
		},
		{
			name:   "stealthed enemy without detector",
			entity: Entity{ID: 1, Type: EntityDetective, Owner: 1, Cell: Cell{2, 2}, Health: 10, Stealthed: true},
			want:   false,
		},
		{
			name:   "stealthed enemy with detector",
			entity: Entity{ID: 1, Type: EntityDetective, Owner: 1, Cell: Cell{2, 2}, Health: 10, Stealthed: true},
			extra:  []Entity{{ID: 2, Type: EntityBalloon, Owner: 0, Cell: Cell{4, 4}, Health: 10}},
			want:   true,
		},
		{
			name:   "landmine is hidden without detector",
			entity: Entity{ID: 1, Type: EntityLandmine, Owner: 1, Cell: Cell{2, 2}, Health: 1},
			want:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s.Entities = append([]Entity{tc.entity}, tc.extra...)
			if got := s.EntityVisible(0, &s.Entities[0]); got != tc.want {
				t.Errorf("EntityVisible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEntityTypeText(t *testing.T) {
	for et := EntityNone; et < NumEntityTypes; et++ {
		b, err := et.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", et, err)
		}
		var back EntityType
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != et {
			t.Errorf("round trip %s -> %s", et, back)
		}
	}

	var e Entity
	if err := json.Unmarshal([]byte(`{"id":3,"type":"Cowboy","owner":1}`), &e); err != nil {
		t.Fatalf("unmarshal entity: %v", err)
	}
	if e.Type != EntityCowboy {
		t.Errorf("type = %s, want cowboy", e.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"tank"}`), &e); err == nil {
		t.Error("expected error for unknown entity type")
	}
}

func TestCatalogPrerequisitesAreBuildings(t *testing.T) {
	for et := FirstUnit; et < NumEntityTypes; et++ {
		d := et.Data()
		if d.Prerequisite != EntityNone && !d.Prerequisite.IsBuilding() {
			t.Errorf("%s prerequisite %s is not a building", et, d.Prerequisite)
		}
		if et.IsUnit() && !d.ProducedAt.IsProducer() {
			t.Errorf("%s produced at %s, which does not produce", et, d.ProducedAt)
		}
	}
}

func TestSelectionTruncates(t *testing.T) {
	ids := make([]EntityID, MaxSelection+5)
	for i := range ids {
		ids[i] = EntityID(i + 1)
	}
	cmd := AttackMove(ids, Cell{1, 1})
	if len(cmd.Entities) != MaxSelection {
		t.Errorf("selection = %d, want %d", len(cmd.Entities), MaxSelection)
	}
	ids[0] = 99
	if cmd.Entities[0] == 99 {
		t.Error("selection aliases caller slice")
	}
}
