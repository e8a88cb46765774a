package bot

import (
	"testing"

	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

func armyGoal(desired map[model.EntityType]int) *rules.Goal {
	g := &rules.Goal{Name: "test", Squad: rules.SquadPush}
	for t, n := range desired {
		g.Desired[t] = n
	}
	return g
}

func TestProduceTrainsInTypeOrder(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture) (saloon model.EntityID)
		gold     int
		wantKind model.CommandKind
		wantUnit model.EntityType
	}{
		{
			name: "cowboy before bandit",
			setup: func(f *fixture) model.EntityID {
				return f.add(model.EntitySaloon, us, 12, 2)
			},
			gold:     1000,
			wantKind: model.CommandEnqueue,
			wantUnit: model.EntityCowboy,
		},
		{
			name: "cowboys satisfied",
			setup: func(f *fixture) model.EntityID {
				for i := range 4 {
					f.add(model.EntityCowboy, us, 2+i, 12)
				}
				return f.add(model.EntitySaloon, us, 12, 2)
			},
			gold:     1000,
			wantKind: model.CommandEnqueue,
			wantUnit: model.EntityBandit,
		},
		{
			name: "producer busy",
			setup: func(f *fixture) model.EntityID {
				return f.add(model.EntitySaloon, us, 12, 2, queue(model.UnitItem(model.EntityBandit)))
			},
			gold:     1000,
			wantKind: model.CommandNone,
		},
		{
			name: "not enough gold",
			setup: func(f *fixture) model.EntityID {
				return f.add(model.EntitySaloon, us, 12, 2)
			},
			gold:     50,
			wantKind: model.CommandNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(32, 32)
			f.add(model.EntityHall, us, 2, 2)
			saloon := tt.setup(f)
			f.setGold(tt.gold)

			b := testBot(t)
			b.goal = armyGoal(map[model.EntityType]int{model.EntityCowboy: 4, model.EntityBandit: 2})
			cmd := b.produce(f.world(0))

			if cmd.Kind != tt.wantKind {
				t.Fatalf("command = %s, want %s", cmd, tt.wantKind)
			}
			if tt.wantKind != model.CommandEnqueue {
				return
			}
			if cmd.Entities[0] != saloon || cmd.Item == nil || cmd.Item.Unit != tt.wantUnit {
				t.Errorf("command = %s, want %s at saloon %d", cmd, tt.wantUnit, saloon)
			}
		})
	}
}

func TestProduceBuildsMissingProducer(t *testing.T) {
	f := newFixture(32, 32)
	f.add(model.EntityHall, us, 2, 2)
	miner := f.add(model.EntityMiner, us, 8, 8)
	b := testBot(t)
	b.goal = armyGoal(map[model.EntityType]int{model.EntityCowboy: 2})
	w := f.world(0)

	cmd := b.produce(w)
	if cmd.Kind != model.CommandBuild || cmd.Building != model.EntitySaloon || cmd.Entities[0] != miner {
		t.Fatalf("command = %s, want miner %d building a saloon", cmd, miner)
	}
	if !w.CanPlace(model.EntitySaloon, cmd.Cell) {
		t.Errorf("saloon site %v is not placeable", cmd.Cell)
	}
}

func TestMissingPrerequisite(t *testing.T) {
	b := testBot(t)
	tests := []struct {
		name  string
		have  []model.EntityType
		want  model.EntityType
		build model.EntityType
	}{
		{"unit with producer", []model.EntityType{model.EntityHall, model.EntitySaloon}, model.EntityNone, model.EntityCowboy},
		{"unit needs producer", []model.EntityType{model.EntityHall}, model.EntitySaloon, model.EntityCowboy},
		{"deepest first", []model.EntityType{model.EntityHall}, model.EntitySaloon, model.EntityCannon},
		{"chain midway", []model.EntityType{model.EntityHall, model.EntitySaloon}, model.EntityWorkshop, model.EntitySoldier},
		{"hall has none", nil, model.EntityNone, model.EntityHall},
		{"miner needs hall", nil, model.EntityHall, model.EntityMiner},
	}
	for _, tt := range tests {
		var st stock
		for _, h := range tt.have {
			st.have[h]++
		}
		got, ok := b.missingPrerequisite(tt.build, st)
		if tt.want == model.EntityNone {
			if ok {
				t.Errorf("%s: got %s, want nothing missing", tt.name, got)
			}
			continue
		}
		if !ok || got != tt.want {
			t.Errorf("%s: got %s (%v), want %s", tt.name, got, ok, tt.want)
		}
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture, hall, mine model.EntityID)
		want  model.CommandKind
	}{
		{
			name: "idle miners sent to mine",
			setup: func(f *fixture, hall, mine model.EntityID) {
				f.add(model.EntityMiner, us, 8, 8)
				f.add(model.EntityMiner, us, 9, 8)
			},
			want: model.CommandMoveToEntity,
		},
		{
			name: "train when short",
			setup: func(f *fixture, hall, mine model.EntityID) {
				for i := range 3 {
					f.add(model.EntityMiner, us, 8+i, 8, gathering(mine))
				}
			},
			want: model.CommandEnqueue,
		},
		{
			name: "dequeue when saturated",
			setup: func(f *fixture, hall, mine model.EntityID) {
				for i := range 8 {
					f.add(model.EntityMiner, us, 8+i, 8, gathering(mine))
				}
				f.entity(hall).Queue = []model.QueueItem{model.UnitItem(model.EntityMiner)}
			},
			want: model.CommandDequeue,
		},
		{
			name: "miners walking to the mine count",
			setup: func(f *fixture, hall, mine model.EntityID) {
				for i := range 4 {
					f.add(model.EntityMiner, us, 8+i, 8, gathering(mine))
				}
				for i := range 4 {
					f.add(model.EntityMiner, us, 8+i, 9, walkingTo(mine))
				}
				f.entity(hall).Queue = []model.QueueItem{model.UnitItem(model.EntityMiner)}
			},
			want: model.CommandDequeue,
		},
		{
			name: "orphans stopped",
			setup: func(f *fixture, hall, mine model.EntityID) {
				far := f.add(model.EntityGoldMine, model.NeutralPlayer, 40, 40)
				f.add(model.EntityMiner, us, 38, 38, gathering(far))
			},
			want: model.CommandStop,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(48, 48)
			hall := f.add(model.EntityHall, us, 2, 2)
			mine := f.add(model.EntityGoldMine, model.NeutralPlayer, 10, 2)
			tt.setup(f, hall, mine)
			b := testBot(t)
			cmd := b.saturate(f.world(0))
			if cmd.Kind != tt.want {
				t.Fatalf("command = %s, want %s", cmd, tt.want)
			}
			switch cmd.Kind {
			case model.CommandMoveToEntity:
				if cmd.Target != mine || len(cmd.Entities) != 2 {
					t.Errorf("sent %v to %d, want 2 miners to %d", cmd.Entities, cmd.Target, mine)
				}
			case model.CommandEnqueue:
				if cmd.Entities[0] != hall || cmd.Item.Unit != model.EntityMiner {
					t.Errorf("command = %s, want miner at hall", cmd)
				}
			case model.CommandDequeue:
				if cmd.Entities[0] != hall || cmd.Index != 0 {
					t.Errorf("command = %s, want dequeue slot 0 at hall", cmd)
				}
			}
		})
	}
}

func TestSupplyHouses(t *testing.T) {
	f := newFixture(32, 32)
	f.add(model.EntityHall, us, 2, 2)
	miner := f.add(model.EntityMiner, us, 8, 8)
	for i := range 7 {
		f.add(model.EntityCowboy, us, 2+i, 12)
	}
	b := testBot(t)
	cmd := b.supplyHouses(f.world(0))
	if cmd.Kind != model.CommandBuild || cmd.Building != model.EntityHouse || cmd.Entities[0] != miner {
		t.Fatalf("command = %s, want house built by %d", cmd, miner)
	}

	// A house already going up covers the gap.
	f.add(model.EntityHouse, us, 20, 20, mode(model.ModeUnderConstruction))
	if cmd := b.supplyHouses(f.world(0)); !cmd.Empty() {
		t.Errorf("with house pending: command = %s, want none", cmd)
	}
}

func TestResearch(t *testing.T) {
	tests := []struct {
		name      string
		buildings []model.EntityType
		wantKind  model.CommandKind
		wantBuild model.EntityType
	}{
		{"researches at idle barracks", []model.EntityType{model.EntitySaloon, model.EntityWorkshop, model.EntityBarracks}, model.CommandEnqueue, model.EntityNone},
		{"builds barracks", []model.EntityType{model.EntitySaloon, model.EntityWorkshop}, model.CommandBuild, model.EntityBarracks},
		{"builds workshop first", []model.EntityType{model.EntitySaloon}, model.CommandBuild, model.EntityWorkshop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(48, 48)
			f.add(model.EntityHall, us, 20, 20)
			f.add(model.EntityMiner, us, 18, 18)
			for i, bt := range tt.buildings {
				f.add(bt, us, 2+i*5, 2)
			}
			b := testBot(t)
			w := f.world(0)
			cmd := b.research(w, model.UpgradeBayonets, b.takeStock(w))
			if cmd.Kind != tt.wantKind {
				t.Fatalf("command = %s, want %s", cmd, tt.wantKind)
			}
			if tt.wantKind == model.CommandEnqueue && (cmd.Item == nil || cmd.Item.Upgrade != model.UpgradeBayonets) {
				t.Errorf("command = %s, want bayonets research", cmd)
			}
			if tt.wantKind == model.CommandBuild && cmd.Building != tt.wantBuild {
				t.Errorf("building = %s, want %s", cmd.Building, tt.wantBuild)
			}
		})
	}
}

func TestMaintain(t *testing.T) {
	t.Run("rally fixed", func(t *testing.T) {
		f := newFixture(32, 32)
		f.add(model.EntityHall, us, 2, 2)
		saloon := f.add(model.EntitySaloon, us, 12, 2)
		bad := model.Cell{X: 3, Y: 3}
		f.entity(saloon).RallyPoint = &bad
		b := testBot(t)
		w := f.world(0)
		cmd := b.maintain(w)
		if cmd.Kind != model.CommandSetRally || cmd.Entities[0] != saloon || !w.ValidRally(cmd.Cell) {
			t.Fatalf("command = %s, want valid rally for saloon", cmd)
		}
	})
	t.Run("damaged building repaired", func(t *testing.T) {
		f := newFixture(32, 32)
		f.add(model.EntityHall, us, 2, 2)
		house := f.add(model.EntityHouse, us, 12, 2)
		f.entity(house).Health = 30
		miner := f.add(model.EntityMiner, us, 10, 10)
		b := testBot(t)
		cmd := b.maintain(f.world(0))
		if cmd.Kind != model.CommandRepair || cmd.Target != house || cmd.Entities[0] != miner {
			t.Fatalf("command = %s, want miner %d repairing %d", cmd, miner, house)
		}
	})
}
