// Package bot is the computer opponent. A Bot is advanced once per
// simulation tick by Step, which reads a snapshot and returns at most one
// command. Behaviors are tried in a fixed order and the first one with
// something to do wins the tick.
package bot

import (
	"log/slog"
	"math/rand"

	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/model"
	"github.com/nstehr/deadeye/rules"
)

// Bot is the per-player decision state. It is not safe for concurrent use;
// each simulation peer owns its own.
type Bot struct {
	player model.PlayerID
	cfg    config.Config
	rng    *rand.Rand
	log    *slog.Logger

	doctrine rules.Doctrine
	engine   *rules.Engine

	goal            *rules.Goal
	anchor          model.EntityID
	openingDone     bool
	minesGoalIssued bool

	ledger      *Ledger
	squads      []*Squad
	nextSquadID int
	squadCursor int
	scout       Scout
	intel       *intel
	retreats    map[model.EntityID]RetreatMemory
	threats     []threat
	surrendered bool
}

// New creates the bot for player. All randomness the bot uses comes from a
// private stream seeded once here; the doctrine is the first draw.
func New(seed int64, player model.PlayerID, cfg config.Config) *Bot {
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))
	return newBot(rng, player, cfg, rules.PickDoctrine(rng))
}

// NewWithDoctrine creates a bot that plays a fixed doctrine.
func NewWithDoctrine(seed int64, player model.PlayerID, cfg config.Config, d rules.Doctrine) *Bot {
	if seed == 0 {
		seed = 1
	}
	return newBot(rand.New(rand.NewSource(seed)), player, cfg, d)
}

func newBot(rng *rand.Rand, player model.PlayerID, cfg config.Config, d rules.Doctrine) *Bot {
	cfg.Validate()
	d.Validate()
	engine, err := rules.NewEngine(rules.CompileDoctrine(d))
	if err != nil {
		// Generated rules interpolate integers only; a failure is a bug.
		panic("bot: compile doctrine " + d.Name + ": " + err.Error())
	}
	b := &Bot{
		player:   player,
		cfg:      cfg,
		rng:      rng,
		log:      slog.With("player", int(player)),
		doctrine: d,
		engine:   engine,
		ledger:   NewLedger(),
		scout:    newScout(),
		intel:    newIntel(),
		retreats: make(map[model.EntityID]RetreatMemory),
	}
	b.log.Info("bot created",
		"doctrine", d.Name,
		"opening", d.Opening,
		"composition", d.Composition,
		"rules", len(engine.Names()),
	)
	return b
}

// Step advances the bot one tick and returns the command to apply. The zero
// Command means there is nothing to do.
func (b *Bot) Step(snap *model.Snapshot, now int) model.Command {
	if b.surrendered {
		return model.Command{}
	}
	w := newWorld(snap, b.player, now)
	if w.Self == nil || w.Self.Defeated {
		return model.Command{}
	}
	b.refresh(w)

	if cmd := b.defend(w); !cmd.Empty() || b.surrendered {
		return b.emit("defense", cmd)
	}
	if cmd := b.runSquads(w); !cmd.Empty() {
		return b.emit("squad", cmd)
	}
	if cmd := b.runScout(w); !cmd.Empty() {
		return b.emit("scout", cmd)
	}
	b.runGoals(w)
	if cmd := b.produce(w); !cmd.Empty() {
		return b.emit("production", cmd)
	}
	return b.emit("maintenance", b.maintain(w))
}

// refresh folds the new snapshot into memory and drops whatever died.
func (b *Bot) refresh(w *World) {
	b.intel.update(w, b.cfg.Strategy.IntelLifetime)
	b.pruneSquads(w)
	if b.scout.ID != 0 {
		if _, ok := w.Entity(b.scout.ID); !ok {
			b.log.Info("scout lost", "unit", b.scout.ID)
			b.endScouting(w)
		}
	}
	b.threats = b.findThreats(w)
}

func (b *Bot) emit(source string, cmd model.Command) model.Command {
	if !cmd.Empty() {
		b.log.Debug("command", "source", source, "command", cmd.String())
	}
	return cmd
}

func (b *Bot) scorer(w *World) Scorer {
	return Scorer{cfg: b.cfg.Scoring, w: w, intel: b.intel}
}

// Player returns the player this bot controls.
func (b *Bot) Player() model.PlayerID { return b.player }

// Doctrine returns the strategy the bot plays.
func (b *Bot) Doctrine() rules.Doctrine { return b.doctrine }

// Goal returns the current goal, or nil between goals.
func (b *Bot) Goal() *rules.Goal { return b.goal }

// Squads returns the live squads.
func (b *Bot) Squads() []*Squad { return b.squads }

// Ledger returns the reservation ledger.
func (b *Bot) Ledger() *Ledger { return b.ledger }

// ScoutID returns the unit currently scouting, or zero.
func (b *Bot) ScoutID() model.EntityID { return b.scout.ID }

// Retreat returns the recorded repulse for an enemy base.
func (b *Bot) Retreat(base model.EntityID) (RetreatMemory, bool) {
	m, ok := b.retreats[base]
	return m, ok
}
