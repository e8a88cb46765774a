// Package agent binds one host connection to one bot: the hello handshake
// creates the bot and every snapshot is answered with its command.
package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/deadeye/bot"
	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/ipc"
)

// maxEvents bounds the recent-event history kept for the match summary.
const maxEvents = 32

var errNoHello = errors.New("snapshot before hello")

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn *ipc.Connection
	Bot  *bot.Bot

	cfg      config.Config
	log      *slog.Logger
	prev     *matchSnapshot
	events   []Event
	lastTime int
}

func New(conn *ipc.Connection, cfg config.Config) *Agent {
	return &Agent{Conn: conn, cfg: cfg, log: slog.Default()}
}

// HandleHello creates the bot for the announced player and seed.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	if a.Bot != nil {
		a.log.Warn("repeated hello, restarting bot", "player", int(hello.Player))
	}

	a.Bot = bot.New(hello.Seed, hello.Player, a.cfg)
	a.prev = nil
	a.events = nil
	a.log = slog.With("player", int(hello.Player))
	if a.Conn != nil {
		a.Conn.Identify("player", int(hello.Player))
	}
	a.log.Info("player identified", "seed", hello.Seed, "doctrine", a.Bot.Doctrine().Name)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Doctrine: a.Bot.Doctrine().Name})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleSnapshot steps the bot and replies with its command, which may be
// the empty command.
func (a *Agent) HandleSnapshot(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.Bot == nil {
		return nil, errNoHello
	}
	var msg ipc.SnapshotMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if msg.Time < a.lastTime {
		a.log.Warn("snapshot time went backwards", "time", msg.Time, "last", a.lastTime)
	}
	a.lastTime = msg.Time

	cur := takeSnapshot(&msg.State, a.Bot.Player(), msg.Time)
	for _, e := range detectEvents(cur, a.prev, msg.Time) {
		a.log.Info("match event", "kind", e.Kind, "time", e.Time, "detail", e.Detail)
		a.record(e)
	}
	a.prev = &cur

	surrendered := a.Bot.HasSurrendered()
	cmd := a.Bot.Step(&msg.State, msg.Time)
	if !surrendered && a.Bot.HasSurrendered() {
		a.log.Info("bot surrendered", "time", msg.Time, "events", formatEvents(a.events))
	}

	reply, err := ipc.NewCommandEnvelope(msg.Time, cmd)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a *Agent) record(e Event) {
	a.events = append(a.events, e)
	if len(a.events) > maxEvents {
		a.events = a.events[len(a.events)-maxEvents:]
	}
}

// Events returns the most recent match events, oldest first.
func (a *Agent) Events() []Event { return a.events }

// Serve runs one agent over t and blocks until the peer disconnects.
func Serve(t ipc.Transport, cfg config.Config) {
	c := ipc.NewConnection(t, nil)
	a := New(c, cfg)
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeSnapshot, a.HandleSnapshot)
	c.ReadLoop()
}
