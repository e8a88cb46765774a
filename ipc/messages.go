package ipc

import "github.com/nstehr/deadeye/model"

// These constants must stay in sync with the simulation host.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeSnapshot = "snapshot"
	TypeCommand  = "command"
)

// HelloMessage opens a session. Every peer in a lockstep match sends the
// same seed for a given player so their bots make identical choices.
type HelloMessage struct {
	Player model.PlayerID `json:"player"`
	Seed   int64          `json:"seed"`
}

type AckMessage struct {
	Status   string `json:"status"`
	Doctrine string `json:"doctrine,omitempty"`
}

// SnapshotMessage asks the bot for its command at Time.
type SnapshotMessage struct {
	Time  int            `json:"time"`
	State model.Snapshot `json:"state"`
}
