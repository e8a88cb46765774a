package ipc

import "github.com/nstehr/deadeye/model"

// CommandMessage answers a snapshot. A command of kind "" means the bot has
// nothing to do this tick; the reply is still sent so the host can advance.
type CommandMessage struct {
	Time    int           `json:"time"`
	Command model.Command `json:"command"`
}

func NewCommandEnvelope(now int, cmd model.Command) (Envelope, error) {
	return NewEnvelope(TypeCommand, CommandMessage{Time: now, Command: cmd})
}
