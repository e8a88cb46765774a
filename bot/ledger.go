package bot

import (
	"fmt"
	"slices"

	"github.com/nstehr/deadeye/model"
)

// Holder identifies who holds a reservation: a squad id, or ScoutHolder.
type Holder int

// ScoutHolder marks entities reserved by the scout.
const ScoutHolder Holder = -1

func (h Holder) String() string {
	if h == ScoutHolder {
		return "scout"
	}
	return fmt.Sprintf("squad-%d", int(h))
}

// Ledger tracks which entities a squad or the scout has claimed. Every
// Reserve is paired with exactly one Release; breaking that pairing is a
// bookkeeping bug and panics.
type Ledger struct {
	held map[model.EntityID]Holder
}

func NewLedger() *Ledger {
	return &Ledger{held: make(map[model.EntityID]Holder)}
}

// IsReserved reports whether id is claimed.
func (l *Ledger) IsReserved(id model.EntityID) bool {
	_, ok := l.held[id]
	return ok
}

// Owner reports who holds id.
func (l *Ledger) Owner(id model.EntityID) (Holder, bool) {
	h, ok := l.held[id]
	return h, ok
}

// Reserve claims id for h.
func (l *Ledger) Reserve(id model.EntityID, h Holder) {
	if prev, ok := l.held[id]; ok {
		panic(fmt.Sprintf("ledger: entity %d reserved by %s, already held by %s", id, h, prev))
	}
	l.held[id] = h
}

// Release drops the claim on id.
func (l *Ledger) Release(id model.EntityID) {
	if _, ok := l.held[id]; !ok {
		panic(fmt.Sprintf("ledger: release of unreserved entity %d", id))
	}
	delete(l.held, id)
}

// Len returns the number of reserved entities.
func (l *Ledger) Len() int { return len(l.held) }

// Reserved returns every reserved id in ascending order.
func (l *Ledger) Reserved() []model.EntityID {
	out := make([]model.EntityID, 0, len(l.held))
	for id := range l.held {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
