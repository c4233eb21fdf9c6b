package game

import "github.com/google/uuid"

// Status is the lifecycle state of an engine. Win and Draw are terminal:
// once an engine leaves Playing it never accepts another move.
type Status string

const (
	StatusPlaying Status = "Playing"
	StatusWin     Status = "Win"
	StatusDraw    Status = "Draw"
)

// Terminal reports whether no further moves can be accepted.
func (s Status) Terminal() bool {
	return s == StatusWin || s == StatusDraw
}

// Engine is the pluggable contract every game implements. Engines are pure
// state machines: no I/O, no knowledge of connections. All mutating calls
// (Join, Apply) are serialized by the owning room; View and Status must be
// safe to call at any point between them.
type Engine interface {
	// Kind returns the game-kind tag this engine was registered under.
	Kind() string

	// MaxPlayers is the number of seats. Joiners beyond this become
	// observers: they receive broadcasts but cannot move.
	MaxPlayers() int

	// Join registers a client. Idempotent: re-joining an already-known
	// client changes nothing. New clients get the next free seat in
	// insertion order (0, 1, ...); once seats run out they are recorded
	// as observers.
	Join(clientID uuid.UUID)

	// Seat returns the seat index for a client, or ok=false for
	// observers and unknown clients.
	Seat(clientID uuid.UUID) (seat int, ok bool)

	// PlayerCount is the number of seated players.
	PlayerCount() int

	// Apply validates and applies a raw move payload from a client and
	// reports whether observable state changed. It must refuse (false, no
	// mutation) when the game is terminal, the client holds no seat, it is
	// not the client's turn, or the payload is malformed or illegal.
	Apply(clientID uuid.UUID, payload []byte) bool

	// View is the serializable projection of current state sent to clients.
	View() any

	// Status returns the current lifecycle state.
	Status() Status
}
