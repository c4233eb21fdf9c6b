package rooms

import (
	"sync"

	"github.com/google/uuid"

	"webgames-server/internal/game"
)

// Room pairs one game engine with the clients watching or playing it. The
// mutex serializes every engine-mutating operation: two clients' moves on
// the same room never run concurrently, while distinct rooms proceed fully
// in parallel.
type Room struct {
	ID uuid.UUID

	mu      sync.Mutex
	engine  game.Engine
	clients map[uuid.UUID]*Session
	locked  bool // matchmaking lock, toggled by seat 0
}

func newRoom(id uuid.UUID, engine game.Engine) *Room {
	return &Room{
		ID:      id,
		engine:  engine,
		clients: make(map[uuid.UUID]*Session),
	}
}

func (r *Room) GameKind() string {
	// Kind is immutable for the engine's lifetime, safe without the lock.
	return r.engine.Kind()
}

// IsOpen reports whether quickplay may place a player here: the game has
// not finished and fewer seated players are present than the seat count.
// Presence is what matters — a seated player who left keeps their seat
// index (seats are never reused), but their absence reopens the room.
func (r *Room) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine.Status().Terminal() {
		return false
	}
	seated := 0
	for clientID := range r.clients {
		if _, ok := r.engine.Seat(clientID); ok {
			seated++
		}
	}
	return seated < r.engine.MaxPlayers()
}

// Locked reports the matchmaking lock state.
func (r *Room) Locked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Room) hasClient(clientID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.clients[clientID]
	return ok
}

// snapshotClients copies the client set so a disconnect mid-broadcast
// cannot corrupt the iteration.
func (r *Room) snapshotClients() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]*Session, 0, len(r.clients))
	for _, sess := range r.clients {
		sessions = append(sessions, sess)
	}
	return sessions
}
