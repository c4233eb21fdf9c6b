package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"webgames-server/internal/game"
)

// WinRecorder is the external win ledger. Calls are fire-and-forget from
// the move path; a slow or failing ledger never blocks gameplay.
type WinRecorder interface {
	RecordWin(ctx context.Context, gameKind, alias string) error
}

// Registry is the orchestration core: a concurrent mapping from room id to
// room. It creates rooms on demand, routes inbound messages to the right
// room, and fans outbound state back to each room's clients.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[uuid.UUID]*Room
	factory *game.Factory
	ledger  WinRecorder
}

func NewRegistry(factory *game.Factory, ledger WinRecorder) *Registry {
	return &Registry{
		rooms:   make(map[uuid.UUID]*Room),
		factory: factory,
		ledger:  ledger,
	}
}

// FindByRoomID looks a room up by id.
func (reg *Registry) FindByRoomID(roomID uuid.UUID) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomID]
}

// FindByClientID returns the room a client currently occupies. This is a
// linear scan over all rooms' client sets, which is fine at the room
// populations this server runs at.
func (reg *Registry) FindByClientID(clientID uuid.UUID) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, room := range reg.rooms {
		if room.hasClient(clientID) {
			return room
		}
	}
	return nil
}

// RoomCount is the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// JoinOrCreate places a client into the room for roomID, creating it from
// the factory first if needed. Creation happens under the registry write
// lock so concurrent identical requests produce exactly one room. The
// joiner receives the current view; nobody else is notified.
func (reg *Registry) JoinOrCreate(roomID uuid.UUID, gameKind string, sess *Session) error {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		engine, known := reg.factory.New(gameKind)
		if !known {
			reg.mu.Unlock()
			return fmt.Errorf("UNKNOWN_GAME: no engine registered for %q", gameKind)
		}
		room = newRoom(roomID, engine)
		reg.rooms[roomID] = room
	}

	// Membership is added while still holding the registry lock so a
	// concurrent leave cannot delete the room out from under the joiner.
	room.mu.Lock()
	room.clients[sess.ID] = sess
	room.engine.Join(sess.ID)
	data, err := marshalView(room.engine)
	room.mu.Unlock()
	reg.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("room", roomID.String()).Msg("failed to marshal view")
		return nil
	}

	if err := sess.send(data); err != nil {
		log.Warn().Err(err).Str("client", sess.ID.String()).Msg("failed to send join view")
	}
	return nil
}

// Leave removes a client from whatever room it occupies, deleting the room
// once its client set is empty. Leaving while in no room is a no-op.
func (reg *Registry) Leave(sess *Session) {
	reg.remove(sess.ID)
}

func (reg *Registry) remove(clientID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for id, room := range reg.rooms {
		room.mu.Lock()
		_, ok := room.clients[clientID]
		if !ok {
			room.mu.Unlock()
			continue
		}
		delete(room.clients, clientID)
		empty := len(room.clients) == 0
		room.mu.Unlock()

		if empty {
			delete(reg.rooms, id)
			log.Info().Str("room", id.String()).Msg("room emptied, removed")
		}
		return
	}
}

// QuickPlay scans for the first room that is matchmaking-unlocked and still
// open. There is no reservation: the caller must still JoinOrCreate, and a
// race between two quickplay callers is resolved by the engine's own seat
// limit (the loser becomes an observer).
func (reg *Registry) QuickPlay() (roomID uuid.UUID, gameKind string, found bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for id, room := range reg.rooms {
		if !room.Locked() && room.IsOpen() {
			return id, room.GameKind(), true
		}
	}
	return uuid.Nil, "", false
}

// broadcast fans data out to a snapshot of the room's clients. A send
// failure evicts that one client and the broadcast continues.
func (reg *Registry) broadcast(room *Room, data []byte) {
	for _, sess := range room.snapshotClients() {
		if err := sess.send(data); err != nil {
			log.Warn().Err(err).Str("client", sess.ID.String()).Str("room", room.ID.String()).
				Msg("broadcast send failed, evicting client")
			reg.remove(sess.ID)
		}
	}
}

func marshalView(engine game.Engine) ([]byte, error) {
	return json.Marshal(ViewEvent{
		Event: "view",
		Value: engine.View(),
		State: engine.Status(),
	})
}
