package rooms

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"webgames-server/internal/game"
)

// Dispatch routes one inbound text message from a connected client.
// Malformed input and messages from clients not in any room are dropped
// and logged; nothing at this layer is surfaced back to the sender.
func (reg *Registry) Dispatch(sess *Session, raw []byte) {
	room := reg.FindByClientID(sess.ID)
	if room == nil {
		log.Debug().Str("client", sess.ID.String()).Msg("message from client not in any room")
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("client", sess.ID.String()).Msg("unparseable envelope")
		return
	}

	switch env.Event {
	case "", "move":
		reg.handleMove(room, sess, raw)
	case "room.lock":
		reg.handleLock(room, sess, raw)
	case "chat":
		reg.handleChat(room, sess, raw)
	default:
		log.Debug().Str("event", env.Event).Str("client", sess.ID.String()).Msg("unrecognized event")
	}
}

// handleMove applies a move under the room's guard and, if the engine
// reports a state change, broadcasts the new view. A winning move with an
// alias attached credits the win ledger on a detached goroutine.
func (reg *Registry) handleMove(room *Room, sess *Session, raw []byte) {
	room.mu.Lock()
	changed := room.engine.Apply(sess.ID, raw)
	status := room.engine.Status()
	var data []byte
	var err error
	if changed {
		data, err = marshalView(room.engine)
	}
	room.mu.Unlock()

	if !changed {
		log.Debug().Str("client", sess.ID.String()).Str("room", room.ID.String()).Msg("move refused")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", room.ID.String()).Msg("failed to marshal view")
		return
	}

	reg.broadcast(room, data)

	if status == game.StatusWin {
		var attr moveAttribution
		// Alias is optional; the payload already parsed as a move.
		_ = json.Unmarshal(raw, &attr)
		if attr.Alias != "" {
			kind := room.GameKind()
			go func() {
				if err := reg.ledger.RecordWin(context.Background(), kind, attr.Alias); err != nil {
					log.Error().Err(err).Str("game", kind).Str("alias", attr.Alias).
						Msg("failed to record win")
				}
			}()
		}
	}
}

// handleLock toggles the matchmaking lock. Only the seat-0 occupant may do
// this; everyone in the room hears the result.
func (reg *Registry) handleLock(room *Room, sess *Session, raw []byte) {
	var payload lockPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Locked == nil {
		log.Debug().Str("client", sess.ID.String()).Msg("malformed room.lock payload")
		return
	}

	room.mu.Lock()
	seat, seated := room.engine.Seat(sess.ID)
	if !seated || seat != 0 {
		room.mu.Unlock()
		log.Debug().Str("client", sess.ID.String()).Msg("room.lock from non-owner ignored")
		return
	}
	room.locked = *payload.Locked
	room.mu.Unlock()

	data, err := json.Marshal(LockedEvent{Event: "room.locked", Locked: *payload.Locked})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal room.locked")
		return
	}
	reg.broadcast(room, data)
}

// handleChat relays a chat line to the whole room, tagged with the
// sender's seat. No persistence, no moderation.
func (reg *Registry) handleChat(room *Room, sess *Session, raw []byte) {
	var payload chatPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Text == "" {
		log.Debug().Str("client", sess.ID.String()).Msg("malformed chat payload")
		return
	}

	room.mu.Lock()
	seat, seated := room.engine.Seat(sess.ID)
	room.mu.Unlock()
	if !seated {
		seat = ObserverSeat
	}

	data, err := json.Marshal(ChatEvent{Event: "chat", Chat: payload.Text, From: seat})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal chat")
		return
	}
	reg.broadcast(room, data)
}
