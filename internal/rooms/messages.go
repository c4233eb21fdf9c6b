package rooms

import "webgames-server/internal/game"

// Outbound events. The wire envelope is flat JSON with an "event"
// discriminator; payload fields sit alongside it.

type ViewEvent struct {
	Event string      `json:"event"`
	Value any         `json:"value"`
	State game.Status `json:"state"`
}

type LockedEvent struct {
	Event  string `json:"event"`
	Locked bool   `json:"locked"`
}

type ChatEvent struct {
	Event string `json:"event"`
	Chat  string `json:"chat"`
	From  int    `json:"from"`
}

// ObserverSeat tags chat from clients without a seat.
const ObserverSeat = -1

// envelope is the inbound discriminator. An absent event field means
// "move" for compatibility with older clients that send bare moves.
type envelope struct {
	Event string `json:"event"`
}

type lockPayload struct {
	Locked *bool `json:"locked"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// moveAttribution is the optional alias riding on a move payload, used
// only for win-ledger credit.
type moveAttribution struct {
	Alias string `json:"alias"`
}
