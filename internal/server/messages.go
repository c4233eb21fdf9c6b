package server

// Gateway-level outbound events. Room-level events (view, room.locked,
// chat) live in the rooms package.

type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type QuickPlayJoinedEvent struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId"`
	GameKind string `json:"gameKind"`
}

type NoFreeEvent struct {
	Event string `json:"event"`
}
