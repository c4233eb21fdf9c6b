package tictactoe

import (
	"encoding/json"

	"github.com/google/uuid"

	"webgames-server/internal/game"
)

// Kind is the factory tag for this engine.
const Kind = "tictactoe"

const maxPlayers = 2

// Cell is one square of the grid. The numeric values are part of the wire
// format: the frontend renders 0 as empty, 1 as X, 2 as O.
type Cell int

const (
	Empty Cell = iota
	MarkX
	MarkO
)

// seat index → mark placed by that seat
var seatMarks = [maxPlayers]Cell{MarkX, MarkO}

// Engine is a two-player 3x3 tic-tac-toe game. Seats are handed out in join
// order: first joiner is X, second is O, everyone after that observes.
// All mutating calls are serialized by the owning room.
type Engine struct {
	board     [3][3]Cell
	seats     map[uuid.UUID]int
	observers map[uuid.UUID]struct{}
	turn      int
	status    game.Status
}

func New() game.Engine {
	return &Engine{
		seats:     make(map[uuid.UUID]int),
		observers: make(map[uuid.UUID]struct{}),
		status:    game.StatusPlaying,
	}
}

func (e *Engine) Kind() string    { return Kind }
func (e *Engine) MaxPlayers() int { return maxPlayers }

func (e *Engine) Join(clientID uuid.UUID) {
	if _, seated := e.seats[clientID]; seated {
		return
	}
	if _, watching := e.observers[clientID]; watching {
		return
	}

	if len(e.seats) < maxPlayers {
		// Seats are dense and assigned exactly once; they are never
		// reused even after a player leaves mid-game.
		e.seats[clientID] = len(e.seats)
		return
	}
	e.observers[clientID] = struct{}{}
}

func (e *Engine) Seat(clientID uuid.UUID) (int, bool) {
	seat, ok := e.seats[clientID]
	return seat, ok
}

func (e *Engine) PlayerCount() int {
	return len(e.seats)
}

// movePayload carries one grid coordinate. Pointers distinguish a missing
// field from a legitimate zero.
type movePayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (e *Engine) Apply(clientID uuid.UUID, payload []byte) bool {
	if e.status != game.StatusPlaying {
		return false
	}

	seat, ok := e.seats[clientID]
	if !ok || seat != e.turn {
		return false
	}

	var move movePayload
	if err := json.Unmarshal(payload, &move); err != nil {
		return false
	}
	if move.Row == nil || move.Col == nil {
		return false
	}

	row, col := *move.Row, *move.Col
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return false
	}
	if e.board[row][col] != Empty {
		return false
	}

	e.board[row][col] = seatMarks[seat]
	e.turn = (e.turn + 1) % maxPlayers
	e.status = e.detectOutcome()
	return true
}

// View returns a copy of the grid; Cell values marshal as their numeric codes.
func (e *Engine) View() any {
	return e.board
}

func (e *Engine) Status() game.Status {
	return e.status
}

// detectOutcome scans every row, column, and both diagonals for
// three-in-a-row, falling back to Draw only when no empty cell remains.
func (e *Engine) detectOutcome() game.Status {
	lines := [][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}

	for _, line := range lines {
		first := e.board[line[0][0]][line[0][1]]
		if first == Empty {
			continue
		}
		if e.board[line[1][0]][line[1][1]] == first && e.board[line[2][0]][line[2][1]] == first {
			return game.StatusWin
		}
	}

	for row := range e.board {
		for col := range e.board[row] {
			if e.board[row][col] == Empty {
				return game.StatusPlaying
			}
		}
	}
	return game.StatusDraw
}
