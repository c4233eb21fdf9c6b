package tictactoe

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"webgames-server/internal/game"
)

func newEngineWithPlayers(t *testing.T) (*Engine, uuid.UUID, uuid.UUID) {
	t.Helper()
	e := New().(*Engine)
	playerX := uuid.New()
	playerO := uuid.New()
	e.Join(playerX)
	e.Join(playerO)
	return e, playerX, playerO
}

func mustMove(t *testing.T, e *Engine, client uuid.UUID, row, col int) {
	t.Helper()
	payload := fmt.Appendf(nil, `{"row":%d,"col":%d}`, row, col)
	if !e.Apply(client, payload) {
		t.Fatalf("expected move (%d,%d) to be accepted", row, col)
	}
}

func TestJoin_SeatAssignmentOrder(t *testing.T) {
	e := New().(*Engine)
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	e.Join(first)
	e.Join(second)
	e.Join(third)

	if seat, ok := e.Seat(first); !ok || seat != 0 {
		t.Errorf("first joiner should hold seat 0, got %d (seated=%v)", seat, ok)
	}
	if seat, ok := e.Seat(second); !ok || seat != 1 {
		t.Errorf("second joiner should hold seat 1, got %d (seated=%v)", seat, ok)
	}
	if _, ok := e.Seat(third); ok {
		t.Error("third joiner should be an observer with no seat")
	}
	if e.PlayerCount() != 2 {
		t.Errorf("expected 2 seated players, got %d", e.PlayerCount())
	}
}

func TestJoin_Idempotent(t *testing.T) {
	// Why: rejoining must not consume a second seat or change the first
	e := New().(*Engine)
	client := uuid.New()

	e.Join(client)
	seatBefore, _ := e.Seat(client)
	e.Join(client)
	seatAfter, ok := e.Seat(client)

	if !ok || seatBefore != seatAfter {
		t.Errorf("rejoin changed seat: %d -> %d", seatBefore, seatAfter)
	}
	if e.PlayerCount() != 1 {
		t.Errorf("expected 1 seated player after rejoin, got %d", e.PlayerCount())
	}
}

func TestApply_AcceptedMovesFillCells(t *testing.T) {
	// Why: after N accepted moves exactly N cells are non-empty and no
	// cell is ever overwritten
	e, playerX, playerO := newEngineWithPlayers(t)

	moves := []struct {
		client   uuid.UUID
		row, col int
	}{
		{playerX, 0, 0},
		{playerO, 1, 1},
		{playerX, 2, 2},
		{playerO, 0, 1},
	}

	for n, m := range moves {
		mustMove(t, e, m.client, m.row, m.col)

		filled := 0
		for _, row := range e.board {
			for _, cell := range row {
				if cell != Empty {
					filled++
				}
			}
		}
		if filled != n+1 {
			t.Fatalf("after %d moves expected %d filled cells, got %d", n+1, n+1, filled)
		}
	}

	// Occupied cell can never be overwritten, even by the current turn
	before := e.board
	if e.Apply(playerX, []byte(`{"row":0,"col":0}`)) {
		t.Error("move onto occupied cell was accepted")
	}
	if e.board != before {
		t.Error("refused move mutated the board")
	}
}

func TestApply_WrongSeatRefused(t *testing.T) {
	e, playerX, playerO := newEngineWithPlayers(t)

	// Seat 1 moving on seat 0's turn
	if e.Apply(playerO, []byte(`{"row":0,"col":0}`)) {
		t.Error("out-of-turn move was accepted")
	}

	mustMove(t, e, playerX, 0, 0)

	// Seat 0 moving again on seat 1's turn
	if e.Apply(playerX, []byte(`{"row":1,"col":1}`)) {
		t.Error("out-of-turn move was accepted")
	}
	if e.board[1][1] != Empty {
		t.Error("refused move mutated the board")
	}
}

func TestApply_UnseatedClientsRefused(t *testing.T) {
	e, playerX, _ := newEngineWithPlayers(t)
	observer := uuid.New()
	stranger := uuid.New()
	e.Join(observer)

	if e.Apply(observer, []byte(`{"row":0,"col":0}`)) {
		t.Error("observer move was accepted")
	}
	if e.Apply(stranger, []byte(`{"row":0,"col":0}`)) {
		t.Error("unknown client move was accepted")
	}

	// The seat holder can still move afterwards
	mustMove(t, e, playerX, 0, 0)
}

func TestApply_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty object", `{}`},
		{"missing col", `{"row":0}`},
		{"missing row", `{"col":2}`},
		{"wrong types", `{"row":"top","col":"left"}`},
		{"not json", `hello`},
		{"null fields", `{"row":null,"col":null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, playerX, _ := newEngineWithPlayers(t)
			if e.Apply(playerX, []byte(tc.payload)) {
				t.Errorf("malformed payload %q was accepted", tc.payload)
			}
			if e.board != ([3][3]Cell{}) {
				t.Errorf("malformed payload %q mutated the board", tc.payload)
			}
			if e.Status() != game.StatusPlaying {
				t.Errorf("malformed payload %q changed status", tc.payload)
			}
		})
	}
}

func TestApply_OutOfRangeCoordinates(t *testing.T) {
	tests := []struct {
		row, col int
	}{
		{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {7, 7},
	}

	for _, tc := range tests {
		e, playerX, _ := newEngineWithPlayers(t)
		payload := fmt.Appendf(nil, `{"row":%d,"col":%d}`, tc.row, tc.col)
		if e.Apply(playerX, payload) {
			t.Errorf("out-of-range move (%d,%d) was accepted", tc.row, tc.col)
		}
	}
}

func TestRowWin(t *testing.T) {
	// (0,0)X (1,0)O (0,1)X (1,1)O (0,2)X completes row 0 for X
	e, playerX, playerO := newEngineWithPlayers(t)

	mustMove(t, e, playerX, 0, 0)
	mustMove(t, e, playerO, 1, 0)
	mustMove(t, e, playerX, 0, 1)
	mustMove(t, e, playerO, 1, 1)

	if e.Status() != game.StatusPlaying {
		t.Fatalf("status should still be Playing before the winning move, got %s", e.Status())
	}

	mustMove(t, e, playerX, 0, 2)

	if e.Status() != game.StatusWin {
		t.Errorf("expected Win after completing row 0, got %s", e.Status())
	}
	for col := 0; col < 3; col++ {
		if e.board[0][col] != MarkX {
			t.Errorf("row 0 col %d should be X, got %v", col, e.board[0][col])
		}
	}
}

func TestColumnAndDiagonalWins(t *testing.T) {
	tests := []struct {
		name  string
		xMoves [][2]int // X wins with the last of these
		oMoves [][2]int
	}{
		{"column", [][2]int{{0, 1}, {1, 1}, {2, 1}}, [][2]int{{0, 0}, {1, 0}}},
		{"diagonal", [][2]int{{0, 0}, {1, 1}, {2, 2}}, [][2]int{{0, 1}, {0, 2}}},
		{"anti-diagonal", [][2]int{{0, 2}, {1, 1}, {2, 0}}, [][2]int{{0, 0}, {0, 1}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, playerX, playerO := newEngineWithPlayers(t)
			for i := range tc.xMoves {
				mustMove(t, e, playerX, tc.xMoves[i][0], tc.xMoves[i][1])
				if i < len(tc.oMoves) {
					mustMove(t, e, playerO, tc.oMoves[i][0], tc.oMoves[i][1])
				}
			}
			if e.Status() != game.StatusWin {
				t.Errorf("expected Win, got %s", e.Status())
			}
		})
	}
}

func TestDraw(t *testing.T) {
	// Full grid, no three-in-a-row anywhere:
	//   X O X
	//   O O X
	//   X X O
	e, playerX, playerO := newEngineWithPlayers(t)

	mustMove(t, e, playerX, 0, 0)
	mustMove(t, e, playerO, 0, 1)
	mustMove(t, e, playerX, 0, 2)
	mustMove(t, e, playerO, 1, 0)
	mustMove(t, e, playerX, 1, 2)
	mustMove(t, e, playerO, 1, 1)
	mustMove(t, e, playerX, 2, 0)
	mustMove(t, e, playerO, 2, 2)
	mustMove(t, e, playerX, 2, 1)

	if e.Status() != game.StatusDraw {
		t.Errorf("expected Draw on full grid with no line, got %s", e.Status())
	}
}

func TestTerminalImmutability(t *testing.T) {
	// Why: once Win or Draw, every subsequent Apply must return false
	// regardless of payload validity
	e, playerX, playerO := newEngineWithPlayers(t)

	mustMove(t, e, playerX, 0, 0)
	mustMove(t, e, playerO, 1, 0)
	mustMove(t, e, playerX, 0, 1)
	mustMove(t, e, playerO, 1, 1)
	mustMove(t, e, playerX, 0, 2)

	if e.Status() != game.StatusWin {
		t.Fatalf("expected Win, got %s", e.Status())
	}

	boardBefore := e.board
	payloads := []string{
		`{"row":2,"col":2}`, // valid-looking move onto an empty cell
		`{"row":1,"col":2}`,
		`{}`,
	}
	for _, client := range []uuid.UUID{playerX, playerO} {
		for _, payload := range payloads {
			if e.Apply(client, []byte(payload)) {
				t.Errorf("move %s accepted after terminal state", payload)
			}
		}
	}
	if e.board != boardBefore {
		t.Error("board changed after terminal state")
	}
	if e.Status() != game.StatusWin {
		t.Errorf("terminal status changed to %s", e.Status())
	}
}
