package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger persists aggregate win counts per (game kind, alias). It sits
// outside the game core: the move path calls RecordWin fire-and-forget and
// never waits on it, so a failing database cannot affect gameplay.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path. Callers run
// migrations against DB() before first use.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach ledger database: %w", err)
	}
	return &Ledger{db: db}, nil
}

// New wraps an existing database handle, used by tests with in-memory sqlite.
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) DB() *sql.DB {
	return l.db
}

// RecordWin increments the win count for alias under gameKind.
func (l *Ledger) RecordWin(ctx context.Context, gameKind, alias string) error {
	query := `
		INSERT INTO wins (game_kind, alias, count)
		VALUES (?, ?, 1)
		ON CONFLICT (game_kind, alias) DO UPDATE SET count = count + 1
	`

	if _, err := l.db.ExecContext(ctx, query, gameKind, alias); err != nil {
		return fmt.Errorf("failed to record win for %s/%s: %w", gameKind, alias, err)
	}
	return nil
}

// Wins returns the alias → count mapping for one game kind.
func (l *Ledger) Wins(ctx context.Context, gameKind string) (map[string]int, error) {
	query := `
		SELECT alias, count FROM wins WHERE game_kind = ? ORDER BY count DESC
	`

	rows, err := l.db.QueryContext(ctx, query, gameKind)
	if err != nil {
		return nil, fmt.Errorf("failed to query wins for %s: %w", gameKind, err)
	}
	defer rows.Close()

	wins := make(map[string]int)
	for rows.Next() {
		var alias string
		var count int
		if err := rows.Scan(&alias, &count); err != nil {
			return nil, fmt.Errorf("failed to scan win row: %w", err)
		}
		wins[alias] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read win rows: %w", err)
	}

	return wins, nil
}

// Health reports database reachability for the health endpoint.
func (l *Ledger) Health() map[string]string {
	if err := l.db.Ping(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
