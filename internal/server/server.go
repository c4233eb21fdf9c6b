package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"webgames-server/internal/game"
	"webgames-server/internal/ledger"
	"webgames-server/internal/rooms"
	"webgames-server/internal/tictactoe"
)

// DefaultGameKind is used when a connection names no game.
const DefaultGameKind = tictactoe.Kind

type Server struct {
	port        int
	ledger      *ledger.Ledger
	factory     *game.Factory
	registry    *rooms.Registry
	connections *ConnectionManager
	rateLimiter *RateLimiter
}

// NewServer wires the factory, registry, ledger, and HTTP surface.
func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "webgames.db"
	}

	winLedger, err := ledger.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open win ledger")
	}
	if err := runMigrations(winLedger.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	factory := game.NewFactory()
	factory.Register(tictactoe.Kind, tictactoe.New)

	s := &Server{
		port:        port,
		ledger:      winLedger,
		factory:     factory,
		registry:    rooms.NewRegistry(factory, winLedger),
		connections: NewConnectionManager(),
		rateLimiter: NewRateLimiter(10, time.Second),
	}

	go s.rateLimiterCleanupTask()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// runMigrations applies the ledger schema using goose.
func runMigrations(db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "./db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("database migrations applied")
	return nil
}

// Shutdown closes every live connection with a going-away frame and then
// closes the ledger.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, conn := range s.connections.All() {
		conn.Close(websocket.StatusGoingAway, "Server shutting down")
	}
	return s.ledger.Close()
}

// rateLimiterCleanupTask periodically drops rate-limit state for
// connections with no recent activity.
func (s *Server) rateLimiterCleanupTask() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.rateLimiter.Cleanup()
	}
}
