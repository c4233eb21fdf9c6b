package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"webgames-server/internal/server"
)

func gracefulShutdown(customServer *server.Server, httpServer *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutdown signal received, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := customServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server forced to shutdown")
	}

	done <- true
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	customServer, httpServer := server.NewServer()

	done := make(chan bool, 1)
	go gracefulShutdown(customServer, httpServer, done)

	log.Info().Str("addr", httpServer.Addr).Msg("server started")
	err := httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
