package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gamerooms/internal/config"
	"gamerooms/internal/game"
	"gamerooms/internal/game/checkers"
	"gamerooms/internal/game/chess"
	"gamerooms/internal/game/connect4"
	"gamerooms/internal/game/gomoku"
	"gamerooms/internal/game/password"
	"gamerooms/internal/game/reversi"
	"gamerooms/internal/game/tictactoe"
	"gamerooms/internal/game/wheel"
	"gamerooms/internal/room"
	"gamerooms/internal/server"
	"gamerooms/internal/storage"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	registry := game.NewRegistry()
	registry.Register(tictactoe.Game{})
	registry.Register(connect4.Game{})
	registry.Register(gomoku.Game{})
	registry.Register(reversi.Game{})
	registry.Register(checkers.Game{})
	registry.Register(chess.Game{})
	registry.Register(password.New())
	registry.Register(wheel.New())
	log.Info().Int("games", len(registry.List())).Msg("games registered")

	mgr := room.NewManager(registry, store, log)
	ipl := server.NewIPRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	srv := server.New(mgr, store, cfg.AllowedOrigins, ipl, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Environment).Msg("gaming rooms server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
