package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/minesweeper3d/internal/app"
	"github.com/vancomm/minesweeper3d/internal/config"
	"github.com/vancomm/minesweeper3d/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load config: %s\n", err)
		os.Exit(1)
	}

	logger, closer := logging.New(cfg.Log, cfg.App.Development)
	defer closer.Close()

	logger.Debug("config",
		slog.String("port", cfg.App.Port),
		slog.String("default board", cfg.Board.Params().String()),
		slog.Int("max cells", cfg.Board.MaxCells),
		slog.Duration("session ttl", cfg.Sessions.TTL),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.New(logger, cfg).Start(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		closer.Close()
		os.Exit(1)
	}
}
