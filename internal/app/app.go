package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper3d/internal/config"
	"github.com/vancomm/minesweeper3d/internal/game"
	"github.com/vancomm/minesweeper3d/internal/metrics"
	"github.com/vancomm/minesweeper3d/internal/middleware"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger  *slog.Logger
	config  *config.Config
	router  *http.ServeMux
	store   *game.Store
	metrics *metrics.Metrics
}

func New(logger *slog.Logger, cfg *config.Config) *App {
	m := metrics.New()
	store := game.NewStore(logger,
		game.WithTTL(cfg.Sessions.TTL),
		game.WithObserver(m),
		game.WithEvictHook(m.Evicted),
	)
	m.RegisterSessionGauge(store.Len)

	app := &App{
		logger:  logger,
		config:  cfg,
		router:  http.NewServeMux(),
		store:   store,
		metrics: m,
	}
	app.loadRoutes()

	return app
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Recover(a.logger),
		middleware.Cors(a.config.WebSocket.AllowedOrigins),
		middleware.Logging(a.logger),
	)
}

// Start serves until ctx is done or the listener fails, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.config.App.Port,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening",
			slog.String("addr", server.Addr),
			slog.String("base path", a.config.App.BasePath),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.store.RunJanitor(gCtx, a.config.Sessions.JanitorInterval)
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
