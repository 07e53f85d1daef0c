package app

import (
	"net/http"
	"strings"

	"github.com/vancomm/minesweeper3d/internal/handlers"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.store, a.config.Board, a.config.WebSocket, a.metrics,
	)

	base := strings.TrimRight(a.config.App.BasePath, "/")

	a.router.HandleFunc("POST "+base+"/game", game.NewGame)
	a.router.HandleFunc("GET "+base+"/game/{id}", game.Fetch)
	a.router.HandleFunc("DELETE "+base+"/game/{id}", game.Delete)
	a.router.HandleFunc("POST "+base+"/game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST "+base+"/game/{id}/reset", game.Reset)
	a.router.HandleFunc("POST "+base+"/game/{id}/init", game.Initialize)
	a.router.HandleFunc("GET "+base+"/game/{id}/connect", game.ConnectWS)

	a.router.Handle("GET "+base+"/metrics", a.metrics.Handler())
	a.router.HandleFunc("GET "+base+"/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
