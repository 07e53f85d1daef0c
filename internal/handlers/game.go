package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper3d/internal/config"
	"github.com/vancomm/minesweeper3d/internal/game"
	"github.com/vancomm/minesweeper3d/internal/mines"
)

type MoveRecorder interface {
	Move(move, transport string)
}

type nopRecorder struct{}

func (nopRecorder) Move(string, string) {}

type GameHandler struct {
	logger   *slog.Logger
	store    *game.Store
	defaults mines.Params
	maxCells int
	upgrader *websocket.Upgrader
	moves    MoveRecorder
}

func NewGameHandler(
	logger *slog.Logger,
	store *game.Store,
	board config.Board,
	ws config.WebSocket,
	moves MoveRecorder,
) *GameHandler {
	if moves == nil {
		moves = nopRecorder{}
	}
	return &GameHandler{
		logger:   logger,
		store:    store,
		defaults: board.Params(),
		maxCells: board.MaxCells,
		upgrader: ws.Upgrader(),
		moves:    moves,
	}
}

func (g GameHandler) checkSize(p mines.Params) error {
	if p.Width > g.maxCells || p.Height > g.maxCells || p.Cells() > g.maxCells {
		return fmt.Errorf(
			"%w: board %s exceeds the limit of %d cells",
			ErrBadRequest, p, g.maxCells,
		)
	}
	return nil
}

func (g GameHandler) session(r *http.Request) (*game.Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session id", ErrBadRequest)
	}
	return g.store.Get(id)
}

func (g GameHandler) reply(w http.ResponseWriter, s game.Snapshot) {
	replyWith(w, g.logger, http.StatusOK, NewGameSessionDTO(s))
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseBoardParams(r.URL.Query(), g.defaults)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}
	if err := g.checkSize(params); err != nil {
		replyError(w, g.logger, err)
		return
	}

	session, err := g.store.Create(params)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	replyWith(w, g.logger, http.StatusCreated, NewGameSessionDTO(session.Snapshot()))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, err := g.session(r)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}
	g.reply(w, session.Snapshot())
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	session, err := g.session(r)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	move, x, y, err := ParseMove(r.URL.Query())
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	g.moves.Move(move.String(), "http")

	var snap game.Snapshot
	switch move {
	case Open:
		snap, err = session.Reveal(x, y)
	case Flag:
		snap, err = session.ToggleFlag(x, y)
	}
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	g.logger.Debug("move",
		slog.String("id", session.ID.String()),
		slog.String("move", move.String()),
		slog.Int("x", x), slog.Int("y", y),
		slog.Any("board", session),
	)

	g.reply(w, snap)
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := g.session(r)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	g.moves.Move("reset", "http")

	if err := session.Reset(); err != nil {
		replyError(w, g.logger, err)
		return
	}
	g.reply(w, session.Snapshot())
}

func (g GameHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	session, err := g.session(r)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	params, err := ParseBoardParams(r.URL.Query(), session.Params())
	if err != nil {
		replyError(w, g.logger, err)
		return
	}
	if err := g.checkSize(params); err != nil {
		replyError(w, g.logger, err)
		return
	}

	g.moves.Move("init", "http")

	if err := session.Initialize(params); err != nil {
		replyError(w, g.logger, err)
		return
	}
	g.reply(w, session.Snapshot())
}

func (g GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		replyError(w, g.logger, fmt.Errorf("%w: invalid session id", ErrBadRequest))
		return
	}
	if err := g.store.Delete(id); err != nil {
		replyError(w, g.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
