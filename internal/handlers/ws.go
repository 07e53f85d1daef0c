package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper3d/internal/game"
	"github.com/vancomm/minesweeper3d/internal/mines"
)

type wsCommand string

const (
	wsFetch wsCommand = "g"
	wsOpen  wsCommand = "o"
	wsFlag  wsCommand = "f"
	wsReset wsCommand = "n"
	wsInit  wsCommand = "i"
)

const wsReadLimit = 1 << 14

type gameExecutor struct {
	GameHandler
	session *game.Session
}

func parseInts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrBadRequest, n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d must be an int", ErrBadRequest, i+1)
		}
		out[i] = v
	}
	return out, nil
}

func (game gameExecutor) execute(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsFetch:
		_, err := parseInts(args, 0)
		return err
	case wsOpen, wsFlag:
		xy, err := parseInts(args, 2)
		if err != nil {
			return err
		}
		if cmd == wsOpen {
			game.moves.Move(Open.String(), "ws")
			_, err = game.session.Reveal(xy[0], xy[1])
		} else {
			game.moves.Move(Flag.String(), "ws")
			_, err = game.session.ToggleFlag(xy[0], xy[1])
		}
		return err
	case wsReset:
		if _, err := parseInts(args, 0); err != nil {
			return err
		}
		game.moves.Move("reset", "ws")
		return game.session.Reset()
	case wsInit:
		whm, err := parseInts(args, 3)
		if err != nil {
			return err
		}
		params := mines.Params{Width: whm[0], Height: whm[1], MineCount: whm[2]}
		if err := game.checkSize(params); err != nil {
			return err
		}
		game.moves.Move("init", "ws")
		return game.session.Initialize(params)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrBadRequest, cmd)
	}
}

// runGameLoop reads newline-separated commands from conn and answers every
// frame with the session state. A failing command aborts the rest of its
// frame and is reported to the client, as is a non-text frame; only
// transport errors end the loop.
func (game gameExecutor) runGameLoop(conn *websocket.Conn) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var cmdErr error
		if mt != websocket.TextMessage {
			cmdErr = fmt.Errorf("%w: only text frames are accepted", ErrBadRequest)
		} else {
			for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
				if cmdErr = game.execute(line); cmdErr != nil {
					break
				}
			}
		}

		if cmdErr != nil {
			if statusOf(cmdErr) == http.StatusInternalServerError {
				return cmdErr
			}
			game.logger.Debug("rejected ws command", slog.Any("error", cmdErr))
			if err := conn.WriteJSON(wrapError(cmdErr)); err != nil {
				return fmt.Errorf("unable to write json: %w", err)
			}
			continue
		}

		game.logger.Debug("ws frame handled",
			slog.String("id", game.session.ID.String()),
			slog.Any("board", game.session),
		)
		if err := conn.WriteJSON(NewGameSessionDTO(game.session.Snapshot())); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, err := g.session(r)
	if err != nil {
		replyError(w, g.logger, err)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Debug("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	g.logger.Debug("established WS connection", slog.String("id", session.ID.String()))

	// Unblock ReadMessage when the server shuts down.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	game := gameExecutor{GameHandler: g, session: session}
	err = game.runGameLoop(conn)
	switch {
	case err == nil,
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
		errors.Is(ctx.Err(), context.Canceled):
		g.logger.Debug("WS connection closed", slog.String("id", session.ID.String()))
	default:
		g.logger.Warn("error in ws loop", slog.Any("error", err))
	}
}
