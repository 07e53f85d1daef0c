package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/minesweeper3d/internal/game"
	"github.com/vancomm/minesweeper3d/internal/mines"
)

var ErrBadRequest = errors.New("bad request")

func SendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func replyWith(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	if err := SendJSON(w, status, v); err != nil {
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, mines.ErrInvalidConfiguration),
		errors.Is(err, mines.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func replyError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", slog.Any("error", err))
		replyWith(w, logger, status, wrapError(errors.New("internal error")))
		return
	}
	logger.Debug("rejected request", slog.Int("status", status), slog.Any("error", err))
	replyWith(w, logger, status, wrapError(err))
}
