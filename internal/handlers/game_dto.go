package handlers

import (
	"fmt"
	"strings"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper3d/internal/game"
	"github.com/vancomm/minesweeper3d/internal/mines"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func decode(dst any, src map[string][]string) error {
	if err := decoder.Decode(dst, src); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

type BoardParamsDTO struct {
	Width     int `schema:"width"`
	Height    int `schema:"height"`
	MineCount int `schema:"mine_count"`
}

// ParseBoardParams decodes board params from src. Keys missing from src
// keep their value from base.
func ParseBoardParams(src map[string][]string, base mines.Params) (mines.Params, error) {
	dto := BoardParamsDTO(base)
	if err := decode(&dto, src); err != nil {
		return mines.Params{}, err
	}
	return mines.Params(dto), nil
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func ParseMove(src map[string][]string) (GameMove, int, int, error) {
	var dto MoveDTO
	if err := decode(&dto, src); err != nil {
		return 0, 0, 0, err
	}
	move, err := ParseGameMove(dto.Move)
	if err != nil {
		return 0, 0, 0, err
	}
	return move, dto.X, dto.Y, nil
}

type GameMove uint8

const (
	Open GameMove = iota + 1
	Flag
)

func (m GameMove) String() string {
	switch m {
	case Open:
		return "open"
	case Flag:
		return "flag"
	default:
		return fmt.Sprintf("GameMove(%d)", m)
	}
}

func ParseGameMove(s string) (GameMove, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "flag":
		return Flag, nil
	default:
		return 0, fmt.Errorf("%w: move must be one of 'open', 'flag'", ErrBadRequest)
	}
}

type GameSessionDTO struct {
	GameSessionId string     `json:"game_session_id"`
	Grid          mines.Grid `json:"grid"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	MineCount     int        `json:"mine_count"`
	Flags         int        `json:"flags"`
	GameOver      bool       `json:"game_over"`
	Won           bool       `json:"won"`
	StartedAt     int64      `json:"started_at"`
	EndedAt       *int64     `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(s game.Snapshot) *GameSessionDTO {
	var endedAt *int64
	if !s.EndedAt.IsZero() {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		GameSessionId: s.ID.String(),
		Grid:          s.Grid,
		Width:         s.Params.Width,
		Height:        s.Params.Height,
		MineCount:     s.Params.MineCount,
		Flags:         s.Flags,
		GameOver:      s.GameOver,
		Won:           s.Won,
		StartedAt:     s.StartedAt.UnixMilli(),
		EndedAt:       endedAt,
	}
}
