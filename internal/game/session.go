package game

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper3d/internal/mines"
)

// Observer is told about game lifecycle events. Ended fires at most once
// per board.
type Observer interface {
	Started(params mines.Params)
	Ended(params mines.Params, won bool, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) Started(mines.Params) {}
func (nopObserver) Ended(mines.Params, bool, time.Duration) {}

// Session owns one board and the parameters it was last built with. All
// methods are safe for concurrent use.
type Session struct {
	ID uuid.UUID

	mu        sync.Mutex
	params    mines.Params
	board     *mines.Board
	rnd       *rand.Rand
	observer  Observer
	now       func() time.Time
	startedAt time.Time
	endedAt   time.Time
	touchedAt time.Time
}

type Snapshot struct {
	ID        uuid.UUID
	Grid      mines.Grid
	Params    mines.Params
	Flags     int
	GameOver  bool
	Won       bool
	StartedAt time.Time
	EndedAt   time.Time
}

func NewSession(params mines.Params, rnd *rand.Rand, observer Observer) (*Session, error) {
	return newSession(uuid.New(), params, rnd, observer, time.Now)
}

func newSession(
	id uuid.UUID,
	params mines.Params,
	rnd *rand.Rand,
	observer Observer,
	now func() time.Time,
) (*Session, error) {
	if observer == nil {
		observer = nopObserver{}
	}
	s := &Session{
		ID:       id,
		rnd:      rnd,
		observer: observer,
		now:      now,
	}
	if err := s.Initialize(params); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize replaces the board with a fresh one built from params. The
// params are remembered for Reset. On error the current board is kept.
func (s *Session) Initialize(params mines.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := mines.New(params, s.rnd)
	if err != nil {
		return err
	}
	s.params = params
	s.board = board
	s.startedAt = s.now()
	s.endedAt = time.Time{}
	s.touchedAt = s.startedAt
	s.observer.Started(params)
	return nil
}

// Reset re-randomizes the board with the params of the last Initialize.
func (s *Session) Reset() error {
	s.mu.Lock()
	params := s.params
	s.mu.Unlock()
	return s.Initialize(params)
}

func (s *Session) Reveal(x, y int) (Snapshot, error) {
	return s.move(func(b *mines.Board) error { return b.Reveal(x, y) })
}

func (s *Session) ToggleFlag(x, y int) (Snapshot, error) {
	return s.move(func(b *mines.Board) error { return b.ToggleFlag(x, y) })
}

func (s *Session) move(apply func(*mines.Board) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchedAt = s.now()
	wasOver := s.board.Over()
	if err := apply(s.board); err != nil {
		return s.snapshot(), err
	}
	if !wasOver && s.board.Over() {
		s.endedAt = s.touchedAt
		s.observer.Ended(s.params, s.board.Won(), s.endedAt.Sub(s.startedAt))
	}
	return s.snapshot(), nil
}

func (s *Session) Params() mines.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Grid:      s.board.Grid(),
		Params:    s.params,
		Flags:     s.board.FlagCount(),
		GameOver:  s.board.GameOver(),
		Won:       s.board.Won(),
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}

// String returns a dump of the board for debug logging.
func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.String()
}

// LogValue defers rendering the board until a handler wants it.
func (s *Session) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}
