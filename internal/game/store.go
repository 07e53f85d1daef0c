package game

import (
	"context"
	"errors"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper3d/internal/mines"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions in memory. Nothing outlives the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	logger   *slog.Logger
	observer Observer
	ttl      time.Duration
	newRand  func() *rand.Rand
	now      func() time.Time
	onEvict  func(n int)
}

type StoreOption func(*Store)

// WithTTL sets how long a session may stay untouched before Evict drops it.
// Zero disables eviction.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

func WithObserver(o Observer) StoreOption {
	return func(s *Store) { s.observer = o }
}

func WithRand(newRand func() *rand.Rand) StoreOption {
	return func(s *Store) { s.newRand = newRand }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithEvictHook is called with the number of sessions dropped by each
// eviction pass that dropped any.
func WithEvictHook(fn func(n int)) StoreOption {
	return func(s *Store) { s.onEvict = fn }
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func NewStore(logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger,
		observer: nopObserver{},
		newRand:  NewRand,
		now:      time.Now,
		onEvict:  func(int) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(params mines.Params) (*Session, error) {
	session, err := newSession(uuid.New(), params, s.newRand(), s.observer, s.now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	n := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session created",
		slog.String("id", session.ID.String()),
		slog.String("params", params.String()),
		slog.Int("sessions", n),
	)
	return session, nil
}

func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict drops every session untouched since now minus the TTL and returns
// how many were dropped.
func (s *Store) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	deadline := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(deadline) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.onEvict(n)
	}
	return n
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	if s.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Evict(s.now()); n > 0 {
				s.logger.Info("evicted idle sessions",
					slog.Int("evicted", n),
					slog.Int("remaining", s.Len()),
				)
			}
		}
	}
}
