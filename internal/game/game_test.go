package game

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper3d/internal/mines"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	mu      sync.Mutex
	started []mines.Params
	ended   []bool
}

func (r *recorder) Started(p mines.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, p)
}

func (r *recorder) Ended(_ mines.Params, won bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, won)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestSessionResetReusesParams(t *testing.T) {
	rec := &recorder{}
	params := mines.Params{Width: 7, Height: 4, MineCount: 5}
	s, err := NewSession(params, seeded(), rec)
	require.NoError(t, err)

	_, err = s.ToggleFlag(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Snapshot().Flags)

	require.NoError(t, s.Reset())
	snap := s.Snapshot()
	assert.Equal(t, params, snap.Params)
	assert.Len(t, snap.Grid, 28)
	assert.Equal(t, 0, snap.Flags)
	for _, c := range snap.Grid {
		assert.Equal(t, mines.Unknown, c)
	}
	assert.Equal(t, []mines.Params{params, params}, rec.started)
}

func TestSessionInitialize(t *testing.T) {
	s, err := NewSession(mines.DefaultParams, seeded(), nil)
	require.NoError(t, err)

	next := mines.Params{Width: 20, Height: 5, MineCount: 12}
	require.NoError(t, s.Initialize(next))
	assert.Equal(t, next, s.Params())

	err = s.Initialize(mines.Params{Width: 2, Height: 2, MineCount: 4})
	require.ErrorIs(t, err, mines.ErrInvalidConfiguration)
	assert.Equal(t, next, s.Params(), "failed initialize must keep the board")

	require.NoError(t, s.Reset())
	assert.Equal(t, next, s.Params())
	assert.Len(t, s.Snapshot().Grid, 100)
}

func TestNewSessionInvalid(t *testing.T) {
	_, err := NewSession(mines.Params{Width: 0, Height: 3}, seeded(), nil)
	require.ErrorIs(t, err, mines.ErrInvalidConfiguration)
}

func TestSessionEndsOnce(t *testing.T) {
	rec := &recorder{}
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	s, err := newSession(uuid.New(), mines.Params{Width: 2, Height: 1, MineCount: 1}, seeded(), rec, c.Now)
	require.NoError(t, err)

	c.Advance(3 * time.Second)
	snap, err := s.Reveal(0, 0)
	require.NoError(t, err)
	require.True(t, snap.GameOver || snap.Won)
	assert.False(t, snap.GameOver && snap.Won)
	assert.Equal(t, c.Now(), snap.EndedAt)

	_, err = s.Reveal(1, 0)
	require.NoError(t, err)
	_, err = s.ToggleFlag(1, 0)
	require.NoError(t, err)

	require.Len(t, rec.ended, 1)
	assert.Equal(t, snap.Won, rec.ended[0])
	assert.Equal(t, snap, s.Snapshot())
}

func TestSessionOutOfBounds(t *testing.T) {
	s, err := NewSession(mines.DefaultParams, seeded(), nil)
	require.NoError(t, err)

	_, err = s.Reveal(10, 0)
	require.ErrorIs(t, err, mines.ErrOutOfBounds)
	_, err = s.ToggleFlag(0, -1)
	require.ErrorIs(t, err, mines.ErrOutOfBounds)
}

func TestSessionConcurrentMoves(t *testing.T) {
	s, err := NewSession(mines.Params{Width: 16, Height: 16, MineCount: 40}, seeded(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for y := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range 16 {
				_, _ = s.ToggleFlag(x, y)
				_, _ = s.Reveal(x, y)
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.False(t, snap.GameOver && snap.Won)
}

func TestStore(t *testing.T) {
	store := NewStore(discard, WithRand(seeded))

	s, err := store.Create(mines.DefaultParams)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = store.Get(uuid.New())
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(s.ID))
	require.ErrorIs(t, store.Delete(s.ID), ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())

	_, err = store.Create(mines.Params{Width: 1, Height: 1, MineCount: 1})
	require.ErrorIs(t, err, mines.ErrInvalidConfiguration)
	assert.Equal(t, 0, store.Len())
}

func TestStoreEvict(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	evicted := 0
	store := NewStore(discard,
		WithTTL(time.Minute),
		WithClock(c.Now),
		WithRand(seeded),
		WithEvictHook(func(n int) { evicted += n }),
	)

	idle, err := store.Create(mines.DefaultParams)
	require.NoError(t, err)
	active, err := store.Create(mines.DefaultParams)
	require.NoError(t, err)

	c.Advance(45 * time.Second)
	_, err = active.ToggleFlag(0, 0)
	require.NoError(t, err)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, store.Evict(c.Now()))
	assert.Equal(t, 1, evicted)

	_, err = store.Get(idle.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(active.ID)
	require.NoError(t, err)

	c.Advance(time.Hour)
	assert.Equal(t, 1, store.Evict(c.Now()))
	assert.Equal(t, 0, store.Len())
}

func TestStoreEvictDisabled(t *testing.T) {
	store := NewStore(discard)
	_, err := store.Create(mines.DefaultParams)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Evict(time.Now().Add(24*time.Hour)))
}

func TestRunJanitorStops(t *testing.T) {
	store := NewStore(discard, WithTTL(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.RunJanitor(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
