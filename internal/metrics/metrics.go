package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/minesweeper3d/internal/mines"
)

// Metrics records game outcomes. It implements game.Observer.
type Metrics struct {
	registry *prometheus.Registry

	started  prometheus.Counter
	ended    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	evicted  prometheus.Counter
	moves    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minesweeper",
			Name:      "games_started_total",
			Help:      "Boards generated by new games, resets and re-initializations.",
		}),
		ended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minesweeper",
			Name:      "games_ended_total",
			Help:      "Finished games by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minesweeper",
			Name:      "game_duration_seconds",
			Help:      "Time from board generation to win or loss.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 10),
		}, []string{"outcome"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minesweeper",
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped after the idle TTL.",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minesweeper",
			Name:      "moves_total",
			Help:      "Moves received by kind and transport.",
		}, []string{"move", "transport"}),
	}
	m.registry.MustRegister(m.started, m.ended, m.duration, m.evicted, m.moves)
	return m
}

func outcome(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}

func (m *Metrics) Started(mines.Params) {
	m.started.Inc()
}

func (m *Metrics) Ended(_ mines.Params, won bool, d time.Duration) {
	m.ended.WithLabelValues(outcome(won)).Inc()
	m.duration.WithLabelValues(outcome(won)).Observe(d.Seconds())
}

func (m *Metrics) Evicted(n int) {
	m.evicted.Add(float64(n))
}

func (m *Metrics) Move(move, transport string) {
	m.moves.WithLabelValues(move, transport).Inc()
}

// RegisterSessionGauge exposes the live session count.
func (m *Metrics) RegisterSessionGauge(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "minesweeper",
		Name:      "sessions",
		Help:      "Sessions currently held in memory.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
