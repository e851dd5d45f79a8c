package metrics

import (
	"context"
	"time"

	"betting/events"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	BetsPlaced     prometheus.Counter
	BetsSettled    *prometheus.CounterVec
	BalanceChanges *prometheus.CounterVec
	FixturesSynced *prometheus.CounterVec
	JobRuns        *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BetsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "betting_bets_placed_total",
			Help: "Bets staked",
		}),
		BetsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betting_bets_settled_total",
			Help: "Bets finished by the settlement sweep",
		}, []string{"result"}),
		BalanceChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betting_balance_changes_total",
			Help: "Committed balance mutations by kind",
		}, []string{"kind"}),
		FixturesSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betting_fixtures_synced_total",
			Help: "Fixtures written by the sync job",
		}, []string{"competition", "change"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betting_job_runs_total",
			Help: "Periodic job runs by outcome",
		}, []string{"job", "outcome"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "betting_job_duration_seconds",
			Help:    "Periodic job run time",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"job"}),
	}

	reg.MustRegister(
		m.BetsPlaced,
		m.BetsSettled,
		m.BalanceChanges,
		m.FixturesSynced,
		m.JobRuns,
		m.JobDuration,
	)
	return m
}

// Attach counts committed domain events published on bus
func (m *Metrics) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, func(_ context.Context, _ events.Event) {
		m.BetsPlaced.Inc()
	})
	bus.Subscribe(events.EventTypeBetSettled, func(_ context.Context, e events.Event) {
		if settled, ok := e.(events.BetSettledEvent); ok {
			m.BetsSettled.WithLabelValues(settledResult(settled.Won)).Inc()
		}
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			m.BalanceChanges.WithLabelValues(string(change.Kind)).Inc()
		}
	})
	bus.Subscribe(events.EventTypeFixturesSynced, func(_ context.Context, e events.Event) {
		if synced, ok := e.(events.FixturesSyncedEvent); ok {
			m.FixturesSynced.WithLabelValues(synced.CompetitionCode, "created").Add(float64(synced.Created))
			m.FixturesSynced.WithLabelValues(synced.CompetitionCode, "updated").Add(float64(synced.Updated))
		}
	})
}

// ObserveJob records one run of a periodic job
func (m *Metrics) ObserveJob(job string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
	m.JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func settledResult(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
