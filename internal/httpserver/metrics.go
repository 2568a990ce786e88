// internal/httpserver/metrics.go
//
// Prometheus collectors served on /metrics.

package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robalobadob/digitmind/internal/store"
)

// metrics are registered on the server's own registry so tests can build
// several servers in one process.
type metrics struct {
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	guesses  *prometheus.HistogramVec
	evicted  prometheus.Counter
}

func newMetrics(reg *prometheus.Registry, st store.Store) *metrics {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "digitmind_sessions_active",
		Help: "Sessions currently held in memory.",
	}, func() float64 { return float64(st.Len()) })

	return &metrics{
		started: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digitmind_sessions_started_total",
			Help: "Sessions started, by mode.",
		}, []string{"mode"}),
		finished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digitmind_sessions_finished_total",
			Help: "Sessions finished, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		guesses: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digitmind_guesses_per_session",
			Help:    "Scored guesses in finished sessions.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 16, 24},
		}, []string{"mode"}),
		evicted: f.NewCounter(prometheus.CounterOpts{
			Name: "digitmind_sessions_evicted_total",
			Help: "Sessions dropped from memory after their TTL.",
		}),
	}
}

func (m *metrics) observeFinish(p progress) {
	m.finished.WithLabelValues(string(p.Mode), p.State).Inc()
	m.guesses.WithLabelValues(string(p.Mode)).Observe(float64(p.Guesses))
}
