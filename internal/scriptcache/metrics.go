package scriptcache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache behaviour. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Fetches  *prometheus.CounterVec
	Hits     prometheus.Counter
	Duration prometheus.Histogram
}

// NewMetrics creates the cache collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "initr_script_fetch_total",
				Help: "Number of script fetches issued, by outcome.",
			},
			[]string{"outcome"},
		),
		Hits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "initr_script_cache_hits_total",
				Help: "Number of script requests answered from the cache.",
			},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "initr_script_fetch_duration_seconds",
				Help:    "Time taken to fetch and execute a script.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Fetches, m.Hits, m.Duration)
	}
	return m
}

func (m *Metrics) observeHit() {
	if m == nil {
		return
	}
	m.Hits.Inc()
}

func (m *Metrics) observeFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Fetches.WithLabelValues(outcome).Inc()
	m.Duration.Observe(d.Seconds())
}
