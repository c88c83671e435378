// Package metrics exposes Prometheus instruments for the resolution service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupsTotal   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	MissesTotal    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zipstate_lookups_total",
			Help: "Total number of code lookups by domain and outcome",
		}, []string{"domain", "outcome"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zipstate_lookup_duration_seconds",
			Help:    "Latency of code lookups by domain",
			Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"domain"}),
		MissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zipstate_lookup_misses_total",
			Help: "Total number of lookups that matched no rule",
		}, []string{"domain"}),
	}
}

// ObserveLookup records one lookup with its outcome and latency.
func (m *Metrics) ObserveLookup(domain, outcome string, elapsed time.Duration) {
	m.LookupsTotal.WithLabelValues(domain, outcome).Inc()
	m.LookupDuration.WithLabelValues(domain).Observe(elapsed.Seconds())
}

// ObserveMiss counts one unmatched code.
func (m *Metrics) ObserveMiss(domain string) {
	m.MissesTotal.WithLabelValues(domain).Inc()
}
