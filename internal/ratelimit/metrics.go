package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ChecksTotal *prometheus.CounterVec
	DeniedTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zipstate_ratelimit_checks_total",
			Help: "Total number of rate limit checks by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		DeniedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zipstate_ratelimit_denied_total",
			Help: "Total number of requests denied by rate limiting",
		}, []string{"class"}),
	}
}

func (m *Metrics) ObserveCheck(class EndpointClass, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
		m.DeniedTotal.WithLabelValues(string(class)).Inc()
	}
	m.ChecksTotal.WithLabelValues(string(class), outcome).Inc()
}
