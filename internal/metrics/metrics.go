// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	NoteOps    *prometheus.CounterVec
	AIRequests *prometheus.CounterVec
	AILatency  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		NoteOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notes_operations_total",
				Help: "Note store operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Questions answered by the AI pipeline by outcome",
			},
			[]string{"outcome"},
		),
		AILatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "Latency of the external text generation call",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.NoteOps, m.AIRequests, m.AILatency)
	return m
}

// NoteOp counts one store operation.
func (m *Metrics) NoteOp(op string, err error) {
	if m == nil {
		return
	}
	m.NoteOps.WithLabelValues(op, outcome(err)).Inc()
}

// AIRequest counts one pipeline run; outcome is one of the Outcome* constants or "empty".
func (m *Metrics) AIRequest(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(outcome).Inc()
	if took > 0 {
		m.AILatency.Observe(took.Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
