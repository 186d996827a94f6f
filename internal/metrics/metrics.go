// ABOUTME: Prometheus counters for inbound events and per-step side effect outcomes
// ABOUTME: Uses a private registry so multiple instances can coexist in tests

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "support_relay"

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the relay's counters.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	steps    *prometheus.CounterVec
}

// New creates the counters and registers them, plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound platform events dispatched, by kind.",
		}, []string{"kind"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Side effects performed while handling events, by step and outcome.",
		}, []string{"step", "outcome"}),
	}

	m.registry.MustRegister(
		m.events,
		m.steps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveEvent counts one dispatched event.
func (m *Metrics) ObserveEvent(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

// ObserveStep counts one side effect; a nil err is a success.
func (m *Metrics) ObserveStep(step string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.steps.WithLabelValues(step, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
