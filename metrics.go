package aredis

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the per-client Prometheus instrumentation. Grounded in
// friendsincode-grimnir_radio's use of github.com/prometheus/client_golang
// for service-level gauges/counters; this module carries the same pattern
// for the dispatch engine's own health, not the Redis data plane.
type metrics struct {
	queueDepth     prometheus.Gauge
	inFlight       prometheus.Gauge
	pollWakeups    prometheus.Counter
	disconnects    prometheus.Counter
	submitFailures prometheus.Counter
}

// NewMetrics registers a fresh instrument set under reg. Pass
// prometheus.NewRegistry() (or nil to use a private, unregistered
// registry) so multiple Clients in the same process don't collide on
// metric names.
func NewMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aredis_command_queue_depth",
			Help: "Number of command nodes drained in the most recent poll-loop iteration.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aredis_commands_in_flight",
			Help: "Number of commands submitted to the protocol engine awaiting a reply.",
		}),
		pollWakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aredis_poll_wakeups_total",
			Help: "Number of times the poll goroutine woke from its wait.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aredis_disconnects_total",
			Help: "Number of event loops that terminated due to connection loss or Close.",
		}),
		submitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aredis_submit_failures_total",
			Help: "Number of commands that failed Protocol Engine submission.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queueDepth, m.inFlight, m.pollWakeups, m.disconnects, m.submitFailures)
	}
	return m
}

// noopMetrics is used when the caller doesn't supply a registry.
func noopMetrics() *metrics {
	return NewMetrics(nil)
}
