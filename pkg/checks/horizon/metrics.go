// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/checks"
	"golang.org/x/sys/unix"
)

// Values of the outcome label of the probe counter.
const (
	outcomeSuccess     = "success"
	outcomeTimeout     = "timeout"
	outcomeUnreachable = "unreachable"
	outcomeRefused     = "refused"
	outcomeError       = "error"
)

// metrics defines the metric collectors of the horizon check
type metrics struct {
	hops     *prometheus.GaugeVec
	reached  *prometheus.GaugeVec
	probes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics initializes metric collectors of the horizon check
func newMetrics() metrics {
	return metrics{
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_hops",
				Help: "Smallest TTL at which the target answered definitively, 0 if it did not answer within the maximum TTL.",
			},
			[]string{"target"},
		),
		reached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_reached",
				Help: "Specifies if the target answered within the maximum TTL.",
			},
			[]string{"target"},
		),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "horizon_probes_total",
				Help: "Total number of TTL probes sent to the target by outcome.",
			},
			[]string{"target", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "horizon_search_duration_seconds",
				Help:    "Duration of complete horizon searches in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"target"},
		),
	}
}

// List returns all metric collectors
func (m *metrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.hops, m.reached, m.probes, m.duration}
}

// Set records the outcome of one search of target.
func (m *metrics) Set(target string, res horizon.Result) {
	m.hops.WithLabelValues(target).Set(float64(res.Horizon))
	reached := 0.0
	if res.Reached {
		reached = 1
	}
	m.reached.WithLabelValues(target).Set(reached)
	m.duration.WithLabelValues(target).Observe(res.Duration.Seconds())
	for _, step := range res.Steps {
		m.probes.WithLabelValues(target, outcome(step.Outcome.Errno)).Inc()
	}
}

// SetFailed records a search of target that ended before the first probe.
func (m *metrics) SetFailed(target string) {
	m.hops.WithLabelValues(target).Set(0)
	m.reached.WithLabelValues(target).Set(0)
}

// Remove removes the metrics of one target. Every searched target has a hops gauge,
// the other collectors only exist once a search got to probing.
func (m *metrics) Remove(target string) error {
	if !m.hops.DeleteLabelValues(target) {
		return checks.ErrMetricNotFound{Label: target}
	}
	m.reached.DeleteLabelValues(target)
	m.duration.DeleteLabelValues(target)
	m.probes.DeletePartialMatch(prometheus.Labels{"target": target})
	return nil
}

// outcome maps an errno to the outcome label value.
func outcome(errno unix.Errno) string {
	switch {
	case errno == 0:
		return outcomeSuccess
	case errno == unix.ETIMEDOUT:
		return outcomeTimeout
	case horizon.IsUnreachable(errno):
		return outcomeUnreachable
	case errno == unix.ECONNREFUSED:
		return outcomeRefused
	default:
		return outcomeError
	}
}
