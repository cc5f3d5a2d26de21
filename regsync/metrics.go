package regsync

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Push outcomes recorded in quill_sync_pushes_total.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Metrics exposes Prometheus collectors for registry sync.
type Metrics struct {
	pushes  *prometheus.CounterVec
	resyncs prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the sync metrics against registerer. When registerer
// is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_sync_pushes_total",
		Help: "Registry sync pushes partitioned by action and outcome.",
	}, []string{"action", "outcome"})
	resyncs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quill_sync_resyncs_total",
		Help: "Full resync runs started.",
	})
	registerer.MustRegister(pushes, resyncs)
	return &Metrics{pushes: pushes, resyncs: resyncs}
}

func (m *Metrics) push(action string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSent
	if err != nil {
		outcome = OutcomeFailed
	}
	m.pushes.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) resync() {
	if m == nil {
		return
	}
	m.resyncs.Inc()
}
