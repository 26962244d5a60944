package daemon

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/statusbar/dwmstatus/pkg/scheduler"
)

const namespace = "dwmstatus"

// metrics implements scheduler.Observer.
type metrics struct {
	fetches      *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	coalesced    *prometheus.CounterVec
	lines        *prometheus.CounterVec
}

var _ scheduler.Observer = &metrics{}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Source fetches by result.",
		}, []string{"source", "result"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching a source.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"source"}),
		coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coalesced_ticks_total",
			Help:      "Ticks dropped because the source was still busy.",
		}, []string{"tick", "source"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_lines_total",
			Help:      "Composed status lines by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.fetches, m.fetchSeconds, m.coalesced, m.lines)
	return m
}

func (m *metrics) Fetched(_ scheduler.Kind, source string, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(source, result).Inc()
	m.fetchSeconds.WithLabelValues(source).Observe(took.Seconds())
}

func (m *metrics) Coalesced(kind scheduler.Kind, source string) {
	m.coalesced.WithLabelValues(kind.String(), source).Inc()
}

func (m *metrics) emitted(written bool, err error) {
	switch {
	case err != nil:
		m.lines.WithLabelValues("failed").Inc()
	case written:
		m.lines.WithLabelValues("written").Inc()
	default:
		m.lines.WithLabelValues("suppressed").Inc()
	}
}
