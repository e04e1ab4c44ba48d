package hxel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records element activity. A nil *Metrics records nothing.
type Metrics struct {
	Invalidations *prometheus.CounterVec
	Coalesced     *prometheus.CounterVec
	Renders       *prometheus.CounterVec
	RenderErrors  *prometheus.CounterVec
	RenderSeconds *prometheus.HistogramVec
	Lookups       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. reg may be
// nil to create unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxel",
			Name:      "invalidations_total",
			Help:      "Invalidations that scheduled a render pass.",
		}, []string{"class"}),
		Coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxel",
			Name:      "invalidations_coalesced_total",
			Help:      "Invalidations absorbed by an already pending render pass.",
		}, []string{"class"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxel",
			Name:      "renders_total",
			Help:      "Render passes applied to an element subtree.",
		}, []string{"class"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxel",
			Name:      "render_errors_total",
			Help:      "Render passes that failed to patch.",
		}, []string{"class"}),
		RenderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hxel",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering and patching.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"class"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxel",
			Name:      "lookups_total",
			Help:      "Lookup cache requests by result (hit, resolved, miss).",
		}, []string{"class", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Invalidations, m.Coalesced, m.Renders, m.RenderErrors, m.RenderSeconds, m.Lookups)
	}
	return m
}

func (m *Metrics) invalidated(class string, coalesced bool) {
	if m == nil {
		return
	}
	if coalesced {
		m.Coalesced.WithLabelValues(class).Inc()
		return
	}
	m.Invalidations.WithLabelValues(class).Inc()
}

func (m *Metrics) rendered(class string, d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RenderErrors.WithLabelValues(class).Inc()
		return
	}
	m.Renders.WithLabelValues(class).Inc()
	m.RenderSeconds.WithLabelValues(class).Observe(d.Seconds())
}

func (m *Metrics) lookedUp(class, result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(class, result).Inc()
}
