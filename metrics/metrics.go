// Package metrics exposes pane playback counters to Prometheus and serves pane snapshots.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streampane/streampane/playback"
)

// Metrics holds the Prometheus collectors every pane reports into.
type Metrics struct {
	registry         *prometheus.Registry
	retriesTotal     *prometheus.CounterVec
	qualityFailures  *prometheus.CounterVec
	metadataFailures *prometheus.CounterVec
	delaySeconds     *prometheus.GaugeVec
	buffering        *prometheus.GaugeVec
}

var _ playback.Recorder = (*Metrics)(nil)

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	retriesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streampane_retries_total",
		Help: "Automatic replays scheduled after a stream stopped",
	}, []string{"channel"})
	qualityFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streampane_quality_failures_total",
		Help: "Stream index requests that failed",
	}, []string{"channel"})
	metadataFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streampane_metadata_failures_total",
		Help: "Segment metadata requests that failed",
	}, []string{"channel"})
	delaySeconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "streampane_delay_seconds",
		Help: "Latest end-to-end delay between the broadcast and the pane",
	}, []string{"channel"})
	buffering := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "streampane_buffering",
		Help: "1 while a pane is buffering",
	}, []string{"channel"})

	registry.MustRegister(
		retriesTotal,
		qualityFailures,
		metadataFailures,
		delaySeconds,
		buffering,
	)

	return &Metrics{
		registry:         registry,
		retriesTotal:     retriesTotal,
		qualityFailures:  qualityFailures,
		metadataFailures: metadataFailures,
		delaySeconds:     delaySeconds,
		buffering:        buffering,
	}
}

func (m *Metrics) RetryScheduled(channel string, _ time.Duration) {
	m.retriesTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) QualityFailed(channel string) {
	m.qualityFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) MetadataFailed(channel string) {
	m.metadataFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) DelayObserved(channel string, delay time.Duration) {
	m.delaySeconds.WithLabelValues(channel).Set(delay.Seconds())
}

func (m *Metrics) BufferingChanged(channel string, buffering bool) {
	v := 0.0
	if buffering {
		v = 1
	}
	m.buffering.WithLabelValues(channel).Set(v)
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
