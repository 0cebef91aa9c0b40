// Package metrics exposes Prometheus collectors for the scan pipeline.
package metrics

import (
	"time"

	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScanMetrics implements usecase.Recorder.
type ScanMetrics struct {
	patterns *prometheus.CounterVec
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ usecase.Recorder = (*ScanMetrics)(nil)

// NewScanMetrics registers the collectors on reg (prometheus.DefaultRegisterer in production).
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	f := promauto.With(reg)
	return &ScanMetrics{
		patterns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_patterns_detected_total",
			Help: "Patterns detected, by pattern kind",
		}, []string{"pattern"}),
		accepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_accepted_total",
			Help: "Signals that passed every gate, by pattern kind",
		}, []string{"pattern"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_rejected_total",
			Help: "Candidate signals dropped, by pipeline stage",
		}, []string{"stage"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scanner_scan_duration_seconds",
			Help:    "Latency of one symbol scan",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"symbol"}),
	}
}

func (m *ScanMetrics) PatternDetected(kind entity.PatternKind) {
	m.patterns.WithLabelValues(kind.String()).Inc()
}

func (m *ScanMetrics) SignalAccepted(kind entity.PatternKind) {
	m.accepted.WithLabelValues(kind.String()).Inc()
}

func (m *ScanMetrics) SignalRejected(stage string) {
	m.rejected.WithLabelValues(stage).Inc()
}

func (m *ScanMetrics) ScanCompleted(symbol string, d time.Duration) {
	m.duration.WithLabelValues(symbol).Observe(d.Seconds())
}
