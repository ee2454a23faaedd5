package metrics

import (
	drepo "FinScreen/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	filings    *prometheus.CounterVec
	rejections *prometheus.CounterVec
	results    *prometheus.CounterVec
	errorsTot  *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

var _ drepo.Metrics = (*Recorder)(nil)

// New creates a recorder registered with reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		filings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscreen_filings_total",
				Help: "Filings handled by the download flow by outcome",
			},
			[]string{"status"},
		),
		rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscreen_stage_rejections_total",
				Help: "Candidates rejected per screening stage",
			},
			[]string{"stage"},
		),
		results: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscreen_results_total",
				Help: "Candidates that passed every stage by industry",
			},
			[]string{"industry"},
		),
		errorsTot: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscreen_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finscreen_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordFiling(status string) {
	r.filings.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordRejection(stage string) {
	r.rejections.WithLabelValues(stage).Inc()
}

func (r *Recorder) RecordResult(industry string) {
	r.results.WithLabelValues(industry).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTot.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
