// Package metrics records Prometheus metrics for API calls and uploads.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeInvalid   = "invalid"
	OutcomeException = "exception"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	CallsTotal     *prometheus.CounterVec
	CallDuration   *prometheus.HistogramVec
	UploadsTotal   *prometheus.CounterVec
	UploadBytes    prometheus.Histogram
	UploadDuration prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singlebase_calls_total",
				Help: "Total number of API calls by op, status code and outcome",
			},
			[]string{"op", "status", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "singlebase_call_duration_seconds",
				Help:    "API call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"op"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singlebase_uploads_total",
				Help: "Total number of presigned uploads by outcome",
			},
			[]string{"outcome"},
		),
		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "singlebase_upload_size_bytes",
				Help:    "Size of uploaded files in bytes",
				Buckets: []float64{1e3, 1e4, 1e5, 1e6, 1e7, 1e8},
			},
		),
		UploadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "singlebase_upload_duration_seconds",
				Help:    "Presigned upload duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// ObserveCall records one API call. Safe to call on a nil receiver.
func (m *Metrics) ObserveCall(op string, statusCode int, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(op, strconv.Itoa(statusCode), outcome).Inc()
	m.CallDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveUpload records one presigned upload. Safe to call on a nil receiver.
func (m *Metrics) ObserveUpload(outcome string, size int, d time.Duration) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if size > 0 {
		m.UploadBytes.Observe(float64(size))
	}
	m.UploadDuration.Observe(d.Seconds())
}
