// Package metrics exposes Prometheus instrumentation for submissions.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeResults = "results"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	submissions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	inFlight           prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	rateLimited        *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_lens_submissions_total",
				Help: "Total number of submissions by outcome",
			},
			[]string{"outcome"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_lens_validation_failures_total",
				Help: "Total number of submissions rejected before any request was sent",
			},
			[]string{"field"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_lens_analyze_request_duration_seconds",
				Help:    "Duration of POST /api/analyze calls in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"outcome"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "resume_lens_analyze_requests_in_flight",
				Help: "Number of analysis requests waiting for the server",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_lens_http_requests_total",
				Help: "Total number of front-end HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_lens_http_request_duration_seconds",
				Help:    "Duration of front-end HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_lens_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// Submission counts one finished submission cycle.
func (r *Recorder) Submission(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}

// ValidationFailure counts a submission rejected for field.
func (r *Recorder) ValidationFailure(field string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(OutcomeInvalid).Inc()
	r.validationFailures.WithLabelValues(field).Inc()
}

// RequestStarted marks an analysis request as in flight and returns a func
// that records its duration.
func (r *Recorder) RequestStarted() func(outcome string) {
	if r == nil {
		return func(string) {}
	}

	start := time.Now()
	r.inFlight.Inc()
	return func(outcome string) {
		r.inFlight.Dec()
		r.requestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

// HTTPRequest records one served front-end request. route is the matched
// pattern, not the raw path.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RateLimited counts a request rejected with 429.
func (r *Recorder) RateLimited(route string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(route).Inc()
}
