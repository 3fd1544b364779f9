// Package telemetry exposes Prometheus metrics for the sentiment pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline Prometheus metrics. A nil *Metrics is a valid
// no-op recorder, so callers never need nil checks at call sites.
type Metrics struct {
	// Fetch metrics
	PagesFetched    prometheus.Counter
	CommentsFetched prometheus.Counter
	QuotaExhausted  prometheus.Counter
	FetchRetries    prometheus.Counter

	// Classification metrics
	Classifications        *prometheus.CounterVec
	ClassificationFailures prometheus.Counter
	ClassifyDuration       prometheus.Histogram

	// Run metrics
	RunsCompleted *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	BusyRejects   prometheus.Counter
}

// New registers pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_pages_fetched_total",
			Help: "Total comment pages fetched from the source",
		}),
		CommentsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_comments_fetched_total",
			Help: "Total comments fetched from the source",
		}),
		QuotaExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_quota_exhausted_total",
			Help: "Runs aborted by source quota exhaustion",
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_fetch_retries_total",
			Help: "Transient fetch failures that were retried",
		}),
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Total successful classifications by label",
		}, []string{"label"}),
		ClassificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_classification_failures_total",
			Help: "Comments whose classification failed",
		}),
		ClassifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_classify_duration_seconds",
			Help:    "Time to classify a single comment",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		RunsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiment_runs_total",
			Help: "Pipeline runs by terminal status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_run_duration_seconds",
			Help:    "End-to-end duration of a pipeline run",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		BusyRejects: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_busy_rejects_total",
			Help: "Analyze requests rejected because a run was already in progress",
		}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPage counts a fetched page and its comments.
func (m *Metrics) RecordPage(comments int) {
	if m == nil {
		return
	}

	m.PagesFetched.Inc()
	m.CommentsFetched.Add(float64(comments))
}

// RecordQuotaExhausted counts a quota-aborted run.
func (m *Metrics) RecordQuotaExhausted() {
	if m == nil {
		return
	}

	m.QuotaExhausted.Inc()
}

// RecordClassification counts one successful classification.
func (m *Metrics) RecordClassification(label string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.Classifications.WithLabelValues(label).Inc()
	m.ClassifyDuration.Observe(elapsed.Seconds())
}

// RecordClassificationFailure counts one failed classification.
func (m *Metrics) RecordClassificationFailure() {
	if m == nil {
		return
	}

	m.ClassificationFailures.Inc()
}

// RecordRun counts a completed run with its terminal status.
func (m *Metrics) RecordRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.RunsCompleted.WithLabelValues(status).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// RecordBusyReject counts a rejected concurrent analyze request.
func (m *Metrics) RecordBusyReject() {
	if m == nil {
		return
	}

	m.BusyRejects.Inc()
}
