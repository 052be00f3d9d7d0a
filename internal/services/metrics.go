package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"alumnihuddle/internal/models"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Tenant resolution cache outcomes: hit, miss, stale, error
	HuddleCacheLookups *prometheus.CounterVec

	// Model filter outcomes: filtered, passthrough, fallback
	ModelFilterResults *prometheus.CounterVec

	// Mentor retrieval
	MentorSearchLatency prometheus.Histogram
	MentorsIndexed      *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		HuddleCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnihuddle_huddle_cache_lookups_total",
			Help: "Tenant resolution cache lookups by outcome",
		}, []string{"outcome"}),

		ModelFilterResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnihuddle_model_filter_total",
			Help: "Model listing filter results by outcome",
		}, []string{"outcome"}),

		MentorSearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "alumnihuddle_mentor_search_duration_seconds",
			Help:    "Mentor search latency in seconds (embedding + vector search + re-fetch)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		MentorsIndexed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnihuddle_mentors_indexed_total",
			Help: "Mentors processed by indexing runs, by result",
		}, []string{"result"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (nil before InitMetrics)
func GetMetrics() *Metrics {
	return globalMetrics
}

func recordHuddleCacheLookup(outcome string) {
	if globalMetrics != nil {
		globalMetrics.HuddleCacheLookups.WithLabelValues(outcome).Inc()
	}
}

// RecordModelFilter counts one model-filter outcome.
func RecordModelFilter(outcome string) {
	if globalMetrics != nil {
		globalMetrics.ModelFilterResults.WithLabelValues(outcome).Inc()
	}
}

func observeMentorSearch(d time.Duration) {
	if globalMetrics != nil {
		globalMetrics.MentorSearchLatency.Observe(d.Seconds())
	}
}

func recordMentorIndex(result models.IndexResult) {
	if globalMetrics != nil {
		globalMetrics.MentorsIndexed.WithLabelValues("indexed").Add(float64(result.Indexed))
		globalMetrics.MentorsIndexed.WithLabelValues("failed").Add(float64(result.Failed))
	}
}
