package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recommendation pipeline.
var (
	// RequestsTotal counts completed pipeline runs by outcome.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodtune_requests_total",
		Help: "Total number of completed pipeline requests by outcome",
	}, []string{"outcome"})

	// AudioRejectionsTotal counts requests rejected at the audio guard.
	AudioRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodtune_audio_rejections_total",
		Help: "Total number of requests rejected by audio validation, by reason",
	}, []string{"reason"})

	// InferenceFallbacksTotal counts degradations to the emotion profile table.
	InferenceFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodtune_inference_fallbacks_total",
		Help: "Total number of requests that fell back to the emotion profile table",
	})

	// ExternalFallbacksTotal counts requests that hit the external catalog.
	ExternalFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodtune_external_fallbacks_total",
		Help: "Total number of requests that queried the external catalog fallback",
	})

	// ProcessingDuration measures end-to-end pipeline latency.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moodtune_processing_duration_seconds",
		Help:    "End-to-end pipeline processing time in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// TracksReturned tracks the result set size per successful request.
	TracksReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moodtune_tracks_returned",
		Help:    "Number of tracks returned per successful request",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	})

	// CatalogSize is the number of records in the active catalog index.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodtune_catalog_records",
		Help: "Number of records in the active catalog index",
	})
)

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidAudio  = "invalid_audio"
	OutcomeClarification = "clarification"
	OutcomeError         = "error"
)
