// Package metrics holds the Prometheus collectors for the prediction path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emi_predictions_total",
			Help: "Total number of completed eligibility assessments",
		},
		[]string{"label", "tier"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emi_prediction_failures_total",
			Help: "Total number of assessments that failed inside a model stage",
		},
		[]string{"stage"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emi_prediction_duration_seconds",
			Help:    "Duration of a single assessment in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	CorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emi_corrections_total",
			Help: "EMI estimates by how the affordability band moved them",
		},
		[]string{"direction"},
	)

	CoercionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emi_coercion_fallbacks_total",
			Help: "Feature values the vector builder could not read as intended",
		},
		[]string{"field"},
	)
)
