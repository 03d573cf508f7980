// Package metrics provides Prometheus metrics for the document pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsProcessed counts pipeline runs by processing method and
	// result status.
	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypr_documents_processed_total",
			Help: "Total number of processed document uploads",
		},
		[]string{"method", "status"},
	)

	// ProcessingDuration observes end-to-end pipeline latency.
	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paypr_document_processing_seconds",
			Help:    "Duration of document processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"method"},
	)

	// EngineFailures counts silently absorbed extraction-engine failures.
	EngineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypr_engine_failures_total",
			Help: "Total number of extraction engine failures",
		},
		[]string{"engine"},
	)

	// ChatAnswers counts answered chat turns by outcome.
	ChatAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypr_chat_answers_total",
			Help: "Total number of chat turns answered",
		},
		[]string{"status"},
	)
)
