package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	EntitiesPutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronicle_entities_put_total",
			Help: "Total number of entity fragments received",
		},
	)

	PutErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_put_errors_total",
			Help: "Total number of rejected entity fragments by error code",
		},
		[]string{"code"},
	)

	PutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronicle_put_duration_seconds",
			Help:    "Duration of entity put batches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_queries_total",
			Help: "Total number of read operations by kind",
		},
		[]string{"op"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronicle_query_duration_seconds",
			Help:    "Duration of read operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Domain metrics
	DomainWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronicle_domain_writes_total",
			Help: "Total number of domain create/update operations",
		},
	)
)
