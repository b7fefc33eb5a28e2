package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	GraphQLRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphql_request_count",
			Help: "Total number of GraphQL requests",
		},
		[]string{"status"}, // ok, error
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	TaskMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_mutation_count",
			Help: "Total number of task mutations",
		},
		[]string{"operation", "result"}, // result: ok, validation, auth, permission, not_found, error
	)

	EventPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_count",
			Help: "Total number of task events published",
		},
		[]string{"routing_key", "status"}, // status: ok, failed, dropped
	)

	IncompleteCountCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incomplete_count_cache_total",
			Help: "Incomplete count cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementGraphQLRequest(status string) {
	GraphQLRequestCount.WithLabelValues(status).Inc()
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementTaskMutation(operation, result string) {
	TaskMutationCount.WithLabelValues(operation, result).Inc()
}

func IncrementEventPublish(routingKey, status string) {
	EventPublishCount.WithLabelValues(routingKey, status).Inc()
}

func IncrementIncompleteCountCache(result string) {
	IncompleteCountCache.WithLabelValues(result).Inc()
}
