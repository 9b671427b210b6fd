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

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	SettlementsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_recorded_total",
			Help: "Total number of settlements recorded",
		},
		[]string{"paid_to_type"},
	)

	FilesUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_files_uploaded_total",
			Help: "Total number of project files uploaded",
		},
		[]string{"status"}, // success / failed
	)

	OutboxDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_dispatched_total",
			Help: "Total number of outbox events dispatched to MQ",
		},
		[]string{"routing_key", "status"},
	)

	SSESubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_subscribers",
			Help: "Currently connected event stream subscribers",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementSettlementsRecorded(paidToType string) {
	SettlementsRecorded.WithLabelValues(paidToType).Inc()
}

func IncrementFilesUploaded(status string) {
	FilesUploaded.WithLabelValues(status).Inc()
}

func IncrementOutboxDispatched(routingKey, status string) {
	OutboxDispatched.WithLabelValues(routingKey, status).Inc()
}
