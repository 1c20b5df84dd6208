// Package metrics provides the centralized Prometheus registry for the
// stats client. All metrics are defined in their owning packages (client,
// ratelimit) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the stats client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - nbastats_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - nbastats_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - nbastats_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/client):
//   - nbastats_retries_total{error_class} (Counter): Retry attempts by error class
//   - nbastats_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - nbastats_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Batch Metrics (pkg/client):
//   - nbastats_batches_total{outcome} (Counter): Batch fetches by outcome (success, error)
//   - nbastats_batch_size (Histogram): Number of requests per batch
//
// Rate Limit Metrics (pkg/ratelimit):
//   - nbastats_rate_limit_hits_total (Counter): HTTP 429 responses observed
//   - nbastats_rate_limit_cooldown_seconds (Gauge): Length of the most recent cooldown window
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(nbastats_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(nbastats_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure
//   rate(nbastats_retries_total[5m]) / rate(nbastats_requests_total[5m])
//
//   # Batch Failure Rate
//   rate(nbastats_batches_total{outcome="error"}[5m])
