// Package metrics documents the Prometheus metrics exposed by the review
// table client. All metrics are defined in their respective packages
// (client, cache, ratelimit, pagination, enrich) to maintain modularity
// and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the client.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - review_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//   - review_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - review_errors_total{class} (Counter): errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - review_retries_total{error_class} (Counter): retry attempts by error class
//   - review_retry_backoff_seconds{error_class} (Histogram): backoff duration by error class
//   - review_retry_exhausted_total{error_class} (Counter): requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - review_cache_hits_total{layer="redis"} (Counter): cache hits by layer
//   - review_cache_misses_total (Counter): cache misses
//   - review_cache_size_bytes{layer="redis"} (Gauge): cache size in bytes
//   - review_304_responses_total (Counter): 304 Not Modified responses
//   - review_conditional_requests_total (Counter): conditional requests sent
//   - review_cache_errors_total{operation} (Counter): cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - review_api_requests_remaining (Gauge): requests remaining in the budget window
//   - review_rate_limit_blocks_total (Counter): requests blocked at critical budget
//   - review_rate_limit_throttles_total (Counter): requests throttled at warning budget
//
// Fetch Metrics (pkg/pagination):
//   - review_fetch_all_pages_total (Counter): asset list pages requested
//   - review_fetch_all_duration_seconds (Histogram): complete asset list fetch duration
//
// Enrichment Metrics (pkg/enrich):
//   - review_enrichment_fetches_total{kind, outcome} (Counter): per-asset fetches by
//     kind (review_infos, thumbnail) and outcome (ok, empty, error, cancelled)
//   - review_enrichment_batches_total (Counter): enrichment batches started
//   - review_enrichment_batch_duration_seconds (Histogram): batch duration
//
// Example Prometheus Queries:
//
//	# Cache Hit Rate
//	sum(rate(review_cache_hits_total[5m])) /
//	(sum(rate(review_cache_hits_total[5m])) + sum(rate(review_cache_misses_total[5m])))
//
//	# Enrichment failure rate by kind
//	sum by (kind) (rate(review_enrichment_fetches_total{outcome="error"}[5m]))
//
//	# P95 Request Latency
//	histogram_quantile(0.95, rate(review_request_duration_seconds_bucket[5m]))
