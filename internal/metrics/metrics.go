// Package metrics defines and registers the Prometheus metrics of the admin
// console and its development backend. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics are registered with the default registry on import via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "erp_console"

// ── Backend client metrics ────────────────────────────────────────────────────

// BackendRequestsTotal counts round trips to the ERP backend.
// Labels:
//   - operation: "login", "profile", "list_users", "create_user", ...
//   - outcome: "ok", "forbidden", "rejected", "transport_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests issued to the ERP backend.",
	},
	[]string{"operation", "outcome"},
)

// BackendRequestDuration measures backend round-trip latency.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of ERP backend round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state transitions by target state.
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"state"},
)

// DirectoryForbiddenTotal counts directory listings answered with 403 and
// shown as an empty list.
var DirectoryForbiddenTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_forbidden_total",
		Help:      "Total number of directory listings rejected with 403.",
	},
)

// ── Development backend metrics ───────────────────────────────────────────────

// DevserverLoginsTotal counts login attempts against the development backend.
// Label:
//   - result: "success" or "failure"
var DevserverLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "erp_devserver",
		Name:      "logins_total",
		Help:      "Total number of login attempts handled by the development backend.",
	},
	[]string{"result"},
)

// ObserveBackendRequest records one backend round trip.
func ObserveBackendRequest(operation, outcome string, started time.Time) {
	BackendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
