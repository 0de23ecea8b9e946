// Package metrics defines and registers all custom Prometheus metrics for the
// UMKM dashboard API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "umkm"

// AuthOperationsTotal counts completed identity operations.
// Label:
//   - operation: "sign_up", "sign_in", "sign_out", "refresh"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of completed authentication operations.",
	},
	[]string{"operation"},
)

// AuthEventsPublishedTotal counts lifecycle events published to the auth feed.
// Label:
//   - event: "SIGNED_IN", "SIGNED_OUT", "TOKEN_REFRESHED"
var AuthEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_published_total",
		Help:      "Total number of auth lifecycle events published to the feed.",
	},
	[]string{"event"},
)

// ChangeEventsDeliveredTotal counts change-feed events delivered to listeners.
// Labels:
//   - table: the mutated table ("products", "sales")
//   - type:  the mutation type ("INSERT", "UPDATE", "DELETE")
var ChangeEventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "change_events_delivered_total",
		Help:      "Total number of change-feed events delivered to channel listeners.",
	},
	[]string{"table", "type"},
)

// InsightRequestsTotal counts AI insight generations.
// Label:
//   - result: "ok" or "unavailable"
var InsightRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insight_requests_total",
		Help:      "Total number of AI insight generations, by result.",
	},
	[]string{"result"},
)

// WorkspacesActive tracks the number of live dashboard workspaces.
var WorkspacesActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workspaces_active",
		Help:      "Current number of cached dashboard workspaces.",
	},
)
