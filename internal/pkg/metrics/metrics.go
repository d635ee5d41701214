// Package metrics defines and registers all custom Prometheus metrics for the
// YaMDb review API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto and exposed by the /metrics route alongside the echoprometheus
// HTTP request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yamdb"

// ── Authentication ───────────────────────────────────────────────────────────

// ConfirmationCodesTotal counts sign-up attempts.
// Label:
//   - result: "issued", "conflict" or "invalid"
var ConfirmationCodesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmation_codes_total",
		Help:      "Total number of confirmation code requests, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts credential exchanges.
// Label:
//   - result: "issued", "mismatch" or "unknown_user"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of confirmation code exchanges, by result.",
	},
	[]string{"result"},
)

// PolicyDenialsTotal counts requests rejected by the authorization policy.
// Labels:
//   - policy: "catalog", "content", "users" or "profile"
//   - action: "read", "create", "update" or "delete"
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of requests denied by the authorization policy.",
	},
	[]string{"policy", "action"},
)

// ── Notifications ────────────────────────────────────────────────────────────

// NotificationsTotal counts confirmation code deliveries.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of confirmation code deliveries, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending notifications per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Reviews ──────────────────────────────────────────────────────────────────

// ReviewsWrittenTotal counts review mutations.
// Label:
//   - op: "create", "update", "delete" or "duplicate"
var ReviewsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_written_total",
		Help:      "Total number of review mutations, by operation.",
	},
	[]string{"op"},
)

// RatingCacheLookupsTotal counts rating cache decisions.
// Label:
//   - result: "hit", "miss" or "error"
var RatingCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_cache_lookups_total",
		Help:      "Total number of rating cache lookups, by result.",
	},
	[]string{"result"},
)
