// Package metrics defines and registers all custom Prometheus metrics for the
// project dashboard API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is loaded; /metrics serves them alongside the HTTP metrics
// collected by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Reaction metrics ──────────────────────────────────────────────────────────

// ReactionsSubmittedTotal counts accepted rating submissions.
// Labels:
//   - rating: excellent, standard, sub-standard or ghost
//   - verified: "true" when the submitter was proven to be on site
var ReactionsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reactions_submitted_total",
		Help:      "Total number of accepted reactions, by rating and proximity verification.",
	},
	[]string{"rating", "verified"},
)

// ReactionsRejectedTotal counts refused rating submissions.
// Label:
//   - reason: "too_far", "invalid", "not_found" or "error"
var ReactionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reactions_rejected_total",
		Help:      "Total number of rejected reaction submissions, by reason.",
	},
	[]string{"reason"},
)

// ── Analytics metrics ─────────────────────────────────────────────────────────

// AnalyticsCacheTotal counts analytics cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var AnalyticsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_cache_total",
		Help:      "Total number of analytics cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// AnalyticsComputeDuration measures analytics and leaderboard requests end to end.
// Label:
//   - view: "snapshot", "contractors", "projects" or "users"
var AnalyticsComputeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analytics_compute_duration_seconds",
		Help:      "Duration of analytics requests, including cache lookups.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"view"},
)

// ── Project metrics ───────────────────────────────────────────────────────────

// ProjectsWrittenTotal counts catalog writes.
// Label:
//   - op: "create", "update" or "delete"
var ProjectsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_written_total",
		Help:      "Total number of projects created, updated or deleted.",
	},
	[]string{"op"},
)
