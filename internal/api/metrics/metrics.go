// Package metrics defines and registers the custom Prometheus metrics of the
// SACCO backoffice gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default registry at package init (promauto),
// so they are exposed by the /metrics endpoint without further wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Sign-in metrics ───────────────────────────────────────────────────────────

// AuthTransitionsTotal counts sign-in state machine transitions.
// Labels:
//   - from, to: session states (e.g. "anonymous", "awaiting_otp")
//   - event: the step outcome (e.g. "otp_rejected")
var AuthTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_transitions_total",
		Help:      "Total number of sign-in state transitions.",
	},
	[]string{"from", "to", "event"},
)

// SubmissionsRejectedTotal counts sign-in submissions refused because another
// one was still in flight for the same session.
var SubmissionsRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_submissions_in_flight_rejected_total",
		Help:      "Total number of sign-in submissions rejected while another was in flight.",
	},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures round trips to the SACCO API.
// Labels:
//   - route: upstream path with ids collapsed (e.g. "/sacco/loans/:id/approval/")
//   - outcome: "ok", "api_error" or "transport_error"
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of SACCO API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "outcome"},
)

// ── Write metrics ─────────────────────────────────────────────────────────────

// WritesTotal counts relayed writes.
// Labels:
//   - action: e.g. "loan.approve", "draft.gl_deposit"
//   - outcome: "success", "rejected" or "error"
var WritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writes_total",
		Help:      "Total number of writes relayed to the SACCO API.",
	},
	[]string{"action", "outcome"},
)

// DraftsTotal counts draft lifecycle events.
// Labels:
//   - kind: submission kind
//   - result: "created", "confirmed", "discarded", "failed"
var DraftsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "drafts_total",
		Help:      "Total number of review-then-confirm drafts by lifecycle event.",
	},
	[]string{"kind", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks pending audit entries in each dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit entries dropped because a worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit entries dropped on a full queue.",
	},
)
