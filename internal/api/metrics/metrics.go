// Package metrics defines and registers all custom Prometheus metrics for
// the Literary Voice API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "literaryvoice"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsCreatedTotal counts successful signups.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// CreditsChargedTotal sums credits successfully deducted.
// Label:
//   - action: the billable action reported by the client (e.g. "review")
var CreditsChargedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_charged_total",
		Help:      "Total credits deducted from accounts, by action.",
	},
	[]string{"action"},
)

// ChargeFailuresTotal counts rejected charges.
// Label:
//   - reason: "insufficient_credits", "invalid_amount"
var ChargeFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "charge_failures_total",
		Help:      "Total number of rejected charge attempts, by reason.",
	},
	[]string{"reason"},
)

// CreditsGrantedTotal sums credits added through the admin endpoint.
var CreditsGrantedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_granted_total",
		Help:      "Total credits granted through /add_credits.",
	},
)

// ChargeDuration measures how long a charge takes end-to-end, including
// the idempotency lookup and the atomic decrement.
var ChargeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "charge_duration_seconds",
		Help:      "Duration of charge processing.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)
