// Package monitoring exposes the Prometheus metrics of the scheduling subsystem
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conflictChecks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduling_conflict_checks_total",
			Help: "Total number of conflict checks performed",
		},
	)

	conflictHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_conflict_hits_total",
			Help: "Total number of conflict hits, per rule",
		},
		[]string{"reason"},
	)

	suggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_suggestions_total",
			Help: "Total number of best-time suggestion runs",
		},
		[]string{"outcome"},
	)

	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_session_transitions_total",
			Help: "Total number of mentorship session status transitions",
		},
		[]string{"to"},
	)

	sweepExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_sweep_expired_total",
			Help: "Total number of sessions expired by the auto-cancel sweep",
		},
	)
)

// ConflictCheck records one conflict check and the number of hits it produced per rule
func ConflictCheck(hitsByReason map[string]uint) {
	conflictChecks.Inc()
	for reason, n := range hitsByReason {
		conflictHits.WithLabelValues(reason).Add(float64(n))
	}
}

// Suggestion records the outcome of one best-time suggestion run
func Suggestion(found bool) {
	outcome := "found"
	if !found {
		outcome = "fully_booked"
	}
	suggestions.WithLabelValues(outcome).Inc()
}

// SessionTransition records one session status transition
func SessionTransition(to string) {
	sessionTransitions.WithLabelValues(to).Inc()
}

// SweepExpired records the number of sessions a sweep run expired
func SweepExpired(count uint) {
	sweepExpired.Add(float64(count))
}
