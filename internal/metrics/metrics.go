// Package metrics provides Prometheus instrumentation for the moderation
// pipeline: verdict counts, enforcement outcomes, and audit log activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// VerdictsTotal counts decision-engine verdicts, labeled by verdict:
	// "unsupported-chat", "trusted", "valid", "invalid".
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatguard_verdicts_total",
		Help: "Total number of moderation verdicts",
	}, []string{"verdict"})

	// EnforcementsTotal counts enforcement actions, labeled by action
	// ("ban", "unban") and outcome ("success", "fail").
	EnforcementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatguard_enforcements_total",
		Help: "Total number of enforcement actions",
	}, []string{"action", "outcome"})

	// AuditEntriesTotal counts lines appended to the audit log.
	AuditEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatguard_audit_entries_total",
		Help: "Total number of audit log entries written",
	})

	// QueriesTotal counts audit log window queries served.
	QueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatguard_audit_queries_total",
		Help: "Total number of audit log window queries",
	})

	// CommandsTotal counts admin commands, labeled by command and result
	// ("accepted", "rejected", "unauthorized").
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatguard_commands_total",
		Help: "Total number of admin commands processed",
	}, []string{"command", "result"})
)

func init() {
	prometheus.MustRegister(
		VerdictsTotal,
		EnforcementsTotal,
		AuditEntriesTotal,
		QueriesTotal,
		CommandsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
