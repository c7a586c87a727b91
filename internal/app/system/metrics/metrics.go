// Package metrics defines the portal's Prometheus metrics.
//
// Metrics live in their own registry (not the global default) and are
// served by Handler on /metrics. Naming follows Prometheus conventions:
//   - freightdesk_ prefix
//   - _total suffix for counters
package metrics

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and every collector registered in it.
type Metrics struct {
	Registry *prometheus.Registry

	// GateDecisions counts edge gate outcomes on protected paths.
	GateDecisions *prometheus.CounterVec

	// LoginAttempts counts sign-in attempts by result.
	LoginAttempts *prometheus.CounterVec

	knownRoles map[string]struct{}
}

// Login results.
const (
	LoginSuccess   = "success"
	LoginFailed    = "failed"
	LoginDisabled  = "disabled"
	LoginThrottled = "throttled"
)

// New registers the collectors in a fresh registry. roles bounds the role
// label: any other cookie value is reported as "unknown".
func New(roles ...string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freightdesk_gate_decisions_total",
				Help: "Edge gate decisions on protected paths by outcome and role cookie.",
			},
			[]string{"outcome", "role"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freightdesk_login_attempts_total",
				Help: "Sign-in attempts by result.",
			},
			[]string{"result"},
		),
		knownRoles: make(map[string]struct{}, len(roles)),
	}
	for _, r := range roles {
		m.knownRoles[r] = struct{}{}
	}
	m.Registry.MustRegister(
		m.GateDecisions,
		m.LoginAttempts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RoleLabel maps a raw role cookie to a bounded label value.
func (m *Metrics) RoleLabel(role string) string {
	if role == "" {
		return "none"
	}
	if _, ok := m.knownRoles[role]; ok {
		return role
	}
	return "unknown"
}

// GateObserver records each decision.
func (m *Metrics) GateObserver() edgegate.Observer {
	return func(_ *http.Request, d edgegate.Decision) {
		m.GateDecisions.WithLabelValues(d.Outcome.String(), m.RoleLabel(d.Role)).Inc()
	}
}

// RecordLogin counts one sign-in attempt.
func (m *Metrics) RecordLogin(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
