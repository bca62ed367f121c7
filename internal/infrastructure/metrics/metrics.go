package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Metrics holds the automation counters on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	rulesEvaluated  *prometheus.CounterVec
	actionsExecuted *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rulesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_rules_evaluated_total",
			Help: "Rules evaluated against a triggering resource.",
		}, []string{"resource_type", "matched"}),
		actionsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_actions_executed_total",
			Help: "Actions executed for matched rules.",
		}, []string{"type", "outcome"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_fetch_failures_total",
			Help: "Triggering resources that could not be fetched.",
		}, []string{"resource_type"}),
	}
	m.registry.MustRegister(
		m.rulesEvaluated,
		m.actionsExecuted,
		m.fetchFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RuleEvaluated(resourceType rule.ResourceType, matched bool) {
	if m == nil {
		return
	}
	m.rulesEvaluated.
		With(prometheus.Labels{"resource_type": string(resourceType), "matched": strconv.FormatBool(matched)}).
		Inc()
}

func (m *Metrics) FetchFailed(resourceType rule.ResourceType) {
	if m == nil {
		return
	}
	m.fetchFailures.
		With(prometheus.Labels{"resource_type": string(resourceType)}).
		Inc()
}

// unknownActionType labels action types that rules may name but the
// executor does not implement. It keeps the type label bounded.
const unknownActionType = "unknown"

func (m *Metrics) ActionExecuted(actionType rule.ActionType, success bool) {
	if m == nil {
		return
	}
	typeLabel := string(actionType)
	if !actionType.Known() {
		typeLabel = unknownActionType
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.actionsExecuted.
		With(prometheus.Labels{"type": typeLabel, "outcome": outcome}).
		Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
