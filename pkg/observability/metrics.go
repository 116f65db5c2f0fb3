package observability

import (
	"net/http"
	"strconv"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "cuepoint"

// Metrics counts trigger firings, action failures, branch decisions and
// aborted reaction chains.
type Metrics struct {
	registry *prometheus.Registry

	triggerFires *prometheus.CounterVec
	actionErrors *prometheus.CounterVec
	branches     *prometheus.CounterVec
	chainAborts  prometheus.Counter
	sessions     prometheus.Gauge
}

// NewMetrics creates the metrics and registers them on registry. A nil
// registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		triggerFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "trigger_fires_total",
			Help:      "Trigger evaluations by event kind, action kind and condition outcome.",
		}, []string{"event", "action", "matched"}),
		actionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "action_errors_total",
			Help:      "Actions that failed or panicked, by action kind.",
		}, []string{"action"}),
		branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "branches_taken_total",
			Help:      "Branch decisions by decision point and whether the default rule matched.",
		}, []string{"decision_point", "default"}),
		chainAborts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chain_aborts_total",
			Help:      "Reaction chains cut off at the maximum nesting depth.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the server.",
		}),
	}

	registry.MustRegister(m.triggerFires, m.actionErrors, m.branches, m.chainAborts, m.sessions)
	return m
}

// Hooks returns lifecycle hooks that update the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTriggerFire: func(ev *domain.TriggerEvent) {
			m.triggerFires.WithLabelValues(string(ev.Event), string(ev.Action), strconv.FormatBool(ev.Matched)).Inc()
		},
		OnActionError: func(ev *domain.TriggerEvent) {
			m.actionErrors.WithLabelValues(string(ev.Action)).Inc()
		},
		OnBranchTaken: func(b *domain.BranchTaken) {
			m.branches.WithLabelValues(b.From, strconv.FormatBool(b.Default)).Inc()
		},
		OnChainAbort: func(*domain.TriggerEvent) {
			m.chainAborts.Inc()
		},
	}
}

// SetSessions records the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
