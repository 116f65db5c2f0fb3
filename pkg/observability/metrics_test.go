package observability_test

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiz(t *testing.T, hooks domain.LifecycleHooks) *cuepoint.Engine {
	t.Helper()
	eng := cuepoint.New(nil, cuepoint.WithLifecycleHooks(hooks))
	require.NoError(t, eng.Init(&domain.Config{
		Nodes:     []domain.NodeDef{{ID: "btn", Tag: "button"}},
		Variables: map[string]domain.VariableDef{"score": {Type: "number"}},
		Branching: map[string][]domain.BranchRule{
			"gate": {{Default: true, Target: "review"}},
		},
		Triggers: []domain.TriggerConfig{
			{
				Event:        "press",
				EventTarget:  "btn",
				Action:       "adjustVariable",
				ActionParams: map[string]any{"variable": "score", "value": 1},
				Conditions:   []domain.Condition{{Subject: "score", Operator: domain.OpLess, Value: 1}},
			},
			{
				Event:        "press",
				EventTarget:  "btn",
				Action:       "executeFunction",
				ActionParams: map[string]any{"fn": "missing"},
			},
		},
	}))
	return eng
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(nil)
	eng := quiz(t, m.Hooks())

	for range 2 {
		require.NoError(t, eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "btn"}))
	}
	_, _ = eng.Evaluate("gate")
	m.SetSessions(3)

	expected := `
# HELP cuepoint_action_errors_total Actions that failed or panicked, by action kind.
# TYPE cuepoint_action_errors_total counter
cuepoint_action_errors_total{action="executeFunction"} 2
# HELP cuepoint_active_sessions Sessions currently held by the server.
# TYPE cuepoint_active_sessions gauge
cuepoint_active_sessions 3
# HELP cuepoint_branches_taken_total Branch decisions by decision point and whether the default rule matched.
# TYPE cuepoint_branches_taken_total counter
cuepoint_branches_taken_total{decision_point="gate",default="true"} 1
# HELP cuepoint_trigger_fires_total Trigger evaluations by event kind, action kind and condition outcome.
# TYPE cuepoint_trigger_fires_total counter
cuepoint_trigger_fires_total{action="adjustVariable",event="press",matched="false"} 1
cuepoint_trigger_fires_total{action="adjustVariable",event="press",matched="true"} 1
cuepoint_trigger_fires_total{action="executeFunction",event="press",matched="true"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"cuepoint_action_errors_total",
		"cuepoint_active_sessions",
		"cuepoint_branches_taken_total",
		"cuepoint_trigger_fires_total",
	)
	assert.NoError(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics(nil)
	eng := quiz(t, m.Hooks())
	_, _ = eng.Evaluate("gate")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `cuepoint_branches_taken_total{decision_point="gate",default="true"} 1`)
}

func TestChain(t *testing.T) {
	var calls []string
	merged := observability.Chain(
		domain.LifecycleHooks{OnBranchTaken: func(*domain.BranchTaken) { calls = append(calls, "first") }},
		domain.LifecycleHooks{},
		domain.LifecycleHooks{OnBranchTaken: func(*domain.BranchTaken) { calls = append(calls, "second") }},
	)

	assert.Nil(t, merged.OnTriggerFire)
	merged.OnBranchTaken(&domain.BranchTaken{})
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := observability.NewMetrics(nil)

	eng := quiz(t, observability.Chain(m.Hooks(), observability.LogHooks(logger)))
	require.NoError(t, eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "btn"}))

	out := buf.String()
	assert.Contains(t, out, "trigger fired")
	assert.Contains(t, out, "action failed")
	assert.True(t, strings.Contains(out, "action=executeFunction"))
}
