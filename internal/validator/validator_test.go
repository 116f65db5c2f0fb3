package validator

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *domain.Config {
	return &domain.Config{
		Nodes: []domain.NodeDef{{ID: "btn", Tag: "button"}, {ID: "panel"}},
		Variables: map[string]domain.VariableDef{
			"score": {Type: "number"},
		},
		Objects: map[string]domain.ObjectDef{
			"btn": {States: map[string]domain.StateDef{domain.StateSelected: {}}},
		},
		Branching: map[string][]domain.BranchRule{
			"quiz": {
				{Condition: &domain.BranchCondition{Variable: "score", Operator: domain.OpGreaterEqual, Value: 10}, Target: "advanced"},
				{Default: true, Target: "review"},
			},
		},
		Triggers: []domain.TriggerConfig{{
			Event:        "click",
			EventTarget:  "#btn",
			Action:       "changeState",
			ActionParams: map[string]any{"target": "panel", "state": "hidden"},
			Conditions: []domain.Condition{{
				Operator: "OR",
				Conditions: []domain.Condition{
					{Subject: "score", Operator: domain.OpLess, Value: 5},
					{Subject: domain.BuiltinUnitNumber, Operator: domain.OpEqual, Value: 1},
				},
			}},
		}},
	}
}

func TestValidate_Valid(t *testing.T) {
	report := Validate(validConfig())
	assert.Empty(t, report.Issues)
	assert.NoError(t, report.Err())
}

func TestValidate_Nil(t *testing.T) {
	assert.NoError(t, Validate(nil).Err())
}

func TestValidate_Findings(t *testing.T) {
	cfg := validConfig()
	cfg.Variables["bad"] = domain.VariableDef{Type: "matrix"}
	cfg.Objects["ghost"] = domain.ObjectDef{}
	cfg.Branching["loose"] = []domain.BranchRule{
		{Default: true, Target: "a"},
		{Condition: &domain.BranchCondition{Variable: "nope", Operator: "~"}, Target: "b"},
	}
	cfg.Branching["empty"] = nil
	cfg.Triggers = append(cfg.Triggers,
		domain.TriggerConfig{Event: "wobble", Action: "next"},
		domain.TriggerConfig{Event: "press", Action: "next"},
		domain.TriggerConfig{Event: "press", EventTarget: "btn", Action: "setVariable", ActionParams: map[string]any{"variable": "missing"}},
		domain.TriggerConfig{Event: "content-start", Action: "fly"},
	)

	report := Validate(cfg)
	require.Error(t, report.Err())

	paths := map[string]bool{}
	for _, i := range report.Errors() {
		paths[i.Path] = true
	}
	assert.True(t, paths["variables.bad"])
	assert.True(t, paths["objects.ghost"])
	assert.True(t, paths["branching.empty"])
	assert.True(t, paths["branching.loose[1]"], "unknown variable and operator")
	assert.True(t, paths["triggers[1]"], "unknown event")
	assert.True(t, paths["triggers[2]"], "missing event target")
	assert.True(t, paths["triggers[3]"], "unknown variable")
	assert.True(t, paths["triggers[4]"], "unknown action")

	var warned bool
	for _, w := range report.Warnings() {
		if w.Path == "branching.loose[1]" {
			warned = true
		}
	}
	assert.True(t, warned, "rules after a default are unreachable")
}

func TestValidate_SeveralSelectedInOneButtonSet(t *testing.T) {
	cfg := validConfig()
	cfg.Nodes = append(cfg.Nodes, domain.NodeDef{ID: "opt-a"}, domain.NodeDef{ID: "opt-b"})
	selected := map[string]domain.StateDef{domain.StateSelected: {}}
	cfg.Objects["opt-a"] = domain.ObjectDef{States: selected, ButtonSet: "answers", InitialState: domain.StateSelected}
	cfg.Objects["opt-b"] = domain.ObjectDef{States: selected, ButtonSet: "answers", InitialState: domain.StateSelected}

	report := Validate(cfg)
	require.NoError(t, report.Err())
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, "objects.opt-b", report.Warnings()[0].Path)
}

func TestValidate_NodeChecksNeedDeclaredNodes(t *testing.T) {
	cfg := validConfig()
	cfg.Nodes = nil
	cfg.Objects["anything"] = domain.ObjectDef{}

	assert.NoError(t, Validate(cfg).Err())
}
