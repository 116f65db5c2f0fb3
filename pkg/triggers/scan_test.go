package triggers_test

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/triggers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromNode(t *testing.T) {
	n := nodes.New("opt-a", "div")
	n.SetAttr(triggers.AttrTrigger, "click")
	n.SetAttr(triggers.AttrAction, "showLayer")
	n.SetAttr(triggers.AttrActionTarget, "#feedback")
	n.SetAttr(triggers.AttrActionParam+"delay", "200")
	n.SetAttr(triggers.AttrConditionVar, "score")
	n.SetAttr(triggers.AttrConditionOp, ">")
	n.SetAttr(triggers.AttrConditionVal, "3")

	cfg := triggers.ConfigFromNode(n)

	assert.Equal(t, "click", cfg.Event)
	assert.Equal(t, "opt-a", cfg.EventTarget)
	assert.Equal(t, "showLayer", cfg.Action)
	assert.Equal(t, map[string]any{"layer": "#feedback", "delay": "200"}, cfg.ActionParams)
	assert.Equal(t, []domain.Condition{{
		Type: domain.CondVariable, Subject: "score", Operator: domain.OpGreater, Value: "3",
	}}, cfg.Conditions)
}

func TestConfigFromNode_TargetParam(t *testing.T) {
	tests := []struct {
		action string
		key    string
	}{
		{"hideLayer", "layer"},
		{"changeState", "target"},
		{"setVariable", "variable"},
		{"hideElement", "target"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			n := nodes.New("x", "div")
			n.SetAttr(triggers.AttrTrigger, "press")
			n.SetAttr(triggers.AttrAction, tt.action)
			n.SetAttr(triggers.AttrActionTarget, "thing")

			cfg := triggers.ConfigFromNode(n)
			assert.Equal(t, "thing", cfg.ActionParams[tt.key])
		})
	}
}

func TestScanDocument(t *testing.T) {
	f := newFixture(t)

	btn, _ := f.doc.Get("btn")
	btn.SetAttr(triggers.AttrTrigger, "click")
	btn.SetAttr(triggers.AttrAction, "adjustVariable")
	btn.SetAttr(triggers.AttrActionTarget, "count")
	btn.SetAttr(triggers.AttrActionParam+"value", "5")

	panel, _ := f.doc.Get("panel")
	panel.SetAttr(triggers.AttrTrigger, "click")
	panel.SetAttr(triggers.AttrAction, "setVariable")
	panel.SetAttr(triggers.AttrActionTarget, "done")
	panel.SetAttr(triggers.AttrActionParam+"value", "true")
	panel.SetAttr(triggers.AttrConditionVar, "count")
	panel.SetAttr(triggers.AttrConditionOp, ">=")
	panel.SetAttr(triggers.AttrConditionVal, "5")

	ghost := nodes.New("broken", "div")
	ghost.SetAttr(triggers.AttrTrigger, "wobble")
	ghost.SetAttr(triggers.AttrAction, "next")
	f.doc.Add(ghost)

	ids, err := f.engine.ScanDocument()
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)
	assert.Equal(t, []string{"trigger_0", "trigger_1"}, ids)

	registered := f.engine.Triggers()
	require.Len(t, registered, 2)
	assert.Equal(t, "btn", registered[0].Event.Target, "document order")
	assert.Equal(t, "panel", registered[1].Event.Target)

	f.press("panel")
	assert.Equal(t, false, f.get(t, "done"))

	f.press("btn")
	f.press("panel")
	assert.Equal(t, float64(5), f.get(t, "count"))
	assert.Equal(t, true, f.get(t, "done"))
}
