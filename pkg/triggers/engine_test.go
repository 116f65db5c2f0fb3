package triggers_test

import (
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/events"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/aretw0/cuepoint/pkg/states"
	"github.com/aretw0/cuepoint/pkg/triggers"
	"github.com/aretw0/cuepoint/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc    *nodes.Document
	bus    *events.Bus
	vars   *variables.Store
	states *states.Machine
	engine *triggers.Engine
}

func newFixture(t *testing.T, opts ...triggers.Option) *fixture {
	t.Helper()

	doc := nodes.NewDocument()
	doc.Add(nodes.New("btn", "button"))
	doc.Add(nodes.New("panel", "div"))
	layer := nodes.New("layer1", "div")
	layer.SetAttr(triggers.AttrLayer, "")
	layer.Hide()
	doc.Add(layer)

	bus := events.New()
	vars := variables.New(variables.WithBus(bus))
	require.NoError(t, vars.Define("score", domain.TypeNumber, 0, domain.ScopeProject))
	require.NoError(t, vars.Define("count", domain.TypeNumber, 0, domain.ScopeProject))
	require.NoError(t, vars.Define("name", domain.TypeText, "", domain.ScopeProject))
	require.NoError(t, vars.Define("done", domain.TypeBoolean, false, domain.ScopeProject))

	machine := states.New(doc, states.WithBus(bus))

	base := []triggers.Option{triggers.WithVariables(vars), triggers.WithStates(machine)}
	engine := triggers.New(doc, bus, append(base, opts...)...)

	return &fixture{doc: doc, bus: bus, vars: vars, states: machine, engine: engine}
}

func (f *fixture) press(id string) {
	f.bus.Publish(domain.NodeTopic(id, domain.EventPress), domain.NodeSignal{ID: id, Kind: domain.EventPress})
}

func (f *fixture) get(t *testing.T, name string) any {
	t.Helper()
	v, ok := f.vars.Get(name)
	require.True(t, ok, "variable %s", name)
	return v
}

// tickScheduler queues deferred work until Tick is called.
type tickScheduler struct {
	queue []*func()
}

func (s *tickScheduler) Defer(fn func()) ports.CancelFunc {
	p := &fn
	s.queue = append(s.queue, p)
	return func() { *p = nil }
}

func (s *tickScheduler) Tick() {
	queue := s.queue
	s.queue = nil
	for _, fn := range queue {
		if *fn != nil {
			(*fn)()
		}
	}
}

func TestEngine_PressRunsAction(t *testing.T) {
	f := newFixture(t)

	id, err := f.engine.Register(domain.TriggerConfig{
		Event:        "click",
		EventTarget:  "#btn",
		Action:       "setVariable",
		ActionParams: map[string]any{"variable": "score", "value": 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "trigger_0", id)

	f.press("btn")
	assert.Equal(t, float64(10), f.get(t, "score"))

	tr, ok := f.engine.Trigger(id)
	require.True(t, ok)
	assert.Equal(t, domain.EventPress, tr.Event.Kind)
	assert.Equal(t, "btn", tr.Event.Target)
	assert.True(t, tr.Enabled)
}

func TestEngine_RegisterRejectsInvalidConfig(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cfg  domain.TriggerConfig
		want error
	}{
		{
			name: "unknown event",
			cfg:  domain.TriggerConfig{Event: "wobble", Action: "next"},
			want: domain.ErrUnknownEvent,
		},
		{
			name: "unknown action",
			cfg:  domain.TriggerConfig{Event: "press", EventTarget: "btn", Action: "explode"},
			want: domain.ErrUnknownAction,
		},
		{
			name: "unknown else action",
			cfg: domain.TriggerConfig{
				Event: "press", EventTarget: "btn", Action: "next",
				ElseAction: &domain.ActionConfig{Action: "explode"},
			},
			want: domain.ErrUnknownAction,
		},
		{
			name: "missing node",
			cfg:  domain.TriggerConfig{Event: "press", EventTarget: "#ghost", Action: "next"},
			want: domain.ErrNodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := f.engine.Register(tt.cfg)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, id)
		})
	}
	assert.Empty(t, f.engine.Triggers())
}

func TestEngine_RegisterAllContinuesPastFailures(t *testing.T) {
	f := newFixture(t)

	ids, err := f.engine.RegisterAll([]domain.TriggerConfig{
		{Event: "press", EventTarget: "btn", Action: "next"},
		{Event: "press", EventTarget: "ghost", Action: "next"},
		{Event: "press", EventTarget: "panel", Action: "prev"},
	})

	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Equal(t, []string{"trigger_0", "trigger_1"}, ids)
	assert.Len(t, f.engine.Triggers(), 2)
}

func TestEngine_ElseAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "press",
		EventTarget:  "btn",
		Action:       "showElement",
		ActionParams: map[string]any{"target": "#panel"},
		Conditions: []domain.Condition{
			{Type: domain.CondVariable, Subject: "score", Operator: domain.OpGreaterEqual, Value: 5},
		},
		ElseAction: &domain.ActionConfig{Action: "hideElement", Params: map[string]any{"target": "#panel"}},
	})
	require.NoError(t, err)

	panel, _ := f.doc.Get("panel")

	f.press("btn")
	assert.False(t, panel.Visible(), "condition false runs the else action")

	require.NoError(t, f.vars.Set("score", 7))
	f.press("btn")
	assert.True(t, panel.Visible())
}

func TestEngine_SetEnabled(t *testing.T) {
	f := newFixture(t)

	id, err := f.engine.Register(domain.TriggerConfig{
		Event: "press", EventTarget: "btn",
		Action: "adjustVariable", ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)

	require.NoError(t, f.engine.SetEnabled(id, false))
	f.press("btn")
	assert.Equal(t, float64(0), f.get(t, "count"))

	require.NoError(t, f.engine.SetEnabled(id, true))
	f.press("btn")
	assert.Equal(t, float64(1), f.get(t, "count"))

	assert.ErrorIs(t, f.engine.SetEnabled("trigger_99", true), domain.ErrUnknownTrigger)
}

func TestEngine_RemoveUnbindsExactly(t *testing.T) {
	f := newFixture(t)
	topic := domain.NodeTopic("btn", domain.EventPress)
	before := f.bus.Subscribers(topic)

	first, err := f.engine.Register(domain.TriggerConfig{
		Event: "press", EventTarget: "btn",
		Action: "adjustVariable", ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)
	_, err = f.engine.Register(domain.TriggerConfig{
		Event: "press", EventTarget: "btn",
		Action: "adjustVariable", ActionParams: map[string]any{"variable": "score", "value": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, before+2, f.bus.Subscribers(topic))

	require.NoError(t, f.engine.Remove(first))
	assert.Equal(t, before+1, f.bus.Subscribers(topic))

	f.press("btn")
	assert.Equal(t, float64(0), f.get(t, "count"))
	assert.Equal(t, float64(1), f.get(t, "score"))

	assert.ErrorIs(t, f.engine.Remove(first), domain.ErrUnknownTrigger)
	_, ok := f.engine.Trigger(first)
	assert.False(t, ok)
}

func TestEngine_DestroyResetsIDs(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Register(domain.TriggerConfig{Event: "press", EventTarget: "btn", Action: "next"})
	require.NoError(t, err)

	f.engine.Destroy()
	assert.Empty(t, f.engine.Triggers())
	assert.Zero(t, f.bus.Subscribers(domain.NodeTopic("btn", domain.EventPress)))

	id, err := f.engine.Register(domain.TriggerConfig{Event: "press", EventTarget: "btn", Action: "next"})
	require.NoError(t, err)
	assert.Equal(t, "trigger_0", id)
}

func TestEngine_VariableChangeFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "variableChange",
		EventParams:  map[string]any{"variable": "score"},
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)

	require.NoError(t, f.vars.Set("name", "Ada"))
	assert.Equal(t, float64(0), f.get(t, "count"))

	require.NoError(t, f.vars.Set("score", 3))
	assert.Equal(t, float64(1), f.get(t, "count"))

	require.NoError(t, f.vars.Set("score", 3))
	assert.Equal(t, float64(1), f.get(t, "count"), "unchanged values do not notify")
}

func TestEngine_StateChangeFilter(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.states.Register("panel", map[string]domain.StateDef{
		domain.StateSelected: {Markers: []string{"on"}},
	}, states.Options{}))

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "state-change",
		EventParams:  map[string]any{"target": "#panel", "state": "selected"},
		Action:       "toggleVariable",
		ActionParams: map[string]any{"variable": "done"},
	})
	require.NoError(t, err)

	require.NoError(t, f.states.SetState("panel", "custom"))
	assert.Equal(t, false, f.get(t, "done"))

	require.NoError(t, f.states.SetState("panel", domain.StateSelected))
	assert.Equal(t, true, f.get(t, "done"))
}

func TestEngine_KeyPressFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "keypress",
		EventParams:  map[string]any{"key": "Enter"},
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)

	f.bus.Publish(domain.TopicKeyPress, domain.KeyPress{Key: "a"})
	f.bus.Publish(domain.TopicKeyPress, domain.KeyPress{Key: "Enter", Code: "Enter"})

	assert.Equal(t, float64(1), f.get(t, "count"))
}

func TestEngine_InboundChannels(t *testing.T) {
	f := newFixture(t)

	adjust := func(event string, params map[string]any) domain.TriggerConfig {
		return domain.TriggerConfig{
			Event:        event,
			EventParams:  params,
			Action:       "adjustVariable",
			ActionParams: map[string]any{"variable": "count", "value": 1},
		}
	}
	_, err := f.engine.RegisterAll([]domain.TriggerConfig{
		adjust("dragDrop", map[string]any{"target": "#bin"}),
		adjust("timelineCuePoint", map[string]any{"cuePoint": "intro"}),
		adjust("custom", map[string]any{"eventName": "quiz:ready"}),
		adjust("slideEnd", nil),
	})
	require.NoError(t, err)

	f.bus.Publish(domain.TopicDragDrop, domain.DragDrop{Item: "card", Target: "other"})
	f.bus.Publish(domain.TopicDragDrop, domain.DragDrop{Item: "card", Target: "bin"})
	f.bus.Publish(domain.TopicCuePoint, domain.TimelineSignal{CuePoint: "outro"})
	f.bus.Publish(domain.TopicCuePoint, domain.TimelineSignal{CuePoint: "intro"})
	f.bus.Publish(domain.CustomTopic("quiz:ready"), domain.CustomSignal{Name: "quiz:ready"})
	f.bus.Publish(domain.TopicContentEnd, nil)

	assert.Equal(t, float64(4), f.get(t, "count"))
}

func TestEngine_ContentStartWaitsForReady(t *testing.T) {
	f := newFixture(t)
	f.doc.SetLoading(true)

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "slideStart",
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), f.get(t, "count"))

	f.doc.SetLoading(false)
	f.bus.Publish(domain.TopicReady, nil)
	f.bus.Publish(domain.TopicReady, nil)

	assert.Equal(t, float64(1), f.get(t, "count"), "content-start fires once")
}

func TestEngine_ContentStartDeferredToTick(t *testing.T) {
	sched := &tickScheduler{}
	f := newFixture(t, triggers.WithScheduler(sched))

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "content-start",
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)
	removed, err := f.engine.Register(domain.TriggerConfig{
		Event:        "content-start",
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "score", "value": 1},
	})
	require.NoError(t, err)
	require.NoError(t, f.engine.Remove(removed))

	assert.Equal(t, float64(0), f.get(t, "count"))

	sched.Tick()
	sched.Tick()

	assert.Equal(t, float64(1), f.get(t, "count"))
	assert.Equal(t, float64(0), f.get(t, "score"), "removed triggers never fire")
}

func TestEngine_ChainDepthBound(t *testing.T) {
	var aborted []*domain.TriggerEvent
	f := newFixture(t,
		triggers.WithMaxChainDepth(5),
		triggers.WithLifecycleHooks(domain.LifecycleHooks{
			OnChainAbort: func(e *domain.TriggerEvent) { aborted = append(aborted, e) },
		}),
	)

	_, err := f.engine.Register(domain.TriggerConfig{
		Event:        "variable-change",
		EventParams:  map[string]any{"variable": "count"},
		Action:       "adjustVariable",
		ActionParams: map[string]any{"variable": "count", "value": 1},
	})
	require.NoError(t, err)

	require.NoError(t, f.vars.Set("count", 1))

	assert.Equal(t, float64(6), f.get(t, "count"))
	require.Len(t, aborted, 1)
	assert.ErrorIs(t, aborted[0].Err, domain.ErrChainDepthExceeded)

	require.NoError(t, f.vars.Set("count", 100))
	assert.Equal(t, float64(105), f.get(t, "count"), "the depth counter unwinds after an abort")
}

func TestEngine_FireHook(t *testing.T) {
	var fired []*domain.TriggerEvent
	f := newFixture(t, triggers.WithLifecycleHooks(domain.LifecycleHooks{
		OnTriggerFire: func(e *domain.TriggerEvent) { fired = append(fired, e) },
	}))

	id, err := f.engine.Register(domain.TriggerConfig{
		Event: "press", EventTarget: "btn", Action: "next",
		Conditions: []domain.Condition{{Subject: "done", Operator: domain.OpIsTrue}},
	})
	require.NoError(t, err)

	f.press("btn")

	require.Len(t, fired, 1)
	assert.Equal(t, id, fired[0].TriggerID)
	assert.Equal(t, domain.ActionNext, fired[0].Action)
	assert.False(t, fired[0].Matched)
}
