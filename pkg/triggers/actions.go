package triggers

import (
	"errors"
	"fmt"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/states"
)

// AttrLayer marks nodes that act as layers when no layer collaborator is set.
const AttrLayer = "data-layer"

var errNoVariables = errors.New("no variable store configured")

// actionParams holds the actionParams keys the built-in actions read.
type actionParams struct {
	Target   string         `mapstructure:"target"`
	SlideID  string         `mapstructure:"slideId"`
	UnitID   string         `mapstructure:"unitId"`
	SceneID  string         `mapstructure:"sceneId"`
	Layer    string         `mapstructure:"layer"`
	State    string         `mapstructure:"state"`
	StateA   string         `mapstructure:"stateA"`
	StateB   string         `mapstructure:"stateB"`
	Variable string         `mapstructure:"variable"`
	Value    any            `mapstructure:"value"`
	Fn       string         `mapstructure:"fn"`
	Function string         `mapstructure:"function"`
	Args     map[string]any `mapstructure:"args"`
	Status   string         `mapstructure:"status"`
	Score    any            `mapstructure:"score"`
}

// ExecuteAction runs an action outside of any trigger, as branch side
// actions do. Failures and panics are reported and returned.
func (e *Engine) ExecuteAction(action domain.ActionSpec) error {
	err := e.execute("", action)
	if err != nil {
		e.logger.Error("action failed", "action", action.Kind, "error", err)
	}
	return err
}

func (e *Engine) execute(triggerID string, action domain.ActionSpec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", action.Kind, r)
		}
	}()

	var p actionParams
	if err := decodeParams(action.Params, &p); err != nil {
		return fmt.Errorf("%s params: %w", action.Kind, err)
	}
	if err := e.dispatch(triggerID, action, p); err != nil {
		return fmt.Errorf("%s: %w", action.Kind, err)
	}
	return nil
}

func (e *Engine) dispatch(triggerID string, action domain.ActionSpec, p actionParams) error {
	switch action.Kind {
	case domain.ActionJumpTo:
		target := firstOf(p.SlideID, p.UnitID, p.Target)
		if target == "" {
			return errors.New("missing target")
		}
		e.navigate(domain.NavigateUnit, target)
	case domain.ActionNext:
		e.navigate(domain.NavigateNext, "")
	case domain.ActionPrev:
		e.navigate(domain.NavigatePrev, "")
	case domain.ActionJumpToScene:
		target := firstOf(p.SceneID, p.Target)
		if target == "" {
			return errors.New("missing scene")
		}
		e.navigate(domain.NavigateScene, target)

	case domain.ActionShowLayer:
		return e.setLayer(firstOf(p.Layer, p.Target), true)
	case domain.ActionHideLayer:
		return e.setLayer(firstOf(p.Layer, p.Target), false)
	case domain.ActionToggleLayer:
		layer := nodes.StripSelector(firstOf(p.Layer, p.Target))
		return e.setLayer(layer, !e.layerVisible(layer))
	case domain.ActionHideAllLayers:
		return e.hideAllLayers()

	case domain.ActionChangeState:
		return e.changeState(p.Target, p.State)
	case domain.ActionToggleState:
		return e.toggleState(p.Target, p.StateA, p.StateB)

	case domain.ActionSetVariable:
		if e.vars == nil {
			return errNoVariables
		}
		return e.vars.Set(p.Variable, p.Value)
	case domain.ActionAdjustVariable:
		if e.vars == nil {
			return errNoVariables
		}
		return e.vars.Adjust(p.Variable, p.Value)
	case domain.ActionToggleVariable:
		if e.vars == nil {
			return errNoVariables
		}
		return e.vars.Toggle(p.Variable)

	case domain.ActionPlayMedia, domain.ActionPauseMedia, domain.ActionStopMedia:
		return e.media(action.Kind, nodes.StripSelector(p.Target))

	case domain.ActionShowNode, domain.ActionHideNode, domain.ActionToggleNode:
		n, err := e.node(p.Target)
		if err != nil {
			return err
		}
		show := action.Kind == domain.ActionShowNode ||
			(action.Kind == domain.ActionToggleNode && !n.Visible())
		if show {
			n.Show()
		} else {
			n.Hide()
		}
	case domain.ActionEnableNode, domain.ActionDisableNode:
		n, err := e.node(p.Target)
		if err != nil {
			return err
		}
		n.SetEnabled(action.Kind == domain.ActionEnableNode)
	case domain.ActionSetFocus:
		if !e.doc.Focus(nodes.StripSelector(p.Target)) {
			return fmt.Errorf("focus %q: %w", p.Target, domain.ErrNodeNotFound)
		}

	case domain.ActionExecute:
		name := firstOf(p.Fn, p.Function)
		if e.funcs == nil {
			return fmt.Errorf("%w: %q", domain.ErrFunctionNotFound, name)
		}
		result, err := e.funcs.Execute(name, p.Args)
		if err != nil || p.Variable == "" {
			return err
		}
		// The result lands in a variable when one is named.
		if e.vars == nil {
			return errNoVariables
		}
		return e.vars.Set(p.Variable, result)

	case domain.ActionComplete:
		e.bus.Publish(domain.TopicCourseComplete, domain.CourseComplete{Status: p.Status, Score: p.Score})
	case domain.ActionCustom:
		e.bus.Publish(domain.TopicCustomAction, domain.CustomAction{TriggerID: triggerID, Params: action.Params})

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Kind)
	}
	return nil
}

func (e *Engine) navigate(kind, target string) {
	e.bus.Publish(domain.TopicNavigate, domain.NavigateRequest{Target: target, Kind: kind})
}

func (e *Engine) node(selector string) (*nodes.Node, error) {
	n, ok := e.doc.Resolve(selector)
	if !ok {
		return nil, fmt.Errorf("%q: %w", selector, domain.ErrNodeNotFound)
	}
	return n, nil
}

func (e *Engine) layerVisible(layer string) bool {
	if e.layers != nil {
		return e.layers.IsVisible(layer)
	}
	n, ok := e.doc.Get(layer)
	return ok && n.Visible()
}

// setLayer shows or hides a layer through the collaborator, or toggles the
// node of the same id, and publishes the matching layer signal.
func (e *Engine) setLayer(layer string, show bool) error {
	layer = nodes.StripSelector(layer)
	if layer == "" {
		return errors.New("missing layer")
	}

	switch {
	case e.layers != nil && show:
		if err := e.layers.Show(layer); err != nil {
			return err
		}
	case e.layers != nil:
		if err := e.layers.Hide(layer); err != nil {
			return err
		}
	default:
		n, err := e.node(layer)
		if err != nil {
			return err
		}
		if show {
			n.Show()
		} else {
			n.Hide()
		}
	}

	topic := domain.TopicLayerHidden
	if show {
		topic = domain.TopicLayerShown
	}
	e.bus.Publish(topic, domain.LayerSignal{Layer: layer})
	return nil
}

func (e *Engine) hideAllLayers() error {
	if e.layers != nil {
		return e.layers.HideAll()
	}
	for _, n := range e.doc.WithAttr(AttrLayer) {
		if n.Visible() {
			n.Hide()
			e.bus.Publish(domain.TopicLayerHidden, domain.LayerSignal{Layer: n.ID})
		}
	}
	return nil
}

// changeState goes through the state machine when the node is registered
// there and otherwise applies the well-known states to the node directly.
func (e *Engine) changeState(target, state string) error {
	if e.states != nil && e.states.IsRegistered(target) {
		return e.states.SetState(target, state)
	}
	n, err := e.node(target)
	if err != nil {
		return err
	}
	switch state {
	case domain.StateHidden:
		n.Hide()
	case domain.StateDisabled:
		n.SetEnabled(false)
	case domain.StateNormal:
		n.Show()
		n.SetEnabled(true)
	}
	n.SetAttr(states.AttrState, state)
	return nil
}

func (e *Engine) toggleState(target, a, b string) error {
	if e.states != nil && e.states.IsRegistered(target) {
		return e.states.ToggleState(target, a, b)
	}
	n, err := e.node(target)
	if err != nil {
		return err
	}
	next := a
	if cur, _ := n.Attr(states.AttrState); cur == a {
		next = b
	}
	return e.changeState(n.ID, next)
}

// media drives the audio collaborator or, without one, the playback flags
// of the target node.
func (e *Engine) media(kind domain.ActionKind, target string) error {
	if e.audio != nil {
		switch kind {
		case domain.ActionPlayMedia:
			return e.audio.Play(target)
		case domain.ActionPauseMedia:
			return e.audio.Pause(target)
		default:
			return e.audio.Stop(target)
		}
	}

	n, err := e.node(target)
	if err != nil {
		return err
	}
	n.Playing = kind == domain.ActionPlayMedia
	if kind == domain.ActionStopMedia {
		n.Position = 0
	}
	return nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
