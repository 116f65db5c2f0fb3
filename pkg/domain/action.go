package domain

import (
	"fmt"
	"strings"
)

// ActionKind is the closed set of actions a trigger or branch rule can run.
type ActionKind string

const (
	ActionJumpTo         ActionKind = "jumpTo"
	ActionNext           ActionKind = "next"
	ActionPrev           ActionKind = "prev"
	ActionJumpToScene    ActionKind = "jumpToScene"
	ActionShowLayer      ActionKind = "showLayer"
	ActionHideLayer      ActionKind = "hideLayer"
	ActionHideAllLayers  ActionKind = "hideAllLayers"
	ActionToggleLayer    ActionKind = "toggleLayer"
	ActionChangeState    ActionKind = "changeState"
	ActionToggleState    ActionKind = "toggleState"
	ActionSetVariable    ActionKind = "setVariable"
	ActionAdjustVariable ActionKind = "adjustVariable"
	ActionToggleVariable ActionKind = "toggleVariable"
	ActionPlayMedia      ActionKind = "playMedia"
	ActionPauseMedia     ActionKind = "pauseMedia"
	ActionStopMedia      ActionKind = "stopMedia"
	ActionShowNode       ActionKind = "showElement"
	ActionHideNode       ActionKind = "hideElement"
	ActionToggleNode     ActionKind = "toggleElement"
	ActionEnableNode     ActionKind = "enableElement"
	ActionDisableNode    ActionKind = "disableElement"
	ActionSetFocus       ActionKind = "setFocus"
	ActionExecute        ActionKind = "executeFunction"
	ActionComplete       ActionKind = "completeCourse"
	ActionCustom         ActionKind = "custom"
)

var actionKinds = map[string]ActionKind{}

var actionAliases = map[string]ActionKind{
	"jumptoslide": ActionJumpTo,
	"jumptounit":  ActionJumpTo,
	"nextslide":   ActionNext,
	"prevslide":   ActionPrev,
	"playaudio":   ActionPlayMedia,
	"pauseaudio":  ActionPauseMedia,
	"stopaudio":   ActionStopMedia,
	"shownode":    ActionShowNode,
	"hidenode":    ActionHideNode,
	"togglenode":  ActionToggleNode,
	"enablenode":  ActionEnableNode,
	"disablenode": ActionDisableNode,
}

func init() {
	for _, k := range []ActionKind{
		ActionJumpTo, ActionNext, ActionPrev, ActionJumpToScene,
		ActionShowLayer, ActionHideLayer, ActionHideAllLayers, ActionToggleLayer,
		ActionChangeState, ActionToggleState,
		ActionSetVariable, ActionAdjustVariable, ActionToggleVariable,
		ActionPlayMedia, ActionPauseMedia, ActionStopMedia,
		ActionShowNode, ActionHideNode, ActionToggleNode, ActionEnableNode, ActionDisableNode,
		ActionSetFocus, ActionExecute, ActionComplete, ActionCustom,
	} {
		actionKinds[strings.ToLower(string(k))] = k
	}
	for alias, k := range actionAliases {
		actionKinds[alias] = k
	}
}

// ParseActionKind maps an action name, including the legacy aliases, onto an ActionKind.
func ParseActionKind(name string) (ActionKind, error) {
	if k, ok := actionKinds[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// ActionSpec is a parsed action with its raw parameters.
type ActionSpec struct {
	Kind   ActionKind
	Params map[string]any
}

// ActionConfig is the declarative form of an action.
type ActionConfig struct {
	Action string         `json:"action" yaml:"action"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Parse validates the action name.
func (c ActionConfig) Parse() (ActionSpec, error) {
	kind, err := ParseActionKind(c.Action)
	if err != nil {
		return ActionSpec{}, err
	}
	return ActionSpec{Kind: kind, Params: c.Params}, nil
}
