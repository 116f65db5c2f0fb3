package domain

import (
	"fmt"
	"strings"
)

// EventKind is the closed set of events a trigger can listen for.
type EventKind string

const (
	EventPress         EventKind = "press"
	EventPointerDown   EventKind = "pointer-down"
	EventPointerUp     EventKind = "pointer-up"
	EventHoverEnter    EventKind = "hover-enter"
	EventHoverLeave    EventKind = "hover-leave"
	EventFocusEnter    EventKind = "focus-enter"
	EventFocusLeave    EventKind = "focus-leave"
	EventKeyPress      EventKind = "key-press"
	EventContentStart  EventKind = "content-start"
	EventContentEnd    EventKind = "content-end"
	EventVariable      EventKind = "variable-change"
	EventStateChange   EventKind = "state-change"
	EventLayerShow     EventKind = "layer-show"
	EventLayerHide     EventKind = "layer-hide"
	EventMediaEnd      EventKind = "media-end"
	EventDragDrop      EventKind = "drag-drop"
	EventTimelineStart EventKind = "timeline-start"
	EventTimelineEnd   EventKind = "timeline-end"
	EventCuePoint      EventKind = "cue-point"
	EventCustom        EventKind = "custom"
)

var eventKinds = map[string]EventKind{
	"press":            EventPress,
	"click":            EventPress,
	"pointer-down":     EventPointerDown,
	"mousedown":        EventPointerDown,
	"pointer-up":       EventPointerUp,
	"mouseup":          EventPointerUp,
	"hover-enter":      EventHoverEnter,
	"hover":            EventHoverEnter,
	"mouseenter":       EventHoverEnter,
	"hover-leave":      EventHoverLeave,
	"hoveroff":         EventHoverLeave,
	"mouseleave":       EventHoverLeave,
	"focus-enter":      EventFocusEnter,
	"focusin":          EventFocusEnter,
	"focus-leave":      EventFocusLeave,
	"focusout":         EventFocusLeave,
	"key-press":        EventKeyPress,
	"keypress":         EventKeyPress,
	"content-start":    EventContentStart,
	"slidestart":       EventContentStart,
	"content-end":      EventContentEnd,
	"slideend":         EventContentEnd,
	"variable-change":  EventVariable,
	"variablechange":   EventVariable,
	"state-change":     EventStateChange,
	"statechange":      EventStateChange,
	"layer-show":       EventLayerShow,
	"layershow":        EventLayerShow,
	"layer-hide":       EventLayerHide,
	"layerhide":        EventLayerHide,
	"media-end":        EventMediaEnd,
	"mediaend":         EventMediaEnd,
	"drag-drop":        EventDragDrop,
	"dragdrop":         EventDragDrop,
	"timeline-start":   EventTimelineStart,
	"timelinestart":    EventTimelineStart,
	"timeline-end":     EventTimelineEnd,
	"timelineend":      EventTimelineEnd,
	"cue-point":        EventCuePoint,
	"timelinecuepoint": EventCuePoint,
	"custom":           EventCustom,
}

// ParseEventKind maps an event name, including the legacy aliases, onto an EventKind.
func ParseEventKind(name string) (EventKind, error) {
	if k, ok := eventKinds[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// IsNodeEvent reports whether the event originates from a specific node.
func (k EventKind) IsNodeEvent() bool {
	switch k {
	case EventPress, EventPointerDown, EventPointerUp, EventHoverEnter, EventHoverLeave,
		EventFocusEnter, EventFocusLeave, EventMediaEnd:
		return true
	}
	return false
}

// EventSpec identifies what a trigger listens for.
type EventSpec struct {
	Kind   EventKind
	Target string
	Params map[string]any
}

// Condition is either a comparison leaf or, when Operator is AND/OR, a group of Conditions.
type Condition struct {
	Type       ConditionType `json:"type,omitempty" yaml:"type,omitempty"`
	Subject    string        `json:"subject,omitempty" yaml:"subject,omitempty"`
	Property   string        `json:"property,omitempty" yaml:"property,omitempty"`
	Operator   Operator      `json:"operator" yaml:"operator"`
	Value      any           `json:"value,omitempty" yaml:"value,omitempty"`
	Conditions []Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// IsGroup reports whether the condition combines nested conditions.
func (c Condition) IsGroup() bool {
	return IsGroupOperator(c.Operator)
}

// ConditionType selects what a trigger condition reads.
type ConditionType string

const (
	CondVariable     ConditionType = "variable"
	CondNodeState    ConditionType = "state"
	CondNodeProperty ConditionType = "element"
	CondViewport     ConditionType = "window"
)

// Normalized maps aliases onto the canonical condition types.
// Unrecognized types read a variable named by the subject.
func (t ConditionType) Normalized() ConditionType {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "state", "nodestate":
		return CondNodeState
	case "element", "nodeproperty", "property":
		return CondNodeProperty
	case "window", "viewport":
		return CondViewport
	default:
		return CondVariable
	}
}

// Trigger is a registered, normalized binding.
type Trigger struct {
	ID         string
	Event      EventSpec
	Action     ActionSpec
	Conditions []Condition
	Logic      Logic
	Else       *ActionSpec
	Priority   int
	Enabled    bool
}

// TriggerConfig is the declarative form of a trigger.
type TriggerConfig struct {
	Event          string         `json:"event" yaml:"event"`
	EventTarget    string         `json:"eventTarget,omitempty" yaml:"eventTarget,omitempty"`
	EventParams    map[string]any `json:"eventParams,omitempty" yaml:"eventParams,omitempty"`
	Action         string         `json:"action" yaml:"action"`
	ActionParams   map[string]any `json:"actionParams,omitempty" yaml:"actionParams,omitempty"`
	Conditions     []Condition    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	ConditionLogic string         `json:"conditionLogic,omitempty" yaml:"conditionLogic,omitempty"`
	ElseAction     *ActionConfig  `json:"elseAction,omitempty" yaml:"elseAction,omitempty"`
	Priority       int            `json:"priority,omitempty" yaml:"priority,omitempty"`
}
