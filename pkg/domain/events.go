package domain

import "time"

// Bus topics published by the engines.
const (
	TopicVariableChanged = "variable:changed"
	TopicStateChanged    = "state:changed"
	TopicBranchTaken     = "branch:taken"
	TopicBranchAction    = "branch:action"
	TopicNavigate        = "navigation:request"
	TopicCustomAction    = "action:custom"
	TopicCourseComplete  = "course:complete"
	TopicLayerShown      = "layer:shown"
	TopicLayerHidden     = "layer:hidden"
)

// Bus topics fed by the host.
const (
	TopicKeyPress      = "input:key"
	TopicDragDrop      = "input:drag-drop"
	TopicContentStart  = "lifecycle:content-start"
	TopicContentEnd    = "lifecycle:content-end"
	TopicReady         = "lifecycle:ready"
	TopicTimelineStart = "timeline:start"
	TopicTimelineEnd   = "timeline:end"
	TopicCuePoint      = "timeline:cue-point"
)

// NodeTopic is the topic a node-originated event is published on.
func NodeTopic(id string, kind EventKind) string {
	return "node:" + id + ":" + string(kind)
}

// CustomTopic is the topic a named custom event is published on.
func CustomTopic(name string) string {
	return "custom:" + name
}

// VariableChange is published after a variable value actually changed.
type VariableChange struct {
	Name     string `json:"name"`
	NewValue any    `json:"newValue"`
	OldValue any    `json:"oldValue"`
}

// StateChange is published after a node entered a new state.
type StateChange struct {
	ID            string `json:"id"`
	NewState      string `json:"newState"`
	PreviousState string `json:"previousState"`
}

// NavigateRequest asks the host to move to another content unit.
// Kind is "next", "prev", "unit" or "scene".
type NavigateRequest struct {
	Target string `json:"target,omitempty"`
	Kind   string `json:"kind"`
}

// Navigation request kinds.
const (
	NavigateNext  = "next"
	NavigatePrev  = "prev"
	NavigateUnit  = "unit"
	NavigateScene = "scene"
)

// CustomAction carries the parameters of a custom action to the host.
type CustomAction struct {
	TriggerID string         `json:"triggerId,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
}

// CourseComplete is published by the completeCourse action.
type CourseComplete struct {
	Status string `json:"status,omitempty"`
	Score  any    `json:"score,omitempty"`
}

// LayerSignal is published when a layer is shown or hidden.
type LayerSignal struct {
	Layer string `json:"layer"`
}

// NodeSignal is published on a node topic.
type NodeSignal struct {
	ID   string    `json:"id"`
	Kind EventKind `json:"kind"`
}

// KeyPress is published on TopicKeyPress.
type KeyPress struct {
	Key    string `json:"key"`
	Code   string `json:"code,omitempty"`
	Target string `json:"target,omitempty"`
}

// TimelineSignal is published on the timeline topics.
type TimelineSignal struct {
	Timeline string `json:"timeline,omitempty"`
	CuePoint string `json:"cuePoint,omitempty"`
}

// DragDrop is published when an item is dropped on a target.
type DragDrop struct {
	Item   string `json:"item"`
	Target string `json:"target"`
}

// CustomSignal is published on a custom topic.
type CustomSignal struct {
	Name   string         `json:"name"`
	Detail map[string]any `json:"detail,omitempty"`
}

// InputEvent is a host-originated event entering the engine.
type InputEvent struct {
	Kind   EventKind      `json:"kind" yaml:"kind"`
	Target string         `json:"target,omitempty" yaml:"target,omitempty"`
	Key    string         `json:"key,omitempty" yaml:"key,omitempty"`
	Code   string         `json:"code,omitempty" yaml:"code,omitempty"`
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Item   string         `json:"item,omitempty" yaml:"item,omitempty"`
	Detail map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// TriggerEvent describes one trigger evaluation.
type TriggerEvent struct {
	Timestamp time.Time
	TriggerID string
	Event     EventKind
	Action    ActionKind
	Matched   bool
	Err       error
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTriggerFire func(*TriggerEvent)
	OnActionError func(*TriggerEvent)
	OnBranchTaken func(*BranchTaken)
	OnChainAbort  func(*TriggerEvent)
}
