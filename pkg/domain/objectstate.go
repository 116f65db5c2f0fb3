package domain

// Well-known state names.
const (
	StateNormal   = "normal"
	StateHover    = "hover"
	StateDown     = "down"
	StateSelected = "selected"
	StateVisited  = "visited"
	StateDisabled = "disabled"
	StateHidden   = "hidden"
)

// VisitedSuffix marks the visited flag of a node in a serialized state map.
const VisitedSuffix = "__visited"

// StateDef describes how a node looks while in one state.
type StateDef struct {
	Markers     []string          `json:"markers,omitempty" yaml:"markers,omitempty"`
	Styles      map[string]string `json:"styles,omitempty" yaml:"styles,omitempty"`
	Content     *string           `json:"content,omitempty" yaml:"content,omitempty"`
	Auto        bool              `json:"auto,omitempty" yaml:"auto,omitempty"`
	Permanent   bool              `json:"permanent,omitempty" yaml:"permanent,omitempty"`
	Interactive *bool             `json:"interactive,omitempty" yaml:"interactive,omitempty"`
}

// IsInteractive reports whether the node accepts input in this state. Defaults to true.
func (d StateDef) IsInteractive() bool {
	return d.Interactive == nil || *d.Interactive
}

// ObjectDef is the configuration for one node's state machine.
type ObjectDef struct {
	States       map[string]StateDef `json:"states" yaml:"states"`
	ButtonSet    string              `json:"buttonSet,omitempty" yaml:"buttonSet,omitempty"`
	InitialState string              `json:"initialState,omitempty" yaml:"initialState,omitempty"`
	AutoStates   *bool               `json:"autoStates,omitempty" yaml:"autoStates,omitempty"`
}
