package domain

// Config is the declarative interactivity description of one content unit.
type Config struct {
	Variables  map[string]VariableDef  `json:"variables,omitempty" yaml:"variables,omitempty"`
	Objects    map[string]ObjectDef    `json:"objects,omitempty" yaml:"objects,omitempty"`
	Branching  map[string][]BranchRule `json:"branching,omitempty" yaml:"branching,omitempty"`
	Triggers   []TriggerConfig         `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	CourseInfo *CourseInfo             `json:"courseInfo,omitempty" yaml:"courseInfo,omitempty"`
	Nodes      []NodeDef               `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NodeDef describes a document node for hosts that build the document from configuration.
type NodeDef struct {
	ID         string            `json:"id" yaml:"id"`
	Tag        string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	Markers    []string          `json:"markers,omitempty" yaml:"markers,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Content    string            `json:"content,omitempty" yaml:"content,omitempty"`
	Value      string            `json:"value,omitempty" yaml:"value,omitempty"`
	Hidden     bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Checked    bool              `json:"checked,omitempty" yaml:"checked,omitempty"`
}
