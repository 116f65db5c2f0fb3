package dsl

import "github.com/aretw0/cuepoint/pkg/domain"

// NodeBuilder provides a fluent API for configuring a document node.
type NodeBuilder struct {
	node domain.NodeDef
}

// Tag sets the element tag, e.g. "button" or "input".
func (n *NodeBuilder) Tag(tag string) *NodeBuilder {
	n.node.Tag = tag
	return n
}

// Content sets the node's text content.
func (n *NodeBuilder) Content(content string) *NodeBuilder {
	n.node.Content = content
	return n
}

// Value sets the current value of a form field.
func (n *NodeBuilder) Value(value string) *NodeBuilder {
	n.node.Value = value
	return n
}

// Markers adds style markers.
func (n *NodeBuilder) Markers(markers ...string) *NodeBuilder {
	n.node.Markers = append(n.node.Markers, markers...)
	return n
}

// Attr sets an attribute.
func (n *NodeBuilder) Attr(name, value string) *NodeBuilder {
	if n.node.Attributes == nil {
		n.node.Attributes = make(map[string]string)
	}
	n.node.Attributes[name] = value
	return n
}

// Hidden starts the node hidden.
func (n *NodeBuilder) Hidden() *NodeBuilder {
	n.node.Hidden = true
	return n
}

// Checked starts a checkbox or radio node checked.
func (n *NodeBuilder) Checked() *NodeBuilder {
	n.node.Checked = true
	return n
}

// Build returns the underlying node definition.
func (n *NodeBuilder) Build() domain.NodeDef {
	return n.node
}

// ObjectBuilder configures the states of an interactive object.
type ObjectBuilder struct {
	def domain.ObjectDef
}

// State adds a named state with the markers it applies.
func (o *ObjectBuilder) State(name string, markers ...string) *ObjectBuilder {
	o.def.States[name] = domain.StateDef{Markers: markers}
	return o
}

// Initial sets the state applied on initialization.
func (o *ObjectBuilder) Initial(state string) *ObjectBuilder {
	o.def.InitialState = state
	return o
}

// ButtonSet places the object in a mutually exclusive selection group.
func (o *ObjectBuilder) ButtonSet(group string) *ObjectBuilder {
	o.def.ButtonSet = group
	return o
}

// TriggerBuilder configures the trigger most recently started with On.
type TriggerBuilder struct {
	builder *Builder
	index   int
}

func (t *TriggerBuilder) trigger() *domain.TriggerConfig {
	return &t.builder.cfg.Triggers[t.index]
}

// Do sets the action run when the trigger fires.
func (t *TriggerBuilder) Do(action string, params map[string]any) *TriggerBuilder {
	tc := t.trigger()
	tc.Action, tc.ActionParams = action, params
	return t
}

// If adds a variable condition. Several conditions combine with AND unless
// Any is called.
func (t *TriggerBuilder) If(variable string, op domain.Operator, value any) *TriggerBuilder {
	tc := t.trigger()
	tc.Conditions = append(tc.Conditions, domain.Condition{
		Type:     domain.CondVariable,
		Subject:  variable,
		Operator: op,
		Value:    value,
	})
	return t
}

// Any combines the conditions with OR.
func (t *TriggerBuilder) Any() *TriggerBuilder {
	t.trigger().ConditionLogic = string(domain.LogicOr)
	return t
}

// Else sets the action run when the conditions fail.
func (t *TriggerBuilder) Else(action string, params map[string]any) *TriggerBuilder {
	t.trigger().ElseAction = &domain.ActionConfig{Action: action, Params: params}
	return t
}

// Params sets event parameters, e.g. the key of a keyPress trigger.
func (t *TriggerBuilder) Params(params map[string]any) *TriggerBuilder {
	t.trigger().EventParams = params
	return t
}

// Priority records the trigger's priority.
func (t *TriggerBuilder) Priority(p int) *TriggerBuilder {
	t.trigger().Priority = p
	return t
}

// BranchBuilder appends rules to a decision point.
type BranchBuilder struct {
	builder *Builder
	point   string
	pending []domain.BranchCondition
}

// When adds a condition to the next rule.
func (r *BranchBuilder) When(variable string, op domain.Operator, value any) *BranchBuilder {
	r.pending = append(r.pending, domain.BranchCondition{Variable: variable, Operator: op, Value: value})
	return r
}

// GoTo closes the pending conditions into a rule targeting target. Without
// conditions the rule is a default rule.
func (r *BranchBuilder) GoTo(target string) *BranchBuilder {
	rule := domain.BranchRule{Target: target}
	switch len(r.pending) {
	case 0:
		rule.Default = true
	case 1:
		rule.Condition = &r.pending[0]
	default:
		rule.Conditions = r.pending
	}
	r.pending = nil
	r.append(rule)
	return r
}

// Otherwise adds the default rule.
func (r *BranchBuilder) Otherwise(target string) *BranchBuilder {
	r.append(domain.BranchRule{Default: true, Target: target})
	return r
}

func (r *BranchBuilder) append(rule domain.BranchRule) {
	cfg := &r.builder.cfg
	cfg.Branching[r.point] = append(cfg.Branching[r.point], rule)
}
