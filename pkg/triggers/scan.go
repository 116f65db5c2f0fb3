package triggers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
)

// Inline trigger attributes read by ScanDocument.
const (
	AttrTrigger      = "data-trigger"
	AttrAction       = "data-action"
	AttrActionTarget = "data-action-target"
	AttrActionParam  = "data-action-param-"
	AttrConditionVar = "data-condition-var"
	AttrConditionOp  = "data-condition-op"
	AttrConditionVal = "data-condition-val"
)

// ScanDocument registers a trigger for every node carrying inline trigger
// attributes, in document order, through Register.
func (e *Engine) ScanDocument() ([]string, error) {
	var (
		ids  []string
		errs []error
	)
	for _, n := range e.doc.WithAttr(AttrTrigger) {
		id, err := e.Register(ConfigFromNode(n))
		if err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.ID, err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

// ConfigFromNode builds the trigger configuration described by a node's
// inline attributes. The event targets the node itself.
func ConfigFromNode(n *nodes.Node) domain.TriggerConfig {
	event, _ := n.Attr(AttrTrigger)
	action, _ := n.Attr(AttrAction)

	cfg := domain.TriggerConfig{
		Event:        event,
		EventTarget:  n.ID,
		Action:       action,
		ActionParams: make(map[string]any),
	}

	if target, ok := n.Attr(AttrActionTarget); ok {
		cfg.ActionParams[targetParam(action)] = target
	}
	for name, value := range n.Attributes {
		if param, ok := strings.CutPrefix(name, AttrActionParam); ok && param != "" {
			cfg.ActionParams[param] = value
		}
	}

	if name, ok := n.Attr(AttrConditionVar); ok {
		op, _ := n.Attr(AttrConditionOp)
		if op == "" {
			op = string(domain.OpEqual)
		}
		val, _ := n.Attr(AttrConditionVal)
		cfg.Conditions = []domain.Condition{{
			Type:     domain.CondVariable,
			Subject:  name,
			Operator: domain.Operator(op),
			Value:    val,
		}}
	}
	return cfg
}

// targetParam picks the parameter key an inline action target fills.
func targetParam(action string) string {
	switch {
	case strings.Contains(action, "Layer"):
		return "layer"
	case strings.Contains(action, "Variable"):
		return "variable"
	default:
		return "target"
	}
}
