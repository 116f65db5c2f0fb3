// Package validator checks a unit configuration before it reaches an engine.
package validator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/triggers"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding, located by a dotted path into the configuration.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// Report collects the issues found in a configuration.
type Report struct {
	Issues []Issue
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err joins the error-severity issues, or returns nil when there are none.
func (r *Report) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, errors.New(i.Path+": "+i.Message))
	}
	return errors.Join(errs...)
}

type checker struct {
	cfg    *domain.Config
	nodes  map[string]bool
	report *Report
}

// Validate checks variable types, object states, branching rules and
// triggers. Node references are only checked when cfg declares nodes.
func Validate(cfg *domain.Config) *Report {
	c := &checker{cfg: cfg, report: &Report{}}
	if cfg == nil {
		return c.report
	}
	if len(cfg.Nodes) > 0 {
		c.nodes = make(map[string]bool, len(cfg.Nodes))
		for _, n := range cfg.Nodes {
			if c.nodes[n.ID] {
				c.errorf("nodes."+n.ID, "duplicate node id")
			}
			c.nodes[n.ID] = true
		}
	}

	c.variables()
	c.objects()
	c.branching()
	for i, t := range cfg.Triggers {
		c.trigger(fmt.Sprintf("triggers[%d]", i), t)
	}
	return c.report
}

func (c *checker) errorf(path, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{SeverityError, path, fmt.Sprintf(format, args...)})
}

func (c *checker) warnf(path, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{SeverityWarning, path, fmt.Sprintf(format, args...)})
}

func (c *checker) hasNode(selector string) bool {
	return c.nodes == nil || c.nodes[nodes.StripSelector(selector)]
}

func (c *checker) hasVariable(name string) bool {
	if _, ok := c.cfg.Variables[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "Course.") || strings.HasPrefix(name, "Unit.")
}

func (c *checker) variables() {
	for _, name := range slices.Sorted(maps.Keys(c.cfg.Variables)) {
		def := c.cfg.Variables[name]
		path := "variables." + name
		if _, err := domain.ParseVarType(def.Type); err != nil {
			c.errorf(path, "%v", err)
		}
		if _, err := domain.ParseScope(def.Scope); err != nil {
			c.errorf(path, "%v", err)
		}
	}
}

func (c *checker) objects() {
	selected := make(map[string]string)
	for _, id := range slices.Sorted(maps.Keys(c.cfg.Objects)) {
		def := c.cfg.Objects[id]
		path := "objects." + id
		if !c.hasNode(id) {
			c.errorf(path, "node %q is not declared", id)
		}
		if def.InitialState != "" && def.InitialState != domain.StateNormal {
			if _, ok := def.States[def.InitialState]; !ok {
				c.warnf(path, "initial state %q has no definition", def.InitialState)
			}
		}
		if def.InitialState == domain.StateSelected && def.ButtonSet != "" {
			if first, dup := selected[def.ButtonSet]; dup {
				c.warnf(path, "button set %q already starts with %q selected; only the last registered stays selected", def.ButtonSet, first)
				continue
			}
			selected[def.ButtonSet] = id
		}
	}
}

func (c *checker) branching() {
	for _, id := range slices.Sorted(maps.Keys(c.cfg.Branching)) {
		rules := c.cfg.Branching[id]
		path := "branching." + id
		if len(rules) == 0 {
			c.errorf(path, "%v", domain.ErrEmptyRules)
			continue
		}

		seenDefault := false
		for i, r := range rules {
			rp := fmt.Sprintf("%s[%d]", path, i)
			if seenDefault {
				c.warnf(rp, "rule follows a default rule and can never match")
			}
			if r.Default {
				seenDefault = true
			}
			if r.Target == "" && r.SideAction == nil {
				c.warnf(rp, "rule has neither a target nor an action")
			}
			conds := r.Conditions
			if r.Condition != nil {
				conds = append([]domain.BranchCondition{*r.Condition}, conds...)
			}
			if !r.Default && len(conds) == 0 {
				c.warnf(rp, "rule without conditions never matches unless marked default")
			}
			for _, cond := range conds {
				if !c.hasVariable(cond.Variable) {
					c.errorf(rp, "unknown variable %q", cond.Variable)
				}
				c.operator(rp, cond.Operator)
			}
			if r.SideAction != nil {
				c.action(rp+".action", r.SideAction.Action, r.SideAction.Params)
			}
		}
		if !seenDefault {
			c.warnf(path, "no default rule; evaluation may select nothing")
		}
	}
}

func (c *checker) operator(path string, op domain.Operator) {
	if domain.IsGroupOperator(op) {
		return
	}
	if _, err := triggers.Compare(nil, op, nil); errors.Is(err, domain.ErrUnknownOperator) {
		c.errorf(path, "%v", err)
	}
}

func (c *checker) trigger(path string, t domain.TriggerConfig) {
	kind, err := domain.ParseEventKind(t.Event)
	if err != nil {
		c.errorf(path, "%v", err)
	} else if kind.IsNodeEvent() {
		target := t.EventTarget
		if target == "" {
			if v, ok := t.EventParams["target"].(string); ok {
				target = v
			}
		}
		switch {
		case target == "":
			c.errorf(path, "%s needs an event target", kind)
		case !c.hasNode(target):
			c.errorf(path, "event target %q is not declared", target)
		}
	}

	c.action(path, t.Action, t.ActionParams)
	if t.ElseAction != nil {
		c.action(path+".elseAction", t.ElseAction.Action, t.ElseAction.Params)
	}
	c.conditions(path+".conditions", t.Conditions)
}

func (c *checker) conditions(path string, conds []domain.Condition) {
	for i, cond := range conds {
		cp := fmt.Sprintf("%s[%d]", path, i)
		if cond.IsGroup() {
			c.conditions(cp+".conditions", cond.Conditions)
			continue
		}
		c.operator(cp, cond.Operator)
		switch cond.Type.Normalized() {
		case domain.CondVariable:
			if !c.hasVariable(cond.Subject) {
				c.errorf(cp, "unknown variable %q", cond.Subject)
			}
		case domain.CondNodeState, domain.CondNodeProperty:
			if !c.hasNode(cond.Subject) {
				c.errorf(cp, "node %q is not declared", cond.Subject)
			}
		}
	}
}

func (c *checker) action(path, name string, params map[string]any) {
	kind, err := domain.ParseActionKind(name)
	if err != nil {
		c.errorf(path, "%v", err)
		return
	}
	str := func(key string) string {
		v, _ := params[key].(string)
		return v
	}

	switch kind {
	case domain.ActionSetVariable, domain.ActionAdjustVariable, domain.ActionToggleVariable:
		if v := str("variable"); v == "" {
			c.errorf(path, "%s needs a variable", kind)
		} else if _, ok := c.cfg.Variables[v]; !ok {
			c.errorf(path, "unknown variable %q", v)
		}
	case domain.ActionChangeState, domain.ActionToggleState,
		domain.ActionShowNode, domain.ActionHideNode, domain.ActionToggleNode,
		domain.ActionEnableNode, domain.ActionDisableNode, domain.ActionSetFocus:
		if t := str("target"); t == "" {
			c.errorf(path, "%s needs a target", kind)
		} else if !c.hasNode(t) {
			c.errorf(path, "target %q is not declared", t)
		}
	case domain.ActionExecute:
		if str("fn") == "" && str("function") == "" {
			c.errorf(path, "%s needs a function name", kind)
		}
		if v := str("variable"); v != "" {
			if _, ok := c.cfg.Variables[v]; !ok {
				c.errorf(path, "unknown variable %q", v)
			}
		}
	}
}
