// Package branching implements the ordered, first-match-wins decision engine
// that maps a decision point to a navigation target.
package branching

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/events"
)

// VariableReader is the read side of the variable store.
type VariableReader interface {
	Get(name string) (any, bool)
}

// Engine evaluates branch rules against variables and records the path taken.
// It is not safe for concurrent use.
type Engine struct {
	vars   VariableReader
	bus    *events.Bus
	logger *slog.Logger
	clock  func() time.Time

	rules        map[string][]domain.BranchRule
	history      []domain.PathEntry
	autoNavigate bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithBus publishes branch, navigation and side-action events.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger configures a logger for reported problems.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for path history.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an Engine reading variables from vars.
func New(vars VariableReader, opts ...Option) *Engine {
	e := &Engine{
		vars:         vars,
		logger:       logging.NewNop(),
		clock:        time.Now,
		rules:        make(map[string][]domain.BranchRule),
		autoNavigate: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddRule replaces the rule list of a decision point.
func (e *Engine) AddRule(id string, rules []domain.BranchRule) error {
	if len(rules) == 0 {
		err := fmt.Errorf("add rule %q: %w", id, domain.ErrEmptyRules)
		e.logger.Warn("branch rule skipped", "decision_point", id, "error", err)
		return err
	}
	e.rules[id] = slices.Clone(rules)
	return nil
}

// AddRules registers several decision points. Empty lists are skipped and
// their errors joined.
func (e *Engine) AddRules(rules map[string][]domain.BranchRule) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(rules)) {
		if err := e.AddRule(id, rules[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveRule drops the rule list of a decision point.
func (e *Engine) RemoveRule(id string) {
	delete(e.rules, id)
}

// Rules returns a copy of a decision point's rules.
func (e *Engine) Rules(id string) []domain.BranchRule {
	return slices.Clone(e.rules[id])
}

// DecisionPoints returns the registered decision point ids, sorted.
func (e *Engine) DecisionPoints() []string {
	return slices.Sorted(maps.Keys(e.rules))
}

// SetAutoNavigate controls whether Evaluate publishes navigation requests.
func (e *Engine) SetAutoNavigate(on bool) {
	e.autoNavigate = on
}

// Evaluate returns the target of the first matching rule. On a match the path
// is recorded, the rule's side action is published, navigation is requested
// and a branch-taken event is published.
func (e *Engine) Evaluate(id string) (string, bool) {
	return e.evaluate(id, false)
}

// Peek evaluates like Evaluate and records the path, but publishes nothing.
func (e *Engine) Peek(id string) (string, bool) {
	return e.evaluate(id, true)
}

func (e *Engine) evaluate(id string, peek bool) (string, bool) {
	rules, ok := e.rules[id]
	if !ok {
		e.logger.Warn("no rules for decision point", "decision_point", id)
		return "", false
	}

	for _, rule := range rules {
		if e.matches(id, rule) {
			e.take(id, rule, peek)
			return rule.Target, true
		}
	}
	return "", false
}

func (e *Engine) matches(id string, rule domain.BranchRule) bool {
	if rule.Default {
		return true
	}
	if rule.Condition != nil {
		return e.check(id, *rule.Condition)
	}
	if len(rule.Conditions) == 0 {
		return false
	}

	or := rule.Logic.Normalized() == domain.LogicOr
	for _, c := range rule.Conditions {
		ok := e.check(id, c)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func (e *Engine) check(id string, c domain.BranchCondition) bool {
	actual, _ := e.vars.Get(c.Variable)
	ok, err := Compare(actual, c.Operator, c.Value)
	if err != nil {
		e.logger.Warn("branch condition evaluated false", "decision_point", id, "variable", c.Variable, "error", err)
	}
	return ok
}

func (e *Engine) take(id string, rule domain.BranchRule, peek bool) {
	e.history = append(e.history, domain.PathEntry{From: id, To: rule.Target, Timestamp: e.clock()})
	if peek || e.bus == nil {
		return
	}

	if rule.SideAction != nil {
		e.bus.Publish(domain.TopicBranchAction, domain.BranchAction{From: id, Action: *rule.SideAction})
	}
	if e.autoNavigate && rule.Target != "" {
		e.bus.Publish(domain.TopicNavigate, domain.NavigateRequest{Target: rule.Target, Kind: domain.NavigateUnit})
	}
	e.bus.Publish(domain.TopicBranchTaken, domain.BranchTaken{From: id, To: rule.Target, Default: rule.Default})
}
