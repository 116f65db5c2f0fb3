package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/triggers"
	"gopkg.in/yaml.v3"
)

// ErrExpectation is returned when a step's expectations do not hold.
var ErrExpectation = errors.New("expectation failed")

// Step is one scripted or typed interaction with the unit.
type Step struct {
	Event    *domain.InputEvent `yaml:"event,omitempty" json:"event,omitempty"`
	Evaluate string             `yaml:"evaluate,omitempty" json:"evaluate,omitempty"`
	Set      map[string]any     `yaml:"set,omitempty" json:"set,omitempty"`
	Expect   *Expectation       `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expectation asserts the unit's state after a step.
type Expectation struct {
	Variables map[string]any    `yaml:"vars,omitempty" json:"vars,omitempty"`
	States    map[string]string `yaml:"states,omitempty" json:"states,omitempty"`
	Content   map[string]string `yaml:"content,omitempty" json:"content,omitempty"`
	Target    *string           `yaml:"target,omitempty" json:"target,omitempty"`
}

// Script is a replayable list of steps.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	return &s, nil
}

// Replay applies every step in order and stops at the first failure.
func Replay(c *Console, s *Script) error {
	for i, step := range s.Steps {
		if err := c.Apply(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Check compares the engine against the expectation. lastTarget is the
// result of the most recent evaluation.
func (x *Expectation) Check(eng *cuepoint.Engine, lastTarget string) error {
	var failures []string

	for _, name := range sortedKeys(x.Variables) {
		want := x.Variables[name]
		got, ok := eng.Variables().Get(name)
		if !ok {
			failures = append(failures, fmt.Sprintf("variable %q is not defined", name))
			continue
		}
		if equal, err := triggers.Compare(got, domain.OpEqual, want); err != nil || !equal {
			failures = append(failures, fmt.Sprintf("variable %q = %v, want %v", name, got, want))
		}
	}

	for _, id := range sortedKeys(x.States) {
		want := x.States[id]
		got, _ := eng.States().State(id)
		if got != want {
			failures = append(failures, fmt.Sprintf("state of %q = %q, want %q", id, got, want))
		}
	}

	for _, id := range sortedKeys(x.Content) {
		want := x.Content[id]
		n, ok := eng.Document().Get(id)
		if !ok {
			failures = append(failures, fmt.Sprintf("node %q not found", id))
			continue
		}
		if n.Content != want {
			failures = append(failures, fmt.Sprintf("content of %q = %q, want %q", id, n.Content, want))
		}
	}

	if x.Target != nil && *x.Target != lastTarget {
		failures = append(failures, fmt.Sprintf("target = %q, want %q", lastTarget, *x.Target))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(failures, "; "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
