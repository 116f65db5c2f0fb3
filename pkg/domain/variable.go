package domain

import (
	"fmt"
	"strings"
)

// Scope controls which variables are reset when a content unit is left.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeLocal   Scope = "local"
)

// ParseScope maps a configuration scope name onto a Scope.
// An empty name means project scope; "slide" and "unit" are accepted for local.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "project", "global":
		return ScopeProject, nil
	case "local", "slide", "unit":
		return ScopeLocal, nil
	default:
		return "", fmt.Errorf("unknown scope %q", name)
	}
}

// Variable is a declared, typed value.
type Variable struct {
	Name    string
	Type    VarType
	Value   any
	Default any
	Scope   Scope
}

// VariableDef is the configuration form of a variable declaration.
type VariableDef struct {
	Type    string `json:"type" yaml:"type"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
	Scope   string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Built-in course progress variables maintained by the engine.
const (
	BuiltinTotalUnits           = "Course.TotalUnits"
	BuiltinUnitNumber           = "Course.UnitNumber"
	BuiltinUnitsViewed          = "Course.UnitsViewed"
	BuiltinCompletionPercentage = "Course.CompletionPercentage"
	BuiltinCurrentUnit          = "Unit.Number"
	BuiltinElapsedTime          = "Course.ElapsedTime"
)

// CourseInfo carries host facts used to seed the built-in variables.
type CourseInfo struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	TotalUnits  int    `json:"totalUnits" yaml:"totalUnits"`
	CurrentUnit int    `json:"currentUnit" yaml:"currentUnit"`
}
