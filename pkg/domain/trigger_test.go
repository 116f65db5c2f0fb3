package domain

import (
	"errors"
	"testing"
)

func TestParseEventKind_Aliases(t *testing.T) {
	tests := map[string]EventKind{
		"click":            EventPress,
		"press":            EventPress,
		"hoverOff":         EventHoverLeave,
		"slideStart":       EventContentStart,
		"timelineCuePoint": EventCuePoint,
		"variableChange":   EventVariable,
	}
	for in, want := range tests {
		got, err := ParseEventKind(in)
		if err != nil || got != want {
			t.Errorf("ParseEventKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseEventKind("teleport"); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestParseActionKind_Aliases(t *testing.T) {
	tests := map[string]ActionKind{
		"jumpToSlide":     ActionJumpTo,
		"nextSlide":       ActionNext,
		"setVariable":     ActionSetVariable,
		"executefunction": ActionExecute,
		"showElement":     ActionShowNode,
	}
	for in, want := range tests {
		got, err := ParseActionKind(in)
		if err != nil || got != want {
			t.Errorf("ParseActionKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseActionKind("explode"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

func TestConditionType_Normalized(t *testing.T) {
	if got := ConditionType("").Normalized(); got != CondVariable {
		t.Errorf("empty type = %v", got)
	}
	if got := ConditionType("viewport").Normalized(); got != CondViewport {
		t.Errorf("viewport = %v", got)
	}
	if !(Condition{Operator: "or"}).IsGroup() {
		t.Error("lowercase or must be a group")
	}
	if (Condition{Operator: OpEqual}).IsGroup() {
		t.Error("== is not a group")
	}
}
