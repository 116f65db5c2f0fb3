package domain

import (
	"math"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		typ  VarType
		in   any
		want any
	}{
		{"number from int", TypeNumber, 3, float64(3)},
		{"number from numeric text", TypeNumber, "5", float64(5)},
		{"number from garbage", TypeNumber, "abc", float64(0)},
		{"number from empty text", TypeNumber, "", float64(0)},
		{"number from bool", TypeNumber, true, float64(1)},
		{"text from number", TypeText, 7.5, "7.5"},
		{"text from integral number", TypeText, float64(7), "7"},
		{"text from bool", TypeText, false, "false"},
		{"text from nil", TypeText, nil, ""},
		{"boolean from text false", TypeBoolean, "false", false},
		{"boolean from text zero", TypeBoolean, "0", false},
		{"boolean from text", TypeBoolean, "yes", true},
		{"boolean from zero", TypeBoolean, 0, false},
		{"boolean from number", TypeBoolean, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.typ, tt.in); got != tt.want {
				t.Errorf("Coerce(%s, %#v) = %#v, want %#v", tt.typ, tt.in, got, tt.want)
			}
		})
	}
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{float64(5), "5", true},
		{"5", 5, true},
		{true, 1, true},
		{false, "0", true},
		{"a", "a", true},
		{"a", "b", false},
		{float64(5), "x", false},
		{nil, nil, true},
		{nil, "", false},
	}

	for _, tt := range tests {
		if got := LooseEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("LooseEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	if StrictEqual(float64(5), "5") {
		t.Error("StrictEqual must not coerce across types")
	}
	if !StrictEqual(5, float64(5)) {
		t.Error("StrictEqual must treat normalized numbers as equal")
	}
}

func TestToNumber(t *testing.T) {
	if n, ok := ToNumber("  42 "); !ok || n != 42 {
		t.Errorf("ToNumber trimmed = %v, %v", n, ok)
	}
	if n, ok := ToNumber("abc"); ok || !math.IsNaN(n) {
		t.Errorf("ToNumber garbage = %v, %v", n, ok)
	}
	if _, ok := ToNumber(nil); ok {
		t.Error("ToNumber(nil) must not be usable")
	}
}

func TestParseVarType(t *testing.T) {
	for in, want := range map[string]VarType{"boolean": TypeBoolean, "Number": TypeNumber, "text": TypeText, "string": TypeText} {
		got, err := ParseVarType(in)
		if err != nil || got != want {
			t.Errorf("ParseVarType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseVarType("date"); err == nil {
		t.Error("expected error for unknown type")
	}
}
