package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// VarType is the declared type of a variable.
type VarType string

const (
	TypeBoolean VarType = "boolean"
	TypeNumber  VarType = "number"
	TypeText    VarType = "text"
)

// ParseVarType maps a configuration type name onto a VarType.
func ParseVarType(name string) (VarType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "number", "num":
		return TypeNumber, nil
	case "text", "string":
		return TypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, name)
	}
}

// Zero returns the implicit default for the type.
func (t VarType) Zero() any {
	switch t {
	case TypeBoolean:
		return false
	case TypeNumber:
		return float64(0)
	default:
		return ""
	}
}

// Normalize folds decoded configuration values onto the three value kinds
// the engine works with: bool, float64 and string. Other values pass through.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}

// ToNumber converts v to a number. The boolean reports whether the
// conversion produced a usable (non-NaN) value.
func ToNumber(v any) (float64, bool) {
	switch x := Normalize(v).(type) {
	case nil:
		return 0, false
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float64:
		return x, !math.IsNaN(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return math.NaN(), false
		}
		return f, true
	default:
		return math.NaN(), false
	}
}

// FormatNumber renders a number without a trailing ".0" for integral values.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToText converts v to its display string.
func ToText(v any) string {
	switch x := Normalize(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}

// Truthy reports whether v counts as true in a boolean context.
func Truthy(v any) bool {
	switch x := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// ToBoolean is Truthy with the common textual spellings of false
// ("false", "0", "no", "off") treated as false.
func ToBoolean(v any) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "false", "0", "no", "off":
			return false
		}
		return true
	}
	return Truthy(v)
}

// Coerce converts v to the declared type. Unparseable numbers become 0.
func Coerce(t VarType, v any) any {
	switch t {
	case TypeBoolean:
		return ToBoolean(v)
	case TypeNumber:
		n, ok := ToNumber(v)
		if !ok {
			return float64(0)
		}
		return n
	case TypeText:
		return ToText(v)
	default:
		return Normalize(v)
	}
}

// LooseEqual compares two values with cross-type coercion: numbers and
// numeric strings compare numerically, booleans compare as 1/0.
func LooseEqual(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x == y
		case string:
			n, ok := ToNumber(y)
			return ok && n == x
		case bool:
			n, _ := ToNumber(y)
			return n == x
		}
	case string:
		switch y := b.(type) {
		case string:
			return x == y
		case float64, bool:
			return LooseEqual(b, a)
		}
	case bool:
		switch y := b.(type) {
		case bool:
			return x == y
		case float64, string:
			n, _ := ToNumber(x)
			return LooseEqual(n, y)
		}
	}
	return reflect.DeepEqual(a, b)
}

// StrictEqual compares two normalized values without type coercion.
func StrictEqual(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}
