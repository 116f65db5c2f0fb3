package branching

import (
	"fmt"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Compare applies a branch operator. Ordering operators coerce both sides to
// numbers; a side that is not numeric makes the comparison false.
func Compare(actual any, op domain.Operator, expected any) (bool, error) {
	switch op {
	case domain.OpEqual:
		return domain.LooseEqual(actual, expected), nil
	case domain.OpStrictEqual, domain.OpIs:
		return domain.StrictEqual(actual, expected), nil
	case domain.OpNotEqual:
		return !domain.LooseEqual(actual, expected), nil
	case domain.OpIsNot:
		return !domain.StrictEqual(actual, expected), nil
	case domain.OpGreater, domain.OpLess, domain.OpGreaterEqual, domain.OpLessEqual:
		a, okA := domain.ToNumber(actual)
		b, okB := domain.ToNumber(expected)
		if !okA || !okB {
			return false, nil
		}
		switch op {
		case domain.OpGreater:
			return a > b, nil
		case domain.OpLess:
			return a < b, nil
		case domain.OpGreaterEqual:
			return a >= b, nil
		default:
			return a <= b, nil
		}
	case domain.OpContains:
		return strings.Contains(domain.ToText(actual), domain.ToText(expected)), nil
	case domain.OpIsTrue:
		return actual == true || actual == "true", nil
	case domain.OpIsFalse:
		return actual == false || actual == "false", nil
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownOperator, op)
	}
}
