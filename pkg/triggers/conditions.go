package triggers

import (
	"fmt"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// EvaluateConditions combines the results of conds with logic. An empty list
// is true. A condition whose operator is AND or OR evaluates its nested
// conditions with that logic.
func (e *Engine) EvaluateConditions(conds []domain.Condition, logic domain.Logic) bool {
	if len(conds) == 0 {
		return true
	}
	or := logic.Normalized() == domain.LogicOr
	for _, c := range conds {
		ok := e.evaluate(c)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func (e *Engine) evaluate(c domain.Condition) bool {
	if c.IsGroup() {
		return e.EvaluateConditions(c.Conditions, domain.ParseLogic(string(c.Operator)))
	}

	var actual any
	switch c.Type.Normalized() {
	case domain.CondNodeState:
		if e.states != nil {
			if s, ok := e.states.State(c.Subject); ok {
				actual = s
			}
		}
	case domain.CondNodeProperty:
		n, ok := e.doc.Resolve(c.Subject)
		if !ok {
			e.logger.Warn("condition on missing node", "node", c.Subject)
			return false
		}
		prop := strings.ToLower(c.Property)
		if prop == "class" || prop == "marker" {
			has := n.HasMarker(domain.ToText(c.Value))
			if negates(c.Operator) {
				return !has
			}
			return has
		}
		actual, _ = n.Property(c.Property)
	case domain.CondViewport:
		vp := e.doc.Viewport()
		switch strings.ToLower(c.Property) {
		case "width":
			actual = vp.Width
		case "height":
			actual = vp.Height
		}
	default:
		if e.vars != nil {
			actual, _ = e.vars.Get(c.Subject)
		}
	}

	ok, err := Compare(actual, c.Operator, c.Value)
	if err != nil {
		e.logger.Warn("condition skipped", "subject", c.Subject, "error", err)
		return false
	}
	return ok
}

func negates(op domain.Operator) bool {
	switch op {
	case domain.OpNotEqual, domain.OpStrictNotEqual, domain.OpIsNot, domain.OpIsFalse, domain.OpIsEmpty:
		return true
	}
	return false
}

// Compare applies a trigger operator. When actual is a number and expected is
// text, expected is converted to a number first.
func Compare(actual any, op domain.Operator, expected any) (bool, error) {
	actual, expected = domain.Normalize(actual), domain.Normalize(expected)
	if _, isNum := actual.(float64); isNum {
		if s, isText := expected.(string); isText {
			expected, _ = domain.ToNumber(s)
		}
	}

	switch op {
	case domain.OpEqual:
		return domain.LooseEqual(actual, expected), nil
	case domain.OpStrictEqual, domain.OpIs:
		return domain.StrictEqual(actual, expected), nil
	case domain.OpNotEqual:
		return !domain.LooseEqual(actual, expected), nil
	case domain.OpStrictNotEqual, domain.OpIsNot:
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
	case domain.OpStartsWith:
		return strings.HasPrefix(domain.ToText(actual), domain.ToText(expected)), nil
	case domain.OpEndsWith:
		return strings.HasSuffix(domain.ToText(actual), domain.ToText(expected)), nil
	case domain.OpIsTrue:
		return actual == true || actual == "true", nil
	case domain.OpIsFalse:
		return actual == false || actual == "false", nil
	case domain.OpIsEmpty:
		return !domain.Truthy(actual), nil
	case domain.OpIsNotEmpty:
		return domain.Truthy(actual), nil
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownOperator, op)
	}
}
