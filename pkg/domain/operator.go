package domain

import "strings"

// Operator is a comparison operator used by branch and trigger conditions.
type Operator string

const (
	OpEqual          Operator = "=="
	OpStrictEqual    Operator = "==="
	OpNotEqual       Operator = "!="
	OpStrictNotEqual Operator = "!=="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpGreaterEqual   Operator = ">="
	OpLessEqual      Operator = "<="
	OpIs             Operator = "is"
	OpIsNot          Operator = "isNot"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "startsWith"
	OpEndsWith       Operator = "endsWith"
	OpIsTrue         Operator = "isTrue"
	OpIsFalse        Operator = "isFalse"
	OpIsEmpty        Operator = "isEmpty"
	OpIsNotEmpty     Operator = "isNotEmpty"
)

// Logic combines the results of several conditions.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// ParseLogic returns LogicOr for any spelling of "or" and LogicAnd otherwise.
func ParseLogic(s string) Logic {
	if strings.EqualFold(strings.TrimSpace(s), string(LogicOr)) {
		return LogicOr
	}
	return LogicAnd
}

// Normalized returns the canonical form of l, defaulting to AND.
func (l Logic) Normalized() Logic {
	return ParseLogic(string(l))
}

// IsGroupOperator reports whether op names a boolean group rather than a comparison.
func IsGroupOperator(op Operator) bool {
	s := strings.TrimSpace(string(op))
	return strings.EqualFold(s, string(LogicAnd)) || strings.EqualFold(s, string(LogicOr))
}
