package domain

import "errors"

// ErrInvalidType is returned when a variable type name is not recognized.
var ErrInvalidType = errors.New("invalid variable type")

// ErrUnknownVariable is returned when a variable has not been defined.
var ErrUnknownVariable = errors.New("unknown variable")

// ErrNodeNotFound is returned when a node id cannot be resolved in the document.
var ErrNodeNotFound = errors.New("node not found")

// ErrNotRegistered is returned when a node has no registered state machine.
var ErrNotRegistered = errors.New("node not registered")

// ErrEmptyRules is returned when a branching rule list is empty.
var ErrEmptyRules = errors.New("empty rule list")

// ErrUnknownEvent is returned when an event kind cannot be parsed.
var ErrUnknownEvent = errors.New("unknown event kind")

// ErrUnknownAction is returned when an action kind cannot be parsed.
var ErrUnknownAction = errors.New("unknown action kind")

// ErrUnknownOperator is returned when a comparison operator is not supported.
var ErrUnknownOperator = errors.New("unknown operator")

// ErrUnknownTrigger is returned when a trigger id is not registered.
var ErrUnknownTrigger = errors.New("unknown trigger")

// ErrFunctionNotFound is returned when an executeFunction action names an unregistered function.
var ErrFunctionNotFound = errors.New("function not found")

// ErrChainDepthExceeded is returned when reactive chains nest deeper than allowed.
var ErrChainDepthExceeded = errors.New("reaction chain depth exceeded")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")
