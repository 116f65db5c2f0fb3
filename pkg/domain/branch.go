package domain

import "time"

// BranchCondition compares one variable against a literal.
type BranchCondition struct {
	Variable string   `json:"variable" yaml:"variable"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// BranchRule is one entry of a source unit's ordered rule list.
// A rule is selected when it is a default rule or its conditions hold.
type BranchRule struct {
	Condition  *BranchCondition  `json:"condition,omitempty" yaml:"condition,omitempty"`
	Conditions []BranchCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Logic      Logic             `json:"conditionLogic,omitempty" yaml:"conditionLogic,omitempty"`
	Default    bool              `json:"default,omitempty" yaml:"default,omitempty"`
	Target     string            `json:"goTo" yaml:"goTo"`
	SideAction *ActionConfig     `json:"action,omitempty" yaml:"action,omitempty"`
}

// PathEntry records one taken branch.
type PathEntry struct {
	From      string
	To        string
	Timestamp time.Time
}

// Record returns the persisted form of the entry.
func (p PathEntry) Record() PathRecord {
	return PathRecord{From: p.From, To: p.To, Timestamp: p.Timestamp.UnixMilli()}
}

// Entry returns the in-memory form of a persisted record.
func (r PathRecord) Entry() PathEntry {
	return PathEntry{From: r.From, To: r.To, Timestamp: time.UnixMilli(r.Timestamp)}
}

// BranchTaken is published when a rule selects a target.
type BranchTaken struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Default bool   `json:"default"`
}

// BranchAction is published when a selected rule carries a side action.
type BranchAction struct {
	From   string       `json:"from"`
	Action ActionConfig `json:"action"`
}
