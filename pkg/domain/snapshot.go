package domain

// PathRecord is the persisted form of a PathEntry. Timestamp is in Unix milliseconds.
type PathRecord struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"ts"`
}

// Snapshot is the progress blob exchanged with the host: variable values,
// node states with visited flags, and the branching path history.
type Snapshot struct {
	Variables map[string]any `json:"vars,omitempty"`
	States    map[string]any `json:"states,omitempty"`
	Paths     []PathRecord   `json:"paths,omitempty"`
}
