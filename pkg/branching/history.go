package branching

import (
	"slices"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// History returns the recorded path, oldest first.
func (e *Engine) History() []domain.PathEntry {
	return slices.Clone(e.history)
}

// PathSummary renders each recorded branch as "from → to".
func (e *Engine) PathSummary() []string {
	out := make([]string, len(e.history))
	for i, p := range e.history {
		out[i] = p.From + " → " + p.To
	}
	return out
}

// ClearHistory drops the recorded path.
func (e *Engine) ClearHistory() {
	e.history = nil
}

// Serialize returns the persisted form of the path history.
func (e *Engine) Serialize() []domain.PathRecord {
	out := make([]domain.PathRecord, len(e.history))
	for i, p := range e.history {
		out[i] = p.Record()
	}
	return out
}

// Deserialize replaces the path history. Records without a timestamp get the current time.
func (e *Engine) Deserialize(records []domain.PathRecord) {
	e.history = make([]domain.PathEntry, 0, len(records))
	for _, r := range records {
		entry := r.Entry()
		if r.Timestamp == 0 {
			entry.Timestamp = e.clock()
		}
		e.history = append(e.history, entry)
	}
}
