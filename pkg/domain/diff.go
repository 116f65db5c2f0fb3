package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// Variables contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Variables map[string]any `json:"vars,omitempty"`

	// States follows the same rules as Variables, visited flags included.
	States map[string]any `json:"states,omitempty"`

	// Paths contains the branch records appended since the old snapshot.
	Paths []PathRecord `json:"paths,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	var oldVars, oldStates map[string]any
	var oldPaths []PathRecord
	if oldSnap != nil {
		oldVars, oldStates, oldPaths = oldSnap.Variables, oldSnap.States, oldSnap.Paths
	}

	diff := &SnapshotDiff{
		Variables: diffMap(oldVars, newSnap.Variables),
		States:    diffMap(oldStates, newSnap.States),
		Paths:     diffPaths(oldPaths, newSnap.Paths),
	}
	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffMap(old, new map[string]any) map[string]any {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffPaths assumes the path history is append-only. A cleared or rewritten
// history is sent in full.
func diffPaths(old, new []PathRecord) []PathRecord {
	if len(new) == 0 {
		return nil
	}
	if len(old) == 0 {
		return new
	}
	if len(new) > len(old) && reflect.DeepEqual(old, new[:len(old)]) {
		return new[len(old):]
	}
	if reflect.DeepEqual(old, new) {
		return nil
	}
	return new
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.Variables) == 0 && len(d.States) == 0 && len(d.Paths) == 0
}
