package cuepoint

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Snapshot captures the persistable progress of the unit: project-scoped
// variables, non-normal node states with visited flags, and the path history.
func (e *Engine) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Variables: e.vars.Serialize(),
		States:    e.states.Serialize(),
		Paths:     e.branching.Serialize(),
	}
}

// Save encodes the snapshot as the JSON progress blob.
func (e *Engine) Save() ([]byte, error) {
	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Restore applies a progress blob produced by Save. An empty blob is a no-op.
// Each section is decoded on its own and path records one by one, so a
// malformed part is reported while everything that parses is still applied.
// A blob that is not a JSON object leaves the engine untouched.
func (e *Engine) Restore(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		e.logger.Warn("failed to restore state", "error", err)
		return fmt.Errorf("decode snapshot: %w", err)
	}

	var (
		snap domain.Snapshot
		errs []error
	)
	if raw, ok := sections[sectionVars]; ok {
		if err := json.Unmarshal(raw, &snap.Variables); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sectionVars, err))
			snap.Variables = nil
		}
	}
	if raw, ok := sections[sectionStates]; ok {
		if err := json.Unmarshal(raw, &snap.States); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sectionStates, err))
			snap.States = nil
		}
	}
	if raw, ok := sections[sectionPaths]; ok {
		paths, err := decodePaths(raw)
		if err != nil {
			errs = append(errs, err)
		}
		snap.Paths = paths
	}

	e.RestoreSnapshot(&snap)
	if err := errors.Join(errs...); err != nil {
		e.logger.Warn("restored snapshot partially", "error", err)
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}

const (
	sectionVars   = "vars"
	sectionStates = "states"
	sectionPaths  = "paths"
)

func decodePaths(raw json.RawMessage) ([]domain.PathRecord, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", sectionPaths, err)
	}
	if records == nil {
		return nil, nil
	}
	var errs []error
	paths := make([]domain.PathRecord, 0, len(records))
	for i, rec := range records {
		var p domain.PathRecord
		if err := json.Unmarshal(rec, &p); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", sectionPaths, i, err))
			continue
		}
		paths = append(paths, p)
	}
	return paths, errors.Join(errs...)
}

// RestoreSnapshot applies a decoded snapshot. Unknown variables and nodes
// are skipped.
func (e *Engine) RestoreSnapshot(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	if snap.Variables != nil {
		e.vars.Deserialize(snap.Variables)
	}
	if snap.States != nil {
		e.states.Deserialize(snap.States)
	}
	if snap.Paths != nil {
		e.branching.Deserialize(snap.Paths)
	}
}
