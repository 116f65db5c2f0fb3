package variables

import (
	"maps"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// UpdateBuiltIn sets an engine-maintained value. Built-ins are never persisted
// and cannot be written through Set.
func (s *Store) UpdateBuiltIn(name string, value any) {
	value = domain.Normalize(value)
	old, existed := s.builtins[name]
	s.builtins[name] = value
	if existed && domain.StrictEqual(old, value) {
		return
	}

	s.render(name)
	if s.bus != nil {
		s.bus.Publish(domain.TopicVariableChanged, domain.VariableChange{Name: name, NewValue: value, OldValue: old})
	}
}

// InitBuiltIns seeds the course progress built-ins without notifying anyone.
func (s *Store) InitBuiltIns(info domain.CourseInfo) {
	current := info.CurrentUnit
	if current < 1 {
		current = 1
	}
	s.builtins[domain.BuiltinTotalUnits] = float64(info.TotalUnits)
	s.builtins[domain.BuiltinUnitNumber] = float64(current)
	s.builtins[domain.BuiltinUnitsViewed] = float64(1)
	s.builtins[domain.BuiltinCompletionPercentage] = float64(0)
	s.builtins[domain.BuiltinCurrentUnit] = float64(current)
	s.builtins[domain.BuiltinElapsedTime] = float64(0)
	for name := range s.builtins {
		s.render(name)
	}
}

// BuiltIns returns a copy of the built-in values.
func (s *Store) BuiltIns() map[string]any {
	return maps.Clone(s.builtins)
}
