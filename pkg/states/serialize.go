package states

import (
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Serialize returns every state that differs from the registered initial
// state, plus the visited flags.
func (m *Machine) Serialize() map[string]any {
	out := make(map[string]any)
	for _, id := range m.order {
		obj := m.objects[id]
		if obj.current != obj.initial {
			out[id] = obj.current
		}
		if obj.visited {
			out[id+domain.VisitedSuffix] = true
		}
	}
	return out
}

// Deserialize restores visited flags first, then states, so that a restored
// "normal" on a visited node lands on "visited". Stored states are applied
// as saved: the disabled guard and group exclusion do not run. Unknown nodes
// and malformed values are skipped.
func (m *Machine) Deserialize(data map[string]any) {
	keys := slices.Sorted(maps.Keys(data))

	for _, key := range keys {
		id, ok := strings.CutSuffix(key, domain.VisitedSuffix)
		if !ok || !domain.Truthy(data[key]) {
			continue
		}
		if obj, exists := m.objects[id]; exists {
			obj.visited = true
		}
	}

	for _, key := range keys {
		if strings.HasSuffix(key, domain.VisitedSuffix) {
			continue
		}
		state, ok := data[key].(string)
		if !ok || state == "" {
			m.logger.Debug("skipping malformed stored state", "node", key)
			continue
		}
		obj, exists := m.objects[key]
		if !exists {
			m.logger.Debug("skipping unknown stored node", "node", key)
			continue
		}
		m.restore(obj, state)
	}
}

func (m *Machine) restore(obj *object, state string) {
	if obj.visited && state == domain.StateNormal {
		if _, ok := obj.defs[domain.StateVisited]; ok {
			state = domain.StateVisited
		}
	}
	if state == obj.current {
		return
	}
	obj.previous = obj.current
	obj.current = state
	m.apply(obj, state)
	m.emit(domain.StateChange{ID: obj.id, NewState: state, PreviousState: obj.previous})
}
