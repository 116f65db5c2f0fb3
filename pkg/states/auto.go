package states

import (
	"github.com/aretw0/cuepoint/pkg/domain"
)

// Markers used when a hover or down state defines none.
const (
	FallbackHoverMarker = "state--hover"
	FallbackDownMarker  = "state--down"
)

// bindAutoStates subscribes the node's hover, down and visited behavior to
// its node topics. Auto-states only add and remove markers; they never change
// the current state.
func (m *Machine) bindAutoStates(obj *object) {
	if m.bus == nil {
		return
	}
	on := func(kind domain.EventKind, fn func()) {
		obj.unbind = append(obj.unbind, m.bus.Subscribe(domain.NodeTopic(obj.id, kind), func(any) { fn() }))
	}

	hover := m.autoMarkers(obj, domain.StateHover, FallbackHoverMarker)
	down := m.autoMarkers(obj, domain.StateDown, FallbackDownMarker)

	if hover != nil {
		enter := func() {
			if m.blocked(obj) {
				return
			}
			obj.node.AddMarker(hover...)
		}
		leave := func() {
			obj.node.RemoveMarker(hover...)
			obj.node.RemoveMarker(down...)
		}
		on(domain.EventHoverEnter, enter)
		on(domain.EventFocusEnter, enter)
		on(domain.EventHoverLeave, leave)
		on(domain.EventFocusLeave, leave)
	}

	if down != nil {
		on(domain.EventPointerDown, func() {
			if m.blocked(obj) {
				return
			}
			obj.node.AddMarker(down...)
		})
		on(domain.EventPointerUp, func() {
			obj.node.RemoveMarker(down...)
		})
	}

	on(domain.EventPress, func() { m.markVisited(obj) })
}

func (m *Machine) autoMarkers(obj *object, state, fallback string) []string {
	def, ok := obj.defs[state]
	if !ok {
		return nil
	}
	if len(def.Markers) == 0 {
		return []string{fallback}
	}
	return def.Markers
}

func (m *Machine) blocked(obj *object) bool {
	return obj.current == domain.StateDisabled || obj.current == domain.StateHidden
}

// markVisited sets the permanent visited flag on first interaction and moves
// to the visited state when one is defined.
func (m *Machine) markVisited(obj *object) {
	if m.blocked(obj) || obj.visited {
		return
	}
	obj.visited = true
	if _, ok := obj.defs[domain.StateVisited]; ok {
		_ = m.SetState(obj.id, domain.StateVisited)
	}
}
