package cuepoint

import (
	"errors"
	"fmt"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// ErrNotInbound is returned by Dispatch for event kinds only the engine itself raises.
var ErrNotInbound = errors.New("event kind is not an input event")

// Keys that activate the focused node like a press.
var activationKeys = map[string]bool{
	"Enter": true,
	" ":     true,
	"Space": true,
}

var pointerEvents = map[domain.EventKind]bool{
	domain.EventPress:       true,
	domain.EventPointerDown: true,
	domain.EventPointerUp:   true,
	domain.EventHoverEnter:  true,
}

// Ready marks the document as loaded, releases content-start triggers that
// were waiting for it and runs deferred work.
func (e *Engine) Ready() {
	e.doc.SetLoading(false)
	e.bus.Publish(domain.TopicReady, nil)
	if e.ticks != nil {
		e.ticks.Drain()
	}
}

// Leave signals the end of the content unit and resets local variables.
func (e *Engine) Leave() {
	e.bus.Publish(domain.TopicContentEnd, nil)
	e.vars.ResetScoped(domain.ScopeLocal)
}

// Dispatch feeds a host event into the engine. Everything the event causes
// has been applied when Dispatch returns.
func (e *Engine) Dispatch(ev domain.InputEvent) error {
	kind, err := domain.ParseEventKind(string(ev.Kind))
	if err != nil {
		return err
	}

	switch kind {
	case domain.EventPress, domain.EventPointerDown, domain.EventPointerUp,
		domain.EventHoverEnter, domain.EventHoverLeave,
		domain.EventFocusEnter, domain.EventFocusLeave, domain.EventMediaEnd:
		n, ok := e.doc.Resolve(ev.Target)
		if !ok {
			return fmt.Errorf("%s on %q: %w", kind, ev.Target, domain.ErrNodeNotFound)
		}
		if (n.PointerBlocked || !n.Visible()) && pointerEvents[kind] {
			e.logger.Debug("pointer event on blocked node dropped", "node", n.ID, "event", kind)
			return nil
		}
		if kind == domain.EventFocusEnter {
			e.doc.Focus(n.ID)
		}
		e.publishNode(n.ID, kind)

	case domain.EventKeyPress:
		target := ev.Target
		if target == "" {
			target = e.doc.Focused()
		}
		e.bus.Publish(domain.TopicKeyPress, domain.KeyPress{Key: ev.Key, Code: ev.Code, Target: target})
		if activationKeys[ev.Key] || activationKeys[ev.Code] {
			if n, ok := e.doc.Resolve(target); ok && n.Focusable() && n.Visible() && !n.PointerBlocked {
				e.publishNode(n.ID, domain.EventPress)
			}
		}

	case domain.EventContentStart:
		e.Ready()
	case domain.EventContentEnd:
		e.Leave()

	case domain.EventLayerShow:
		e.bus.Publish(domain.TopicLayerShown, domain.LayerSignal{Layer: ev.Target})
	case domain.EventLayerHide:
		e.bus.Publish(domain.TopicLayerHidden, domain.LayerSignal{Layer: ev.Target})

	case domain.EventDragDrop:
		e.bus.Publish(domain.TopicDragDrop, domain.DragDrop{Item: ev.Item, Target: ev.Target})

	case domain.EventTimelineStart:
		e.bus.Publish(domain.TopicTimelineStart, domain.TimelineSignal{Timeline: ev.Target})
	case domain.EventTimelineEnd:
		e.bus.Publish(domain.TopicTimelineEnd, domain.TimelineSignal{Timeline: ev.Target})
	case domain.EventCuePoint:
		e.bus.Publish(domain.TopicCuePoint, domain.TimelineSignal{Timeline: ev.Target, CuePoint: ev.Name})

	case domain.EventCustom:
		e.bus.Publish(domain.CustomTopic(ev.Name), domain.CustomSignal{Name: ev.Name, Detail: ev.Detail})

	default:
		return fmt.Errorf("dispatch %s: %w", kind, ErrNotInbound)
	}
	return nil
}

func (e *Engine) publishNode(id string, kind domain.EventKind) {
	e.bus.Publish(domain.NodeTopic(id, kind), domain.NodeSignal{ID: id, Kind: kind})
}
