package triggers

import (
	"fmt"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/mitchellh/mapstructure"
)

// eventFilter holds the eventParams keys that narrow a binding.
type eventFilter struct {
	Key       string `mapstructure:"key"`
	Code      string `mapstructure:"code"`
	Variable  string `mapstructure:"variable"`
	Target    string `mapstructure:"target"`
	State     string `mapstructure:"state"`
	Layer     string `mapstructure:"layer"`
	Timeline  string `mapstructure:"timeline"`
	CuePoint  string `mapstructure:"cuePoint"`
	EventName string `mapstructure:"eventName"`
}

// decodeParams decodes a loose parameter map into out, converting scalars
// to the field types where possible.
func decodeParams(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// bind attaches the trigger to the bus topic its event kind maps to.
func (e *Engine) bind(b *binding) error {
	t := b.trigger
	var f eventFilter
	if err := decodeParams(t.Event.Params, &f); err != nil {
		return fmt.Errorf("event params: %w", err)
	}

	switch kind := t.Event.Kind; kind {
	case domain.EventPress, domain.EventPointerDown, domain.EventPointerUp,
		domain.EventHoverEnter, domain.EventHoverLeave,
		domain.EventFocusEnter, domain.EventFocusLeave, domain.EventMediaEnd:
		target := t.Event.Target
		if target == "" {
			target = nodes.StripSelector(f.Target)
		}
		if _, ok := e.doc.Get(target); !ok {
			return fmt.Errorf("%s on %q: %w", kind, target, domain.ErrNodeNotFound)
		}
		t.Event.Target = target
		e.subscribe(b, domain.NodeTopic(target, kind), nil)

	case domain.EventKeyPress:
		e.subscribe(b, domain.TopicKeyPress, func(p any) bool {
			kp, ok := p.(domain.KeyPress)
			if !ok {
				return false
			}
			if f.Key != "" && kp.Key != f.Key {
				return false
			}
			return f.Code == "" || kp.Code == f.Code
		})

	case domain.EventContentStart:
		e.bindContentStart(b)

	case domain.EventContentEnd:
		e.subscribe(b, domain.TopicContentEnd, nil)

	case domain.EventVariable:
		e.subscribe(b, domain.TopicVariableChanged, func(p any) bool {
			c, ok := p.(domain.VariableChange)
			return ok && (f.Variable == "" || c.Name == f.Variable)
		})

	case domain.EventStateChange:
		target := nodes.StripSelector(f.Target)
		e.subscribe(b, domain.TopicStateChanged, func(p any) bool {
			c, ok := p.(domain.StateChange)
			if !ok {
				return false
			}
			if target != "" && c.ID != target {
				return false
			}
			return f.State == "" || c.NewState == f.State
		})

	case domain.EventLayerShow, domain.EventLayerHide:
		topic := domain.TopicLayerShown
		if kind == domain.EventLayerHide {
			topic = domain.TopicLayerHidden
		}
		layer := nodes.StripSelector(f.Layer)
		e.subscribe(b, topic, func(p any) bool {
			s, ok := p.(domain.LayerSignal)
			return ok && (layer == "" || s.Layer == layer)
		})

	case domain.EventDragDrop:
		target := nodes.StripSelector(f.Target)
		e.subscribe(b, domain.TopicDragDrop, func(p any) bool {
			d, ok := p.(domain.DragDrop)
			return ok && (target == "" || d.Target == target)
		})

	case domain.EventTimelineStart, domain.EventTimelineEnd, domain.EventCuePoint:
		topic := domain.TopicTimelineStart
		switch kind {
		case domain.EventTimelineEnd:
			topic = domain.TopicTimelineEnd
		case domain.EventCuePoint:
			topic = domain.TopicCuePoint
		}
		e.subscribe(b, topic, func(p any) bool {
			s, ok := p.(domain.TimelineSignal)
			if !ok {
				return false
			}
			if f.Timeline != "" && s.Timeline != f.Timeline {
				return false
			}
			return f.CuePoint == "" || s.CuePoint == f.CuePoint
		})

	case domain.EventCustom:
		e.subscribe(b, domain.CustomTopic(f.EventName), nil)

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownEvent, kind)
	}
	return nil
}

func (e *Engine) subscribe(b *binding, topic string, accept func(any) bool) {
	t := b.trigger
	unsub := e.bus.Subscribe(topic, func(payload any) {
		if accept != nil && !accept(payload) {
			return
		}
		e.fire(t)
	})
	b.unbind = append(b.unbind, unsub)
	e.logger.Debug("trigger bound", "event", t.Event.Kind, "topic", topic)
}

// bindContentStart fires the trigger once: on the ready signal while the
// document is loading, otherwise on the next scheduler tick, or right away
// when no scheduler is configured.
func (e *Engine) bindContentStart(b *binding) {
	t := b.trigger
	if e.doc.Loading() {
		var unsub func()
		unsub = e.bus.Subscribe(domain.TopicReady, func(any) {
			unsub()
			e.fire(t)
		})
		b.unbind = append(b.unbind, unsub)
		return
	}
	if e.scheduler != nil {
		b.cancel = e.scheduler.Defer(func() {
			b.cancel = nil
			e.fire(t)
		})
		return
	}
	e.fire(t)
}
