/*
Package cuepoint is a reactive interactivity engine for self-contained learning content units.

It lets authors attach behavior to the nodes of a unit through a declarative configuration:
typed variables, per-node visual states, branching rules that pick the next unit, and triggers
that bind host events to actions. The engine is synchronous: everything an event causes has been
applied, and every listener notified, by the time the dispatching call returns.

# Concept

A content unit is a Document of addressable nodes. The Engine owns four subsystems wired through
a shared event bus:

  - Variable Store: typed, coerced variables with change notification and text bindings.
  - Object State Machine: named node states, auto hover/down markers, mutually exclusive groups
    and a permanent visited state.
  - Branching Engine: ordered, first-match-wins rules mapping a decision point to a target.
  - Trigger Engine: event bindings, nested AND/OR conditions and a flat action table.

A change raised by one trigger's action may be the event another trigger waits for; such chains
run synchronously and are bounded by a maximum nesting depth.

The host owns I/O. It feeds events in through Dispatch, carries out navigation through a
Navigator, and persists progress with Save and Restore.

# Usage

	doc := nodes.NewDocument()
	doc.Add(nodes.New("submit", "button"))

	eng := cuepoint.New(doc, cuepoint.WithNavigator(nav))
	if err := eng.Init(&domain.Config{
		Variables: map[string]domain.VariableDef{
			"score": {Type: "number"},
		},
		Triggers: []domain.TriggerConfig{{
			Event:        "press",
			EventTarget:  "#submit",
			Action:       "adjustVariable",
			ActionParams: map[string]any{"variable": "score", "value": 10},
		}},
	}); err != nil {
		log.Printf("config problems: %v", err)
	}

	_ = eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "submit"})

	blob, _ := eng.Save()
*/
package cuepoint
