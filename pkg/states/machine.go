// Package states implements the per-node visual state machine: named states,
// hover/down auto-states, mutual-exclusion groups and the sticky visited flag.
package states

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/events"
	"github.com/aretw0/cuepoint/pkg/nodes"
)

// Node attributes written by the machine.
const (
	AttrState     = "data-state"
	AttrButtonSet = "data-button-set"
)

// Listener receives a state change after it has been applied.
type Listener func(domain.StateChange)

// Options tunes a registration.
type Options struct {
	// Group is the mutual-exclusion group; at most one member is selected.
	Group        string
	InitialState string
	// AutoStates defaults to true.
	AutoStates *bool
}

type object struct {
	id       string
	node     *nodes.Node
	current  string
	previous string
	defs     map[string]domain.StateDef
	auto     bool
	visited  bool
	group    string
	initial  string

	savedTab *int
	unbind   []func()
}

type listener struct {
	id uint64
	fn Listener
}

// Machine tracks the state of every registered node of one document.
// It is not safe for concurrent use.
type Machine struct {
	doc    *nodes.Document
	bus    *events.Bus
	logger *slog.Logger

	objects   map[string]*object
	order     []string
	groups    map[string][]string
	listeners []listener
	nextID    uint64
}

// Option configures the Machine.
type Option func(*Machine)

// WithBus publishes changes on domain.TopicStateChanged and binds auto-states
// to node topics.
func WithBus(bus *events.Bus) Option {
	return func(m *Machine) {
		m.bus = bus
	}
}

// WithLogger configures a logger for reported misuse.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a Machine over doc.
func New(doc *nodes.Document, opts ...Option) *Machine {
	m := &Machine{
		doc:     doc,
		logger:  logging.NewNop(),
		objects: make(map[string]*object),
		groups:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register attaches state definitions to a node and applies the initial state.
// A "normal" state is always available.
func (m *Machine) Register(id string, defs map[string]domain.StateDef, opt Options) error {
	id = nodes.StripSelector(id)
	node, ok := m.doc.Get(id)
	if !ok {
		err := fmt.Errorf("register %q: %w", id, domain.ErrNodeNotFound)
		m.logger.Warn("state registration skipped", "node", id, "error", err)
		return err
	}
	if _, exists := m.objects[id]; exists {
		m.Unregister(id)
	}

	all := maps.Clone(defs)
	if all == nil {
		all = make(map[string]domain.StateDef)
	}
	if _, ok := all[domain.StateNormal]; !ok {
		all[domain.StateNormal] = domain.StateDef{}
	}

	obj := &object{
		id:      id,
		node:    node,
		current: domain.StateNormal,
		defs:    all,
		auto:    opt.AutoStates == nil || *opt.AutoStates,
		group:   opt.Group,
	}
	m.objects[id] = obj
	m.order = append(m.order, id)

	if obj.group != "" {
		m.groups[obj.group] = append(m.groups[obj.group], id)
		node.SetAttr(AttrButtonSet, obj.group)
	}
	if obj.auto {
		m.bindAutoStates(obj)
	}
	if node.TabIndex == nil && !node.IsNativeInteractive() {
		node.SetTabIndex(0)
	}

	initial := opt.InitialState
	if initial == "" {
		initial = domain.StateNormal
	}
	obj.initial = initial
	if initial == domain.StateSelected && obj.group != "" {
		m.deselectSiblings(obj)
	}
	m.apply(obj, initial)
	obj.current = initial
	return nil
}

// RegisterAll registers every object definition in id order. Failed
// registrations are skipped and their errors joined.
func (m *Machine) RegisterAll(defs map[string]domain.ObjectDef) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(defs)) {
		def := defs[id]
		err := m.Register(id, def.States, Options{
			Group:        def.ButtonSet,
			InitialState: def.InitialState,
			AutoStates:   def.AutoStates,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetState runs a guarded transition:
// a disabled node only leaves for normal or hidden, a visited node asked for
// normal goes to visited when that state exists, and selecting a group member
// first returns the selected siblings to their fallback state.
func (m *Machine) SetState(id, state string) error {
	id = nodes.StripSelector(id)
	obj, ok := m.objects[id]
	if !ok {
		m.logger.Warn("set state on unregistered node", "node", id, "state", state)
		return fmt.Errorf("set state %q on %q: %w", state, id, domain.ErrNotRegistered)
	}

	if obj.current == domain.StateDisabled && state != domain.StateNormal && state != domain.StateHidden {
		m.logger.Debug("transition dropped on disabled node", "node", id, "state", state)
		return nil
	}
	if obj.visited && state == domain.StateNormal {
		if _, ok := obj.defs[domain.StateVisited]; ok {
			state = domain.StateVisited
		}
	}
	if state == domain.StateSelected && obj.group != "" {
		m.deselectSiblings(obj)
	}

	obj.previous = obj.current
	obj.current = state
	m.apply(obj, state)

	m.emit(domain.StateChange{ID: id, NewState: state, PreviousState: obj.previous})
	return nil
}

// ToggleState switches to b when the node is in a, and to a otherwise.
func (m *Machine) ToggleState(id, a, b string) error {
	obj, ok := m.objects[nodes.StripSelector(id)]
	if !ok {
		return fmt.Errorf("toggle state on %q: %w", id, domain.ErrNotRegistered)
	}
	next := a
	if obj.current == a {
		next = b
	}
	return m.SetState(obj.id, next)
}

// State returns the current state of a registered node.
func (m *Machine) State(id string) (string, bool) {
	obj, ok := m.objects[nodes.StripSelector(id)]
	if !ok {
		return "", false
	}
	return obj.current, true
}

// PreviousState returns the state the node was in before the last transition.
func (m *Machine) PreviousState(id string) string {
	if obj, ok := m.objects[nodes.StripSelector(id)]; ok {
		return obj.previous
	}
	return ""
}

// IsRegistered reports whether the node has a state machine.
func (m *Machine) IsRegistered(id string) bool {
	_, ok := m.objects[nodes.StripSelector(id)]
	return ok
}

// IsVisited reports whether the node was interacted with at least once.
func (m *Machine) IsVisited(id string) bool {
	obj, ok := m.objects[nodes.StripSelector(id)]
	return ok && obj.visited
}

// IsDisabled reports whether the node is in the disabled state.
func (m *Machine) IsDisabled(id string) bool {
	s, _ := m.State(id)
	return s == domain.StateDisabled
}

// IsHidden reports whether the node is in the hidden state.
func (m *Machine) IsHidden(id string) bool {
	s, _ := m.State(id)
	return s == domain.StateHidden
}

// IDs returns the registered node ids in registration order.
func (m *Machine) IDs() []string {
	return slices.Clone(m.order)
}

// On registers a listener for every state change.
func (m *Machine) On(fn Listener) func() {
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	return func() {
		m.listeners = slices.DeleteFunc(slices.Clone(m.listeners), func(l listener) bool { return l.id == id })
	}
}

// Unregister removes a node's state machine and its auto-state bindings.
func (m *Machine) Unregister(id string) {
	id = nodes.StripSelector(id)
	obj, ok := m.objects[id]
	if !ok {
		return
	}
	for _, unbind := range obj.unbind {
		unbind()
	}
	delete(m.objects, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })

	if obj.group != "" {
		members := slices.DeleteFunc(m.groups[obj.group], func(s string) bool { return s == id })
		if len(members) == 0 {
			delete(m.groups, obj.group)
		} else {
			m.groups[obj.group] = members
		}
	}
}

// Destroy unregisters every node and drops all listeners.
func (m *Machine) Destroy() {
	for _, id := range slices.Clone(m.order) {
		m.Unregister(id)
	}
	m.listeners = nil
}

func (m *Machine) deselectSiblings(obj *object) {
	for _, memberID := range slices.Clone(m.groups[obj.group]) {
		if memberID == obj.id {
			continue
		}
		member, ok := m.objects[memberID]
		if !ok || member.current != domain.StateSelected {
			continue
		}
		fallback := domain.StateNormal
		if _, ok := member.defs[domain.StateVisited]; ok && member.visited {
			fallback = domain.StateVisited
		}
		_ = m.SetState(memberID, fallback)
	}
}

// apply replaces the markers of every other state with those of state and
// maintains the visibility and interactivity flags of hidden and disabled.
func (m *Machine) apply(obj *object, state string) {
	n := obj.node
	def := obj.defs[state]

	for _, d := range obj.defs {
		n.RemoveMarker(d.Markers...)
	}
	n.AddMarker(def.Markers...)
	if len(def.Styles) > 0 {
		n.SetStyles(def.Styles)
	}
	if def.Content != nil {
		n.Content = *def.Content
	}
	n.SetAttr(AttrState, state)

	switch state {
	case domain.StateHidden:
		if obj.previous != domain.StateHidden {
			obj.savedTab = n.TabIndex
		}
		n.Hide()
		n.SetTabIndex(-1)
		n.PointerBlocked = true
	case domain.StateDisabled:
		n.PointerBlocked = true
		n.AriaDisabled = true
	default:
		n.PointerBlocked = !def.IsInteractive()
	}

	if obj.previous == domain.StateHidden && state != domain.StateHidden {
		n.Show()
		n.TabIndex = obj.savedTab
	}
	if obj.previous == domain.StateDisabled && state != domain.StateDisabled {
		n.AriaDisabled = false
		if state != domain.StateHidden {
			n.PointerBlocked = !def.IsInteractive()
		}
	}
}

func (m *Machine) emit(change domain.StateChange) {
	for _, l := range slices.Clone(m.listeners) {
		m.call(l.fn, change)
	}
	if m.bus != nil {
		m.bus.Publish(domain.TopicStateChanged, change)
	}
}

func (m *Machine) call(fn Listener, change domain.StateChange) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("state listener panicked", "node", change.ID, "error", fmt.Errorf("%v", r))
		}
	}()
	fn(change)
}
