// Package variables implements the typed, observable variable store.
package variables

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

// Listener receives a change after it has been applied.
type Listener func(domain.VariableChange)

type listener struct {
	id uint64
	fn Listener
}

// Store holds user-defined variables and engine-maintained built-ins.
// Values are always coerced to the declared type. A Store is not safe for
// concurrent use; listeners may call back into it synchronously.
type Store struct {
	vars     map[string]*domain.Variable
	order    []string
	builtins map[string]any

	listeners map[string][]listener
	global    []listener
	nextID    uint64

	bus    *events.Bus
	doc    *nodes.Document
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithBus publishes every change on domain.TopicVariableChanged.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// WithLogger configures a logger for reported misuse.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		vars:      make(map[string]*domain.Variable),
		builtins:  make(map[string]any),
		listeners: make(map[string][]listener),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Define registers a variable, replacing any previous definition of the same name.
// A nil default means the zero value of the type.
func (s *Store) Define(name string, typ domain.VarType, def any, scope domain.Scope) error {
	switch typ {
	case domain.TypeBoolean, domain.TypeNumber, domain.TypeText:
	default:
		err := fmt.Errorf("define %q: %w: %q", name, domain.ErrInvalidType, typ)
		s.logger.Warn("variable definition skipped", "variable", name, "error", err)
		return err
	}
	if scope == "" {
		scope = domain.ScopeProject
	}
	if def == nil {
		def = typ.Zero()
	}

	value := domain.Coerce(typ, def)
	if _, exists := s.vars[name]; !exists {
		s.order = append(s.order, name)
	}
	s.vars[name] = &domain.Variable{
		Name:    name,
		Type:    typ,
		Value:   value,
		Default: value,
		Scope:   scope,
	}
	s.render(name)
	return nil
}

// DefineConfig registers a variable from its declarative form.
func (s *Store) DefineConfig(name string, def domain.VariableDef) error {
	typ, err := domain.ParseVarType(def.Type)
	if err != nil {
		err = fmt.Errorf("define %q: %w", name, err)
		s.logger.Warn("variable definition skipped", "variable", name, "error", err)
		return err
	}
	scope, err := domain.ParseScope(def.Scope)
	if err != nil {
		s.logger.Warn("unknown scope, using project", "variable", name, "error", err)
		scope = domain.ScopeProject
	}
	return s.Define(name, typ, def.Default, scope)
}

// DefineAll registers every definition in name order. Invalid definitions are
// skipped and their errors joined.
func (s *Store) DefineAll(defs map[string]domain.VariableDef) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		if err := s.DefineConfig(name, defs[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the value of a user variable or, failing that, a built-in.
func (s *Store) Get(name string) (any, bool) {
	if v, ok := s.vars[name]; ok {
		return v.Value, true
	}
	if v, ok := s.builtins[name]; ok {
		return v, true
	}
	return nil, false
}

// Has reports whether name is a user variable or a built-in.
func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Type returns the declared type of a user variable.
func (s *Store) Type(name string) (domain.VarType, bool) {
	v, ok := s.vars[name]
	if !ok {
		return "", false
	}
	return v.Type, true
}

// Variable returns a copy of a user variable.
func (s *Store) Variable(name string) (domain.Variable, bool) {
	v, ok := s.vars[name]
	if !ok {
		return domain.Variable{}, false
	}
	return *v, true
}

// Names returns the user variable names in definition order.
func (s *Store) Names() []string {
	return slices.Clone(s.order)
}

// Set coerces value to the declared type and stores it. Setting the current
// value again is a no-op and notifies nobody.
func (s *Store) Set(name string, value any) error {
	v, ok := s.vars[name]
	if !ok {
		err := fmt.Errorf("set %q: %w", name, domain.ErrUnknownVariable)
		s.logger.Warn("set on undefined variable", "variable", name)
		return err
	}

	old := v.Value
	v.Value = domain.Coerce(v.Type, value)
	if v.Value == old {
		return nil
	}

	s.notify(domain.VariableChange{Name: name, NewValue: v.Value, OldValue: old})
	return nil
}

// Adjust adds amount to a number or appends it to a text.
//
// Adjusting a boolean toggles it regardless of amount. This mirrors how
// existing content behaves and is kept deliberately; use Toggle in new content.
func (s *Store) Adjust(name string, amount any) error {
	v, ok := s.vars[name]
	if !ok {
		s.logger.Warn("adjust on undefined variable", "variable", name)
		return fmt.Errorf("adjust %q: %w", name, domain.ErrUnknownVariable)
	}

	switch v.Type {
	case domain.TypeNumber:
		delta := domain.Coerce(domain.TypeNumber, amount).(float64)
		return s.Set(name, v.Value.(float64)+delta)
	case domain.TypeText:
		return s.Set(name, v.Value.(string)+domain.ToText(amount))
	default:
		return s.Set(name, !v.Value.(bool))
	}
}

// Toggle flips a boolean variable. Other types are left untouched.
func (s *Store) Toggle(name string) error {
	v, ok := s.vars[name]
	if !ok {
		s.logger.Warn("toggle on undefined variable", "variable", name)
		return fmt.Errorf("toggle %q: %w", name, domain.ErrUnknownVariable)
	}
	if v.Type != domain.TypeBoolean {
		s.logger.Warn("toggle on non-boolean variable", "variable", name, "type", v.Type)
		return fmt.Errorf("toggle %q: %w: %s", name, domain.ErrInvalidType, v.Type)
	}
	return s.Set(name, !v.Value.(bool))
}

// Reset restores a variable to its default.
func (s *Store) Reset(name string) error {
	v, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("reset %q: %w", name, domain.ErrUnknownVariable)
	}
	return s.Set(name, v.Default)
}

// ResetAll restores every variable to its default.
func (s *Store) ResetAll() {
	for _, name := range s.order {
		_ = s.Reset(name)
	}
}

// ResetScoped restores the variables of one scope, leaving the others alone.
func (s *Store) ResetScoped(scope domain.Scope) {
	for _, name := range s.order {
		if s.vars[name].Scope == scope {
			_ = s.Reset(name)
		}
	}
}

// OnChange registers a listener for one variable.
func (s *Store) OnChange(name string, fn Listener) func() {
	s.nextID++
	id := s.nextID
	s.listeners[name] = append(s.listeners[name], listener{id: id, fn: fn})
	return func() {
		s.listeners[name] = slices.DeleteFunc(slices.Clone(s.listeners[name]), func(l listener) bool { return l.id == id })
	}
}

// OnAnyChange registers a listener for every variable.
func (s *Store) OnAnyChange(fn Listener) func() {
	s.nextID++
	id := s.nextID
	s.global = append(s.global, listener{id: id, fn: fn})
	return func() {
		s.global = slices.DeleteFunc(slices.Clone(s.global), func(l listener) bool { return l.id == id })
	}
}

// Serialize returns the values of project-scoped user variables.
func (s *Store) Serialize() map[string]any {
	out := make(map[string]any)
	for _, name := range s.order {
		if v := s.vars[name]; v.Scope == domain.ScopeProject {
			out[name] = v.Value
		}
	}
	return out
}

// Deserialize applies stored values through Set. Unknown names are skipped.
func (s *Store) Deserialize(data map[string]any) {
	for _, name := range slices.Sorted(maps.Keys(data)) {
		if _, ok := s.vars[name]; !ok {
			s.logger.Debug("skipping unknown stored variable", "variable", name)
			continue
		}
		_ = s.Set(name, data[name])
	}
}

// notify runs per-variable listeners, then wildcard listeners, then refreshes
// bound nodes and publishes on the bus.
func (s *Store) notify(change domain.VariableChange) {
	for _, l := range slices.Clone(s.listeners[change.Name]) {
		s.call(l.fn, change)
	}
	for _, l := range slices.Clone(s.global) {
		s.call(l.fn, change)
	}
	s.render(change.Name)
	if s.bus != nil {
		s.bus.Publish(domain.TopicVariableChanged, change)
	}
}

func (s *Store) call(fn Listener, change domain.VariableChange) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("variable listener panicked", "variable", change.Name, "error", fmt.Errorf("%v", r))
		}
	}()
	fn(change)
}
