// Package triggers binds host events to actions. A trigger listens on the
// event bus, evaluates its conditions against the variable store, the state
// machine and the document, and runs its action or its else action.
package triggers

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/events"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/ports"
)

// DefaultMaxChainDepth bounds how deeply trigger firings may nest when an
// action causes a change another trigger listens for.
const DefaultMaxChainDepth = 32

// VariableStore is the part of the variable store actions and conditions use.
type VariableStore interface {
	Get(name string) (any, bool)
	Set(name string, value any) error
	Adjust(name string, amount any) error
	Toggle(name string) error
}

// StateMachine is the part of the state machine actions and conditions use.
type StateMachine interface {
	State(id string) (string, bool)
	SetState(id, state string) error
	ToggleState(id, a, b string) error
	IsRegistered(id string) bool
}

type binding struct {
	trigger *domain.Trigger
	unbind  []func()
	cancel  ports.CancelFunc
}

func (b *binding) release() {
	for _, fn := range b.unbind {
		fn()
	}
	b.unbind = nil
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Engine owns the registered triggers. It is not safe for concurrent use.
type Engine struct {
	doc    *nodes.Document
	bus    *events.Bus
	vars   VariableStore
	states StateMachine

	audio     ports.AudioController
	layers    ports.LayerController
	funcs     ports.FunctionRunner
	scheduler ports.Scheduler

	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	clock    func() time.Time
	maxDepth int

	bindings []*binding
	byID     map[string]*binding
	nextID   int
	depth    int
}

// Option configures the Engine.
type Option func(*Engine)

// WithVariables sets the store read by variable conditions and written by variable actions.
func WithVariables(vars VariableStore) Option {
	return func(e *Engine) {
		e.vars = vars
	}
}

// WithStates sets the state machine used by state conditions and state actions.
func WithStates(states StateMachine) Option {
	return func(e *Engine) {
		e.states = states
	}
}

// WithAudio sets the media collaborator.
func WithAudio(audio ports.AudioController) Option {
	return func(e *Engine) {
		e.audio = audio
	}
}

// WithLayers sets the layer collaborator.
func WithLayers(layers ports.LayerController) Option {
	return func(e *Engine) {
		e.layers = layers
	}
}

// WithFunctions sets the allow-list consulted by executeFunction.
func WithFunctions(funcs ports.FunctionRunner) Option {
	return func(e *Engine) {
		e.funcs = funcs
	}
}

// WithScheduler sets the tick scheduler used to defer content-start triggers.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for reported problems.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for hook timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithMaxChainDepth bounds nested trigger firings. Values below 1 are ignored.
func WithMaxChainDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// New creates an Engine listening on bus and acting on doc.
func New(doc *nodes.Document, bus *events.Bus, opts ...Option) *Engine {
	e := &Engine{
		doc:      doc,
		bus:      bus,
		logger:   logging.NewNop(),
		clock:    time.Now,
		maxDepth: DefaultMaxChainDepth,
		byID:     make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register normalizes a trigger configuration, binds it and returns its id.
// Unknown event or action names and missing target nodes are reported and
// the trigger is not registered.
func (e *Engine) Register(cfg domain.TriggerConfig) (string, error) {
	t, err := e.normalize(cfg)
	if err != nil {
		e.logger.Warn("trigger skipped", "event", cfg.Event, "action", cfg.Action, "error", err)
		return "", err
	}

	t.ID = fmt.Sprintf("trigger_%d", e.nextID)
	b := &binding{trigger: t}
	if err := e.bind(b); err != nil {
		b.release()
		e.logger.Warn("trigger skipped", "event", cfg.Event, "target", cfg.EventTarget, "error", err)
		return "", err
	}

	e.nextID++
	e.bindings = append(e.bindings, b)
	e.byID[t.ID] = b

	e.logger.Debug("trigger registered", "trigger", t.ID, "event", t.Event.Kind, "action", t.Action.Kind)
	return t.ID, nil
}

// RegisterAll registers triggers in order, continuing past failures.
func (e *Engine) RegisterAll(cfgs []domain.TriggerConfig) ([]string, error) {
	var (
		ids  []string
		errs []error
	)
	for i, cfg := range cfgs {
		id, err := e.Register(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("trigger %d: %w", i, err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

func (e *Engine) normalize(cfg domain.TriggerConfig) (*domain.Trigger, error) {
	kind, err := domain.ParseEventKind(cfg.Event)
	if err != nil {
		return nil, err
	}
	action, err := domain.ActionConfig{Action: cfg.Action, Params: cfg.ActionParams}.Parse()
	if err != nil {
		return nil, err
	}

	t := &domain.Trigger{
		Event: domain.EventSpec{
			Kind:   kind,
			Target: nodes.StripSelector(cfg.EventTarget),
			Params: cfg.EventParams,
		},
		Action:     action,
		Conditions: cfg.Conditions,
		Logic:      domain.ParseLogic(cfg.ConditionLogic),
		Priority:   cfg.Priority,
		Enabled:    true,
	}
	if cfg.Priority == 0 {
		t.Priority = len(e.bindings)
	}
	if cfg.ElseAction != nil {
		alt, err := cfg.ElseAction.Parse()
		if err != nil {
			return nil, fmt.Errorf("else action: %w", err)
		}
		t.Else = &alt
	}
	return t, nil
}

// SetEnabled enables or disables a trigger without unbinding it.
func (e *Engine) SetEnabled(id string, enabled bool) error {
	b, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("set enabled %q: %w", id, domain.ErrUnknownTrigger)
	}
	b.trigger.Enabled = enabled
	return nil
}

// Remove unbinds and forgets a trigger.
func (e *Engine) Remove(id string) error {
	b, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("remove %q: %w", id, domain.ErrUnknownTrigger)
	}
	b.release()
	delete(e.byID, id)
	e.bindings = slices.DeleteFunc(e.bindings, func(x *binding) bool { return x == b })
	return nil
}

// Trigger returns a copy of a registered trigger.
func (e *Engine) Trigger(id string) (domain.Trigger, bool) {
	b, ok := e.byID[id]
	if !ok {
		return domain.Trigger{}, false
	}
	return *b.trigger, true
}

// Triggers returns copies of the registered triggers in registration order.
func (e *Engine) Triggers() []domain.Trigger {
	out := make([]domain.Trigger, 0, len(e.bindings))
	for _, b := range e.bindings {
		out = append(out, *b.trigger)
	}
	return out
}

// Destroy unbinds every trigger and resets id numbering.
func (e *Engine) Destroy() {
	for _, b := range e.bindings {
		b.release()
	}
	e.bindings = nil
	e.byID = make(map[string]*binding)
	e.nextID = 0
}

// fire runs one trigger for one event occurrence.
func (e *Engine) fire(t *domain.Trigger) {
	if !t.Enabled {
		return
	}
	if e.depth >= e.maxDepth {
		err := fmt.Errorf("trigger %q: %w", t.ID, domain.ErrChainDepthExceeded)
		e.logger.Error("trigger chain aborted", "trigger", t.ID, "depth", e.depth, "error", err)
		if e.hooks.OnChainAbort != nil {
			e.hooks.OnChainAbort(e.event(t, t.Action.Kind, false, err))
		}
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	matched := e.EvaluateConditions(t.Conditions, t.Logic)
	if e.hooks.OnTriggerFire != nil {
		e.hooks.OnTriggerFire(e.event(t, t.Action.Kind, matched, nil))
	}

	switch {
	case matched:
		e.run(t, t.Action)
	case t.Else != nil:
		e.run(t, *t.Else)
	}
}

func (e *Engine) run(t *domain.Trigger, action domain.ActionSpec) {
	if err := e.execute(t.ID, action); err != nil {
		e.logger.Error("action failed", "trigger", t.ID, "action", action.Kind, "error", err)
		if e.hooks.OnActionError != nil {
			e.hooks.OnActionError(e.event(t, action.Kind, true, err))
		}
	}
}

func (e *Engine) event(t *domain.Trigger, action domain.ActionKind, matched bool, err error) *domain.TriggerEvent {
	return &domain.TriggerEvent{
		Timestamp: e.clock(),
		TriggerID: t.ID,
		Event:     t.Event.Kind,
		Action:    action,
		Matched:   matched,
		Err:       err,
	}
}
