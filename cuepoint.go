package cuepoint

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/branching"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/events"
	"github.com/aretw0/cuepoint/pkg/nodes"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/aretw0/cuepoint/pkg/registry"
	"github.com/aretw0/cuepoint/pkg/states"
	"github.com/aretw0/cuepoint/pkg/triggers"
	"github.com/aretw0/cuepoint/pkg/variables"
)

// Engine is the high-level entry point for one content unit. It owns the
// variable store, the state machine, the branching engine and the trigger
// engine, and wires them through a shared event bus.
//
// Engine is not safe for concurrent use. Hosts serving several sessions
// create one Engine per session.
type Engine struct {
	doc       *nodes.Document
	bus       *events.Bus
	vars      *variables.Store
	states    *states.Machine
	branching *branching.Engine
	triggers  *triggers.Engine
	functions *registry.Registry

	ticks     *TickScheduler
	scheduler ports.Scheduler
	navigator ports.Navigator
	audio     ports.AudioController
	layers    ports.LayerController
	runner    ports.FunctionRunner
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	clock     func() time.Time
	maxDepth  int

	course  domain.CourseInfo
	started time.Time
	unbind  []func()
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for every subsystem.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName labels the engine; the name is added to every log record.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// WithAudio sets the media collaborator used by media actions.
func WithAudio(audio ports.AudioController) Option {
	return func(e *Engine) {
		e.audio = audio
	}
}

// WithLayers sets the layer collaborator used by layer actions.
func WithLayers(layers ports.LayerController) Option {
	return func(e *Engine) {
		e.layers = layers
	}
}

// WithNavigator sets the collaborator that carries out navigation requests.
func WithNavigator(nav ports.Navigator) Option {
	return func(e *Engine) {
		e.navigator = nav
	}
}

// WithFunctions replaces the built-in function registry consulted by executeFunction.
func WithFunctions(runner ports.FunctionRunner) Option {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithScheduler replaces the built-in tick scheduler. A host scheduler is
// responsible for running deferred work itself.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxChainDepth bounds nested trigger firings.
func WithMaxChainDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithClock overrides the time source for path history and elapsed time.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an Engine over doc. A nil doc starts from an empty document.
func New(doc *nodes.Document, opts ...Option) *Engine {
	if doc == nil {
		doc = nodes.NewDocument()
	}
	e := &Engine{
		doc:       doc,
		functions: registry.NewRegistry(),
		clock:     time.Now,
		maxDepth:  triggers.DefaultMaxChainDepth,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("unit", e.Name)
	}
	if e.runner == nil {
		e.runner = e.functions
	}
	if e.scheduler == nil {
		e.ticks = NewTickScheduler()
		e.scheduler = e.ticks
	}

	e.bus = events.New(events.WithLogger(e.logger))
	e.vars = variables.New(variables.WithBus(e.bus), variables.WithLogger(e.logger))
	e.vars.BindDocument(doc)
	e.states = states.New(doc, states.WithBus(e.bus), states.WithLogger(e.logger))
	e.branching = branching.New(e.vars,
		branching.WithBus(e.bus),
		branching.WithLogger(e.logger),
		branching.WithClock(e.clock),
	)
	e.triggers = triggers.New(doc, e.bus,
		triggers.WithVariables(e.vars),
		triggers.WithStates(e.states),
		triggers.WithAudio(e.audio),
		triggers.WithLayers(e.layers),
		triggers.WithFunctions(e.runner),
		triggers.WithScheduler(e.scheduler),
		triggers.WithLifecycleHooks(e.hooks),
		triggers.WithMaxChainDepth(e.maxDepth),
		triggers.WithClock(e.clock),
		triggers.WithLogger(e.logger),
	)

	e.bridge()
	return e
}

// Init populates the subsystems from cfg in dependency order: nodes,
// variables, built-ins, object states, branching rules, then triggers
// (configured first, then inline ones found in the document). Invalid
// entries are reported and skipped; their errors are joined.
func (e *Engine) Init(cfg *domain.Config) error {
	if cfg == nil {
		cfg = &domain.Config{}
	}
	var errs []error

	for _, n := range nodes.FromConfig(cfg.Nodes).Nodes() {
		if _, exists := e.doc.Get(n.ID); !exists {
			e.doc.Add(n)
		}
	}
	if err := e.vars.DefineAll(cfg.Variables); err != nil {
		errs = append(errs, fmt.Errorf("variables: %w", err))
	}
	if cfg.CourseInfo != nil {
		e.course = *cfg.CourseInfo
		e.vars.InitBuiltIns(e.course)
	}
	e.vars.BindDocument(e.doc)
	if err := e.states.RegisterAll(cfg.Objects); err != nil {
		errs = append(errs, fmt.Errorf("objects: %w", err))
	}
	if err := e.branching.AddRules(cfg.Branching); err != nil {
		errs = append(errs, fmt.Errorf("branching: %w", err))
	}
	if _, err := e.triggers.RegisterAll(cfg.Triggers); err != nil {
		errs = append(errs, fmt.Errorf("triggers: %w", err))
	}
	if _, err := e.triggers.ScanDocument(); err != nil {
		errs = append(errs, fmt.Errorf("inline triggers: %w", err))
	}

	e.started = e.clock()
	if e.ticks != nil && !e.doc.Loading() {
		e.ticks.Drain()
	}

	err := errors.Join(errs...)
	if err != nil {
		e.logger.Warn("init completed with errors", "error", err)
	}
	return err
}

// bridge connects branch side actions, branch hooks and navigation requests.
func (e *Engine) bridge() {
	e.unbind = append(e.unbind,
		e.bus.Subscribe(domain.TopicBranchAction, func(p any) {
			ba, ok := p.(domain.BranchAction)
			if !ok {
				return
			}
			action, err := ba.Action.Parse()
			if err != nil {
				e.logger.Warn("branch action skipped", "decision_point", ba.From, "error", err)
				return
			}
			_ = e.triggers.ExecuteAction(action)
		}),
		e.bus.Subscribe(domain.TopicBranchTaken, func(p any) {
			if bt, ok := p.(domain.BranchTaken); ok && e.hooks.OnBranchTaken != nil {
				e.hooks.OnBranchTaken(&bt)
			}
		}),
		e.bus.Subscribe(domain.TopicNavigate, func(p any) {
			if req, ok := p.(domain.NavigateRequest); ok {
				e.navigate(req)
			}
		}),
	)
}

// Evaluate runs the branching rules of a decision point.
func (e *Engine) Evaluate(decisionPoint string) (string, bool) {
	return e.branching.Evaluate(decisionPoint)
}

// RegisterFunction adds a function to the executeFunction allow-list.
// It has no effect when WithFunctions replaced the built-in registry.
func (e *Engine) RegisterFunction(name string, fn registry.Function) {
	e.functions.Register(name, fn)
}

// Subscribe observes an outbound topic such as domain.TopicNavigate.
func (e *Engine) Subscribe(topic string, fn events.Handler) func() {
	return e.bus.Subscribe(topic, fn)
}

// Tap observes every event published inside the engine.
func (e *Engine) Tap(fn events.TapFunc) func() {
	return e.bus.Tap(fn)
}

// SetProgress updates the course progress built-ins for the current unit
// and the number of units viewed so far.
func (e *Engine) SetProgress(current, viewed int) {
	e.vars.UpdateBuiltIn(domain.BuiltinUnitNumber, current)
	e.vars.UpdateBuiltIn(domain.BuiltinCurrentUnit, current)
	e.vars.UpdateBuiltIn(domain.BuiltinUnitsViewed, viewed)
	if e.course.TotalUnits > 0 {
		pct := float64(viewed) * 100 / float64(e.course.TotalUnits)
		e.vars.UpdateBuiltIn(domain.BuiltinCompletionPercentage, min(pct, 100))
	}
}

// UpdateElapsed refreshes the elapsed-time built-in, in whole seconds since Init.
func (e *Engine) UpdateElapsed() {
	if e.started.IsZero() {
		return
	}
	e.vars.UpdateBuiltIn(domain.BuiltinElapsedTime, int(e.clock().Sub(e.started).Seconds()))
}

// Document returns the node document the engine acts on.
func (e *Engine) Document() *nodes.Document { return e.doc }

// Variables returns the variable store.
func (e *Engine) Variables() *variables.Store { return e.vars }

// States returns the object state machine.
func (e *Engine) States() *states.Machine { return e.states }

// Branching returns the branching engine.
func (e *Engine) Branching() *branching.Engine { return e.branching }

// Triggers returns the trigger engine.
func (e *Engine) Triggers() *triggers.Engine { return e.triggers }

// Functions returns the built-in function registry.
func (e *Engine) Functions() *registry.Registry { return e.functions }

// Scheduler returns the built-in tick scheduler, or nil when the host supplied one.
func (e *Engine) Scheduler() *TickScheduler { return e.ticks }

// Destroy unbinds every trigger and state machine and drops bus subscribers.
// The engine must not be used afterwards.
func (e *Engine) Destroy() {
	e.triggers.Destroy()
	e.states.Destroy()
	for _, fn := range e.unbind {
		fn()
	}
	e.unbind = nil
	if e.ticks != nil {
		e.ticks.Reset()
	}
	e.bus.Clear()
}
