package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/internal/presentation/tui"
	"github.com/aretw0/cuepoint/pkg/domain"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  <event> [target] [extra]   dispatch an input event, e.g. "press submit",
                             "key-press Enter", "drag-drop item zone", "custom done"
  ready | leave              content start and end
  eval <decision-point>      evaluate branching rules
  set <variable> <value>     assign a variable
  vars | states | path       inspect the unit
  help | quit`

// Console drives an engine from text commands or JSON steps.
type Console struct {
	eng   *cuepoint.Engine
	w     io.Writer
	print *tui.Printer
	json  bool
	last  string
	untap func()
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithJSONOutput switches to NDJSON results, one per step.
func WithJSONOutput(on bool) ConsoleOption {
	return func(c *Console) {
		c.json = on
	}
}

// WithTrace prints every bus publication.
func WithTrace(on bool) ConsoleOption {
	return func(c *Console) {
		if !on {
			return
		}
		c.untap = c.eng.Tap(func(topic string, payload any) {
			c.print.Trace("%s %+v", topic, payload)
		})
	}
}

// Result is the NDJSON record written per step in JSON mode.
type Result struct {
	Diff    *domain.SnapshotDiff `json:"diff,omitempty"`
	Target  string               `json:"target,omitempty"`
	Matched *bool                `json:"matched,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewConsole creates a Console writing to w.
func NewConsole(eng *cuepoint.Engine, w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{eng: eng, w: w, print: tui.NewPrinter(w)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close detaches the console from the engine.
func (c *Console) Close() {
	if c.untap != nil {
		c.untap()
	}
}

// LastTarget returns the target of the most recent evaluation.
func (c *Console) LastTarget() string {
	return c.last
}

// Exec runs one input line. In JSON mode the line is a Step document.
func (c *Console) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if c.json {
		var step Step
		if err := json.Unmarshal([]byte(line), &step); err != nil {
			c.emit(Result{Error: err.Error()})
			return nil
		}
		return c.Apply(step)
	}

	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]
	switch strings.ToLower(verb) {
	case "quit", "exit":
		return ErrQuit
	case "help":
		c.print.Plain(helpText)
		return nil
	case "vars":
		c.printVariables()
		return nil
	case "states":
		c.printStates()
		return nil
	case "path":
		c.print.Plain("%v", c.eng.Branching().PathSummary())
		return nil
	}

	step, err := ParseCommand(verb, args)
	if err != nil {
		return err
	}
	return c.Apply(step)
}

// ParseCommand turns a typed command into a step.
func ParseCommand(verb string, args []string) (Step, error) {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch strings.ToLower(verb) {
	case "eval":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("usage: eval <decision-point>")
		}
		return Step{Evaluate: args[0]}, nil
	case "set":
		if len(args) < 2 {
			return Step{}, fmt.Errorf("usage: set <variable> <value>")
		}
		return Step{Set: map[string]any{args[0]: strings.Join(args[1:], " ")}}, nil
	case "ready":
		return Step{Event: &domain.InputEvent{Kind: domain.EventContentStart}}, nil
	case "leave":
		return Step{Event: &domain.InputEvent{Kind: domain.EventContentEnd}}, nil
	}

	kind, err := domain.ParseEventKind(verb)
	if err != nil {
		return Step{}, err
	}
	ev := domain.InputEvent{Kind: kind}
	switch kind {
	case domain.EventKeyPress:
		ev.Key, ev.Target = arg(0), arg(1)
	case domain.EventDragDrop:
		ev.Item, ev.Target = arg(0), arg(1)
	case domain.EventCuePoint:
		ev.Target, ev.Name = arg(0), arg(1)
	case domain.EventCustom:
		ev.Name = arg(0)
	default:
		ev.Target = arg(0)
	}
	return Step{Event: &ev}, nil
}

// Apply runs a step and reports what changed.
func (c *Console) Apply(step Step) error {
	before := c.eng.Snapshot()
	var res Result

	err := c.run(step, &res)
	if err == nil && step.Expect != nil {
		err = step.Expect.Check(c.eng, c.last)
	}

	res.Diff = domain.Diff(before, c.eng.Snapshot())
	if c.json {
		if err != nil {
			res.Error = err.Error()
		}
		c.emit(res)
		return err
	}
	if err != nil {
		return err
	}
	c.report(res)
	return nil
}

func (c *Console) run(step Step, res *Result) error {
	for _, name := range sortedKeys(step.Set) {
		if err := c.eng.Variables().Set(name, step.Set[name]); err != nil {
			return err
		}
	}
	if step.Event != nil {
		if err := c.eng.Dispatch(*step.Event); err != nil {
			return err
		}
	}
	if step.Evaluate != "" {
		target, matched := c.eng.Evaluate(step.Evaluate)
		c.last = target
		res.Target, res.Matched = target, &matched
	}
	return nil
}

func (c *Console) report(res Result) {
	if res.Matched != nil {
		if *res.Matched {
			c.print.Success("→ %s", res.Target)
		} else {
			c.print.Warning("no rule matched")
		}
	}
	if res.Diff == nil {
		return
	}
	for _, name := range sortedKeys(res.Diff.Variables) {
		c.print.Change("%s = %v", name, res.Diff.Variables[name])
	}
	for _, id := range sortedKeys(res.Diff.States) {
		c.print.Change("%s: %v", id, res.Diff.States[id])
	}
}

func (c *Console) emit(res Result) {
	data, err := json.Marshal(res)
	if err != nil {
		data, _ = json.Marshal(Result{Error: err.Error()})
	}
	fmt.Fprintln(c.w, string(data))
}

func (c *Console) printVariables() {
	for _, name := range c.eng.Variables().Names() {
		v, _ := c.eng.Variables().Get(name)
		c.print.Plain("%s = %v", name, v)
	}
}

func (c *Console) printStates() {
	for _, id := range c.eng.States().IDs() {
		state, _ := c.eng.States().State(id)
		visited := ""
		if c.eng.States().IsVisited(id) {
			visited = " (visited)"
		}
		c.print.Plain("%s: %s%s", id, state, visited)
	}
}

// Loop reads lines until quit, end of input, or ctx is done. afterStep runs
// after every successful line.
func (c *Console) Loop(ctx context.Context, lines <-chan string, prompt bool, afterStep func() error) error {
	for {
		if prompt && !c.json {
			c.print.Prompt()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := c.Exec(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				if !c.json {
					c.print.Error("error: %v", err)
				}
				continue
			}
			if afterStep != nil {
				if err := afterStep(); err != nil {
					return err
				}
			}
		}
	}
}
