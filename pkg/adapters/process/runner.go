package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
)

// DefaultTimeout bounds a single function execution.
const DefaultTimeout = 10 * time.Second

// EnvPrefix prefixes the environment variables carrying function arguments.
const EnvPrefix = "CUEPOINT_ARG_"

// ErrExecution is returned when a registered command fails.
var ErrExecution = errors.New("function execution failed")

// Runner is a FunctionRunner that executes allow-listed local processes.
// Names it does not know are passed to the fallback runner, if any.
type Runner struct {
	registry map[string]FunctionConfig
	fallback ports.FunctionRunner
	baseDir  string
	timeout  time.Duration
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(fns map[string]FunctionConfig) RunnerOption {
	return func(r *Runner) {
		for name, fn := range fns {
			fn.Name = name
			r.registry[name] = fn
		}
	}
}

// WithFallback handles names that are not registered here.
func WithFallback(fallback ports.FunctionRunner) RunnerOption {
	return func(r *Runner) {
		r.fallback = fallback
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each execution.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]FunctionConfig),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = FunctionConfig{Name: name, Command: command, Args: args}
}

// Names returns the registered function names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command. Arguments travel as CUEPOINT_ARG_<NAME>
// environment variables, never as command-line flags. Standard output is
// returned, decoded when it is a JSON object or array.
func (r *Runner) Execute(name string, args map[string]any) (any, error) {
	fn, ok := r.registry[name]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Execute(name, args)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrFunctionNotFound, name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fn.Command, fn.Args...)
	cmd.Dir = r.baseDir
	cmd.WaitDelay = time.Second
	cmd.Env = append(cmd.Environ(), environment(fn.Environment, args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		r.logger.Warn("function failed", "function", name, "err", err, "stderr", stderr.String())
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrExecution, name, err, strings.TrimSpace(stderr.String()))
	}
	r.logger.Debug("function executed", "function", name, "duration", time.Since(start))

	return decodeOutput(stdout.String()), nil
}

func environment(static map[string]string, args map[string]any) []string {
	env := make([]string, 0, len(static)+len(args))
	for k, v := range static {
		env = append(env, k+"="+v)
	}
	for k, v := range args {
		var val string
		switch v.(type) {
		case nil:
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		default:
			if data, err := json.Marshal(v); err == nil {
				val = string(data)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+val)
	}
	return env
}

func decodeOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return trimmed
}
