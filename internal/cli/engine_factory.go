package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/internal/validator"
	"github.com/aretw0/cuepoint/pkg/adapters/file"
	"github.com/aretw0/cuepoint/pkg/adapters/process"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/observability"
)

// Factory loads a unit configuration once and builds engines from it.
// Reload picks up changes on disk.
type Factory struct {
	Loader *file.Loader

	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	functions *process.Runner

	mu     sync.RWMutex
	cfg    *domain.Config
	report *validator.Report
}

// NewFactory creates a factory for the configuration at path. Functions
// listed in functionsPath become callable through executeFunction.
func NewFactory(path, functionsPath string, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*Factory, error) {
	fns, err := process.LoadFunctions(functionsPath)
	if err != nil {
		return nil, err
	}
	return &Factory{
		Loader: file.NewLoader(path, file.WithLogger(logger)),
		logger: logger,
		hooks:  observability.Chain(hooks...),
		functions: process.NewRunner(
			process.WithRegistry(fns),
			process.WithBaseDir(filepath.Dir(path)),
			process.WithLogger(logger),
		),
	}, nil
}

// Reload reads and validates the configuration. Validation errors are
// returned but the previous configuration is kept.
func (f *Factory) Reload(ctx context.Context) (*validator.Report, error) {
	cfg, err := f.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	report := validator.Validate(cfg)
	if err := report.Err(); err != nil {
		return report, err
	}
	for _, issue := range report.Warnings() {
		f.logger.Warn("configuration warning", "path", issue.Path, "msg", issue.Message)
	}

	f.mu.Lock()
	f.cfg, f.report = cfg, report
	f.mu.Unlock()
	f.logger.Info("configuration loaded", "path", f.Loader.Path, "triggers", len(cfg.Triggers))
	return report, nil
}

// Config returns the last loaded configuration.
func (f *Factory) Config() *domain.Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg
}

// Build creates and initializes an engine. Navigation requests are written
// to nav; a nil nav discards them.
func (f *Factory) Build(nav io.Writer) (*cuepoint.Engine, error) {
	cfg := f.Config()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded: %s", f.Loader.Path)
	}
	if nav == nil {
		nav = io.Discard
	}

	eng := cuepoint.New(nil,
		cuepoint.WithName(unitName(f.Loader.Path)),
		cuepoint.WithLogger(f.logger),
		cuepoint.WithLifecycleHooks(f.hooks),
		cuepoint.WithFunctions(f.functions),
		cuepoint.WithNavigator(newConsoleNavigator(nav)),
	)
	if err := eng.Init(cfg); err != nil {
		// Invalid entries were skipped; the unit is still usable.
		f.logger.Warn("engine initialized with errors", "err", err)
	}
	return eng, nil
}

// Engine adapts Build to the HTTP engine factory.
func (f *Factory) Engine() (*cuepoint.Engine, error) {
	return f.Build(nil)
}

func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// consoleNavigator reports navigation requests instead of performing them.
type consoleNavigator struct {
	w     io.Writer
	index int
}

func newConsoleNavigator(w io.Writer) *consoleNavigator {
	return &consoleNavigator{w: w}
}

func (n *consoleNavigator) Next() error {
	n.index++
	fmt.Fprintf(n.w, ">>> navigate: next (unit %d)\n", n.index)
	return nil
}

func (n *consoleNavigator) Prev() error {
	if n.index > 0 {
		n.index--
	}
	fmt.Fprintf(n.w, ">>> navigate: previous (unit %d)\n", n.index)
	return nil
}

func (n *consoleNavigator) GoTo(index int) error {
	n.index = index
	fmt.Fprintf(n.w, ">>> navigate: unit %d\n", index)
	return nil
}

func (n *consoleNavigator) GoToScene(scene string) error {
	fmt.Fprintf(n.w, ">>> navigate: scene %q\n", scene)
	return nil
}
