package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/internal/presentation/tui"
	"github.com/aretw0/cuepoint/pkg/observability"
	"github.com/aretw0/cuepoint/pkg/session"
)

// retryDelay paces rebuild attempts while the configuration is broken.
const retryDelay = 2 * time.Second

// RunWatch runs the unit in development mode: the console is rebuilt each
// time the configuration file changes, and progress carries over through
// the session.
func RunWatch(opts RunOptions, in io.Reader, out io.Writer) error {
	logger, err := createLogger(opts.Debug, opts.LogLevel)
	if err != nil {
		return err
	}
	printer := tui.NewPrinter(out)
	tui.PrintBanner(out, cuepoint.Version)

	// Watch mode is always stateful; the default session is scoped by path
	// so projects do not collide.
	if opts.SessionID == "" {
		hash := md5.Sum([]byte(opts.ConfigPath))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	factory, err := NewFactory(opts.ConfigPath, opts.FunctionsPath, logger, observability.LogHooks(logger))
	if err != nil {
		return err
	}
	manager, closeStore, err := OpenSessions(sigCtx, opts.Persistence, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("starting watcher", "path", opts.ConfigPath, "session_id", opts.SessionID)
	printer.System("Watching '%s' (session '%s').", opts.ConfigPath, opts.SessionID)

	lines := readLines(in)
	for {
		again, err := watchIteration(sigCtx, factory, manager, opts, lines, out, logger)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		opts.Fresh = false
		logger.Info("watcher restarting")
	}
}

// watchIteration runs one console lifetime. It reports whether the caller
// should start another one.
func watchIteration(parent *SignalContext, factory *Factory, manager *session.Manager, opts RunOptions,
	lines <-chan string, out io.Writer, logger *slog.Logger) (bool, error) {
	printer := tui.NewPrinter(out)
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	changes, err := factory.Loader.Watch(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to watch configuration: %w", err)
	}

	if report, err := factory.Reload(ctx); err != nil {
		printer.Error("Configuration invalid: %v", err)
		if report != nil {
			for _, issue := range report.Errors() {
				printer.Error("  %s", issue)
			}
		}
		printer.System("Waiting for changes...")
		return waitForChange(parent, changes)
	}

	eng, err := factory.Build(out)
	if err != nil {
		return false, err
	}
	defer eng.Destroy()

	if err := hydrate(ctx, manager, eng, opts, logger, true, out); err != nil {
		return false, err
	}

	reload := make(chan struct{}, 1)
	go func() {
		select {
		case <-ctx.Done():
		case _, ok := <-changes:
			if ok {
				reload <- struct{}{}
				cancel()
			}
		}
	}()

	console := NewConsole(eng, out, WithTrace(opts.Trace))
	defer console.Close()

	err = console.Loop(ctx, lines, true, func() error {
		return manager.Save(ctx, opts.SessionID, eng.Snapshot())
	})

	select {
	case <-reload:
		fmt.Fprintln(out)
		printer.System("Change detected in '%s', reloading.", opts.ConfigPath)
		return true, nil
	default:
	}
	if parent.Err() != nil {
		fmt.Fprintln(out)
		printer.System("Stopped (%v).", parent.Signal())
		return false, nil
	}
	if errors.Is(err, context.Canceled) {
		return true, nil
	}
	return false, err
}

func waitForChange(parent *SignalContext, changes <-chan struct{}) (bool, error) {
	select {
	case <-parent.Done():
		return false, nil
	case _, ok := <-changes:
		if !ok {
			// The watcher died; poll instead.
			select {
			case <-parent.Done():
				return false, nil
			case <-time.After(retryDelay):
			}
		}
		return true, nil
	}
}
