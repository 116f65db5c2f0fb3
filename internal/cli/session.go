package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/internal/presentation/tui"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/observability"
	"github.com/aretw0/cuepoint/pkg/session"
)

// RunSession runs a unit once: a script replay, an NDJSON stream, or an
// interactive console.
func RunSession(opts RunOptions, in io.Reader, out io.Writer) error {
	logger, err := createLogger(opts.Debug, opts.LogLevel)
	if err != nil {
		return err
	}
	quiet := opts.JSON || opts.ScriptPath != ""
	interactive := !quiet && isInteractive()
	if interactive {
		tui.PrintBanner(out, cuepoint.Version)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	factory, err := NewFactory(opts.ConfigPath, opts.FunctionsPath, logger, observability.LogHooks(logger))
	if err != nil {
		return err
	}
	if _, err := factory.Reload(sigCtx); err != nil {
		return fmt.Errorf("error loading unit: %w", err)
	}
	eng, err := factory.Build(out)
	if err != nil {
		return err
	}
	defer eng.Destroy()

	manager, closeStore, err := OpenSessions(sigCtx, opts.Persistence, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := hydrate(sigCtx, manager, eng, opts, logger, !quiet, out); err != nil {
		return err
	}
	save := func() error {
		if opts.SessionID == "" {
			return nil
		}
		return manager.Save(sigCtx, opts.SessionID, eng.Snapshot())
	}

	console := NewConsole(eng, out, WithJSONOutput(opts.JSON), WithTrace(opts.Trace))
	defer console.Close()

	if opts.ScriptPath != "" {
		script, err := LoadScript(opts.ScriptPath)
		if err != nil {
			return err
		}
		if err := Replay(console, script); err != nil {
			return err
		}
		if err := save(); err != nil {
			return err
		}
		if !opts.JSON {
			tui.NewPrinter(out).Success("%d steps passed", len(script.Steps))
		}
		return nil
	}

	err = console.Loop(sigCtx, readLines(in), interactive, save)
	if errors.Is(err, context.Canceled) {
		if interactive {
			fmt.Fprintln(out)
			tui.NewPrinter(out).System("Interrupted (%v).", sigCtx.Signal())
		}
		return nil
	}
	return err
}

// hydrate restores the session's progress into eng, starting it when new.
func hydrate(ctx context.Context, manager *session.Manager, eng *cuepoint.Engine, opts RunOptions, logger *slog.Logger, verbose bool, out io.Writer) error {
	if opts.SessionID == "" {
		return nil
	}
	if opts.Fresh {
		if err := manager.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	snap, err := manager.LoadOrStart(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	resumed := len(snap.Variables) > 0 || len(snap.States) > 0 || len(snap.Paths) > 0
	eng.RestoreSnapshot(snap)

	if resumed {
		logger.Info("session resumed", "session_id", opts.SessionID)
		if verbose {
			tui.NewPrinter(out).System("Resuming session '%s'%s.", opts.SessionID, pathNote(eng))
		}
	} else {
		logger.Info("session created", "session_id", opts.SessionID)
		if verbose {
			tui.NewPrinter(out).System("Session '%s' active.", opts.SessionID)
		}
	}
	return nil
}

func pathNote(eng *cuepoint.Engine) string {
	path := eng.Branching().PathSummary()
	if len(path) == 0 {
		return ""
	}
	return " after " + strings.Join(path, ", ")
}
