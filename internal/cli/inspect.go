package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cuepoint/internal/presentation/graph"
	"github.com/aretw0/cuepoint/internal/presentation/tui"
	"github.com/aretw0/cuepoint/internal/validator"
	"github.com/aretw0/cuepoint/pkg/adapters/file"
)

// Validate loads the configuration at path and prints every finding.
// It fails when any finding is an error.
func Validate(ctx context.Context, path string, out io.Writer) error {
	cfg, err := file.NewLoader(path).Load(ctx)
	if err != nil {
		return err
	}

	report := validator.Validate(cfg)
	printer := tui.NewPrinter(out)
	for _, issue := range report.Issues {
		if issue.Severity == validator.SeverityError {
			printer.Error("%s", issue)
		} else {
			printer.Warning("%s", issue)
		}
	}
	if err := report.Err(); err != nil {
		return err
	}
	printer.Success("Configuration is valid! ✅ (%d variables, %d objects, %d decision points, %d triggers)",
		len(cfg.Variables), len(cfg.Objects), len(cfg.Branching), len(cfg.Triggers))
	return nil
}

// Graph prints the branching rules as a Mermaid diagram. With a session
// ID, the path that session took is highlighted.
func Graph(ctx context.Context, path, sessionID string, persistence PersistenceOptions, out io.Writer, logger *slog.Logger) error {
	cfg, err := file.NewLoader(path).Load(ctx)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if sessionID != "" {
		manager, closeStore, err := OpenSessions(ctx, persistence, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		snap, err := manager.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
		}
		overlay = &graph.Overlay{Path: snap.Paths}
	}

	fmt.Fprint(out, graph.GenerateMermaid(cfg.Branching, overlay))
	return nil
}

// InspectSession prints a session's snapshot as indented JSON.
func InspectSession(ctx context.Context, sessionID string, persistence PersistenceOptions, out io.Writer, logger *slog.Logger) error {
	manager, closeStore, err := OpenSessions(ctx, persistence, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := manager.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
