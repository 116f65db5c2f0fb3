package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath    string
	FunctionsPath string
	ScriptPath    string
	SessionID     string
	Fresh         bool
	Watch         bool
	JSON          bool
	Trace         bool
	Debug         bool
	LogLevel      string
	Persistence   PersistenceOptions
}

// Execute handles the run command, dispatching to session or watch mode.
func Execute(opts RunOptions) error {
	if opts.ConfigPath == "" {
		return fmt.Errorf("no unit configuration given")
	}
	// Functions default to a functions.yaml next to the configuration.
	if opts.FunctionsPath == "" {
		opts.FunctionsPath = filepath.Join(filepath.Dir(opts.ConfigPath), "functions.yaml")
	}
	if opts.Persistence.Dir == "" {
		opts.Persistence.Dir = filepath.Dir(opts.ConfigPath)
	}

	if opts.Watch {
		if opts.ScriptPath != "" || opts.JSON {
			return fmt.Errorf("--watch cannot be combined with --script or --json")
		}
		return RunWatch(opts, os.Stdin, os.Stdout)
	}
	return RunSession(opts, os.Stdin, os.Stdout)
}
