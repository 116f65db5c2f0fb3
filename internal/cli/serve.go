package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	httpadapter "github.com/aretw0/cuepoint/pkg/adapters/http"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP host.
type ServeOptions struct {
	ConfigPath    string
	FunctionsPath string
	Addr          string
	Watch         bool
	Debug         bool
	LogLevel      string
	Persistence   PersistenceOptions
}

// Serve hosts unit sessions over HTTP until interrupted.
func Serve(opts ServeOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	} else if opts.LogLevel != "" {
		lvl, err := logging.ParseLevel(opts.LogLevel)
		if err != nil {
			return err
		}
		level = lvl
	}
	logger := logging.NewJSON(os.Stderr, level)

	if opts.FunctionsPath == "" {
		opts.FunctionsPath = filepath.Join(filepath.Dir(opts.ConfigPath), "functions.yaml")
	}
	if opts.Persistence.Dir == "" {
		opts.Persistence.Dir = filepath.Dir(opts.ConfigPath)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	hooks := []domain.LifecycleHooks{metrics.Hooks()}
	if opts.Debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	factory, err := NewFactory(opts.ConfigPath, opts.FunctionsPath, logger, hooks...)
	if err != nil {
		return err
	}
	if _, err := factory.Reload(sigCtx); err != nil {
		return fmt.Errorf("error loading unit: %w", err)
	}

	manager, closeStore, err := OpenSessions(sigCtx, opts.Persistence, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	if ids, err := manager.List(sigCtx); err == nil {
		metrics.SetSessions(len(ids))
	}

	serverOpts := []httpadapter.Option{
		httpadapter.WithMetrics(metrics),
		httpadapter.WithLogger(logger),
	}
	if opts.Watch {
		serverOpts = append(serverOpts, httpadapter.WithWatcher(factory.Loader))
		if err := reloadOnChange(sigCtx, factory, logger); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           httpadapter.NewHandler(factory.Engine, manager, serverOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "config", opts.ConfigPath)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("shutting down", "signal", sigCtx.Signal())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

// reloadOnChange keeps the factory's configuration current. A broken edit
// keeps the previous configuration in service.
func reloadOnChange(ctx context.Context, factory *Factory, logger *slog.Logger) error {
	changes, err := factory.Loader.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch configuration: %w", err)
	}
	go func() {
		for range changes {
			if _, err := factory.Reload(ctx); err != nil {
				logger.Error("reload rejected, keeping previous configuration", "err", err)
			}
		}
	}()
	return nil
}
