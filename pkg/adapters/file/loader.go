package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Loader implements ports.ConfigLoader and ports.Watchable for a unit
// configuration file. Files ending in .json are decoded strictly as JSON;
// anything else is read as YAML.
type Loader struct {
	Path     string
	debounce time.Duration
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDebounce sets how long Watch waits for events to settle.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader for the configuration file at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		Path:     path,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the configuration file.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(l.Path, data)
}

// Decode parses configuration bytes, choosing the format from the file name.
func Decode(name string, data []byte) (*domain.Config, error) {
	var cfg domain.Config
	if strings.EqualFold(filepath.Ext(name), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return &cfg, nil
}

// Watch signals on the returned channel after the configuration file changes.
// The directory is watched rather than the file so that atomic saves, which
// replace the file, keep being observed. The channel is closed when ctx ends.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(l.Path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(l.Path)
	out := make(chan struct{}, 1)
	signal := func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}

	go func() {
		defer close(out)
		defer watcher.Close()

		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-settle:
				settle = nil
				signal()
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op == fsnotify.Chmod {
					continue
				}
				l.logger.Debug("config file event", "path", ev.Name, "op", ev.Op.String())
				settle = time.After(l.debounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return out, nil
}
