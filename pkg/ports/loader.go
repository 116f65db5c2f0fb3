package ports

import (
	"context"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// ConfigLoader retrieves the declarative configuration of a content unit.
type ConfigLoader interface {
	Load(ctx context.Context) (*domain.Config, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying configuration changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
