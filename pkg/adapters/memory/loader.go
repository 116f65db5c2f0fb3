package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Loader implements ports.ConfigLoader over a configuration held in memory.
type Loader struct {
	raw []byte
}

// NewLoader creates a Loader from raw JSON configuration.
func NewLoader(data string) *Loader {
	return &Loader{raw: []byte(data)}
}

// NewFromConfig creates a Loader from a domain configuration.
// It serializes the configuration so every Load returns an independent copy.
func NewFromConfig(cfg *domain.Config) (*Loader, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return &Loader{raw: raw}, nil
}

// Load decodes the held configuration.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cfg domain.Config
	if err := json.Unmarshal(l.raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
