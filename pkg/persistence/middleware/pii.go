package middleware

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
)

// Mask replaces redacted variable values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks the values of variables whose names match one of
// the patterns before they are stored. Masked values come back as Mask.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	// The engine still holds snap; mask a copy.
	masked := *snap
	masked.Variables = maps.Clone(snap.Variables)
	maskMap(masked.Variables, m.patterns)
	return m.next.Save(ctx, sessionID, &masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(vars map[string]any, patterns []*regexp.Regexp) {
	for name, v := range vars {
		for _, p := range patterns {
			if p.MatchString(name) {
				vars[name] = Mask
				break
			}
		}
		if nested, ok := v.(map[string]any); ok && vars[name] != Mask {
			nested = maps.Clone(nested)
			maskMap(nested, patterns)
			vars[name] = nested
		}
	}
}
