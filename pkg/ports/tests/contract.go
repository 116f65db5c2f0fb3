package tests

import (
	"context"
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
)

// ConfigLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ConfigLoader.
// The loader must be backed by a configuration declaring the variable "score" (number)
// and at least one trigger.
func ConfigLoaderContractTest(t *testing.T, loader ports.ConfigLoader) {
	t.Helper()

	t.Run("Load_Success", func(t *testing.T) {
		cfg, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading config: %v", err)
		}
		def, ok := cfg.Variables["score"]
		if !ok {
			t.Fatalf("expected variable %q, got %v", "score", cfg.Variables)
		}
		if typ, err := domain.ParseVarType(def.Type); err != nil || typ != domain.TypeNumber {
			t.Errorf("expected number type, got %q (%v)", def.Type, err)
		}
		if len(cfg.Triggers) == 0 {
			t.Error("expected at least one trigger")
		}
	})

	t.Run("Load_Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := loader.Load(ctx); err == nil {
			t.Error("expected error for canceled context, got nil")
		}
	})
}
