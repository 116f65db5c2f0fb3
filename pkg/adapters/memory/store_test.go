package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/cuepoint/pkg/adapters/memory"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	snap := &domain.Snapshot{Variables: map[string]any{"score": float64(1)}}
	require.NoError(t, store.Save(ctx, "s1", snap))
	snap.Variables["score"] = float64(99)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), loaded.Variables["score"])

	loaded.Variables["score"] = float64(7)
	again, _ := store.Load(ctx, "s1")
	assert.Equal(t, float64(1), again.Variables["score"])
}
