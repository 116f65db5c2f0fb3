package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func() *domain.Snapshot {
		return &domain.Snapshot{
			Variables: map[string]any{"name": "Ada", "score": float64(42), "passed": true},
			States:    map[string]any{"btn": domain.StateSelected, "btn" + domain.VisitedSuffix: true},
			Paths:     []domain.PathRecord{{From: "u1", To: "u2", Timestamp: 1700000000000}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot()

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Ada", loaded.Variables["name"])
		assert.Equal(t, true, loaded.Variables["passed"])
		assert.EqualValues(t, 42, loaded.Variables["score"])
		assert.Equal(t, domain.StateSelected, loaded.States["btn"])
		assert.Equal(t, snap.Paths, loaded.Paths)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSnapshot())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSnapshot())
		_ = store.Save(ctx, id2, newSnapshot())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
