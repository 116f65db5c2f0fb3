package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cuepoint/pkg/adapters/file"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ports.RunSnapshotStoreContract(t, store)
}

func TestFileStore_WritesOneFilePerSession(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	snap := &domain.Snapshot{Variables: map[string]any{"score": float64(3)}}
	require.NoError(t, store.Save(ctx, "learner-1", snap))
	require.NoError(t, store.Save(ctx, "learner-1", snap), "overwrite must succeed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")
	assert.Equal(t, "learner-1.json", entries[0].Name())

	require.NoError(t, store.Delete(ctx, "learner-1"))
	_, err = os.Stat(filepath.Join(dir, "learner-1.json"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "learner-1"), "deleting twice is fine")
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", &domain.Snapshot{}))
	assert.Error(t, store.Save(ctx, "../escape", &domain.Snapshot{}))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	_, err := file.NewStore(dir).Load(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
