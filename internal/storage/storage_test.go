package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/config"
)

func backends(t *testing.T) map[string]Backend {
	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fb,
	}
}

func TestBackendGetSet(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(ctx, "crm-users")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Set(ctx, "crm-users", []byte(`[1]`)))
			require.NoError(t, b.Set(ctx, "crm-users", []byte(`[1,2]`)))

			got, err := b.Get(ctx, "crm-users")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))
			assert.NoError(t, b.Close())
		})
	}
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	v := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set(context.Background(), "crm-users", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "crm-users.json", entries[0].Name())
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, b.Set(context.Background(), "../escape", []byte("x")))
	_, err = b.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenSelectsDriver(t *testing.T) {
	cfg := config.Default()
	cfg.StorageDriver = "file"
	cfg.StorageDir = t.TempDir()

	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	cfg.StorageDriver = "memory"
	b, err = Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	cfg.StorageDriver = "bogus"
	_, err = Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
