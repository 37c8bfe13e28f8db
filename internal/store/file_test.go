package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "console.json")

	kv, err := OpenFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "batches", []byte(`[{"id":"b1"}]`)))

	reopened, err := OpenFileKV(path)
	require.NoError(t, err)
	raw, ok, err := reopened.Get(ctx, "batches")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"b1"}]`, string(raw))
}

func TestFileKVMissingNamespace(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenFileKV(filepath.Join(t.TempDir(), "console.json"))
	require.NoError(t, err)

	_, ok, err := kv.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVCorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "console.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	kv, err := OpenFileKV(path)
	require.NoError(t, err)

	_, ok, err := kv.Get(ctx, "batches")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVDelete(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenFileKV(filepath.Join(t.TempDir(), "console.json"))
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "offers", []byte(`[]`)))
	require.NoError(t, kv.Delete(ctx, "offers"))

	_, ok, err := kv.Get(ctx, "offers")
	require.NoError(t, err)
	assert.False(t, ok)
}
