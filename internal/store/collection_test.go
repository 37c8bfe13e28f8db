package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[record](NewMemoryKV(), "records", nil, zap.NewNop())

	items := []record{
		{ID: "a", Name: "first", Value: 24999},
		{ID: "b", Name: "second", Value: 19999},
		{ID: "c", Name: "third", Value: 0},
	}
	col.Save(ctx, items)

	loaded := col.Load(ctx)
	require.Equal(t, items, loaded)
}

func TestCollectionLoadMissingReturnsSeed(t *testing.T) {
	ctx := context.Background()
	seed := []record{{ID: "seed-1", Name: "default"}}
	col := NewCollection[record](NewMemoryKV(), "records", seed, zap.NewNop())

	loaded := col.Load(ctx)
	require.Equal(t, seed, loaded)

	// Mutating the returned slice must not corrupt the seed.
	loaded[0].Name = "changed"
	again := col.Load(ctx)
	assert.Equal(t, "default", again[0].Name)
}

func TestCollectionLoadCorruptReturnsSeed(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, "records", []byte("{not json")))

	seed := []record{{ID: "seed-1"}}
	col := NewCollection[record](kv, "records", seed, zap.NewNop())

	require.NotPanics(t, func() {
		loaded := col.Load(ctx)
		assert.Equal(t, seed, loaded)
	})
}

func TestCollectionUpsertReplacesFirstMatch(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[record](NewMemoryKV(), "records", nil, zap.NewNop())
	col.Save(ctx, []record{{ID: "a", Value: 1}, {ID: "b", Value: 2}})

	col.Upsert(ctx, record{ID: "b", Value: 20}, func(r record) bool { return r.ID == "b" })

	loaded := col.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(20), loaded[1].Value)
}

func TestCollectionUpsertPrependsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[record](NewMemoryKV(), "records", nil, zap.NewNop())
	col.Save(ctx, []record{{ID: "a"}})

	col.Upsert(ctx, record{ID: "new"}, func(r record) bool { return r.ID == "new" })

	loaded := col.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, "new", loaded[0].ID)
	assert.Equal(t, "a", loaded[1].ID)
}

func TestCollectionRemove(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[record](NewMemoryKV(), "records", nil, zap.NewNop())
	col.Save(ctx, []record{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	out := col.Remove(ctx, func(r record) bool { return r.ID == "b" })
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, out, col.Load(ctx))
}

type failingKV struct{ MemoryKV }

func (f *failingKV) Put(context.Context, string, []byte) error {
	return assert.AnError
}

func TestCollectionSaveFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[record](&failingKV{}, "records", nil, zap.NewNop())

	require.NotPanics(t, func() {
		col.Save(ctx, []record{{ID: "a"}})
	})
}
