package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqliteStore,
	}
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "k", []byte(`"first"`)))
			require.NoError(t, s.Set(ctx, "k", []byte(`"second"`)))

			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `"second"`, string(v), "set overwrites, never appends")
		})
	}
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(ctx, s, "rec", record{Name: "a", Count: 2}))

			var got record
			found, err := Load(ctx, s, "rec", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, record{Name: "a", Count: 2}, got)

			var absent record
			found, err = Load(ctx, s, "nope", &absent)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLoad_Corrupted(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "rec", []byte(`{"name": "a", "count": `)))

			var got record
			found, err := Load(ctx, s, "rec", &got)
			assert.False(t, found)
			assert.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "device.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, Save(ctx, s, "rec", record{Name: "persisted"}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	var got record
	found, err := Load(ctx, reopened, "rec", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", got.Name)
}
