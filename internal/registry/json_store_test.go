package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONStore(t *testing.T) *JSONFileStore {
	t.Helper()
	store, err := NewJSONFileStore(filepath.Join(t.TempDir(), "data", "registry.json"), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestJSONFileStore_LoadMissingFile(t *testing.T) {
	store := newJSONStore(t)

	reg, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reg)
}

func TestJSONFileStore_SaveAndLoad(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()

	reg := models.Registry{
		"100": {Targets: []models.Target{"https://a.example", "/var/www/index.html"}},
		"200": {Targets: []models.Target{}},
	}
	require.NoError(t, store.Save(ctx, reg))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg, loaded)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"targets"`)
}

func TestJSONFileStore_LoadLegacyLayout(t *testing.T) {
	store := newJSONStore(t)
	legacy := `{"7": {"urls": {"https://b.example": true, "https://a.example": false}}, "8": {"urls": ["/tmp/x"]}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))

	reg, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Target{"https://b.example", "https://a.example"}, reg["7"].Targets)
	assert.Equal(t, []models.Target{"/tmp/x"}, reg["8"].Targets)
}

func TestJSONFileStore_LoadCorrupt(t *testing.T) {
	store := newJSONStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestJSONFileStore_UpdateAbortsOnError(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, models.Registry{"1": {Targets: []models.Target{"http://x"}}}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(reg models.Registry) error {
		reg["1"].Targets = nil
		return boom
	})
	require.ErrorIs(t, err, boom)

	reg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Target{"http://x"}, reg["1"].Targets)
}

func TestJSONFileStore_ConcurrentUpdates(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Update(ctx, func(reg models.Registry) error {
				entry := reg.EnsureOwner("1")
				entry.Targets = append(entry.Targets, models.Target(filepath.Join("/tmp", string(rune('a'+i)))))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, reg["1"].Targets, 20)
}
