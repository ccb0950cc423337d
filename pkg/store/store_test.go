package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/geofencer/pkg/regionlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ regionlist.Store = (*File)(nil)
	_ regionlist.Store = (*Memory)(nil)
	_ regionlist.Store = (*Postgres)(nil)
	_ regionlist.Store = (*Valkey)(nil)
)

func TestFileLoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "regions.gob"))

	encoded, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, encoded)
	assert.Empty(t, encoded)
}

func TestFileSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "regions.gob")
	f := NewFile(path)

	first := []string{
		`{"title":"Home","points":["37.0,-122.0","37.01,-122.01"]}`,
		`{"points":["1.0,2.0","3.0,4.0"]}`,
	}
	require.NoError(t, f.Save(ctx, first))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// Whole-list overwrite, not append
	second := []string{`{"title":"Work","points":["5.0,6.0","7.0,8.0"]}`}
	require.NoError(t, f.Save(ctx, second))

	got, err = NewFile(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, f.Save(ctx, nil))
	got, err = f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.gob")
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0644))

	_, err := NewFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFile(filepath.Join(t.TempDir(), "regions.gob"))
	assert.ErrorIs(t, f.Save(ctx, []string{"x"}), context.Canceled)
	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	in := []string{"a", "b"}
	require.NoError(t, m.Save(ctx, in))
	in[0] = "changed"

	got, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, m.Saves())
}
