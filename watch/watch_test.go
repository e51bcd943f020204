package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsWatched(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"sheets.atlas.yaml", true},
		{"defs/sheets.yml", true},
		{"sheets.hcl", true},
		{"sprite_sheets.atlasmap", true},
		{"positions.tengo", true},
		{"frames/Run_01.PNG", true},
		{"frames/a.webp", true},
		{"notes.txt", false},
		{"frames/.a.png.swp", false},
		{"frames", false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			require.Equal(t, c.want, IsWatched(c.path))
		})
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "frames")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(sub, "a.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	select {
	case got := <-w.Events:
		require.Equal(t, target, got)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for changed image")
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	target := filepath.Join(dir, "sheets.atlas.yaml")
	for i := range 5 {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
		time.Sleep(debounce / 5)
	}

	select {
	case got := <-w.Events:
		require.Equal(t, target, got)
		data, err := os.ReadFile(got)
		require.NoError(t, err)
		require.Equal(t, []byte("e"), data)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for burst of writes")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected second event for %s", got)
	case <-time.After(3 * debounce):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Events
	require.False(t, open)
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
