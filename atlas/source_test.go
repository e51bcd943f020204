package atlas

import (
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sheet.png", "sheet.png"},
		{"assets/sheet.png", "sheet.png"},
		{"./frames/a.png", "frames/a.png"},
		{"frames\\a.png", "frames/a.png"},
		{"/home/me/game/assets/frames/a.png", "frames/a.png"},
		{"frames/../sheet.png", "sheet.png"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := CleanPath(c.in)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}

	for _, bad := range []string{"", "../secret.png", "frames/../../x.png"} {
		_, err := CleanPath(bad)
		require.ErrorIs(t, err, fs.ErrInvalid, bad)
	}
}

func TestDirSourceKeepsAssetsDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "sheet.png"), pngBytes(t, 3, 2, red), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sheet.png"), pngBytes(t, 5, 4, red), 0o644))
	src := NewDirSource(root)

	img, err := LoadImage(src, "assets/sheet.png")
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())

	img, err = LoadImage(src, "./sheet.png")
	require.NoError(t, err)
	require.Equal(t, 5, img.Bounds().Dx())

	entries, err := src.ReadDir("assets")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	for _, bad := range []string{"", "../sheet.png", "/etc/passwd"} {
		_, err := src.ReadFile(bad)
		require.ErrorIs(t, err, fs.ErrInvalid, bad)
	}
}

func TestLoadImage(t *testing.T) {
	src := NewFSSource(fstest.MapFS{
		"sheet.png": file(pngBytes(t, 12, 7, color.White)),
		"notes.txt": file([]byte("not an image")),
	})
	img, err := LoadImage(src, "assets/sheet.png")
	require.NoError(t, err)
	require.Equal(t, 12, img.Bounds().Dx())
	require.Equal(t, 7, img.Bounds().Dy())

	_, err = LoadImage(src, "missing.png")
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = LoadImage(src, "notes.txt")
	require.Error(t, err)
}

func TestIsImageFile(t *testing.T) {
	require.True(t, IsImageFile("a.PNG"))
	require.True(t, IsImageFile("dir/a.webp"))
	require.False(t, IsImageFile("a.yaml"))
}
