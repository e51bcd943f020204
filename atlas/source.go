package atlas

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Source provides the files atlases are built from.
type Source interface {
	fs.ReadDirFS
	fs.ReadFileFS
}

// FSSource reads assets from an fs.FS, such as an embed.FS or fstest.MapFS.
type FSSource struct {
	fsys fs.FS
	root string
	// stripAssets drops a leading "assets/" from names, see CleanPath.
	stripAssets bool
}

// NewFSSource reads from fsys, which is rooted at the assets directory:
// "assets/sheet.png" and "sheet.png" name the same file.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys, stripAssets: true}
}

// NewDirSource reads assets from a directory on disk. Names are relative to
// root as given, so an "assets" subdirectory of root stays reachable.
func NewDirSource(root string) *FSSource {
	return &FSSource{fsys: os.DirFS(root), root: root}
}

func (s *FSSource) clean(name string) (string, error) {
	if s.stripAssets {
		return CleanPath(name)
	}
	return cleanRelPath(name)
}

func (s *FSSource) Open(name string) (fs.File, error) {
	clean, err := s.clean(name)
	if err != nil {
		return nil, err
	}
	return s.fsys.Open(clean)
}

func (s *FSSource) ReadFile(name string) ([]byte, error) {
	clean, err := s.clean(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, clean)
}

func (s *FSSource) ReadDir(name string) ([]fs.DirEntry, error) {
	clean, err := s.clean(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(s.fsys, clean)
}

// ModTime returns the modification time of a file, if it can be stat'ed.
func (s *FSSource) ModTime(name string) (time.Time, bool) {
	clean, err := s.clean(name)
	if err != nil {
		return time.Time{}, false
	}
	info, err := fs.Stat(s.fsys, clean)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Root is the directory a NewDirSource reads from, or "".
func (s *FSSource) Root() string {
	return s.root
}

// CleanPath turns an asset path into an fs.FS path: slashes, no leading
// "assets/" or "./", and no escape above the root. Absolute paths keep only
// what follows their last "/assets/" directory.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty asset path", fs.ErrInvalid)
	}
	s := strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
	if filepath.IsAbs(p) || strings.HasPrefix(s, "/") {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			s = s[idx+len("/assets/"):]
		} else {
			s = path.Base(s)
		}
	}
	if s = strings.TrimPrefix(s, "assets/"); s == "" {
		s = "."
	}
	return cleanRelPath(s)
}

// cleanRelPath normalizes a root-relative path without touching an
// "assets/" prefix.
func cleanRelPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty asset path", fs.ErrInvalid)
	}
	s := path.Clean(strings.ReplaceAll(filepath.ToSlash(p), "\\", "/"))
	if strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("%w: asset path %q is not relative", fs.ErrInvalid, p)
	}
	if s == ".." || strings.HasPrefix(s, "../") {
		return "", fmt.Errorf("%w: asset path %q escapes the root", fs.ErrInvalid, p)
	}
	return s, nil
}

// LoadImage decodes an image from src.
func LoadImage(src Source, name string) (image.Image, error) {
	f, err := src.Open(name)
	if err != nil {
		return nil, fmt.Errorf("atlas: open %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("atlas: decode %s: %w", name, err)
	}
	return img, nil
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// IsImageFile reports whether name has an extension LoadImage can decode.
func IsImageFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}
