package render

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"
)

func TestTextureCacheUploadsOncePerSource(t *testing.T) {
	var uploaded []image.Image
	cache := NewTextureCache(func(src image.Image) *ebiten.Image {
		uploaded = append(uploaded, src)
		return nil
	})

	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(0, 0, 8, 8))

	cache.Image("pacman", a)
	cache.Image("pacman", a)
	require.Len(t, uploaded, 1)

	cache.Image("pacman", b)
	require.Len(t, uploaded, 2)
	require.Same(t, b, uploaded[1])

	cache.Image("ghosts", a)
	require.Equal(t, 2, cache.Len())

	cache.Evict("pacman")
	require.Equal(t, 1, cache.Len())
	require.Nil(t, cache.Get("pacman"))

	require.Nil(t, cache.Image("", a))
	require.Nil(t, cache.Image("x", nil))
	require.Len(t, uploaded, 3)
}
