// Package render turns decoded atlas textures into GPU images.
package render

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// NewImageFunc uploads a decoded image. Tests swap it out to stay headless.
type NewImageFunc func(image.Image) *ebiten.Image

// TextureCache uploads each texture once and hands out the same image
// until the texture is replaced or evicted.
type TextureCache struct {
	mu     sync.Mutex
	upload NewImageFunc
	images map[string]cachedImage
}

type cachedImage struct {
	src image.Image
	img *ebiten.Image
}

func NewTextureCache(upload NewImageFunc) *TextureCache {
	if upload == nil {
		upload = ebiten.NewImageFromImage
	}
	return &TextureCache{upload: upload, images: make(map[string]cachedImage)}
}

// Image returns the uploaded image for src under key. A different src for
// the same key replaces, and disposes, the previous upload.
func (c *TextureCache) Image(key string, src image.Image) *ebiten.Image {
	if key == "" || src == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.images[key]; ok {
		if cached.src == src {
			return cached.img
		}
		if cached.img != nil {
			cached.img.Deallocate()
		}
	}
	img := c.upload(src)
	c.images[key] = cachedImage{src: src, img: img}
	return img
}

// Get returns a cached image by key.
func (c *TextureCache) Get(key string) *ebiten.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images[key].img
}

// Evict drops a cached image.
func (c *TextureCache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.images[key]; ok {
		if cached.img != nil {
			cached.img.Deallocate()
		}
		delete(c.images, key)
	}
}

func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
