package system

import (
	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/ecs/component"
	"github.com/milk9111/spriteatlas/ecs/render"
	"github.com/milk9111/spriteatlas/internal/ctxlog"
)

// AtlasSpriteSystem copies the selected atlas region into each
// AtlasSprite entity's Sprite, and refreshes all of them whenever the
// atlases for K are recreated.
type AtlasSpriteSystem[K ~string] struct {
	cache  *render.TextureCache
	events ecs.EventReader[AtlasEvent[K]]
	gen    uint64
	warned map[ecs.Entity]struct{}
}

func NewAtlasSpriteSystem[K ~string](cache *render.TextureCache) *AtlasSpriteSystem[K] {
	if cache == nil {
		cache = render.NewTextureCache(nil)
	}
	return &AtlasSpriteSystem[K]{cache: cache, warned: make(map[ecs.Entity]struct{})}
}

func (s *AtlasSpriteSystem[K]) Update(w *ecs.World) {
	for _, evt := range s.events.Read(w) {
		if evt.Created() {
			s.gen++
			clear(s.warned)
		}
	}

	textures, ok := ecs.GetResource[atlas.Textures[K]](w)
	if !ok {
		return
	}
	if s.gen == 0 {
		s.gen = 1
	}

	logger := ctxlog.FromContext(w.Context())
	for _, e := range w.Query(component.AtlasSpriteComponent.Kind(), component.SpriteComponent.Kind()) {
		as, _ := ecs.Get(w, e, component.AtlasSpriteComponent)
		sprite, _ := ecs.Get(w, e, component.SpriteComponent)
		if as.Applied(s.gen) {
			continue
		}

		created, ok := textures.Get(K(as.Atlas))
		if !ok || created.Len == 0 {
			s.warnOnce(e, func() {
				logger.Warn("sprite references unknown atlas", "entity", e.String(), "atlas", as.Atlas)
			})
			continue
		}
		if as.Index < 0 || as.Index >= created.Len {
			clamped := min(max(as.Index, 0), created.Len-1)
			s.warnOnce(e, func() {
				logger.Warn("atlas index out of range", "entity", e.String(), "atlas", as.Atlas, "index", as.Index, "len", created.Len)
			})
			as.Index = clamped
		}

		rect, _ := created.Rect(as.Index)
		sprite.Image = s.cache.Image(as.Atlas, created.Texture)
		sprite.Source = rect
		sprite.UseSource = true
		as.MarkApplied(s.gen)
	}
}

func (s *AtlasSpriteSystem[K]) warnOnce(e ecs.Entity, log func()) {
	if _, seen := s.warned[e]; seen {
		return
	}
	s.warned[e] = struct{}{}
	log()
}
