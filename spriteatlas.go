// Package spriteatlas registers sprite atlases, described by definition
// files or built in code, with an ECS world.
//
// A game names its atlases with a string type and lists the keys it needs:
//
//	type Sheet string
//
//	const Pacman Sheet = "pacman"
//
//	spriteatlas.Plugin[Sheet]{}.Build(world)
//	spriteatlas.Load(world, atlas.NewLoader([]Sheet{Pacman}, src,
//		atlas.FromFile[Sheet]("sprite_sheets.atlas.yaml")))
//
// Once AtlasesCreated reports true, atlas.Textures[Sheet] is available as a
// world resource and entities with an AtlasSprite component draw from it.
package spriteatlas

import (
	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/ecs/render"
	"github.com/milk9111/spriteatlas/ecs/system"
)

// Plugin wires the atlas systems for key set K into a world.
type Plugin[K ~string] struct {
	// Cache uploads atlas textures. Nil uses ebiten.NewImageFromImage.
	Cache *render.TextureCache
	// Changes, when set, carries changed file paths (see watch.Watcher);
	// paths are made relative to WatchRoot.
	Changes   <-chan string
	WatchRoot string
}

// Build adds, in order, the loader, animation, and sprite sync systems.
func (p Plugin[K]) Build(w *ecs.World) {
	atlasSystem := system.NewAtlasSystem[K]()
	if p.Changes != nil {
		atlasSystem.Watch(p.Changes, p.WatchRoot)
	}
	w.AddSystem(atlasSystem)
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(system.NewAtlasSpriteSystem[K](p.Cache))
}

// Load installs loader as the world's atlas loader for K, replacing any
// previous one and its published textures.
func Load[K ~string](w *ecs.World, loader *atlas.Loader[K]) {
	if prev, ok := ecs.GetResource[*atlas.Loader[K]](w); ok && *prev != nil && *prev != loader {
		(*prev).Close()
	}
	ecs.RemoveResource[atlas.Textures[K]](w)
	ecs.SetResource(w, loader)
}

// AtlasesCreated reports whether every atlas for K is built and announced.
func AtlasesCreated[K ~string](w *ecs.World) bool {
	loader, ok := loaderOf[K](w)
	return ok && loader.State() == atlas.StateDone
}

// AtlasesFailed reports whether the last attempt to build K's atlases failed.
func AtlasesFailed[K ~string](w *ecs.World) bool {
	loader, ok := loaderOf[K](w)
	return ok && loader.State() == atlas.StateFailed
}

// Textures returns the published atlases for K.
func Textures[K ~string](w *ecs.World) (atlas.Textures[K], bool) {
	t, ok := ecs.GetResource[atlas.Textures[K]](w)
	if !ok {
		return atlas.Textures[K]{}, false
	}
	return *t, true
}

func loaderOf[K ~string](w *ecs.World) (*atlas.Loader[K], bool) {
	res, ok := ecs.GetResource[*atlas.Loader[K]](w)
	if !ok || *res == nil {
		return nil, false
	}
	return *res, true
}
