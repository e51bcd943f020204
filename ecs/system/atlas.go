package system

import (
	"path/filepath"
	"strings"

	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/internal/ctxlog"
)

// AtlasEvent reports that the atlases for key set K were created or failed.
type AtlasEvent[K ~string] struct {
	Status atlas.Status
	Err    error
}

func (e AtlasEvent[K]) Created() bool { return e.Status == atlas.StatusCreated }

func (e AtlasEvent[K]) Failed() bool { return e.Status == atlas.StatusFailed }

// AtlasSystem drives the *atlas.Loader[K] resource: it publishes
// atlas.Textures[K] as a resource once every atlas is built and emits an
// AtlasEvent[K] for each completed attempt.
type AtlasSystem[K ~string] struct {
	changes   <-chan string
	watchRoot string
}

func NewAtlasSystem[K ~string]() *AtlasSystem[K] {
	return &AtlasSystem[K]{}
}

// Watch feeds file change notifications into the loader. Paths on changes
// are taken relative to root before matching asset paths.
func (s *AtlasSystem[K]) Watch(changes <-chan string, root string) {
	s.changes = changes
	s.watchRoot = root
}

func (s *AtlasSystem[K]) Update(w *ecs.World) {
	ctx := w.Context()
	res, ok := ecs.GetResource[*atlas.Loader[K]](w)
	if !ok || *res == nil {
		s.drain(nil, w)
		return
	}
	loader := *res
	s.drain(loader, w)

	status, reported := loader.Update(ctx)
	if loader.State() == atlas.StateFinalizing {
		if textures, ok := loader.Textures(); ok {
			ecs.SetResource(w, textures)
		}
	}
	if !reported {
		return
	}
	switch status {
	case atlas.StatusCreated:
		ecs.Emit(w, AtlasEvent[K]{Status: status})
	case atlas.StatusFailed:
		ecs.RemoveResource[atlas.Textures[K]](w)
		ecs.Emit(w, AtlasEvent[K]{Status: status, Err: loader.Err()})
	}
}

func (s *AtlasSystem[K]) drain(loader *atlas.Loader[K], w *ecs.World) {
	if s.changes == nil {
		return
	}
	logger := ctxlog.FromContext(w.Context())
	for {
		select {
		case name, ok := <-s.changes:
			if !ok {
				s.changes = nil
				return
			}
			if loader == nil {
				continue
			}
			rel := s.relative(name)
			if loader.Invalidate(w.Context(), rel) {
				logger.Debug("atlas reload scheduled", "path", rel)
			}
		default:
			return
		}
	}
}

func (s *AtlasSystem[K]) relative(name string) string {
	if s.watchRoot == "" {
		return filepath.ToSlash(name)
	}
	rel, err := filepath.Rel(s.watchRoot, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(rel)
}
