package system

import (
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/ecs/component"
)

type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	for _, e := range w.Query(component.AtlasAnimationComponent.Kind(), component.AtlasSpriteComponent.Kind()) {
		anim, _ := ecs.Get(w, e, component.AtlasAnimationComponent)
		as, _ := ecs.Get(w, e, component.AtlasSpriteComponent)
		if !anim.Playing || anim.Last < anim.First {
			continue
		}
		if as.Index < anim.First || as.Index > anim.Last {
			as.Index = anim.First
			anim.FrameTimer = 0
		}

		// Advance frame every N ticks based on FPS and 60 TPS
		ticksPerFrame := 1
		if anim.FPS > 0 {
			ticksPerFrame = max(int(60.0/anim.FPS), 1)
		}

		anim.FrameTimer++
		if anim.FrameTimer < ticksPerFrame {
			continue
		}
		anim.FrameTimer = 0
		as.Index++
		if as.Index > anim.Last {
			if anim.Loop {
				as.Index = anim.First
			} else {
				as.Index = anim.Last
				anim.Playing = false
			}
		}
	}
}
