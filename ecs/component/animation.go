package component

// AtlasAnimation steps an AtlasSprite through regions First..Last.
type AtlasAnimation struct {
	First   int
	Last    int
	FPS     float64
	Loop    bool
	Playing bool

	FrameTimer int
}

var AtlasAnimationComponent = NewComponent[AtlasAnimation]()
