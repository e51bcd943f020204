package component

// Camera offsets and scales everything the render system draws.
type Camera struct {
	Zoom float64
}

var CameraComponent = NewComponent[Camera]()
