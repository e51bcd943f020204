package component

// RenderLayer orders drawing: lower Index draws first, ties keep entity order.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()
