package component

// AtlasSprite selects region Index of the atlas registered under Atlas.
// The atlas sprite system keeps the entity's Sprite in sync with it.
type AtlasSprite struct {
	Atlas string
	Index int

	// what was last copied to the Sprite, and for which atlas generation
	appliedAtlas string
	appliedIndex int
	appliedGen   uint64
}

// Applied reports whether the Sprite already shows Atlas and Index for
// generation gen.
func (a *AtlasSprite) Applied(gen uint64) bool {
	return gen != 0 && a.appliedGen == gen && a.appliedAtlas == a.Atlas && a.appliedIndex == a.Index
}

// MarkApplied records that the Sprite shows Atlas and Index for generation gen.
func (a *AtlasSprite) MarkApplied(gen uint64) {
	a.appliedAtlas = a.Atlas
	a.appliedIndex = a.Index
	a.appliedGen = gen
}

var AtlasSpriteComponent = NewComponent[AtlasSprite]()
