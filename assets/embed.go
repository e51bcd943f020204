// Package assets embeds a small demo set of atlas definitions and the
// textures they cut up.
package assets

import (
	"embed"

	"github.com/milk9111/spriteatlas/atlas"
)

// DefaultDefinitions is the definitions file atlasview opens by default.
const DefaultDefinitions = "sprite_sheets.atlas.yaml"

//go:embed *.png *.yaml *.hcl *.tengo coin
var assetsFS embed.FS

// Source returns the embedded assets as an atlas source.
func Source() *atlas.FSSource {
	return atlas.NewFSSource(assetsFS)
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	return Source().ReadFile(path)
}
