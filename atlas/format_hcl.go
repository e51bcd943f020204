package atlas

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type hclFile struct {
	Atlases []hclAtlas `hcl:"atlas,block"`
}

type hclAtlas struct {
	Name            string   `hcl:"name,label"`
	Kind            *string  `hcl:"kind,optional"`
	Texture         *string  `hcl:"texture,optional"`
	Columns         *int     `hcl:"columns,optional"`
	Rows            *int     `hcl:"rows,optional"`
	TileSize        *[]int   `hcl:"tile_size,optional"`
	Padding         *[]int   `hcl:"padding,optional"`
	Width           *int     `hcl:"width,optional"`
	Height          *int     `hcl:"height,optional"`
	Positions       *[][]int `hcl:"positions,optional"`
	PositionsScript *string  `hcl:"positions_script,optional"`
	Path            *string  `hcl:"path,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

// hclEvalContext exposes a few cty functions so positions can be generated,
// e.g. positions = [for i in range(3) : [65 + i * 21, 86]].
func hclEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"range":  stdlib.RangeFunc,
			"concat": stdlib.ConcatFunc,
			"min":    stdlib.MinFunc,
			"max":    stdlib.MaxFunc,
		},
	}
}

// ParseHCL decodes `atlas "<name>" { ... }` blocks.
func ParseHCL(filename string, data []byte) (Definitions, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("atlas: parse hcl: %w", diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, hclEvalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("atlas: decode hcl: %w", diags)
	}

	defs := make(Definitions, len(root.Atlases))
	for _, block := range root.Atlases {
		if _, dup := defs[block.Name]; dup {
			return nil, fmt.Errorf("atlas: %s: duplicate atlas %q", block.DeclRange, block.Name)
		}
		def, err := block.definition()
		if err != nil {
			return nil, fmt.Errorf("atlas: %s: atlas %q: %w", block.DeclRange, block.Name, err)
		}
		defs[block.Name] = def
	}
	return defs, nil
}

func (b hclAtlas) present() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(b.Texture != nil, "texture")
	add(b.Columns != nil, "columns")
	add(b.Rows != nil, "rows")
	add(b.TileSize != nil, "tile_size")
	add(b.Padding != nil, "padding")
	add(b.Width != nil, "width")
	add(b.Height != nil, "height")
	add(b.Positions != nil, "positions")
	add(b.PositionsScript != nil, "positions_script")
	add(b.Path != nil, "path")
	return keys
}

func (b hclAtlas) definition() (Definition, error) {
	keys := b.present()
	var kind Kind
	if b.Kind != nil {
		kind = Kind(*b.Kind)
		if kind == "manual" {
			kind = KindPatch
		}
	} else {
		kind = inferKind(keys)
	}

	var (
		def     Definition
		allowed []string
	)
	switch kind {
	case KindGrid:
		allowed = gridKeys
		g := GridDefinition{Texture: deref(b.Texture), Columns: deref(b.Columns), Rows: deref(b.Rows)}
		if b.TileSize != nil {
			s, err := pairOf(*b.TileSize, "tile_size")
			if err != nil {
				return Definition{}, err
			}
			g.TileSize = s
		}
		if b.Padding != nil {
			s, err := pairOf(*b.Padding, "padding")
			if err != nil {
				return Definition{}, err
			}
			g.Padding = &s
		}
		def = Grid(g)
	case KindPatch:
		allowed = patchKeys
		p := PatchDefinition{
			Texture:         deref(b.Texture),
			Width:           deref(b.Width),
			Height:          deref(b.Height),
			PositionsScript: deref(b.PositionsScript),
		}
		if b.Positions != nil {
			for i, pos := range *b.Positions {
				s, err := pairOf(pos, fmt.Sprintf("positions[%d]", i))
				if err != nil {
					return Definition{}, err
				}
				p.Positions = append(p.Positions, Point{X: s.W, Y: s.H})
			}
		}
		def = Patch(p)
	case KindFolder:
		allowed = folderKeys
		def = Folder(FolderDefinition{Path: deref(b.Path)})
	default:
		return Definition{}, fmt.Errorf("cannot tell whether definition is grid, patch or folder")
	}

	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return Definition{}, fmt.Errorf("attribute %q not valid for %s definition", k, kind)
		}
	}
	return def, nil
}

func pairOf(v []int, what string) (Size, error) {
	if len(v) != 2 {
		return Size{}, fmt.Errorf("%s: expected 2 values, got %d", what, len(v))
	}
	return Size{W: v[0], H: v[1]}, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
