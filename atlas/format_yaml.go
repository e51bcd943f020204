package atlas

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// yamlDefinition holds every field any variant may carry; the variant is
// inferred from which ones are present.
type yamlDefinition struct {
	Texture         string     `yaml:"texture"`
	Columns         *int       `yaml:"columns"`
	Rows            *int       `yaml:"rows"`
	TileSize        *yamlPair  `yaml:"tile_size"`
	Padding         *yamlPair  `yaml:"padding"`
	Width           *int       `yaml:"width"`
	Height          *int       `yaml:"height"`
	Positions       []yamlPair `yaml:"positions"`
	PositionsScript string     `yaml:"positions_script"`
	Path            string     `yaml:"path"`
	Kind            string     `yaml:"kind"`
}

var (
	gridKeys   = []string{"texture", "columns", "rows", "tile_size", "padding", "kind"}
	patchKeys  = []string{"texture", "width", "height", "positions", "positions_script", "kind"}
	folderKeys = []string{"path", "kind"}
)

// yamlPair accepts [a, b], {x: a, y: b} or {w: a, h: b}.
type yamlPair struct {
	A int
	B int
}

func (p *yamlPair) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var v []int
		if err := value.Decode(&v); err != nil {
			return err
		}
		if len(v) != 2 {
			return fmt.Errorf("line %d: expected 2 values, got %d", value.Line, len(v))
		}
		p.A, p.B = v[0], v[1]
		return nil
	case yaml.MappingNode:
		var m map[string]int
		if err := value.Decode(&m); err != nil {
			return err
		}
		for _, keys := range [][2]string{{"x", "y"}, {"w", "h"}, {"width", "height"}} {
			a, okA := m[keys[0]]
			b, okB := m[keys[1]]
			if okA && okB && len(m) == 2 {
				p.A, p.B = a, b
				return nil
			}
		}
		return fmt.Errorf("line %d: expected {x, y} or {w, h}", value.Line)
	}
	return fmt.Errorf("line %d: expected a pair", value.Line)
}

func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: atlas definition must be a mapping", value.Line)
	}
	keys := make([]string, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keys = append(keys, value.Content[i].Value)
	}

	var raw yamlDefinition
	if err := value.Decode(&raw); err != nil {
		return err
	}

	kind := Kind(raw.Kind)
	if raw.Kind == "manual" {
		kind = KindPatch
	}
	if kind == "" {
		kind = inferKind(keys)
	}

	var allowed []string
	switch kind {
	case KindGrid:
		allowed = gridKeys
		g := GridDefinition{Texture: raw.Texture}
		if raw.Columns != nil {
			g.Columns = *raw.Columns
		}
		if raw.Rows != nil {
			g.Rows = *raw.Rows
		}
		if raw.TileSize != nil {
			g.TileSize = Size{W: raw.TileSize.A, H: raw.TileSize.B}
		}
		if raw.Padding != nil {
			g.Padding = &Size{W: raw.Padding.A, H: raw.Padding.B}
		}
		*d = Grid(g)
	case KindPatch:
		allowed = patchKeys
		p := PatchDefinition{Texture: raw.Texture, PositionsScript: raw.PositionsScript}
		if raw.Width != nil {
			p.Width = *raw.Width
		}
		if raw.Height != nil {
			p.Height = *raw.Height
		}
		for _, pos := range raw.Positions {
			p.Positions = append(p.Positions, Point{X: pos.A, Y: pos.B})
		}
		*d = Patch(p)
	case KindFolder:
		allowed = folderKeys
		*d = Folder(FolderDefinition{Path: raw.Path})
	default:
		return fmt.Errorf("line %d: cannot tell whether definition is grid, patch or folder (kind %q)", value.Line, raw.Kind)
	}

	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("line %d: field %q not valid for %s definition", value.Line, k, kind)
		}
	}
	return nil
}

func inferKind(keys []string) Kind {
	has := func(names ...string) bool {
		for _, n := range names {
			if slices.Contains(keys, n) {
				return true
			}
		}
		return false
	}
	switch {
	case has("columns", "rows", "tile_size"):
		return KindGrid
	case has("positions", "positions_script", "width", "height"):
		return KindPatch
	case has("path"):
		return KindFolder
	}
	return ""
}

// ParseYAML decodes a mapping of atlas name to definition. Errors name the
// atlas they come from.
func ParseYAML(data []byte) (Definitions, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("atlas: unmarshal yaml: %w", err)
	}
	defs := Definitions{}
	if len(doc.Content) == 0 {
		return defs, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return defs, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("atlas: unmarshal yaml: line %d: expected a mapping of atlas names", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if _, dup := defs[name]; dup {
			return nil, fmt.Errorf("atlas %q: line %d: duplicate atlas", name, root.Content[i].Line)
		}
		var def Definition
		if err := root.Content[i+1].Decode(&def); err != nil {
			return nil, fmt.Errorf("atlas %q: %w", name, err)
		}
		defs[name] = def
	}
	return defs, nil
}

// MarshalYAML writes the definition in the same untagged shape ParseYAML reads.
func (d Definition) MarshalYAML() (any, error) {
	out := map[string]any{}
	switch d.Kind() {
	case KindGrid:
		out["texture"] = d.Grid.Texture
		out["columns"] = d.Grid.Columns
		out["rows"] = d.Grid.Rows
		out["tile_size"] = []int{d.Grid.TileSize.W, d.Grid.TileSize.H}
		if d.Grid.Padding != nil {
			out["padding"] = []int{d.Grid.Padding.W, d.Grid.Padding.H}
		}
	case KindPatch:
		out["texture"] = d.Patch.Texture
		out["width"] = d.Patch.Width
		out["height"] = d.Patch.Height
		positions := make([][]int, 0, len(d.Patch.Positions))
		for _, p := range d.Patch.Positions {
			positions = append(positions, []int{p.X, p.Y})
		}
		out["positions"] = positions
		if d.Patch.PositionsScript != "" {
			out["positions_script"] = d.Patch.PositionsScript
		}
	case KindFolder:
		out["path"] = d.Folder.Path
	default:
		return nil, fmt.Errorf("%w: no variant set", ErrInvalidDefinition)
	}
	return out, nil
}
