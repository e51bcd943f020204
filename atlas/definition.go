package atlas

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidDefinition = errors.New("atlas: invalid definition")
	ErrOutOfBounds       = errors.New("atlas: region out of texture bounds")
	ErrPackOverflow      = errors.New("atlas: images do not fit in atlas")
	ErrScript            = errors.New("atlas: positions script")
	ErrUnknownFormat     = errors.New("atlas: unknown definition format")
)

// Kind identifies which variant a Definition holds.
type Kind string

const (
	KindGrid   Kind = "grid"
	KindPatch  Kind = "patch"
	KindFolder Kind = "folder"
)

// Size is a width/height pair in pixels.
type Size struct {
	W int
	H int
}

// Point is a pixel position inside a texture.
type Point struct {
	X int
	Y int
}

// GridDefinition cuts a texture into Columns x Rows equally sized tiles.
type GridDefinition struct {
	Texture  string
	Columns  int
	Rows     int
	TileSize Size
	Padding  *Size
}

// PatchDefinition places equally sized regions at explicit positions.
// PositionsScript, when set, names a tengo script whose positions are
// appended after Positions.
type PatchDefinition struct {
	Texture         string
	Width           int
	Height          int
	Positions       []Point
	PositionsScript string
}

// FolderDefinition packs every image in a directory into one atlas.
type FolderDefinition struct {
	Path string
}

// Definition describes how one atlas is built. Exactly one variant is set.
type Definition struct {
	Grid   *GridDefinition
	Patch  *PatchDefinition
	Folder *FolderDefinition
}

func Grid(g GridDefinition) Definition { return Definition{Grid: &g} }

func Patch(p PatchDefinition) Definition { return Definition{Patch: &p} }

func Folder(f FolderDefinition) Definition { return Definition{Folder: &f} }

// Kind returns the variant kind, or "" if none or several are set.
func (d Definition) Kind() Kind {
	switch {
	case d.Grid != nil && d.Patch == nil && d.Folder == nil:
		return KindGrid
	case d.Patch != nil && d.Grid == nil && d.Folder == nil:
		return KindPatch
	case d.Folder != nil && d.Grid == nil && d.Patch == nil:
		return KindFolder
	}
	return ""
}

// Paths returns the asset paths the definition reads from.
func (d Definition) Paths() []string {
	switch d.Kind() {
	case KindGrid:
		return []string{d.Grid.Texture}
	case KindPatch:
		if d.Patch.PositionsScript != "" {
			return []string{d.Patch.Texture, d.Patch.PositionsScript}
		}
		return []string{d.Patch.Texture}
	case KindFolder:
		return []string{d.Folder.Path}
	}
	return nil
}

func (d Definition) Validate() error {
	switch d.Kind() {
	case KindGrid:
		g := d.Grid
		if strings.TrimSpace(g.Texture) == "" {
			return fmt.Errorf("%w: grid texture is empty", ErrInvalidDefinition)
		}
		if g.Columns <= 0 || g.Rows <= 0 {
			return fmt.Errorf("%w: grid needs positive columns and rows, got %dx%d", ErrInvalidDefinition, g.Columns, g.Rows)
		}
		if g.TileSize.W <= 0 || g.TileSize.H <= 0 {
			return fmt.Errorf("%w: grid tile size must be positive, got %dx%d", ErrInvalidDefinition, g.TileSize.W, g.TileSize.H)
		}
		if g.Padding != nil && (g.Padding.W < 0 || g.Padding.H < 0) {
			return fmt.Errorf("%w: grid padding must not be negative, got %dx%d", ErrInvalidDefinition, g.Padding.W, g.Padding.H)
		}
	case KindPatch:
		p := d.Patch
		if strings.TrimSpace(p.Texture) == "" {
			return fmt.Errorf("%w: patch texture is empty", ErrInvalidDefinition)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: patch size must be positive, got %dx%d", ErrInvalidDefinition, p.Width, p.Height)
		}
		if len(p.Positions) == 0 && strings.TrimSpace(p.PositionsScript) == "" {
			return fmt.Errorf("%w: patch has no positions", ErrInvalidDefinition)
		}
		for i, pos := range p.Positions {
			if pos.X < 0 || pos.Y < 0 {
				return fmt.Errorf("%w: patch position %d is negative (%d,%d)", ErrInvalidDefinition, i, pos.X, pos.Y)
			}
		}
	case KindFolder:
		if strings.TrimSpace(d.Folder.Path) == "" {
			return fmt.Errorf("%w: folder path is empty", ErrInvalidDefinition)
		}
	default:
		return fmt.Errorf("%w: exactly one of grid, patch or folder must be set", ErrInvalidDefinition)
	}
	return nil
}

// Definitions maps atlas names to their definitions.
type Definitions map[string]Definition

// Names returns the atlas names in sorted order.
func (defs Definitions) Names() []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Missing returns the required names that have no definition, in the order given.
func (defs Definitions) Missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := defs[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks every definition and joins the failures.
func (defs Definitions) Validate() error {
	var errs []error
	for _, name := range defs.Names() {
		if err := defs[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("atlas %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
