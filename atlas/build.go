package atlas

import (
	"context"
	"fmt"
	"image"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

// Region is one named sub-rectangle of an atlas texture.
type Region struct {
	Name string
	Rect image.Rectangle
}

// Atlas is a built texture plus its regions, indexed in definition order.
type Atlas struct {
	Name    string
	Kind    Kind
	Texture image.Image
	Size    image.Point
	Regions []Region
}

func (a *Atlas) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Regions)
}

// Rect returns the rectangle of region i.
func (a *Atlas) Rect(i int) (image.Rectangle, bool) {
	if a == nil || i < 0 || i >= len(a.Regions) {
		return image.Rectangle{}, false
	}
	return a.Regions[i].Rect, true
}

// Index finds a region by name.
func (a *Atlas) Index(name string) (int, bool) {
	if a == nil {
		return 0, false
	}
	for i, r := range a.Regions {
		if r.Name == name {
			return i, true
		}
	}
	return 0, false
}

// BuildOptions tune Build. The zero value is usable.
type BuildOptions struct {
	// Base is the directory definition-relative paths resolve against.
	Base string
	Pack PackOptions
	// ScriptTimeout bounds each positions script. Zero means
	// DefaultScriptTimeout.
	ScriptTimeout time.Duration
}

// Build loads the textures a definition refers to and computes its regions.
func Build(ctx context.Context, src Source, name string, def Definition, opts BuildOptions) (*Atlas, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("atlas %q: %w", name, err)
	}
	var (
		a   *Atlas
		err error
	)
	switch def.Kind() {
	case KindGrid:
		a, err = buildGrid(src, name, def.Grid, opts)
	case KindPatch:
		a, err = buildPatch(ctx, src, name, def.Patch, opts)
	case KindFolder:
		a, err = buildFolder(ctx, src, name, def.Folder, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("atlas %q: %w", name, err)
	}
	return a, nil
}

// Resolve joins a definition-relative path onto base.
func Resolve(base, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if base == "" || base == "." || strings.HasPrefix(p, "/") {
		return p
	}
	return path.Join(base, p)
}

func buildGrid(src Source, name string, g *GridDefinition, opts BuildOptions) (*Atlas, error) {
	tex, err := LoadImage(src, Resolve(opts.Base, g.Texture))
	if err != nil {
		return nil, err
	}
	var padding Size
	if g.Padding != nil {
		padding = *g.Padding
	}
	size := tex.Bounds().Size()
	if !GridFits(g.Columns, g.Rows, g.TileSize, padding, size) {
		return nil, fmt.Errorf("%w: %dx%d grid of %dx%d tiles does not fit %v texture",
			ErrOutOfBounds, g.Columns, g.Rows, g.TileSize.W, g.TileSize.H, size)
	}
	rects := GridRects(g.Columns, g.Rows, g.TileSize, padding)
	return newSingleTextureAtlas(name, KindGrid, tex, rects)
}

func buildPatch(ctx context.Context, src Source, name string, p *PatchDefinition, opts BuildOptions) (*Atlas, error) {
	tex, err := LoadImage(src, Resolve(opts.Base, p.Texture))
	if err != nil {
		return nil, err
	}
	positions := append([]Point(nil), p.Positions...)
	if p.PositionsScript != "" {
		code, err := src.ReadFile(Resolve(opts.Base, p.PositionsScript))
		if err != nil {
			return nil, fmt.Errorf("atlas: read script %s: %w", p.PositionsScript, err)
		}
		timeout := opts.ScriptTimeout
		if timeout <= 0 {
			timeout = DefaultScriptTimeout
		}
		sctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		size := tex.Bounds().Size()
		extra, err := EvalPositions(sctx, code, ScriptEnv{
			Width:         p.Width,
			Height:        p.Height,
			TextureWidth:  size.X,
			TextureHeight: size.Y,
		})
		if err != nil {
			return nil, err
		}
		positions = append(positions, extra...)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: patch has no positions", ErrInvalidDefinition)
	}
	rects := PatchRects(p.Width, p.Height, positions)
	return newSingleTextureAtlas(name, KindPatch, tex, rects)
}

func newSingleTextureAtlas(name string, kind Kind, tex image.Image, rects []image.Rectangle) (*Atlas, error) {
	size := tex.Bounds().Size()
	if err := CheckBounds(image.Rectangle{Max: size}, rects); err != nil {
		return nil, err
	}
	a := &Atlas{Name: name, Kind: kind, Texture: tex, Size: size, Regions: make([]Region, len(rects))}
	for i, r := range rects {
		a.Regions[i] = Region{Name: name + "/" + strconv.Itoa(i), Rect: r}
	}
	return a, nil
}

func buildFolder(ctx context.Context, src Source, name string, f *FolderDefinition, opts BuildOptions) (*Atlas, error) {
	dir := Resolve(opts.Base, f.Path)
	entries, err := src.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("atlas: read folder %s: %w", f.Path, err)
	}

	// ReadDir returns entries sorted by file name.
	var (
		names  []string
		images []image.Image
		sizes  []image.Point
	)
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := LoadImage(src, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		images = append(images, img)
		sizes = append(sizes, img.Bounds().Size())
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: folder %s has no images", ErrInvalidDefinition, f.Path)
	}

	extent, rects, err := Pack(sizes, opts.Pack)
	if err != nil {
		return nil, err
	}
	tex := image.NewRGBA(image.Rectangle{Max: extent})
	a := &Atlas{Name: name, Kind: KindFolder, Texture: tex, Size: extent, Regions: make([]Region, len(rects))}
	for i, r := range rects {
		draw.Draw(tex, r, images[i], images[i].Bounds().Min, draw.Src)
		a.Regions[i] = Region{Name: names[i], Rect: r}
	}
	return a, nil
}
