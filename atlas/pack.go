package atlas

import (
	"fmt"
	"image"
	"sort"
)

const (
	DefaultPackInitialSize = 256
	DefaultPackMaxSize     = 2048
)

// PackOptions controls the shelf packer used for folder atlases.
type PackOptions struct {
	InitialSize int
	MaxSize     int
	Padding     int
}

func (o PackOptions) withDefaults() PackOptions {
	if o.InitialSize <= 0 {
		o.InitialSize = DefaultPackInitialSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultPackMaxSize
	}
	if o.InitialSize > o.MaxSize {
		o.InitialSize = o.MaxSize
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// Pack places sizes onto shelves inside the smallest power-of-two width
// (starting at InitialSize, capped at MaxSize) that holds them all. The
// returned rects are in input order and the extent is the area they cover.
func Pack(sizes []image.Point, opts PackOptions) (image.Point, []image.Rectangle, error) {
	opts = opts.withDefaults()
	if len(sizes) == 0 {
		return image.Point{}, nil, nil
	}
	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return image.Point{}, nil, fmt.Errorf("%w: image %d has empty size %v", ErrInvalidDefinition, i, s)
		}
		if s.X > opts.MaxSize || s.Y > opts.MaxSize {
			return image.Point{}, nil, fmt.Errorf("%w: image %d (%dx%d) exceeds max size %d", ErrPackOverflow, i, s.X, s.Y, opts.MaxSize)
		}
	}

	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]].Y > sizes[order[b]].Y
	})

	for width := opts.InitialSize; ; width *= 2 {
		if width > opts.MaxSize {
			width = opts.MaxSize
		}
		extent, rects, ok := packShelves(sizes, order, width, opts.MaxSize, opts.Padding)
		if ok {
			return extent, rects, nil
		}
		if width == opts.MaxSize {
			break
		}
	}
	return image.Point{}, nil, fmt.Errorf("%w: %d images at max size %d", ErrPackOverflow, len(sizes), opts.MaxSize)
}

func packShelves(sizes []image.Point, order []int, width, maxHeight, padding int) (image.Point, []image.Rectangle, bool) {
	rects := make([]image.Rectangle, len(sizes))
	x, y, shelfH := 0, 0, 0
	usedW := 0
	for _, idx := range order {
		s := sizes[idx]
		if s.X > width {
			return image.Point{}, nil, false
		}
		if x > 0 && x+s.X > width {
			y += shelfH + padding
			x, shelfH = 0, 0
		}
		if y+s.Y > maxHeight {
			return image.Point{}, nil, false
		}
		rects[idx] = image.Rect(x, y, x+s.X, y+s.Y)
		usedW = max(usedW, x+s.X)
		shelfH = max(shelfH, s.Y)
		x += s.X + padding
	}
	return image.Point{X: usedW, Y: y + shelfH}, rects, true
}
