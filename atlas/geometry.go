package atlas

import (
	"fmt"
	"image"
)

// GridRects enumerates the cells of a grid row by row. Cell i sits at
// column i%columns and row i/columns.
func GridRects(columns, rows int, tile, padding Size) []image.Rectangle {
	if columns <= 0 || rows <= 0 {
		return nil
	}
	rects := make([]image.Rectangle, 0, columns*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			x := (tile.W + padding.W) * c
			y := (tile.H + padding.H) * r
			rects = append(rects, image.Rect(x, y, x+tile.W, y+tile.H))
		}
	}
	return rects
}

// GridFits reports whether a columns x rows grid lies within size. It never
// multiplies the counts, so it is safe for arbitrarily large grids.
func GridFits(columns, rows int, tile, padding Size, size image.Point) bool {
	if columns <= 0 || rows <= 0 {
		return false
	}
	return axisFits(columns, tile.W, padding.W, size.X) && axisFits(rows, tile.H, padding.H, size.Y)
}

// axisFits reports whether (tile+pad)*(n-1)+tile <= limit.
func axisFits(n, tile, pad, limit int) bool {
	if tile <= 0 || pad < 0 || tile > limit {
		return false
	}
	if n == 1 {
		return true
	}
	if pad > limit-tile {
		return false
	}
	return n-1 <= (limit-tile)/(tile+pad)
}

// GridSize is the extent covered by a grid, excluding trailing padding.
func GridSize(columns, rows int, tile, padding Size) image.Point {
	if columns <= 0 || rows <= 0 {
		return image.Point{}
	}
	return image.Point{
		X: (tile.W+padding.W)*columns - padding.W,
		Y: (tile.H+padding.H)*rows - padding.H,
	}
}

// PatchRects returns one width x height region per position, in order.
func PatchRects(width, height int, positions []Point) []image.Rectangle {
	rects := make([]image.Rectangle, 0, len(positions))
	for _, p := range positions {
		rects = append(rects, image.Rect(p.X, p.Y, p.X+width, p.Y+height))
	}
	return rects
}

// CheckBounds reports the first region not contained in bounds.
func CheckBounds(bounds image.Rectangle, rects []image.Rectangle) error {
	for i, r := range rects {
		if r.Empty() || !r.In(bounds) {
			return fmt.Errorf("%w: region %d %v not inside %v", ErrOutOfBounds, i, r, bounds)
		}
	}
	return nil
}
