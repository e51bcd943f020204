package atlas

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGridRects(t *testing.T) {
	cases := []struct {
		name    string
		columns int
		rows    int
		tile    Size
		padding Size
		want    []image.Rectangle
	}{
		{
			name:    "two_by_two",
			columns: 2,
			rows:    2,
			tile:    Size{W: 16, H: 8},
			want: []image.Rectangle{
				image.Rect(0, 0, 16, 8),
				image.Rect(16, 0, 32, 8),
				image.Rect(0, 8, 16, 16),
				image.Rect(16, 8, 32, 16),
			},
		},
		{
			name:    "padded_row",
			columns: 3,
			rows:    1,
			tile:    Size{W: 10, H: 10},
			padding: Size{W: 2, H: 5},
			want: []image.Rectangle{
				image.Rect(0, 0, 10, 10),
				image.Rect(12, 0, 22, 10),
				image.Rect(24, 0, 34, 10),
			},
		},
		{
			name:    "padded_column",
			columns: 1,
			rows:    2,
			tile:    Size{W: 4, H: 4},
			padding: Size{W: 1, H: 1},
			want: []image.Rectangle{
				image.Rect(0, 0, 4, 4),
				image.Rect(0, 5, 4, 9),
			},
		},
		{name: "no_columns", columns: 0, rows: 3, tile: Size{W: 4, H: 4}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GridRects(c.columns, c.rows, c.tile, c.padding)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("GridRects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGridRectsCountAndOrder(t *testing.T) {
	const columns, rows = 8, 4
	tile := Size{W: 20, H: 20}
	rects := GridRects(columns, rows, tile, Size{})
	if len(rects) != columns*rows {
		t.Fatalf("expected %d rects, got %d", columns*rows, len(rects))
	}
	for i, r := range rects {
		col, row := i%columns, i/columns
		want := image.Rect(col*20, row*20, col*20+20, row*20+20)
		if r != want {
			t.Fatalf("rect %d: want %v, got %v", i, want, r)
		}
	}
}

func TestGridSize(t *testing.T) {
	got := GridSize(3, 2, Size{W: 10, H: 8}, Size{W: 2, H: 1})
	want := image.Point{X: 34, Y: 17}
	if got != want {
		t.Fatalf("want %v, got %v", want, got)
	}
	rects := GridRects(3, 2, Size{W: 10, H: 8}, Size{W: 2, H: 1})
	if rects[len(rects)-1].Max != want {
		t.Fatalf("last rect should end at the grid extent, got %v", rects[len(rects)-1])
	}
}

func TestGridFits(t *testing.T) {
	size := image.Point{X: 34, Y: 17}
	cases := []struct {
		name          string
		columns, rows int
		tile, padding Size
		want          bool
	}{
		{"exact", 3, 2, Size{W: 10, H: 8}, Size{W: 2, H: 1}, true},
		{"one_column_too_many", 4, 2, Size{W: 10, H: 8}, Size{W: 2, H: 1}, false},
		{"single_cell", 1, 1, Size{W: 34, H: 17}, Size{W: 1000, H: 1000}, true},
		{"tile_too_big", 1, 1, Size{W: 35, H: 17}, Size{}, false},
		{"huge_padding", 2, 1, Size{W: 1, H: 1}, Size{W: 1 << 62, H: 0}, false},
		{"huge_counts", 1 << 40, 1 << 40, Size{W: 1, H: 1}, Size{}, false},
		{"zero_columns", 0, 1, Size{W: 1, H: 1}, Size{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GridFits(c.columns, c.rows, c.tile, c.padding, size)
			if got != c.want {
				t.Fatalf("GridFits(%d, %d) = %v, want %v", c.columns, c.rows, got, c.want)
			}
			if got && !GridSize(c.columns, c.rows, c.tile, c.padding).In(image.Rectangle{Max: size.Add(image.Pt(1, 1))}) {
				t.Fatalf("grid extent %v exceeds %v", GridSize(c.columns, c.rows, c.tile, c.padding), size)
			}
		})
	}
}

func TestPatchRects(t *testing.T) {
	got := PatchRects(19, 19, []Point{{X: 65, Y: 86}, {X: 86, Y: 86}, {X: 107, Y: 86}})
	want := []image.Rectangle{
		image.Rect(65, 86, 84, 105),
		image.Rect(86, 86, 105, 105),
		image.Rect(107, 86, 126, 105),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PatchRects mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 32, 32)
	cases := []struct {
		name  string
		rects []image.Rectangle
		ok    bool
	}{
		{"inside", []image.Rectangle{image.Rect(0, 0, 32, 32)}, true},
		{"overflow_x", []image.Rectangle{image.Rect(16, 0, 33, 16)}, false},
		{"negative", []image.Rectangle{image.Rect(-1, 0, 4, 4)}, false},
		{"empty", []image.Rectangle{image.Rect(4, 4, 4, 8)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := CheckBounds(bounds, c.rects)
			if c.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.ok && !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("expected ErrOutOfBounds, got %v", err)
			}
		})
	}
}
