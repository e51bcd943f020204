package assets

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/spriteatlas/atlas"
)

type demo string

var demoKeys = []demo{"pacman", "ghosts", "scared", "coin"}

func load(t *testing.T, defsPath string) atlas.Textures[demo] {
	t.Helper()
	l := atlas.NewLoader(demoKeys, Source(), atlas.FromFile[demo](defsPath))
	defer l.Close()

	deadline := time.Now().Add(5 * time.Second)
	for l.State() != atlas.StateDone {
		if l.State() == atlas.StateFailed {
			t.Fatalf("load %s: %v", defsPath, l.Err())
		}
		if time.Now().After(deadline) {
			t.Fatalf("load %s stuck in %s", defsPath, l.State())
		}
		l.Update(context.Background())
		time.Sleep(time.Millisecond)
	}
	textures, ok := l.Textures()
	require.True(t, ok)
	return textures
}

func regionRects(a atlas.CreatedAtlas) []image.Rectangle {
	rects := make([]image.Rectangle, len(a.Regions))
	for i, r := range a.Regions {
		rects[i] = r.Rect
	}
	return rects
}

func TestDemoDefinitionsAgree(t *testing.T) {
	fromYAML := load(t, DefaultDefinitions)
	fromHCL := load(t, "sprite_sheets.hcl")

	for _, key := range demoKeys {
		y, h := fromYAML.MustGet(key), fromHCL.MustGet(key)
		if diff := cmp.Diff(regionRects(y), regionRects(h)); diff != "" {
			t.Errorf("atlas %s differs between yaml and hcl (-yaml +hcl):\n%s", key, diff)
		}
	}

	require.Equal(t, 9, fromYAML.MustGet("pacman").Len)
	require.Equal(t, 4, fromYAML.MustGet("ghosts").Len)
	require.Equal(t, 2, fromYAML.MustGet("scared").Len)

	coin := fromYAML.MustGet("coin")
	require.Equal(t, 4, coin.Len)
	i, ok := coin.Index("coin_2")
	require.True(t, ok)
	require.Equal(t, image.Point{X: 8, Y: 8}, coin.Regions[i].Rect.Size())
}

func TestLoadFile(t *testing.T) {
	data, err := LoadFile("assets/" + DefaultDefinitions)
	require.NoError(t, err)
	require.Contains(t, string(data), "pacman")
}
