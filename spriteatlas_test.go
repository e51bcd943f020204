package spriteatlas

import (
	"bytes"
	"image"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/ecs/render"
	"github.com/milk9111/spriteatlas/ecs/system"
)

type sheet string

const pacman sheet = "pacman"

func pacmanPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 57, 57))))
	return buf.Bytes()
}

func assets(t *testing.T) atlas.Source {
	return atlas.NewFSSource(fstest.MapFS{
		"Pac-Man.png": &fstest.MapFile{Data: pacmanPNG(t)},
		"sprite_sheets.atlasmap": &fstest.MapFile{Data: []byte(`
pacman:
  texture: Pac-Man.png
  columns: 3
  rows: 3
  tile_size: [19, 19]
`)},
	})
}

func newWorld() *ecs.World {
	w := ecs.NewWorld()
	Plugin[sheet]{
		Cache: render.NewTextureCache(func(image.Image) *ebiten.Image { return nil }),
	}.Build(w)
	return w
}

type failures struct {
	reader ecs.EventReader[system.AtlasEvent[sheet]]
	failed bool
}

func (f *failures) Update(w *ecs.World) {
	for _, evt := range f.reader.Read(w) {
		if evt.Failed() {
			f.failed = true
		}
	}
}

// spin updates the world at least 100 times, then until done holds.
func spin(w *ecs.World, done func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for i := 0; ; i++ {
		if i >= 100 && (done() || time.Now().After(deadline)) {
			return
		}
		w.Update()
		time.Sleep(time.Millisecond)
	}
}

func TestPluginAloneIsHarmless(t *testing.T) {
	w := newWorld()
	spin(w, func() bool { return true })

	require.False(t, AtlasesCreated[sheet](w))
	require.False(t, AtlasesFailed[sheet](w))
	_, ok := Textures[sheet](w)
	require.False(t, ok)
}

func TestDefinitionCanBeSpecifiedManually(t *testing.T) {
	w := newWorld()
	Load(w, atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromDefinitions[sheet](atlas.Definitions{
		"pacman": atlas.Grid(atlas.GridDefinition{
			Texture:  "Pac-Man.png",
			Columns:  3,
			Rows:     3,
			TileSize: atlas.Size{W: 19, H: 19},
		}),
	})))
	spin(w, func() bool { return AtlasesCreated[sheet](w) })

	require.True(t, AtlasesCreated[sheet](w))
	textures, ok := Textures[sheet](w)
	require.True(t, ok)
	require.Equal(t, 9, textures.MustGet(pacman).Len)
}

func TestUndefinedEntriesCauseFailure(t *testing.T) {
	w := newWorld()
	events := &failures{}
	w.AddSystem(events)
	Load(w, atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromDefinitions[sheet](atlas.Definitions{})))
	spin(w, func() bool { return events.failed })

	require.True(t, events.failed)
	require.True(t, AtlasesFailed[sheet](w))
	_, ok := Textures[sheet](w)
	require.False(t, ok)
}

func TestUnloadablePathsCauseFailure(t *testing.T) {
	w := newWorld()
	events := &failures{}
	w.AddSystem(events)
	loader := atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromDefinitions[sheet](atlas.Definitions{
		"pacman": atlas.Grid(atlas.GridDefinition{
			Texture:  "invalid-path.png",
			Columns:  3,
			Rows:     3,
			TileSize: atlas.Size{W: 19, H: 19},
		}),
	}))
	Load(w, loader)
	spin(w, func() bool { return events.failed })

	require.True(t, events.failed)
	require.ErrorIs(t, loader.Err(), fs.ErrNotExist)
	_, ok := Textures[sheet](w)
	require.False(t, ok)
}

func TestDefinitionLoadedFromFile(t *testing.T) {
	w := newWorld()
	Load(w, atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromFile[sheet]("sprite_sheets.atlasmap")))
	spin(w, func() bool { return AtlasesCreated[sheet](w) })

	textures, ok := Textures[sheet](w)
	require.True(t, ok)
	created := textures.MustGet(pacman)
	r, _ := created.Rect(4)
	require.Equal(t, image.Rect(19, 19, 38, 38), r)
}

func TestLoadReplacesPreviousLoader(t *testing.T) {
	w := newWorld()
	Load(w, atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromFile[sheet]("sprite_sheets.atlasmap")))
	spin(w, func() bool { return AtlasesCreated[sheet](w) })

	Load(w, atlas.NewLoader([]sheet{pacman}, assets(t), atlas.FromDefinitions[sheet](atlas.Definitions{})))
	_, ok := Textures[sheet](w)
	require.False(t, ok, "textures from the old loader are withdrawn")
	spin(w, func() bool { return AtlasesFailed[sheet](w) })
	require.True(t, AtlasesFailed[sheet](w))
}
