package main

import (
	"context"
	"fmt"
	"image"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/milk9111/spriteatlas"
	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/ecs"
	"github.com/milk9111/spriteatlas/ecs/component"
	"github.com/milk9111/spriteatlas/ecs/system"
	"github.com/milk9111/spriteatlas/internal/ctxlog"
)

const (
	baseWidth  = 640
	baseHeight = 480
)

type atlasKey string

type GameConfig struct {
	Source    atlas.Source
	DefsPath  string
	Names     []atlasKey
	Changes   <-chan string
	WatchRoot string
	Scale     float64
	FPS       float64
	Clipboard bool
}

type Game struct {
	cfg    GameConfig
	world  *ecs.World
	render *system.RenderSystem
	ui     *ebitenui.UI
	loader *atlas.Loader[atlasKey]
	events ecs.EventReader[system.AtlasEvent[atlasKey]]

	sprite  ecs.Entity
	current int
	status  string
}

func NewGame(ctx context.Context, cfg GameConfig) *Game {
	w := ecs.NewWorld()
	w.SetContext(ctx)

	spriteatlas.Plugin[atlasKey]{Changes: cfg.Changes, WatchRoot: cfg.WatchRoot}.Build(w)
	loader := atlas.NewLoader(cfg.Names, cfg.Source, atlas.FromFile[atlasKey](cfg.DefsPath))
	spriteatlas.Load(w, loader)

	cam := w.CreateEntity()
	_ = ecs.Add(w, cam, component.CameraComponent, component.Camera{Zoom: 1})
	_ = ecs.Add(w, cam, component.TransformComponent, component.Transform{})

	sprite := w.CreateEntity()
	_ = ecs.Add(w, sprite, component.TransformComponent, component.Transform{X: 32, Y: 48, ScaleX: cfg.Scale, ScaleY: cfg.Scale})
	_ = ecs.Add(w, sprite, component.SpriteComponent, component.Sprite{})
	_ = ecs.Add(w, sprite, component.RenderLayerComponent, component.RenderLayer{Index: 1})
	if len(cfg.Names) > 0 {
		_ = ecs.Add(w, sprite, component.AtlasSpriteComponent, component.AtlasSprite{Atlas: string(cfg.Names[0])})
	}

	g := &Game{
		cfg:    cfg,
		world:  w,
		render: system.NewRenderSystem(),
		loader: loader,
		sprite: sprite,
		status: "loading",
	}
	g.ui = newPickerUI(cfg.Names, g.selectAtlas)
	return g
}

func (g *Game) Close() {
	g.loader.Close()
}

func (g *Game) Update() error {
	g.ui.Update()
	g.handleInput()
	g.world.Update()

	for _, evt := range g.events.Read(g.world) {
		if evt.Created() {
			g.status = "ready"
			g.selectAtlas(g.current)
		} else {
			g.status = fmt.Sprintf("failed: %v", evt.Err)
		}
	}
	return nil
}

func (g *Game) handleInput() {
	if !spriteatlas.AtlasesCreated[atlasKey](g.world) || len(g.cfg.Names) == 0 {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.selectAtlas((g.current + len(g.cfg.Names) - 1) % len(g.cfg.Names))
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.selectAtlas((g.current + 1) % len(g.cfg.Names))
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.step(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if anim, ok := ecs.Get(g.world, g.sprite, component.AtlasAnimationComponent); ok {
			anim.Playing = !anim.Playing
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyRect()
	}
}

func (g *Game) selectAtlas(i int) {
	textures, ok := spriteatlas.Textures[atlasKey](g.world)
	if !ok || i < 0 || i >= len(g.cfg.Names) {
		return
	}
	created, ok := textures.Get(g.cfg.Names[i])
	if !ok || created.Len == 0 {
		return
	}
	g.current = i
	_ = ecs.Add(g.world, g.sprite, component.AtlasSpriteComponent, component.AtlasSprite{Atlas: string(g.cfg.Names[i])})
	_ = ecs.Add(g.world, g.sprite, component.AtlasAnimationComponent, component.AtlasAnimation{
		First:   0,
		Last:    created.Len - 1,
		FPS:     g.cfg.FPS,
		Loop:    true,
		Playing: true,
	})
}

func (g *Game) step(delta int) {
	as, ok := ecs.Get(g.world, g.sprite, component.AtlasSpriteComponent)
	if !ok {
		return
	}
	if anim, ok := ecs.Get(g.world, g.sprite, component.AtlasAnimationComponent); ok {
		anim.Playing = false
		n := anim.Last - anim.First + 1
		as.Index = anim.First + ((as.Index-anim.First+delta)%n+n)%n
	}
}

func (g *Game) currentRegion() (atlas.Region, bool) {
	as, ok := ecs.Get(g.world, g.sprite, component.AtlasSpriteComponent)
	if !ok {
		return atlas.Region{}, false
	}
	textures, ok := spriteatlas.Textures[atlasKey](g.world)
	if !ok {
		return atlas.Region{}, false
	}
	created, ok := textures.Get(atlasKey(as.Atlas))
	if !ok || as.Index < 0 || as.Index >= created.Len {
		return atlas.Region{}, false
	}
	return created.Regions[as.Index], true
}

func (g *Game) copyRect() {
	region, ok := g.currentRegion()
	if !ok || !g.cfg.Clipboard {
		return
	}
	r := region.Rect
	text := fmt.Sprintf("[%d, %d, %d, %d]", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	clipboard.Write(clipboard.FmtText, []byte(text))
	ctxlog.FromContext(g.world.Context()).Info("copied region", "region", region.Name, "rect", text)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)

	line := fmt.Sprintf("%s  FPS: %.0f", g.status, ebiten.ActualFPS())
	if region, ok := g.currentRegion(); ok {
		line += fmt.Sprintf("\n%s %v", region.Name, rectString(region.Rect))
	}
	line += "\nup/down atlas  left/right frame  space play  c copy"
	ebitenutil.DebugPrint(screen, line)
	g.ui.Draw(screen)
}

func rectString(r image.Rectangle) string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
