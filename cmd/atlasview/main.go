package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/spriteatlas/assets"
	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/internal/ctxlog"
	"github.com/milk9111/spriteatlas/internal/logging"
	"github.com/milk9111/spriteatlas/watch"
)

func main() {
	dir := flag.String("dir", "", "asset root; empty uses the embedded demo assets")
	defsPath := flag.String("defs", assets.DefaultDefinitions, "definitions file, relative to -dir")
	only := flag.String("atlas", "", "only load this atlas")
	watchFiles := flag.Bool("watch", true, "rebuild atlases when files under -dir change")
	scale := flag.Float64("scale", 4, "sprite scale")
	fps := flag.Float64("fps", 8, "animation frames per second")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logLevel, "text", os.Stderr)
	slog.SetDefault(logger)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	src := assets.Source()
	if *dir != "" {
		src = atlas.NewDirSource(*dir)
	}
	names, err := atlasNames(src, *defsPath, *only)
	if err != nil {
		logger.Error("failed to read definitions", "path", *defsPath, "err", err)
		os.Exit(1)
	}

	root := src.Root()
	if abs, err := filepath.Abs(root); err == nil && root != "" {
		root = abs
	}

	var changes <-chan string
	if *watchFiles && root != "" {
		w, err := watch.NewWatcher(root)
		if err != nil {
			logger.Warn("hot reload disabled", "err", err)
		} else {
			defer w.Close()
			changes = w.Events
			go func() {
				for err := range w.Errors {
					logger.Warn("watcher error", "err", err)
				}
			}()
		}
	}

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", "err", err)
		clipboardOK = false
	}

	game := NewGame(ctx, GameConfig{
		Source:    src,
		DefsPath:  *defsPath,
		Names:     names,
		Changes:   changes,
		WatchRoot: root,
		Scale:     *scale,
		FPS:       *fps,
		Clipboard: clipboardOK,
	})
	defer game.Close()

	ebiten.SetWindowSize(640, 480)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("atlasview - " + *defsPath)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", "err", err)
		os.Exit(1)
	}
}

// atlasNames lists the atlases to require: only, if set, else every name
// in the definitions file.
func atlasNames(src atlas.Source, defsPath, only string) ([]atlasKey, error) {
	if only != "" {
		return []atlasKey{atlasKey(only)}, nil
	}
	data, err := src.ReadFile(defsPath)
	if err != nil {
		return nil, err
	}
	defs, err := atlas.Parse(defsPath, data)
	if err != nil {
		return nil, err
	}
	names := defs.Names()
	keys := make([]atlasKey, len(names))
	for i, n := range names {
		keys[i] = atlasKey(n)
	}
	return keys, nil
}
