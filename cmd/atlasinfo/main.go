package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/spriteatlas/atlas"
	"github.com/milk9111/spriteatlas/internal/ctxlog"
	"github.com/milk9111/spriteatlas/internal/logging"
)

type regionReport struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"w" yaml:"w"`
	Height int    `json:"h" yaml:"h"`
}

type atlasReport struct {
	Name    string         `json:"name" yaml:"name"`
	Kind    string         `json:"kind" yaml:"kind"`
	Width   int            `json:"width" yaml:"width"`
	Height  int            `json:"height" yaml:"height"`
	Regions []regionReport `json:"regions" yaml:"regions"`
}

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	flags := flag.NewFlagSet("atlasinfo", flag.ContinueOnError)
	flags.SetOutput(errW)
	dir := flags.String("dir", ".", "asset root the definition and textures are read from")
	format := flags.String("format", "text", "output format: text, yaml or json")
	check := flags.Bool("check", false, "only parse and validate the definitions")
	logLevel := flags.String("log-level", "warn", "log level: debug, info, warn, error")
	logFormat := flags.String("log-format", "text", "log format: text or json")
	flags.Usage = func() {
		fmt.Fprintln(errW, "usage: atlasinfo [flags] <definitions file>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("atlasinfo: exactly one definitions file is required")
	}
	defsPath := flags.Arg(0)

	logger := logging.New(*logLevel, *logFormat, errW)
	ctx = ctxlog.WithLogger(ctx, logger)

	src := atlas.NewDirSource(*dir)
	data, err := src.ReadFile(defsPath)
	if err != nil {
		return fmt.Errorf("atlasinfo: %w", err)
	}
	defs, err := atlas.Parse(defsPath, data)
	if err != nil {
		return err
	}
	if err := defs.Validate(); err != nil {
		return err
	}
	if *check {
		logger.Info("definitions valid", "path", defsPath, "count", len(defs))
		fmt.Fprintf(outW, "%s: %d atlas definitions ok\n", defsPath, len(defs))
		return nil
	}

	opts := atlas.BuildOptions{Base: path.Dir(defsPath)}
	reports := make([]atlasReport, 0, len(defs))
	for _, name := range defs.Names() {
		a, err := atlas.Build(ctx, src, name, defs[name], opts)
		if err != nil {
			return err
		}
		logger.Debug("atlas built", "atlas", name, slog.Int("regions", a.Len()))
		reports = append(reports, reportOf(a))
	}
	return write(outW, *format, reports)
}

func reportOf(a *atlas.Atlas) atlasReport {
	r := atlasReport{Name: a.Name, Kind: string(a.Kind), Width: a.Size.X, Height: a.Size.Y}
	for i, region := range a.Regions {
		r.Regions = append(r.Regions, regionReport{
			Index:  i,
			Name:   region.Name,
			X:      region.Rect.Min.X,
			Y:      region.Rect.Min.Y,
			Width:  region.Rect.Dx(),
			Height: region.Rect.Dy(),
		})
	}
	return r
}

func write(outW io.Writer, format string, reports []atlasReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(outW)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(outW)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(outW, 0, 4, 2, ' ', 0)
		for _, r := range reports {
			fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d regions\n", r.Name, r.Kind, r.Width, r.Height, len(r.Regions))
			for _, region := range r.Regions {
				fmt.Fprintf(tw, "  %d\t%s\t%d,%d\t%dx%d\n", region.Index, region.Name, region.X, region.Y, region.Width, region.Height)
			}
		}
		return tw.Flush()
	}
	return fmt.Errorf("atlasinfo: unknown format %q", format)
}
