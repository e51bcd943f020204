package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "defs"), 0o755))

	f, err := os.Create(filepath.Join(dir, "defs", "sheet.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 16, 8))))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs", "sheets.hcl"), []byte(`
atlas "tiles" {
  texture   = "sheet.png"
  columns   = 2
  rows      = 1
  tile_size = [8, 8]
}

atlas "bits" {
  texture   = "sheet.png"
  width     = 4
  height    = 4
  positions = [[0, 0], [12, 4]]
}
`), 0o644))
	return dir
}

func TestRunJSON(t *testing.T) {
	dir := writeAssets(t)
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{"-dir", dir, "-format", "json", "defs/sheets.hcl"})
	require.NoError(t, err, errOut.String())

	var reports []atlasReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 2)
	require.Equal(t, "bits", reports[0].Name)
	require.Equal(t, "patch", reports[0].Kind)
	require.Equal(t, regionReport{Index: 1, Name: "bits/1", X: 12, Y: 4, Width: 4, Height: 4}, reports[0].Regions[1])
	require.Equal(t, "tiles", reports[1].Name)
	require.Len(t, reports[1].Regions, 2)
}

func TestRunText(t *testing.T) {
	dir := writeAssets(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, &bytes.Buffer{}, []string{"-dir", dir, "defs/sheets.hcl"}))
	require.Contains(t, out.String(), "tiles")
	require.Contains(t, out.String(), "tiles/1")
	require.Contains(t, out.String(), "2 regions")
}

func TestRunCheck(t *testing.T) {
	dir := writeAssets(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, &bytes.Buffer{}, []string{"-dir", dir, "-check", "defs/sheets.hcl"}))
	require.Equal(t, "defs/sheets.hcl: 2 atlas definitions ok\n", out.String())
}

func TestRunErrors(t *testing.T) {
	dir := writeAssets(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("a:\n  texture: x.png\n"), 0o644))

	cases := []struct {
		name string
		args []string
	}{
		{"no_file", []string{"-dir", dir}},
		{"missing_file", []string{"-dir", dir, "nope.yaml"}},
		{"invalid_definition", []string{"-dir", dir, "bad.yaml"}},
		{"unknown_format", []string{"-dir", dir, "-format", "xml", "defs/sheets.hcl"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, c.args)
			require.Error(t, err)
		})
	}
}
