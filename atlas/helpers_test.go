package atlas

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func file(data []byte) *fstest.MapFile {
	return &fstest.MapFile{Data: data, ModTime: time.Now()}
}

// settle spins the loader until it stops changing state or a status is
// reported, and returns every reported status.
func settle[K ~string](t *testing.T, l *Loader[K]) []Status {
	t.Helper()
	ctx := context.Background()
	var statuses []Status
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := l.Update(ctx)
		if ok {
			statuses = append(statuses, status)
		}
		if l.State() == StateDone || l.State() == StateFailed {
			return statuses
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("loader stuck in state %s", l.State())
	return nil
}
