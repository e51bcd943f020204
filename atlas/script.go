package atlas

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// DefaultScriptTimeout bounds a positions script when the caller's context
// has no deadline.
const DefaultScriptTimeout = 2 * time.Second

// scriptMaxAllocs caps the objects a positions script may allocate.
const scriptMaxAllocs = 1 << 16

// ScriptEnv is the set of globals a positions script can read.
type ScriptEnv struct {
	Width         int
	Height        int
	TextureWidth  int
	TextureHeight int
}

// EvalPositions runs a tengo script that must assign `positions`, an array
// of [x, y] arrays. Example:
//
//	positions := []
//	for i := 0; i < texture_width / width; i++ {
//		positions = append(positions, [i * width, 0])
//	}
//
// A script that runs past the context deadline, or DefaultScriptTimeout if
// there is none, is aborted.
func EvalPositions(ctx context.Context, src []byte, env ScriptEnv) ([]Point, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultScriptTimeout)
		defer cancel()
	}
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "text", "enum"))
	script.SetMaxAllocs(scriptMaxAllocs)
	for name, v := range map[string]int{
		"width":          env.Width,
		"height":         env.Height,
		"texture_width":  env.TextureWidth,
		"texture_height": env.TextureHeight,
	} {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("%w: add %s: %w", ErrScript, name, err)
		}
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if !compiled.IsDefined("positions") {
		return nil, fmt.Errorf("%w: script does not define positions", ErrScript)
	}

	raw, ok := compiled.Get("positions").Value().([]any)
	if !ok {
		return nil, fmt.Errorf("%w: positions must be an array", ErrScript)
	}
	out := make([]Point, 0, len(raw))
	for i, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: positions[%d] must be [x, y]", ErrScript, i)
		}
		x, okX := pair[0].(int64)
		y, okY := pair[1].(int64)
		if !okX || !okY {
			return nil, fmt.Errorf("%w: positions[%d] must hold integers", ErrScript, i)
		}
		out = append(out, Point{X: int(x), Y: int(y)})
	}
	return out, nil
}
