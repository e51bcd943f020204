package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/milk9111/spriteatlas/internal/ctxlog"
)

var ErrMissingDefinition = errors.New("atlas: missing definition")

// State is where a Loader is in building its atlases.
type State int

const (
	StateLoading State = iota
	StateProcessing
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status is reported once per completed load attempt.
type Status int

const (
	StatusCreated Status = iota + 1
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// CreatedAtlas is a built atlas as published to callers.
type CreatedAtlas struct {
	*Atlas
	Len int
}

// Textures maps typed keys to built atlases.
type Textures[K ~string] struct {
	atlases map[K]CreatedAtlas
}

func (t Textures[K]) Get(key K) (CreatedAtlas, bool) {
	a, ok := t.atlases[key]
	return a, ok
}

// MustGet panics if key has no atlas. A Loader only publishes Textures
// after every required key was built, so for required keys this cannot fail.
func (t Textures[K]) MustGet(key K) CreatedAtlas {
	a, ok := t.atlases[key]
	if !ok {
		panic(fmt.Sprintf("atlas: no atlas for key %q", string(key)))
	}
	return a
}

// Keys returns the keys in sorted order.
func (t Textures[K]) Keys() []K {
	keys := make([]K, 0, len(t.atlases))
	for k := range t.atlases {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (t Textures[K]) Len() int {
	return len(t.atlases)
}

// Loader turns a set of definitions into Textures for the keys K names.
// Update is meant to be called once per frame and never blocks on I/O.
type Loader[K ~string] struct {
	required []K
	src      Source

	defs     Definitions
	defsPath string

	concurrency int
	buildOpts   BuildOptions

	state    State
	err      error
	textures Textures[K]
	deps     map[string]struct{}

	mu      sync.Mutex
	pending *buildJob
}

type buildJob struct {
	cancel context.CancelFunc
	done   chan struct{}
	result map[string]*Atlas
	err    error
}

// LoaderOption configures a Loader.
type LoaderOption[K ~string] func(*Loader[K])

// FromDefinitions uses definitions given directly.
func FromDefinitions[K ~string](defs Definitions) LoaderOption[K] {
	return func(l *Loader[K]) {
		l.defs = defs
		l.defsPath = ""
	}
}

// FromFile reads definitions through the source. The file is re-read each
// time the loader returns to StateLoading.
func FromFile[K ~string](name string) LoaderOption[K] {
	return func(l *Loader[K]) {
		l.defsPath = name
		l.defs = nil
	}
}

// WithConcurrency bounds how many atlases build at once.
func WithConcurrency[K ~string](n int) LoaderOption[K] {
	return func(l *Loader[K]) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithPackOptions sets how folder atlases are packed.
func WithPackOptions[K ~string](opts PackOptions) LoaderOption[K] {
	return func(l *Loader[K]) {
		l.buildOpts.Pack = opts
	}
}

// WithScriptTimeout bounds each positions script run during a build.
func WithScriptTimeout[K ~string](d time.Duration) LoaderOption[K] {
	return func(l *Loader[K]) {
		l.buildOpts.ScriptTimeout = d
	}
}

func NewLoader[K ~string](required []K, src Source, opts ...LoaderOption[K]) *Loader[K] {
	l := &Loader[K]{
		required:    slices.Clone(required),
		src:         src,
		concurrency: runtime.NumCPU(),
		state:       StateLoading,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.defsPath != "" {
		l.buildOpts.Base = path.Dir(l.defsPath)
	}
	return l
}

func (l *Loader[K]) State() State { return l.state }

// Err is the reason for StateFailed.
func (l *Loader[K]) Err() error { return l.err }

// DefinitionsPath is the file the loader reads, or "" for direct definitions.
func (l *Loader[K]) DefinitionsPath() string { return l.defsPath }

// Textures returns the built atlases once the loader reached StateFinalizing.
func (l *Loader[K]) Textures() (Textures[K], bool) {
	if l.state != StateFinalizing && l.state != StateDone {
		return Textures[K]{}, false
	}
	return l.textures, true
}

// Update advances the loader by at most one state and returns the status
// to report, if this step produced one.
func (l *Loader[K]) Update(ctx context.Context) (Status, bool) {
	logger := ctxlog.FromContext(ctx)
	switch l.state {
	case StateLoading:
		defs, err := l.resolve()
		if err != nil {
			logger.Error("failed to load atlas definitions", "path", l.defsPath, "err", err)
			return l.fail(err)
		}
		if err := defs.Validate(); err != nil {
			logger.Error("invalid atlas definitions", "path", l.defsPath, "err", err)
			return l.fail(err)
		}
		missing := defs.Missing(keyStrings(l.required))
		for _, key := range missing {
			logger.Error("missing atlas definition for key", "key", key)
		}
		if len(missing) > 0 {
			return l.fail(fmt.Errorf("%w: %v", ErrMissingDefinition, missing))
		}
		logger.Debug("all atlas definitions present", "count", len(defs))
		l.start(ctx, defs)
		l.state = StateProcessing
	case StateProcessing:
		job := l.job()
		if job == nil {
			return l.fail(errors.New("atlas: no build in progress"))
		}
		select {
		case <-job.done:
		default:
			return 0, false
		}
		l.clearJob(job)
		if job.err != nil {
			logger.Error("failed to build atlases", "err", job.err)
			return l.fail(job.err)
		}
		atlases := make(map[K]CreatedAtlas, len(job.result))
		for name, a := range job.result {
			atlases[K(name)] = CreatedAtlas{Atlas: a, Len: a.Len()}
		}
		l.textures = Textures[K]{atlases: atlases}
		l.state = StateFinalizing
		logger.Info("atlases created for all keys", "count", len(atlases))
	case StateFinalizing:
		l.state = StateDone
		return StatusCreated, true
	}
	return 0, false
}

// Invalidate sends the loader back to StateLoading if name is the
// definitions file or any asset an atlas is built from. A build still in
// progress is cancelled. It reports whether the loader will rebuild.
func (l *Loader[K]) Invalidate(ctx context.Context, name string) bool {
	switch l.state {
	case StateProcessing, StateDone, StateFailed:
	default:
		return false
	}
	clean, err := CleanPath(name)
	if err != nil {
		return false
	}
	if !l.dependsOn(clean) {
		return false
	}
	logger := ctxlog.FromContext(ctx)
	if job := l.job(); job != nil {
		job.cancel()
		l.clearJob(job)
		logger.Warn("atlas build cancelled", "path", clean)
	}
	logger.Warn("atlas definitions changed, recreating atlases", "path", clean)
	l.state = StateLoading
	l.err = nil
	return true
}

// Reset discards any build in progress and starts over from StateLoading.
func (l *Loader[K]) Reset() {
	if job := l.job(); job != nil {
		job.cancel()
		l.clearJob(job)
	}
	l.state = StateLoading
	l.err = nil
}

// Close cancels a build in progress.
func (l *Loader[K]) Close() {
	if job := l.job(); job != nil {
		job.cancel()
		<-job.done
		l.clearJob(job)
	}
}

func (l *Loader[K]) dependsOn(clean string) bool {
	if l.defsPath != "" {
		if p, err := CleanPath(l.defsPath); err == nil && p == clean {
			return true
		}
	}
	for dep := range l.deps {
		if dep == clean || path.Dir(clean) == dep {
			return true
		}
	}
	return false
}

func (l *Loader[K]) resolve() (Definitions, error) {
	if l.defsPath == "" {
		if l.defs == nil {
			return Definitions{}, nil
		}
		return l.defs, nil
	}
	data, err := l.src.ReadFile(l.defsPath)
	if err != nil {
		return nil, fmt.Errorf("atlas: read %s: %w", l.defsPath, err)
	}
	return Parse(l.defsPath, data)
}

func (l *Loader[K]) fail(err error) (Status, bool) {
	l.state = StateFailed
	l.err = err
	l.textures = Textures[K]{}
	return StatusFailed, true
}

// start builds only the required keys; extra definitions are ignored.
func (l *Loader[K]) start(ctx context.Context, defs Definitions) {
	l.deps = make(map[string]struct{})
	for _, key := range l.required {
		for _, p := range defs[string(key)].Paths() {
			if clean, err := CleanPath(Resolve(l.buildOpts.Base, p)); err == nil {
				l.deps[clean] = struct{}{}
			}
		}
	}

	buildCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &buildJob{cancel: cancel, done: make(chan struct{}), result: make(map[string]*Atlas)}
	l.mu.Lock()
	l.pending = job
	l.mu.Unlock()

	required := keyStrings(l.required)
	go func() {
		defer close(job.done)
		defer cancel()

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(buildCtx)
		g.SetLimit(l.concurrency)
		for _, name := range required {
			def := defs[name]
			g.Go(func() error {
				a, err := Build(gctx, l.src, name, def, l.buildOpts)
				if err != nil {
					return err
				}
				mu.Lock()
				job.result[name] = a
				mu.Unlock()
				ctxlog.FromContext(ctx).Debug("atlas built", "atlas", name, slog.Int("regions", a.Len()))
				return nil
			})
		}
		job.err = g.Wait()
	}()
}

func (l *Loader[K]) job() *buildJob {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *Loader[K]) clearJob(job *buildJob) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == job {
		l.pending = nil
	}
}

func keyStrings[K ~string](keys []K) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
