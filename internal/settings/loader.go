// Package settings loads the server's read-only configuration for display.
package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LoadFailed is shown when the configuration could not be fetched.
const LoadFailed = "Could not load settings from the server."

// Fetcher is the subset of the API client the loader needs.
type Fetcher interface {
	Settings(ctx context.Context) (map[string]any, error)
}

// View is what the settings panel renders.
type View struct {
	Config    map[string]any
	LoadError string
	Loading   bool
	Err       error
}

// Loaded reports whether a configuration is available.
func (v View) Loaded() bool { return v.Config != nil }

// Fetch is a started load, stamped with the generation it belongs to.
type Fetch struct {
	Gen uint64
}

// Result is the outcome of running a Fetch.
type Result struct {
	Gen    uint64
	Config map[string]any
	Err    error
}

// Loader is safe for concurrent use.
type Loader struct {
	mu      sync.Mutex
	view    View
	gen     uint64
	fetcher Fetcher
	log     *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// New returns a loader that has not fetched anything yet.
func New(fetcher Fetcher, opts ...Option) *Loader {
	ld := &Loader{fetcher: fetcher, log: zap.NewNop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Begin marks the view as loading. Any earlier fetch still in flight becomes
// stale.
func (ld *Loader) Begin() Fetch {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.gen++
	ld.view.Loading = true
	return Fetch{Gen: ld.gen}
}

// Run performs the request for f.
func (ld *Loader) Run(ctx context.Context, f Fetch) Result {
	start := time.Now()
	cfg, err := ld.fetcher.Settings(ctx)
	if err != nil {
		ld.log.Warn("settings fetch failed", zap.Uint64("gen", f.Gen), zap.Error(err))
		return Result{Gen: f.Gen, Err: err}
	}
	ld.log.Debug("settings fetched",
		zap.Uint64("gen", f.Gen),
		zap.Int("keys", len(cfg)),
		zap.Duration("duration", time.Since(start)),
	)
	return Result{Gen: f.Gen, Config: cfg}
}

// Complete applies r if it belongs to the latest fetch. It reports whether the
// view changed.
func (ld *Loader) Complete(r Result) bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if r.Gen != ld.gen {
		ld.log.Debug("stale settings result dropped", zap.Uint64("gen", r.Gen), zap.Uint64("latest", ld.gen))
		return false
	}
	if r.Err != nil {
		ld.view = View{LoadError: LoadFailed, Err: r.Err}
		return true
	}
	ld.view = View{Config: r.Config}
	return true
}

// Load runs a full fetch and returns the resulting view.
func (ld *Loader) Load(ctx context.Context) View {
	f := ld.Begin()
	ld.Complete(ld.Run(ctx, f))
	return ld.View()
}

// View returns the current view. The Config map is shared; callers must not
// modify it.
func (ld *Loader) View() View {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.view
}
