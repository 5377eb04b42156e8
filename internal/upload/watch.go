package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is uploaded.
const DefaultDebounce = 500 * time.Millisecond

// WatchEvent reports one file the watcher tried to upload.
type WatchEvent struct {
	Path    string
	Outcome Outcome
	Status  string
	Err     error
}

// Watcher uploads PDFs as they appear in a directory.
type Watcher struct {
	wf       *Workflow
	dir      string
	debounce time.Duration
	retry    time.Duration
	log      *zap.Logger
	notify   func(WatchEvent)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a file is uploaded.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// OnEvent registers fn to be called after every upload attempt. fn runs on the
// watcher goroutine.
func OnEvent(fn func(WatchEvent)) WatchOption {
	return func(w *Watcher) { w.notify = fn }
}

// NewWatcher returns a watcher for dir that submits through wf.
func NewWatcher(wf *Workflow, dir string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	w := &Watcher{
		wf:       wf,
		dir:      abs,
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
		notify:   func(WatchEvent) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.retry = w.debounce
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

type attempt struct {
	path string
	out  Outcome
	err  error
}

// Run watches until ctx is done. Files are uploaded one at a time in the order
// they settled; a file that finds the workflow busy goes back in the queue.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log.Info("watching folder", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	var (
		lastEvent = make(map[string]time.Time) // settling files
		queue     []string
		queued    = make(map[string]time.Time) // path -> earliest next try
		inflight  bool
		results   = make(chan attempt, 1)
	)

	interval := w.debounce / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if inflight {
				<-results
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsPDF(event.Name) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			lastEvent[event.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case res := <-results:
			inflight = false
			if errors.Is(res.err, ErrBusy) {
				w.log.Debug("workflow busy, requeueing", zap.String("path", res.path))
				if _, ok := queued[res.path]; !ok {
					queue = append(queue, res.path)
				}
				queued[res.path] = time.Now().Add(w.retry)
				continue
			}
			ev := WatchEvent{Path: res.path, Outcome: res.out, Err: res.err}
			if res.err == nil {
				ev.Status = w.wf.Status()
			} else {
				ev.Status = fmt.Sprintf("Skipped %s: %v", filepath.Base(res.path), res.err)
			}
			w.notify(ev)

		case now := <-ticker.C:
			for path, at := range lastEvent {
				if now.Sub(at) < w.debounce {
					continue
				}
				delete(lastEvent, path)
				if _, ok := queued[path]; !ok {
					queue = append(queue, path)
				}
				queued[path] = now
			}
		}

		if inflight || len(queue) == 0 {
			continue
		}
		next := queue[0]
		if _, settling := lastEvent[next]; settling || time.Now().Before(queued[next]) {
			// Rotate so one waiting file does not hold back the rest.
			queue = append(queue[1:], next)
			continue
		}
		queue = queue[1:]
		delete(queued, next)
		inflight = true
		go func(path string) {
			out, err := w.wf.UploadPath(ctx, path)
			results <- attempt{path: path, out: out, err: err}
		}(next)
	}
}
