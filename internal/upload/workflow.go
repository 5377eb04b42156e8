// Package upload manages document submission and re-indexing. Upload and
// ingest share one request slot, so at most one of them runs at a time.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wakili-cli/internal/api"
	"wakili-cli/internal/slot"
)

// Backend is the subset of the API client the workflow needs.
type Backend interface {
	Upload(ctx context.Context, name string, r io.Reader) (*api.UploadResult, error)
	Ingest(ctx context.Context) (*api.IngestResult, error)
}

// Status texts shown after a job finishes.
const (
	StatusUnreachable  = "Could not reach the server. Is the backend running?"
	StatusUploadFailed = "Upload failed."
	StatusIngestFailed = "Ingest failed."
)

// JobKind distinguishes the two operations sharing the slot.
type JobKind int

const (
	JobUpload JobKind = iota
	JobIngest
)

func (k JobKind) String() string {
	if k == JobIngest {
		return "ingest"
	}
	return "upload"
}

// Job is an accepted upload or ingest that has not completed yet.
type Job struct {
	ID   string
	Kind JobKind
	File *File

	ticket *slot.Ticket
	done   atomic.Bool
}

// Outcome is the result of running a job.
type Outcome struct {
	File   string
	Chunks int
	Err    error
}

// State is a snapshot of the workflow for rendering.
type State struct {
	Selected *File
	Status   string
	Busy     bool
	Running  JobKind
}

// Workflow is safe for concurrent use.
type Workflow struct {
	mu       sync.Mutex
	selected *File
	status   string
	running  JobKind

	slot    *slot.Slot
	backend Backend
	log     *zap.Logger
	open    func(path string) (io.ReadCloser, error)
	inspect func(path string) (int, error)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.log = l
		}
	}
}

// WithPageCounter overrides PDF page counting.
func WithPageCounter(fn func(path string) (int, error)) Option {
	return func(w *Workflow) {
		if fn != nil {
			w.inspect = fn
		}
	}
}

// New returns an idle workflow with nothing selected.
func New(backend Backend, opts ...Option) *Workflow {
	w := &Workflow{
		slot:    slot.New(),
		backend: backend,
		log:     zap.NewNop(),
		open:    func(path string) (io.ReadCloser, error) { return os.Open(path) },
		inspect: CountPages,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Select validates path and makes it the file the next upload sends.
func (w *Workflow) Select(path string) (*File, error) {
	f, err := inspectFile(path, w.inspect)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.selected = f
	w.mu.Unlock()
	w.log.Debug("file selected", zap.String("path", f.Path), zap.Int64("size", f.Size), zap.Int("pages", f.Pages))
	return f, nil
}

// ClearSelection drops the selected file.
func (w *Workflow) ClearSelection() {
	w.mu.Lock()
	w.selected = nil
	w.mu.Unlock()
}

// BeginUpload claims the slot for the selected file. It is a no-op, leaving
// status untouched, when nothing is selected or another job is running.
func (w *Workflow) BeginUpload() (*Job, bool) {
	w.mu.Lock()
	file := w.selected
	w.mu.Unlock()
	if file == nil {
		return nil, false
	}
	return w.begin(JobUpload, file)
}

// BeginIngest claims the slot for a re-index of the default document.
func (w *Workflow) BeginIngest() (*Job, bool) {
	return w.begin(JobIngest, nil)
}

func (w *Workflow) begin(kind JobKind, file *File) (*Job, bool) {
	ticket, ok := w.slot.TryAcquire()
	if !ok {
		w.log.Debug("job ignored, workflow busy", zap.Stringer("kind", kind))
		return nil, false
	}
	job := &Job{ID: uuid.NewString(), Kind: kind, File: file, ticket: ticket}
	w.mu.Lock()
	w.status = ""
	w.running = kind
	w.mu.Unlock()
	w.log.Debug("job started", zap.String("job", job.ID), zap.Stringer("kind", kind))
	return job, true
}

// Run performs the network call for job.
func (w *Workflow) Run(ctx context.Context, job *Job) Outcome {
	start := time.Now()
	var out Outcome
	switch job.Kind {
	case JobIngest:
		res, err := w.backend.Ingest(ctx)
		if err != nil {
			out.Err = err
			break
		}
		out.Chunks = res.Chunks
	default:
		out = w.runUpload(ctx, job.File)
	}

	fields := []zap.Field{
		zap.String("job", job.ID),
		zap.Stringer("kind", job.Kind),
		zap.Duration("duration", time.Since(start)),
	}
	if out.Err != nil {
		w.log.Warn("job failed", append(fields, zap.Error(out.Err))...)
	} else {
		w.log.Info("job completed", append(fields, zap.Int("chunks", out.Chunks))...)
	}
	return out
}

func (w *Workflow) runUpload(ctx context.Context, file *File) Outcome {
	rc, err := w.open(file.Path)
	if err != nil {
		return Outcome{Err: fmt.Errorf("open %s: %w", file.Name, err)}
	}
	defer rc.Close()
	res, err := w.backend.Upload(ctx, file.Name, rc)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{File: res.File, Chunks: res.Chunks}
}

// Complete records the status for job and frees the slot. Only the first call
// per job has an effect. It returns the new status.
func (w *Workflow) Complete(job *Job, out Outcome) (string, bool) {
	if job == nil || !job.done.CompareAndSwap(false, true) {
		return "", false
	}
	defer job.ticket.Release()

	status := statusFor(job.Kind, out)
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
	return status, true
}

// Upload runs a full upload of the selected file. The bool is false when the
// call was ignored.
func (w *Workflow) Upload(ctx context.Context) (Outcome, bool) {
	job, ok := w.BeginUpload()
	if !ok {
		return Outcome{}, false
	}
	out := w.Run(ctx, job)
	w.Complete(job, out)
	return out, true
}

// Ingest runs a full re-index.
func (w *Workflow) Ingest(ctx context.Context) (Outcome, bool) {
	job, ok := w.BeginIngest()
	if !ok {
		return Outcome{}, false
	}
	out := w.Run(ctx, job)
	w.Complete(job, out)
	return out, true
}

// ErrBusy is returned by UploadPath when another job holds the slot.
var ErrBusy = errors.New("another upload or ingest is in progress")

// UploadPath uploads path in one step. The selection is left alone, so a
// file the user picked is still the one the next Upload sends.
func (w *Workflow) UploadPath(ctx context.Context, path string) (Outcome, error) {
	if w.slot.Busy() {
		return Outcome{}, ErrBusy
	}
	f, err := inspectFile(path, w.inspect)
	if err != nil {
		return Outcome{}, err
	}
	job, ok := w.begin(JobUpload, f)
	if !ok {
		return Outcome{}, ErrBusy
	}
	out := w.Run(ctx, job)
	w.Complete(job, out)
	return out, nil
}

// Busy reports whether a job is running.
func (w *Workflow) Busy() bool { return w.slot.Busy() }

// Status returns the last status text, or "" when none is set.
func (w *Workflow) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// State returns a snapshot for rendering.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{Selected: w.selected, Status: w.status, Busy: w.slot.Busy(), Running: w.running}
}

// StatusText maps an outcome to the text shown to the user.
func StatusText(kind JobKind, out Outcome) string { return statusFor(kind, out) }

func statusFor(kind JobKind, out Outcome) string {
	if out.Err == nil {
		if kind == JobIngest {
			return fmt.Sprintf("Knowledge base re-indexed: %d chunks.", out.Chunks)
		}
		return fmt.Sprintf("Uploaded %s: %d chunks indexed.", out.File, out.Chunks)
	}

	label, bare := "Upload failed", StatusUploadFailed
	if kind == JobIngest {
		label, bare = "Ingest failed", StatusIngestFailed
	}
	var apiErr *api.Error
	if !errors.As(out.Err, &apiErr) {
		// Local failures, such as an unreadable file, never reached the server.
		return fmt.Sprintf("%s: %v", label, out.Err)
	}
	if apiErr.Kind == api.KindTransport {
		return StatusUnreachable
	}
	if apiErr.Detail != "" {
		return fmt.Sprintf("%s: %s", label, apiErr.Detail)
	}
	return bare
}
