package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/openmined/docsync/internal/filestore"
	"github.com/openmined/docsync/internal/inventory"
	"github.com/openmined/docsync/internal/retry"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency  = 5
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

// Remote is the part of a backend the executor mutates.
type Remote interface {
	UploadDocument(ctx context.Context, store *filestore.Store, req filestore.UploadRequest) (*filestore.Operation, error)
	GetOperation(ctx context.Context, op *filestore.Operation) (*filestore.Operation, error)
	DeleteDocument(ctx context.Context, id string) error
}

type ExecutorConfig struct {
	Concurrency  int // uploads per batch and parallel deletes
	Retry        retry.Policy
	PollInterval time.Duration
	PollTimeout  time.Duration
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Concurrency:  DefaultConcurrency,
		Retry:        retry.DefaultPolicy(),
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
	}
}

// Executor applies a Plan: all deletes first, then uploads in sequential
// batches of Concurrency.
type Executor struct {
	remote Remote
	cfg    ExecutorConfig
}

func NewExecutor(remote Remote, cfg ExecutorConfig) *Executor {
	def := DefaultExecutorConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = def.Retry
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}
	return &Executor{remote: remote, cfg: cfg}
}

// Execute returns a *UploadError when any upload failed after retries.
// Delete failures are only counted.
func (e *Executor) Execute(ctx context.Context, store *filestore.Store, plan *Plan) (*Summary, error) {
	summary := &Summary{Unchanged: plan.Unchanged}
	if !plan.HasChanges() {
		slog.Debug("store up to date", "unchanged", plan.Unchanged)
		return summary, nil
	}

	e.handleDeletes(ctx, plan, summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	failures := e.handleUploads(ctx, store, plan, summary)
	if len(failures) > 0 {
		summary.Failed = len(failures)
		return summary, &UploadError{Failures: failures}
	}
	return summary, nil
}

func (e *Executor) handleDeletes(ctx context.Context, plan *Plan, summary *Summary) {
	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(e.cfg.Concurrency)

	// Deletes lists ToDelete first; the rest are replaced by an update and
	// not counted as deletes
	for i, doc := range plan.Deletes() {
		stale := i >= len(plan.ToDelete)
		g.Go(func() error {
			attempts, err := retry.Do(ctx, e.cfg.Retry, func(ctx context.Context, _ int) error {
				return e.remote.DeleteDocument(ctx, doc.ID)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.DeleteFailed++
				slog.Warn("sync", "op", OpDelete, "id", doc.ID, "identifier", doc.Identifier, "attempts", attempts, "error", err)
				return nil
			}
			if !stale {
				summary.Deleted++
			}
			slog.Info("sync", "op", OpDelete, "identifier", doc.Identifier, "stale", stale)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Executor) handleUploads(ctx context.Context, store *filestore.Store, plan *Plan, summary *Summary) []UploadFailure {
	type job struct {
		file inventory.LocalFile
		op   OpType
	}

	uploads := plan.Uploads()
	jobs := make([]job, len(uploads))
	for i, f := range uploads {
		jobs[i] = job{file: f, op: OpUpdate}
		if i < len(plan.ToAdd) {
			jobs[i].op = OpAdd
		}
	}

	var (
		mu       sync.Mutex
		failures []UploadFailure
	)

	for start := 0; start < len(jobs); start += e.cfg.Concurrency {
		batch := jobs[start:min(start+e.cfg.Concurrency, len(jobs))]
		slog.Debug("upload batch", "start", start, "size", len(batch), "total", len(jobs))

		g := &errgroup.Group{}
		for _, j := range batch {
			g.Go(func() error {
				attempts, err := e.upload(ctx, store, j.file)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, UploadFailure{Path: j.file.Path, Attempts: attempts, Err: err})
					slog.Error("sync", "op", j.op, "file", j.file.Filename, "attempts", attempts, "error", err)
					return nil
				}
				if j.op == OpAdd {
					summary.Added++
				} else {
					summary.Updated++
				}
				slog.Info("sync", "op", j.op, "file", j.file.Filename, "identifier", j.file.Identifier, "attempts", attempts)
				return nil
			})
		}
		_ = g.Wait()
	}

	// batches finish in order, goroutines within one do not
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return failures
}

// upload runs one file through upload and polling, retrying the pair.
func (e *Executor) upload(ctx context.Context, store *filestore.Store, f inventory.LocalFile) (int, error) {
	policy := e.cfg.Retry
	policy.Notify = func(attempt int, err error, wait time.Duration) {
		slog.Warn("upload retry", "file", f.Filename, "attempt", attempt, "wait", wait, "error", err)
	}

	return retry.Do(ctx, policy, func(ctx context.Context, _ int) error {
		path, cleanup, err := stage(f.Path)
		if err != nil {
			return fmt.Errorf("stage %s: %w", f.Path, err)
		}
		defer cleanup()

		op, err := e.remote.UploadDocument(ctx, store, filestore.UploadRequest{
			Path:        path,
			DisplayName: f.Identifier,
			MimeType:    inventory.DetectMimeType(f.Path),
			Hash:        f.Hash,
		})
		if err != nil {
			return err
		}
		return e.wait(ctx, op)
	})
}

// wait polls op until it is done. Errors from the poll request itself keep
// polling; starting over would upload the file twice.
func (e *Executor) wait(ctx context.Context, op *filestore.Operation) error {
	deadline := time.NewTimer(e.cfg.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for !op.Done {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", ErrOperationTimeout, op.Name, e.cfg.PollTimeout)
		case <-ticker.C:
		}

		latest, err := e.remote.GetOperation(ctx, op)
		if err != nil {
			if retry.IsPermanent(err) {
				return err
			}
			slog.Debug("poll operation", "name", op.Name, "error", err)
			continue
		}
		op = latest
	}

	if op.Err != nil {
		return fmt.Errorf("operation %s: %w", op.Name, op.Err)
	}
	return nil
}
