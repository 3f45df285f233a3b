package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openmined/docsync/internal/filestore"
	"github.com/openmined/docsync/internal/inventory"
	"golang.org/x/sync/errgroup"
)

// Syncer runs one full upsert of local paths into a labelled store.
type Syncer struct {
	backend  filestore.Backend
	builder  *inventory.Builder
	executor *Executor
	label    string
	lockDir  string // empty uses the OS temp dir
}

func NewSyncer(backend filestore.Backend, builder *inventory.Builder, cfg ExecutorConfig, label string) *Syncer {
	return &Syncer{
		backend:  backend,
		builder:  builder,
		executor: NewExecutor(backend, cfg),
		label:    label,
	}
}

// WithLockDir places the store lock file in dir.
func (s *Syncer) WithLockDir(dir string) *Syncer {
	s.lockDir = dir
	return s
}

// Result is what a run planned and, unless it was a dry run, what it did.
type Result struct {
	Store   *filestore.Store // nil on a dry run against a missing store
	Plan    *Plan
	Summary *Summary // nil on a dry run
}

// Run syncs paths into the store. A missing store is created only once the
// local inventory is known to be non-empty. With dryRun the plan is computed
// but the store is neither created nor modified.
func (s *Syncer) Run(ctx context.Context, paths []string, dryRun bool) (*Result, error) {
	lock := NewStoreLock(s.lockDir, s.label)
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("release store lock", "path", lock.Path(), "error", err)
		}
	}()

	runID := uuid.NewString()[:8]
	log := slog.With("run", runID, "store", s.label)
	tStart := time.Now()

	var (
		local  []inventory.LocalFile
		remote []inventory.RemoteDocument
		store  *filestore.Store
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := s.builder.Build(gctx, paths)
		if err != nil {
			return fmt.Errorf("local inventory: %w", err)
		}
		local = files
		return nil
	})
	g.Go(func() error {
		var err error
		store, err = s.backend.FindStore(gctx, s.label)
		if err != nil {
			return fmt.Errorf("find store %q: %w", s.label, err)
		}
		if store == nil {
			return nil
		}
		remote, err = inventory.ReadRemote(gctx, s.backend, store)
		if err != nil {
			return fmt.Errorf("remote inventory: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// checked before any remote mutation, including store creation
	if len(local) == 0 {
		return nil, inventory.ErrNoSupportedFiles
	}

	if store == nil && !dryRun {
		// GetOrCreate finds again in case another machine created it meanwhile
		created, err := filestore.GetOrCreate(ctx, s.backend, s.label)
		if err != nil {
			return nil, err
		}
		store = created
	}

	plan := Diff(local, remote)
	log.Info("sync plan",
		"local", len(local),
		"remote", len(remote),
		"add", len(plan.ToAdd),
		"update", len(plan.ToUpdate),
		"delete", len(plan.ToDelete),
		"unchanged", plan.Unchanged,
		"dryRun", dryRun,
	)

	result := &Result{Store: store, Plan: plan}
	if dryRun {
		return result, nil
	}

	summary, err := s.executor.Execute(ctx, store, plan)
	result.Summary = summary
	log.Info("sync done", "summary", summary.String(), "tsTotal", time.Since(tStart))
	return result, err
}
