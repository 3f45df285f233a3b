package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/openmined/docsync/internal/config"
	docsync "github.com/openmined/docsync/internal/sync"
	"github.com/openmined/docsync/internal/watch"
	"github.com/spf13/cobra"
)

func newUpsertCmd(a *app) *cobra.Command {
	var dryRun bool
	var watchMode bool

	cmd := &cobra.Command{
		Use:     "upsert <path>...",
		Aliases: []string{"sync", "up"},
		Short:   "Sync files, directories or globs into the store",
		Long: `Mirror the given files into the store. Unchanged files are skipped,
changed files are replaced and documents with no local counterpart are removed.`,
		Example: `  docsync upsert ./docs
  docsync upsert "notes/**/*.md" README.md --store notes
  docsync upsert ./docs --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBackend, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeBackend()

			syncer := docsync.NewSyncer(backend, a.newBuilder(), a.executorConfig(), a.cfg.Store)

			err = runUpsert(cmd, syncer, a.cfg.Store, args, dryRun)
			if !watchMode {
				return err
			}
			if err != nil {
				slog.Error("initial sync failed", "error", err)
			}
			return watchAndSync(cmd, a, syncer, args, dryRun)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without changing the store")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep running and re-sync when files change")
	cmd.Flags().Int("concurrency", config.Default().Sync.Concurrency, "Uploads per batch")
	_ = a.v.BindPFlag("sync.concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

func runUpsert(cmd *cobra.Command, syncer *docsync.Syncer, label string, args []string, dryRun bool) error {
	res, err := syncer.Run(cmd.Context(), args, dryRun)
	if res != nil {
		out := cmd.OutOrStdout()
		if dryRun {
			printPlan(out, label, res)
		} else if res.Summary != nil {
			printSummary(out, label, res.Summary)
		}
	}
	return err
}

func watchAndSync(cmd *cobra.Command, a *app, syncer *docsync.Syncer, args []string, dryRun bool) error {
	roots := watch.RootsFor(args)
	if len(roots) == 0 {
		return errors.New("no existing directory to watch")
	}

	w := watch.NewWatcher(a.cfg.Sync.QuietPeriod, roots...)
	w.FilterPaths(skipWatchEvent)
	if err := w.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "%s watching %d dir(s), press Ctrl+C to stop\n", gray.Render(">"), len(roots))

	for batch := range w.Changes() {
		slog.Info("change detected", "files", len(batch))
		slog.Debug("changed paths", "paths", batch)
		if err := runUpsert(cmd, syncer, a.cfg.Store, args, dryRun); err != nil {
			slog.Error("sync failed", "error", err)
		}
	}
	return nil
}

// skipWatchEvent drops editor swap files and anything under a VCS directory.
func skipWatchEvent(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return true
	}
	slashed := filepath.ToSlash(path)
	for _, dir := range []string{"/.git/", "/.hg/", "/.svn/"} {
		if strings.Contains(slashed, dir) {
			return true
		}
	}
	return false
}

func printPlan(w io.Writer, label string, res *docsync.Result) {
	plan := res.Plan
	if res.Store == nil {
		fmt.Fprintf(w, "%s store %s does not exist and would be created\n", gray.Render("note:"), cyan.Render(label))
	}

	for _, f := range plan.ToAdd {
		fmt.Fprintf(w, "%s %s %s\n", green.Render("+"), f.Path, gray.Render(f.Identifier))
	}
	for _, u := range plan.ToUpdate {
		fmt.Fprintf(w, "%s %s %s\n", yellow.Render("~"), u.Local.Path,
			gray.Render(u.Remote.Identifier+" -> "+u.Local.Identifier))
	}
	for _, d := range plan.ToDelete {
		fmt.Fprintf(w, "%s %s\n", red.Render("-"), d.Identifier)
	}

	fmt.Fprintf(w, "%s %d to add, %d to update, %d to delete, %d unchanged\n",
		bold.Render("dry run:"), len(plan.ToAdd), len(plan.ToUpdate), len(plan.ToDelete), plan.Unchanged)
}

func printSummary(w io.Writer, label string, s *docsync.Summary) {
	status := green.Render("OK")
	if !s.Success() {
		status = red.Render("FAILED")
	}
	fmt.Fprintf(w, "%s %s %s\n", status, cyan.Render(label), lightGray.Render(s.String()))
}
