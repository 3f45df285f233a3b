// Package inventory builds the local and remote views the sync diff runs on.
package inventory

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/openmined/docsync/internal/fingerprint"
	"github.com/openmined/docsync/internal/utils"
	"golang.org/x/sync/errgroup"
)

var ErrNoSupportedFiles = errors.New("inventory: no supported files found")

// LocalFile is one file eligible for upload.
type LocalFile struct {
	Path       string // absolute, cleaned
	Filename   string // base name, the remote join key
	Hash       string // full sha256 hex
	Identifier string
	Size       int64
}

// Builder turns command line paths into a deduplicated, hashed file list.
type Builder struct {
	Extensions  mapset.Set[string]
	IgnoreLines []string // extra gitignore rules applied to every walked root
	Workers     int
}

func NewBuilder() *Builder {
	return &Builder{
		Extensions: NewExtensionSet(DefaultExtensions),
		Workers:    runtime.NumCPU(),
	}
}

type candidate struct {
	path string
	size int64
}

// Build expands globs, walks directories and hashes every supported file.
// Unreadable or unsupported entries are logged and skipped. The result is
// sorted by filename and holds at most one file per filename.
func (b *Builder) Build(ctx context.Context, paths []string) ([]LocalFile, error) {
	roots := b.resolve(paths)

	seen := mapset.NewThreadUnsafeSet[string]()
	var candidates []candidate
	add := func(c candidate) {
		if seen.Add(c.path) {
			candidates = append(candidates, c)
		}
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(root)
		if err != nil {
			slog.Warn("skipping path", "path", root, "error", err)
			continue
		}

		if info.IsDir() {
			b.walk(root, add)
			continue
		}

		if !info.Mode().IsRegular() {
			slog.Debug("skipping non-regular file", "path", root)
			continue
		}
		if !b.eligible(filepath.Base(root)) {
			slog.Warn("skipping unsupported file", "path", root)
			continue
		}
		add(candidate{path: root, size: info.Size()})
	}

	files, err := b.hashAll(ctx, candidates)
	if err != nil {
		return nil, err
	}
	return dedupeFilenames(files), nil
}

// resolve expands glob arguments and returns absolute, deduplicated paths in
// argument order.
func (b *Builder) resolve(args []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []string

	for _, arg := range args {
		expanded := []string{arg}
		if hasGlobMeta(arg) {
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				slog.Warn("bad glob pattern", "pattern", arg, "error", err)
				continue
			}
			if len(matches) == 0 {
				slog.Warn("glob matched nothing", "pattern", arg)
			}
			expanded = matches
		}

		for _, p := range expanded {
			abs, err := utils.ResolvePath(p)
			if err != nil {
				slog.Warn("skipping path", "path", p, "error", err)
				continue
			}
			if seen.Add(abs) {
				out = append(out, abs)
			}
		}
	}
	return out
}

func (b *Builder) walk(root string, add func(candidate)) {
	ignore := NewIgnoreList(root, b.IgnoreLines...)
	ignore.Load()

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		name := d.Name()

		if d.IsDir() {
			if isHidden(name) || ignore.ShouldIgnore(filepath.ToSlash(rel)+"/") {
				slog.Debug("skipping dir", "path", path)
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if ignore.ShouldIgnore(filepath.ToSlash(rel)) || !b.eligible(name) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("stat error", "path", path, "error", err)
			return nil
		}
		add(candidate{path: path, size: info.Size()})
		return nil
	})
}

func (b *Builder) eligible(name string) bool {
	if isHidden(name) {
		return false
	}
	exts := b.Extensions
	if exts == nil {
		exts = NewExtensionSet(DefaultExtensions)
	}
	return exts.Contains(strings.ToLower(filepath.Ext(name)))
}

func (b *Builder) hashAll(ctx context.Context, candidates []candidate) ([]LocalFile, error) {
	results := make([]*LocalFile, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Workers, 1))

	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hash, err := fingerprint.SumFile(c.path)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", c.path, "error", err)
				return nil
			}
			filename := filepath.Base(c.path)
			results[i] = &LocalFile{
				Path:       c.path,
				Filename:   filename,
				Hash:       hash,
				Identifier: fingerprint.Encode(filename, hash),
				Size:       c.size,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]LocalFile, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

// dedupeFilenames keeps the lexicographically smallest path for each filename.
func dedupeFilenames(files []LocalFile) []LocalFile {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Filename != files[j].Filename {
			return files[i].Filename < files[j].Filename
		}
		return files[i].Path < files[j].Path
	})

	out := files[:0]
	for i, f := range files {
		if i > 0 && f.Filename == out[len(out)-1].Filename {
			slog.Warn("duplicate filename, skipping", "path", f.Path, "kept", out[len(out)-1].Path)
			continue
		}
		out = append(out, f)
	}
	return out
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
