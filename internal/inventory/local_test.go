package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/openmined/docsync/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func filenames(files []LocalFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Filename)
	}
	return out
}

func TestBuild_WalksAndFilters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.md", "notes")
	writeFile(t, root, "docs/guide.pdf", "%PDF-1.4")
	writeFile(t, root, "docs/image.png", "png")
	writeFile(t, root, ".hidden.md", "hidden")
	writeFile(t, root, ".secret/inside.md", "hidden dir")
	writeFile(t, root, "node_modules/pkg/readme.md", "vendored")
	writeFile(t, root, "build/out.txt", "build output")
	writeFile(t, root, "deep/nested/dir/Readme.MD", "upper ext")

	files, err := NewBuilder().Build(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{"Readme.MD", "guide.pdf", "notes.md"}, filenames(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Equal(t, fingerprint.Encode(f.Filename, f.Hash), f.Identifier)
	}
	assert.Equal(t, fingerprint.Sum([]byte("notes")), files[2].Hash)
	assert.Equal(t, int64(5), files[2].Size)
}

func TestBuild_IgnoreFileAndExtraRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IgnoreFile, "drafts/\n*.log\n")
	writeFile(t, root, "keep.md", "keep")
	writeFile(t, root, "drafts/wip.md", "wip")
	writeFile(t, root, "debug.log", "log")
	writeFile(t, root, "private/key.txt", "key")

	b := NewBuilder()
	b.IgnoreLines = []string{"private/"}

	files, err := b.Build(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md"}, filenames(files))
}

func TestBuild_ExplicitFiles(t *testing.T) {
	root := t.TempDir()
	inBuild := writeFile(t, root, "build/report.md", "report")
	unsupported := writeFile(t, root, "photo.jpg", "jpg")
	hidden := writeFile(t, root, ".env.md", "x")

	files, err := NewBuilder().Build(context.Background(), []string{inBuild, unsupported, hidden, filepath.Join(root, "missing.md")})
	require.NoError(t, err)
	assert.Equal(t, []string{"report.md"}, filenames(files))
}

func TestBuild_GlobAndDedupe(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.md", "a")
	writeFile(t, root, "sub/b.md", "b")
	writeFile(t, root, "sub/c.txt", "c")

	files, err := NewBuilder().Build(context.Background(), []string{
		filepath.Join(root, "**", "*.md"),
		a,
		root,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "c.txt"}, filenames(files))
}

func TestBuild_FilenameCollisionKeepsSmallestPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/notes.md", "second")
	first := writeFile(t, root, "a/notes.md", "first")

	files, err := NewBuilder().Build(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, first, files[0].Path)
}

func TestBuild_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.adoc", "b")

	b := NewBuilder()
	b.Extensions = NewExtensionSet([]string{"ADOC"})

	files, err := b.Build(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.adoc"}, filenames(files))
}

func TestBuild_EmptyAndCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.png", "x")

	files, err := NewBuilder().Build(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Empty(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewBuilder().Build(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIgnoreList(t *testing.T) {
	ig := NewIgnoreList(t.TempDir(), "*.bak")
	ig.Load()

	tests := []struct {
		path   string
		ignore bool
	}{
		{"node_modules/", true},
		{"a/node_modules/x.md", true},
		{"venv/", true},
		{"src/__pycache__/", true},
		{"yarn.lock", true},
		{"config/secrets.yaml", true},
		{"notes.bak", true},
		{"docs/", false},
		{"docs/build.md", false},
		{"environment.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, ig.ShouldIgnore(tt.path))
		})
	}
}
