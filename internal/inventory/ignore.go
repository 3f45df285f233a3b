package inventory

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openmined/docsync/internal/utils"
	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile holds extra gitignore-style rules for a walked directory.
const IgnoreFile = ".docsyncignore"

var defaultIgnoreLines = []string{
	// vcs
	".git/",
	".svn/",
	".hg/",
	// python
	"__pycache__/",
	".ipynb_checkpoints/",
	".venv/",
	"venv/",
	"env/",
	// node
	"node_modules/",
	// IDE/Editor-specific
	".idea/",
	".vscode/",
	// build outputs
	"dist/",
	"build/",
	"result/",
	// lock files
	"*.lock",
	"package-lock.json",
	"pnpm-lock.yaml",
	// secrets
	"secrets.yaml",
	".env",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList matches paths relative to a walked root against the default
// rules, any configured extra rules and the root's .docsyncignore.
type IgnoreList struct {
	baseDir string
	extra   []string
	ignore  *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string, extra ...string) *IgnoreList {
	return &IgnoreList{baseDir: baseDir, extra: extra}
}

func (s *IgnoreList) Load() {
	ignoreLines := make([]string, 0, len(defaultIgnoreLines)+len(s.extra))
	ignoreLines = append(ignoreLines, defaultIgnoreLines...)
	ignoreLines = append(ignoreLines, s.extra...)

	ignorePath := filepath.Join(s.baseDir, IgnoreFile)
	if utils.FileExists(ignorePath) {
		ignoreLines = append(ignoreLines, readIgnoreFile(ignorePath)...)
	}

	s.ignore = gitignore.CompileIgnoreLines(ignoreLines...)
}

func readIgnoreFile(path string) []string {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("open ignore file", "path", path, "error", err)
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("read ignore file", "path", path, "error", err)
		return nil
	}
	slog.Debug("loaded ignore file", "path", path, "rules", len(lines))
	return lines
}

// ShouldIgnore reports whether relPath (slash or OS separated, relative to the
// base dir) is excluded. Directories should be passed with a trailing slash.
func (s *IgnoreList) ShouldIgnore(relPath string) bool {
	if s.ignore == nil {
		s.Load()
	}
	return s.ignore.MatchesPath(relPath)
}
