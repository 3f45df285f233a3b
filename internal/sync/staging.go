package sync

import (
	"os"
	"path/filepath"
	"unicode"

	"github.com/google/uuid"
	"github.com/openmined/docsync/internal/utils"
)

// stage returns a path with an ASCII base name holding the contents of src.
// Non-ASCII names are copied into a private temp dir; cleanup removes it and
// is safe to call in every case.
func stage(src string) (path string, cleanup func(), err error) {
	if isASCII(filepath.Base(src)) {
		return src, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "docsync-stage-")
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	ext := filepath.Ext(src)
	if !isASCII(ext) {
		ext = ""
	}
	path = filepath.Join(dir, uuid.NewString()+ext)
	if err := utils.CopyFile(src, path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
