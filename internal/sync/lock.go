package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// StoreLock keeps two local runs from syncing the same store at once.
type StoreLock struct {
	flock *flock.Flock
}

// NewStoreLock returns the lock for label under dir, or under the OS temp dir
// when dir is empty.
func NewStoreLock(dir, label string) *StoreLock {
	if dir == "" {
		dir = os.TempDir()
	}
	return &StoreLock{flock: flock.New(filepath.Join(dir, "docsync-"+lockName(label)+".lock"))}
}

func (l *StoreLock) Path() string {
	return l.flock.Path()
}

func (l *StoreLock) Lock() error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	if !locked {
		return ErrStoreLocked
	}
	return nil
}

func (l *StoreLock) Unlock() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock store: %w", err)
	}
	return os.Remove(l.flock.Path())
}

func lockName(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, label)
}
