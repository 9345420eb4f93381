// Package lock keeps a single ikiflow process per user.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
)

// Lock is an exclusive advisory lock held on a file.
type Lock struct {
	file *os.File
}

// Acquire takes the lock at path without blocking. A held lock yields ErrLocked.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock: %w", err)
	}
	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w (%s)", apperrors.ErrLocked, path)
	}
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	}
	return &Lock{file: file}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	uerr := unlockFile(l.file)
	cerr := l.file.Close()
	l.file = nil
	if uerr != nil {
		return uerr
	}
	return cerr
}
