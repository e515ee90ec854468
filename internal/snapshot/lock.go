package snapshot

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// Lock is an advisory, cross-process exclusive lock on a data
// directory, held by Create for the duration of a snapshot so a second
// snapshot of the same directory (from another process, or a scheduler
// restarted against it) cannot run at the same time. Being advisory,
// it does not stop store.Open or task.Open, and Dump does not take it.
type Lock struct {
	path string
	fl   *flock.Flock
}

// NewLock returns a lock guarding dataDir, backed by a sentinel file at
// <dataDir>/.snapshot.lock.
func NewLock(dataDir string) *Lock {
	path := filepath.Join(dataDir, ".snapshot.lock")
	return &Lock{path: path, fl: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking. A false
// return (with nil error) means another process currently holds it.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, engerrors.New(engerrors.CodeInternal, "failed to create lock directory", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, engerrors.New(engerrors.CodeInternal, "failed to acquire snapshot lock", err)
	}
	return ok, nil
}

// Unlock releases the lock. Safe to call even if it was never acquired.
func (l *Lock) Unlock() error {
	return l.fl.Unlock()
}
