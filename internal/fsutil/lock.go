package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// StaleLockThreshold is the age after which a lock file left behind by
	// a crashed process is taken over.
	StaleLockThreshold = 10 * time.Minute

	lockRetryInterval = 20 * time.Millisecond
)

// ErrLocked is returned when the lock is still held when ctx is done.
var ErrLocked = errors.New("lock held by another process")

// Lock is an exclusive lock file shared between processes.
type Lock struct {
	path string
	file *os.File
	info os.FileInfo
}

// AcquireLock creates the lock file at path with O_CREATE|O_EXCL, retrying
// until it succeeds or ctx is done. Locks older than StaleLockThreshold are
// removed and retried.
func AcquireLock(ctx context.Context, path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err == nil {
			return newLock(path, file)
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if info, ok := staleLock(path); ok {
			breakStaleLock(path, info)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire %s: %w", path, ErrLocked)
		case <-time.After(lockRetryInterval):
		}
	}
}

func newLock(path string, file *os.File) (*Lock, error) {
	// PID and timestamp help when inspecting a stuck lock by hand
	data := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock data: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("stat lock file: %w", err)
	}
	return &Lock{path: path, file: file, info: info}, nil
}

// Release removes the lock file if it is still the one this Lock created.
// It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	if l.path == "" {
		return nil
	}

	path := l.path
	l.path = ""
	if current, err := os.Stat(path); err != nil || !os.SameFile(current, l.info) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// staleLock returns the lock file's info when it is older than
// StaleLockThreshold.
func staleLock(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return info, time.Since(info.ModTime()) > StaleLockThreshold
}

// breakStaleLock moves the lock at path aside and deletes it if it is still
// the file judged stale. When another waiter already replaced it with a fresh
// lock, that lock is linked back into place.
func breakStaleLock(path string, stale os.FileInfo) {
	aside := fmt.Sprintf("%s.stale-%s", path, uuid.NewString())
	if err := os.Rename(path, aside); err != nil {
		return
	}

	moved, err := os.Stat(aside)
	if err == nil && !os.SameFile(moved, stale) {
		// Link fails if path was taken meanwhile; that holder wins
		_ = os.Link(aside, path)
	}
	_ = os.Remove(aside)
}
