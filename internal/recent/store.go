// Package recent persists the list of recently opened sources.
//
// The list is most-recent-first. Recording a path that is already present
// moves it to the front, so each path appears at most once. Every mutation
// is written to disk before it returns.
//
// Several processes may share one file. Each mutation takes a lock file next
// to it and re-reads the list from disk before changing it.
package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/fsutil"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
)

const (
	// DefaultLimit is the number of entries kept when no limit is configured.
	DefaultLimit = 20
	// FileName is the name of the persisted list inside the data directory.
	FileName = "recent.json"

	// LockTimeout bounds how long a mutation waits for another process.
	LockTimeout = 2 * time.Second

	schemaVersion = 1
	lockSuffix    = ".lock"
)

// Entry is one recently opened source.
type Entry struct {
	Path     string    `json:"path"`
	OpenedAt time.Time `json:"opened_at"`
}

type fileFormat struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Options configures a Store.
type Options struct {
	// Path of the JSON file. Required.
	Path string
	// Limit caps the number of entries; 0 means DefaultLimit.
	Limit int
	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time
	// Logger is optional.
	Logger logging.Logger
}

// Store is the persisted recent-entries list. It is safe for concurrent
// use, including from several processes.
type Store struct {
	path   string
	limit  int
	now    func() time.Time
	logger logging.Logger

	mu      sync.Mutex
	entries []Entry
}

// New creates a store backed by opts.Path. Nothing is read until first use.
func New(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", opts.Limit)
	}

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		path:   opts.Path,
		limit:  limit,
		now:    now,
		logger: logging.OrNop(opts.Logger),
	}, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Entries returns a copy of the list as currently on disk, most recent
// first. Existence of the paths is not checked.
func (s *Store) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), s.entries...), nil
}

// Record moves path to the front of the list, adding it if needed.
func (s *Store) Record(path string) error {
	abs, err := normalize(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lockFile()
	if err != nil {
		return err
	}
	defer release()

	if err := s.loadLocked(); err != nil {
		return err
	}

	updated := make([]Entry, 0, len(s.entries)+1)
	updated = append(updated, Entry{Path: abs, OpenedAt: s.now().UTC()})
	for _, e := range s.entries {
		if e.Path != abs {
			updated = append(updated, e)
		}
	}
	if len(updated) > s.limit {
		updated = updated[:s.limit]
	}

	return s.commitLocked(updated)
}

// Remove deletes path from the list. Removing an absent path is a no-op
// and does not touch the file.
func (s *Store) Remove(path string) error {
	abs, err := normalize(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lockFile()
	if err != nil {
		return err
	}
	defer release()

	if err := s.loadLocked(); err != nil {
		return err
	}

	updated := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Path != abs && e.Path != path {
			updated = append(updated, e)
		}
	}
	if len(updated) == len(s.entries) {
		return nil
	}

	return s.commitLocked(updated)
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lockFile()
	if err != nil {
		return err
	}
	defer release()

	return s.commitLocked(nil)
}

// lockFile takes the cross-process lock guarding the file.
func (s *Store) lockFile() (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	lock, err := fsutil.AcquireLock(ctx, s.path+lockSuffix)
	if err != nil {
		return nil, fmt.Errorf("lock recent entries: %w", err)
	}
	return func() {
		if err := lock.Release(); err != nil {
			s.logger.Warn("failed to release recent entries lock", "path", s.path, "err", err)
		}
	}, nil
}

// commitLocked persists entries and only then makes them current.
func (s *Store) commitLocked(entries []Entry) error {
	data, err := json.MarshalIndent(fileFormat{Version: schemaVersion, Entries: nonNil(entries)}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recent entries: %w", err)
	}

	if err := fsutil.WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("save recent entries: %w", err)
	}

	s.entries = entries
	return nil
}

// loadLocked replaces the in-memory list with the file's content. A read
// error keeps the previous list.
func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = nil
			return nil
		}
		return fmt.Errorf("read recent entries: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		// The file is rewritten on the next mutation
		s.logger.Warn("ignoring corrupt recent entries file", "path", s.path, "err", err)
		s.entries = nil
		return nil
	}

	seen := make(map[string]bool, len(ff.Entries))
	entries := make([]Entry, 0, len(ff.Entries))
	for _, e := range ff.Entries {
		if e.Path == "" || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		entries = append(entries, e)
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	s.entries = entries
	return nil
}

func normalize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}
