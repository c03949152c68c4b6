// Package service holds the IPAView session: the object a UI drives to open
// sources, walk the opened tree and revisit recent entries.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/archive"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/fspath"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/navigation"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/recent"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

// Materializer turns a source path into an on-disk tree.
type Materializer interface {
	Materialize(ctx context.Context, source string) (*archive.CacheEntry, error)
}

// RecentStore persists recently opened sources.
type RecentStore interface {
	Record(path string) error
	Entries() ([]recent.Entry, error)
	Remove(path string) error
}

// progressReporter is implemented by materializers that report extraction
// progress.
type progressReporter interface {
	OnProgress(l archive.ProgressListener) (unregister func())
}

// Options holds the collaborators of a Session.
type Options struct {
	Materializer Materializer
	Recent       RecentStore
	Logger       logging.Logger
	Clock        Clock

	// BundleSuffix marks the entry-point directory; defaults to ".app".
	BundleSuffix string
	// PackageExtensions lists file extensions treated as packages.
	PackageExtensions []string
}

// OpenResult describes a successfully opened source.
type OpenResult struct {
	Source      string
	Entry       *archive.CacheEntry
	Root        fspath.Path
	EntryPoint  fspath.Path
	Breadcrumbs []navigation.Item
}

// Session owns the state of one browsing session: the opened tree and the
// current directory inside it. All methods are safe for concurrent use.
type Session struct {
	materializer Materializer
	recent       RecentStore
	logger       logging.Logger
	clock        Clock
	suffix       string
	exts         []string

	mu      sync.RWMutex
	gen     uint64
	entry   *archive.CacheEntry
	root    fspath.Path
	current fspath.Path

	// opening counts OpenSource calls in flight; progress from the shared
	// materializer is forwarded only while it is positive.
	opening      atomic.Int32
	stopProgress func()

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

var _ navigation.Navigator = (*Session)(nil)

// NewSession creates a session with no source open.
func NewSession(opts Options) (*Session, error) {
	if opts.Materializer == nil {
		return nil, fmt.Errorf("materializer is required")
	}
	if opts.Recent == nil {
		return nil, fmt.Errorf("recent store is required")
	}

	s := &Session{
		materializer: opts.Materializer,
		recent:       opts.Recent,
		logger:       logging.OrNop(opts.Logger),
		clock:        opts.Clock,
		suffix:       opts.BundleSuffix,
		exts:         opts.PackageExtensions,
		subs:         make(map[int]chan Event),
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.suffix == "" {
		s.suffix = tree.DefaultBundleSuffix
	}
	if len(s.exts) == 0 {
		s.exts = archive.DefaultPackageExtensions
	}

	if pr, ok := opts.Materializer.(progressReporter); ok {
		s.stopProgress = pr.OnProgress(func(key string, done, total int) {
			if s.opening.Load() > 0 {
				s.emit(Event{Kind: EventProgress, Key: key, Done: done, Total: total})
			}
		})
	}

	return s, nil
}

// Close stops progress forwarding and closes every subscriber channel.
// The session must not be used to open sources afterwards.
func (s *Session) Close() {
	if s.stopProgress != nil {
		s.stopProgress()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// OpenSource materializes path and makes its entry point the current
// directory. Successful opens are recorded in the recent entries; failed
// opens are not.
func (s *Session) OpenSource(ctx context.Context, path string) (*OpenResult, error) {
	source, err := fspath.New(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.emit(Event{Kind: EventOpenStarted, Source: source.String()})
	s.logger.Debug("opening source", "source", source.String())

	s.opening.Add(1)
	result, err := s.open(ctx, source)
	s.opening.Add(-1)

	if err != nil {
		if s.superseded(gen) {
			s.logger.Debug("superseded open failed", "source", source.String(), "err", err)
			return nil, fmt.Errorf("open source %s: %w: %w", source, ErrSuperseded, err)
		}
		s.logger.Error("open failed", "source", source.String(), "err", err)
		s.emit(Event{Kind: EventOpenFailed, Source: source.String(), Err: err})
		return nil, fmt.Errorf("open source: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded open", "source", source.String())
		return nil, fmt.Errorf("open source %s: %w", source, ErrSuperseded)
	}
	s.entry = result.Entry
	s.root = result.Root
	s.current = result.EntryPoint
	s.mu.Unlock()

	if err := s.recent.Record(source.String()); err != nil {
		s.logger.Warn("failed to record recent entry", "source", source.String(), "err", err)
	}

	s.logger.Info("opened source",
		"source", source.String(),
		"entry_point", result.EntryPoint.String(),
		"reused", result.Entry.Reused)
	s.emit(Event{
		Kind:        EventOpened,
		Source:      source.String(),
		Entry:       result.Entry,
		Path:        result.EntryPoint,
		Breadcrumbs: result.Breadcrumbs,
	})

	return result, nil
}

// superseded reports whether a newer OpenSource started after gen.
func (s *Session) superseded(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != gen
}

// open runs without holding the session lock.
func (s *Session) open(ctx context.Context, source fspath.Path) (*OpenResult, error) {
	if info, err := os.Stat(source.String()); err == nil && info.Mode().IsRegular() {
		if !archive.IsPackage(source.String(), s.exts) {
			return nil, fmt.Errorf("%s: %w", source, ErrUnsupportedSource)
		}
	}

	entry, err := s.materializer.Materialize(ctx, source.String())
	if err != nil {
		return nil, err
	}

	root, err := fspath.New(entry.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve tree root: %w", err)
	}

	entryPoint, err := fspath.New(tree.LocateEntryPoint(root.String(), s.suffix))
	if err != nil {
		return nil, fmt.Errorf("resolve entry point: %w", err)
	}

	return &OpenResult{
		Source:      source.String(),
		Entry:       entry,
		Root:        root,
		EntryPoint:  entryPoint,
		Breadcrumbs: navigation.Breadcrumbs(root, entryPoint),
	}, nil
}

// NavigateTo makes path the current directory. A relative path is resolved
// against the current directory. The target must be a directory inside the
// opened tree.
func (s *Session) NavigateTo(path string) ([]navigation.Item, error) {
	s.mu.RLock()
	root, current := s.root, s.current
	s.mu.RUnlock()

	if root.IsZero() {
		return nil, ErrNoSource
	}

	target, err := s.resolve(current, path)
	if err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if !root.Contains(target) {
		return nil, fmt.Errorf("navigate to %s: %w", target, ErrOutsideRoot)
	}

	info, err := os.Stat(target.String())
	if err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", target, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("navigate to %s: %w", target, ErrNotDirectory)
	}

	s.mu.Lock()
	if !s.root.Equal(root) {
		s.mu.Unlock()
		return nil, fmt.Errorf("navigate to %s: %w", target, ErrSuperseded)
	}
	s.current = target
	s.mu.Unlock()

	crumbs := navigation.Breadcrumbs(root, target)
	s.logger.Debug("navigated", "path", target.String())
	s.emit(Event{Kind: EventNavigated, Path: target, Breadcrumbs: crumbs})

	return crumbs, nil
}

// OpenPath implements navigation.Navigator.
func (s *Session) OpenPath(path string) ([]navigation.Item, error) {
	return s.NavigateTo(path)
}

// ResolveBreadcrumb implements navigation.Navigator.
func (s *Session) ResolveBreadcrumb(item navigation.Item) fspath.Path {
	return navigation.Resolve(item)
}

// Up navigates to the parent of the current directory. At the tree root it
// is a no-op.
func (s *Session) Up() ([]navigation.Item, error) {
	s.mu.RLock()
	root, current := s.root, s.current
	s.mu.RUnlock()

	if root.IsZero() {
		return nil, ErrNoSource
	}
	if current.Equal(root) {
		return navigation.Breadcrumbs(root, current), nil
	}
	return s.NavigateTo(current.Parent().String())
}

// Breadcrumbs returns the trail from the tree root to the current directory.
func (s *Session) Breadcrumbs() []navigation.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return navigation.Breadcrumbs(s.root, s.current)
}

// Current returns the current directory, zero if nothing is open.
func (s *Session) Current() fspath.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Root returns the root of the opened tree, zero if nothing is open.
func (s *Session) Root() fspath.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Entry returns the cache entry of the opened source, nil if nothing is open.
func (s *Session) Entry() *archive.CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entry
}

// List returns the classified contents of the current directory.
func (s *Session) List(ctx context.Context) ([]tree.Entry, error) {
	current := s.Current()
	if current.IsZero() {
		return nil, ErrNoSource
	}

	entries, err := tree.List(ctx, current.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", current, err)
	}

	s.emit(Event{Kind: EventListed, Path: current, Entries: entries})
	return entries, nil
}

// ListRecent returns the recent entries, most recent first. Paths are not
// checked; stale entries are pruned when opened.
func (s *Session) ListRecent() ([]recent.Entry, error) {
	entries, err := s.recent.Entries()
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return entries, nil
}

// OpenRecent revalidates a recent entry and opens it. A path that no longer
// exists is removed from the recent entries, reported through
// EventEntryMissing and answered with ErrEntryMissing.
func (s *Session) OpenRecent(ctx context.Context, path string) (*OpenResult, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.dropMissing(path)
			return nil, fmt.Errorf("open recent %s: %w", path, ErrEntryMissing)
		}
		return nil, fmt.Errorf("open recent %s: %w", path, err)
	}
	return s.OpenSource(ctx, path)
}

// RemoveRecent deletes path from the recent entries.
func (s *Session) RemoveRecent(path string) error {
	if err := s.recent.Remove(path); err != nil {
		return fmt.Errorf("remove recent entry: %w", err)
	}
	return nil
}

// PruneRecent removes every recent entry whose path no longer exists and
// returns the removed paths.
func (s *Session) PruneRecent() ([]string, error) {
	entries, err := s.recent.Entries()
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}

	var pruned []string
	for _, e := range entries {
		if _, err := os.Stat(e.Path); errors.Is(err, fs.ErrNotExist) {
			s.dropMissing(e.Path)
			pruned = append(pruned, e.Path)
		}
	}
	return pruned, nil
}

func (s *Session) dropMissing(path string) {
	s.logger.Info("recent entry no longer exists", "path", path)
	if err := s.recent.Remove(path); err != nil {
		s.logger.Warn("failed to remove recent entry", "path", path, "err", err)
	}
	s.emit(Event{Kind: EventEntryMissing, Source: path})
}

func (s *Session) resolve(current fspath.Path, path string) (fspath.Path, error) {
	if path == "" {
		return fspath.Path{}, fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "~") {
		return fspath.New(path)
	}
	return current.Join(path), nil
}
