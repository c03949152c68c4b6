package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/fsutil"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
)

const stagingPrefix = ".staging-"

// CacheEntry is the materialized form of a source path.
type CacheEntry struct {
	Source string // absolute source path as opened
	Key    string // identity key, empty for directories
	Dir    string // absolute directory holding the tree
	Raw    bool   // source was a directory and is used in place
	Reused bool   // the cache already held this key
}

// Config holds configuration for the materializer.
type Config struct {
	// CacheDir is the cache root; created on first extraction.
	CacheDir string
	// Logger receives debug and error logs. Optional.
	Logger logging.Logger
}

// ProgressListener is notified while a package is extracted.
type ProgressListener func(key string, done, total int)

// Materializer extracts packages into the cache and reuses earlier
// extractions.
type Materializer struct {
	cacheDir  string
	logger    logging.Logger
	extractor *Extractor
	group     singleflight.Group

	mu         sync.Mutex
	listeners  map[int]ProgressListener
	nextListen int

	extractions atomic.Int64
}

// NewMaterializer creates a new materializer.
func NewMaterializer(cfg Config) (*Materializer, error) {
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}

	cacheDir, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	return &Materializer{
		cacheDir:  cacheDir,
		logger:    logging.OrNop(cfg.Logger),
		extractor: NewExtractor(),
		listeners: make(map[int]ProgressListener),
	}, nil
}

// CacheDir returns the cache root.
func (m *Materializer) CacheDir() string {
	return m.cacheDir
}

// Extractions returns how many extractions this materializer has started.
func (m *Materializer) Extractions() int64 {
	return m.extractions.Load()
}

// OnProgress registers a listener for extraction progress. The returned
// func unregisters it and may be called more than once.
func (m *Materializer) OnProgress(l ProgressListener) (unregister func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextListen
	m.nextListen++
	m.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Materialize returns the directory tree for source.
//
// Directories map to themselves. Packages are extracted into
// <cache-root>/<key> unless that directory already has content.
// If ctx ends while an extraction is running, Materialize returns ctx.Err()
// and the extraction still completes in the background.
func (m *Materializer) Materialize(ctx context.Context, source string) (*CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, sourceErr("resolve", source, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, sourceErr("open", abs, err)
	}

	if info.IsDir() {
		return &CacheEntry{Source: abs, Dir: abs, Raw: true}, nil
	}

	if !info.Mode().IsRegular() {
		return nil, sourceErr("open", abs, errors.New("not a regular file"))
	}

	key, err := IdentityKey(abs)
	if err != nil {
		return nil, err
	}

	// The flight does not observe ctx, so an abandoned open still finishes
	// its extraction.
	ch := m.group.DoChan(key, func() (interface{}, error) {
		return m.materializeKey(abs, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		entry := *res.Val.(*CacheEntry)
		entry.Source = abs
		return &entry, nil
	case <-ctx.Done():
		m.logger.Debug("caller stopped waiting for extraction", "key", key, "source", abs)
		return nil, ctx.Err()
	}
}

func (m *Materializer) materializeKey(source, key string) (*CacheEntry, error) {
	target := filepath.Join(m.cacheDir, key)

	if hasContent(target) {
		m.logger.Debug("cache hit", "key", key, "dir", target)
		return &CacheEntry{Source: source, Key: key, Dir: target, Reused: true}, nil
	}

	if err := os.MkdirAll(m.cacheDir, 0755); err != nil {
		return nil, writeErr("create cache", m.cacheDir, err)
	}

	staging := filepath.Join(m.cacheDir, stagingPrefix+uuid.NewString())
	defer os.RemoveAll(staging)

	m.extractions.Add(1)
	m.logger.Info("extracting package", "source", source, "key", key)

	progress := func(done, total int) {
		m.notify(key, done, total)
	}
	if err := m.extractor.ExtractZip(source, staging, progress); err != nil {
		m.logger.Error("extraction failed", "source", source, "err", err)
		return nil, err
	}

	// An empty target is a leftover, not a result
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}

	if err := os.Rename(staging, target); err != nil {
		if hasContent(target) {
			// Another process finished first
			return &CacheEntry{Source: source, Key: key, Dir: target, Reused: true}, nil
		}
		return nil, writeErr("install", target, err)
	}

	if err := fsutil.SyncDir(m.cacheDir); err != nil {
		m.logger.Warn("sync cache dir", "err", err)
	}

	m.logger.Debug("extraction complete", "key", key, "dir", target)
	return &CacheEntry{Source: source, Key: key, Dir: target}, nil
}

func (m *Materializer) notify(key string, done, total int) {
	m.mu.Lock()
	listeners := make([]ProgressListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(key, done, total)
	}
}

// hasContent reports whether dir exists and has at least one entry.
func hasContent(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	return err == nil && len(names) > 0
}
