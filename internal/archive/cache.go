package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CachedTree describes one extracted package in the cache.
type CachedTree struct {
	Key     string
	Dir     string
	Size    int64
	ModTime time.Time
}

// Entries lists the extracted trees in the cache, newest first.
// A missing cache root yields no entries.
func (m *Materializer) Entries() ([]CachedTree, error) {
	dirEntries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	var trees []CachedTree
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), stagingPrefix) {
			continue
		}

		dir := filepath.Join(m.cacheDir, de.Name())
		tree := CachedTree{Key: de.Name(), Dir: dir, Size: dirSize(dir)}
		if info, err := de.Info(); err == nil {
			tree.ModTime = info.ModTime()
		}
		trees = append(trees, tree)
	}

	sort.Slice(trees, func(i, j int) bool {
		return trees[i].ModTime.After(trees[j].ModTime)
	})

	return trees, nil
}

// Clear removes every extracted tree and staging directory. The cache root
// itself is kept.
func (m *Materializer) Clear() error {
	dirEntries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, de := range dirEntries {
		path := filepath.Join(m.cacheDir, de.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", de.Name(), err)
		}
	}

	m.logger.Info("cache cleared", "dir", m.cacheDir, "removed", len(dirEntries))
	return nil
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
