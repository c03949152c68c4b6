package tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/macho"
)

const (
	minWorkers = 4
	maxWorkers = 32
)

// Entry is one item of a directory listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	Kind    macho.Kind
	Magic   macho.Magic
}

// List enumerates dir without recursing. Regular files are classified
// concurrently; directories come first, then files, each sorted by name.
func List(ctx context.Context, dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	entries := make([]Entry, len(dirEntries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount())

	for i, de := range dirEntries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = describe(dir, de)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func describe(dir string, de os.DirEntry) Entry {
	full := filepath.Join(dir, de.Name())
	e := Entry{
		Name:  de.Name(),
		Path:  full,
		IsDir: isDir(de, full),
	}

	if info, err := de.Info(); err == nil {
		e.Mode = info.Mode()
		e.ModTime = info.ModTime()
		if !e.IsDir {
			e.Size = info.Size()
		}
	}

	if !e.IsDir && (e.Mode.IsRegular() || e.Mode&os.ModeSymlink != 0) {
		e.Magic = macho.DescribeFile(full)
		if e.Magic != macho.MagicNone {
			e.Kind = macho.NativeExecutable
		}
	}

	return e
}

// workerCount returns the classification concurrency.
func workerCount() int {
	n := runtime.NumCPU() * 2
	if n < minWorkers {
		return minWorkers
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}
