// Package discover finds package files waiting in a directory, typically
// the user's downloads folder.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Package is a candidate file to open.
type Package struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Packages lists the regular files directly inside dir whose extension
// matches one of exts, case-insensitively. Results are sorted newest first,
// then by name. Hidden files are skipped.
func Packages(dir string, exts []string) ([]Package, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(ext)] = true
	}

	var pkgs []Package
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") || !wanted[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := de.Info()
		if err != nil || !info.Mode().IsRegular() {
			// Vanished or not a plain file
			continue
		}

		pkgs = append(pkgs, Package{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(pkgs, func(i, j int) bool {
		if !pkgs[i].ModTime.Equal(pkgs[j].ModTime) {
			return pkgs[i].ModTime.After(pkgs[j].ModTime)
		}
		return pkgs[i].Name < pkgs[j].Name
	})

	return pkgs, nil
}
