// Package tree finds the browsable entry point of an opened tree and lists
// directories with their classification.
package tree

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultBundleSuffix is the naming convention of an application bundle.
const DefaultBundleSuffix = ".app"

// PayloadDir is the directory IPA archives wrap their bundle in.
const PayloadDir = "Payload"

// FindBundle returns the first immediate child of dir that is a directory
// whose name ends with suffix, in os.ReadDir order. It does not recurse.
func FindBundle(dir, suffix string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if isDir(entry, full) {
			return full, true
		}
	}
	return "", false
}

// LocateEntryPoint returns the bundle directory inside root, or root itself
// when there is none.
//
// Only root's children are scanned, plus the children of root/Payload when
// root has no bundle of its own.
func LocateEntryPoint(root, suffix string) string {
	if suffix == "" {
		suffix = DefaultBundleSuffix
	}

	if bundle, ok := FindBundle(root, suffix); ok {
		return bundle
	}

	if bundle, ok := FindBundle(filepath.Join(root, PayloadDir), suffix); ok {
		return bundle
	}

	return root
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(entry os.DirEntry, full string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}
