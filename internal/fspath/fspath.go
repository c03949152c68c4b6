// Package fspath provides a normalized filesystem path value.
//
// A Path is always absolute and cleaned, so two paths that differ only in
// trailing separators or redundant elements compare equal.
package fspath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path is an immutable, normalized absolute path. The zero value is invalid.
type Path struct {
	p string
}

// New normalizes raw into a Path. Relative paths are resolved against the
// working directory and a leading "~" expands to the home directory.
func New(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("empty path")
	}

	if raw == "~" || strings.HasPrefix(raw, "~"+string(filepath.Separator)) || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Path{}, fmt.Errorf("get home directory: %w", err)
		}
		raw = filepath.Join(home, raw[1:])
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return Path{}, fmt.Errorf("resolve %s: %w", raw, err)
	}
	return Path{p: abs}, nil
}

// MustNew is like New but panics on error. Intended for tests and constants.
func MustNew(raw string) Path {
	p, err := New(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the path as a string.
func (p Path) String() string {
	return p.p
}

// IsZero reports whether p is the zero value.
func (p Path) IsZero() bool {
	return p.p == ""
}

// IsRoot reports whether p is a filesystem root ("/" or a volume root).
func (p Path) IsRoot() bool {
	return p.p != "" && filepath.Dir(p.p) == p.p
}

// Name returns the last element of the path, or "" for a filesystem root.
func (p Path) Name() string {
	if p.p == "" || p.IsRoot() {
		return ""
	}
	return filepath.Base(p.p)
}

// Parent returns the parent directory. The parent of a root is itself.
func (p Path) Parent() Path {
	return Path{p: filepath.Dir(p.p)}
}

// Join appends elements to p.
func (p Path) Join(elem ...string) Path {
	return Path{p: filepath.Join(append([]string{p.p}, elem...)...)}
}

// Equal reports whether p and other name the same location.
func (p Path) Equal(other Path) bool {
	return p.p == other.p
}

// Contains reports whether other is p or a descendant of p.
func (p Path) Contains(other Path) bool {
	if p.p == "" || other.p == "" {
		return false
	}
	if p.p == other.p {
		return true
	}
	prefix := p.p
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(other.p, prefix)
}

// Rel returns other relative to p. It fails when other is not inside p.
func (p Path) Rel(other Path) (string, error) {
	if !p.Contains(other) {
		return "", fmt.Errorf("%s is not inside %s", other, p)
	}
	return filepath.Rel(p.p, other.p)
}
