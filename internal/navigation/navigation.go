// Package navigation derives the breadcrumb trail shown while walking an
// opened tree.
package navigation

import (
	"github.com/ZebulonRouseFrantzich/ipaview/internal/fspath"
)

// segmentSuffix marks a breadcrumb label as a path segment.
const segmentSuffix = " /"

// Item is one breadcrumb: a display name and the directory it points at.
type Item struct {
	Name string
	Path fspath.Path
}

// Navigator is the capability a UI uses to move around an opened tree.
type Navigator interface {
	// OpenPath makes path the current directory and returns the new trail.
	OpenPath(path string) ([]Item, error)
	// ResolveBreadcrumb returns the directory an item points at.
	ResolveBreadcrumb(item Item) fspath.Path
}

// Breadcrumbs returns the trail from root to current, root first.
//
// The walk goes upward from current and stops after the step equal to root,
// or when the next parent is the filesystem root. A current outside root
// therefore ends at the top of the filesystem instead of looping.
func Breadcrumbs(root, current fspath.Path) []Item {
	if current.IsZero() {
		return nil
	}

	var items []Item
	p := current
	for {
		items = append(items, Item{Name: label(p), Path: p})
		if p.Equal(root) {
			break
		}

		parent := p.Parent()
		if parent.Equal(p) || (parent.Name() == "" && !parent.Equal(root)) {
			break
		}
		p = parent
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Resolve returns the path a breadcrumb points at.
func Resolve(item Item) fspath.Path {
	return item.Path
}

// RelativePath returns p relative to root, "." for the root itself.
func RelativePath(root, p fspath.Path) (string, error) {
	return root.Rel(p)
}

func label(p fspath.Path) string {
	name := p.Name()
	if name == "" {
		name = p.String()
	}
	return name + segmentSuffix
}
