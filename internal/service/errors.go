package service

import "errors"

var (
	// ErrNoSource is returned by navigation calls before any source is open.
	ErrNoSource = errors.New("no source is open")

	// ErrOutsideRoot is returned when a navigation target is not inside
	// the opened tree.
	ErrOutsideRoot = errors.New("path is outside the opened tree")

	// ErrNotDirectory is returned when a navigation target is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrEntryMissing is returned by OpenRecent when the recorded path no
	// longer exists. The entry has already been removed.
	ErrEntryMissing = errors.New("recent entry no longer exists")

	// ErrUnsupportedSource is returned for a regular file that is not a
	// package.
	ErrUnsupportedSource = errors.New("not a directory or package")

	// ErrSuperseded is returned by an open that finished after a newer open
	// had started. The newer open owns the session.
	ErrSuperseded = errors.New("open superseded by a newer open")
)
