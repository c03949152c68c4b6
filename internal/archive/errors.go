package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means the source path is missing or unreadable.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrExtractionFailed means the package is corrupt or not a supported format.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrCacheWriteFailed means the cache could not be written (disk full,
	// permissions).
	ErrCacheWriteFailed = errors.New("cache write failed")
)

// Error describes a failed materialization step.
type Error struct {
	Op   string // operation, e.g. "open", "extract", "hash"
	Path string // path the operation acted on
	Kind error  // one of the Err* sentinels
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func sourceErr(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrSourceUnavailable, Err: err}
}

func extractErr(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrExtractionFailed, Err: err}
}

func writeErr(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrCacheWriteFailed, Err: err}
}

// KindOf returns the sentinel kind of err, or nil if err is not an *Error.
func KindOf(err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return nil
}
