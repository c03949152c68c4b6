// Package archive materializes application packages into an on-disk cache.
//
// A package (an .ipa or any zip container) is extracted once into
// <cache-root>/<identity-key>, where the identity key is derived from the
// package bytes. Later opens of the same bytes reuse the extracted tree.
// Directories are passed through untouched.
//
// # Extraction
//
// Extraction happens in a staging directory next to the target and is
// renamed into place when complete, so a target directory is either absent
// or whole. Only one extraction per key runs at a time inside a process;
// concurrent callers share its result.
//
// # Errors
//
// Every failure is an *Error whose Kind is one of ErrSourceUnavailable,
// ErrExtractionFailed or ErrCacheWriteFailed:
//
//	entry, err := m.Materialize(ctx, "/Users/me/Downloads/App.ipa")
//	if errors.Is(err, archive.ErrExtractionFailed) {
//	    // corrupt or unsupported package
//	}
package archive
