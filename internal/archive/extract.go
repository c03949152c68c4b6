package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ProgressFunc receives extraction progress as entries written out of total.
type ProgressFunc func(done, total int)

// Extractor handles zip package extraction.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractZip extracts every entry of a zip package into destDir, keeping the
// archive's directory structure, file modes and symlinks.
// progress may be nil.
func (e *Extractor) ExtractZip(archivePath, destDir string, progress ProgressFunc) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return sourceErr("open archive", archivePath, err)
		}
		return extractErr("open archive", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return writeErr("create dest dir", destDir, err)
	}

	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)
	total := len(reader.File)

	destDir = filepath.Clean(destDir)
	for i, f := range reader.File {
		if err := e.extractEntry(f, destDir, cleanDest); err != nil {
			return err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	return nil
}

func (e *Extractor) extractEntry(f *zip.File, destDir, cleanDest string) error {
	name := strings.ReplaceAll(f.Name, "\\", "/")
	if name == "" || name == "/" {
		return nil
	}

	// Construct target path
	target := filepath.Join(destDir, filepath.FromSlash(name))

	// Security check: prevent path traversal
	if !strings.HasPrefix(target+string(os.PathSeparator), cleanDest) {
		return extractErr("extract", f.Name, fmt.Errorf("illegal file path"))
	}

	mode := f.Mode()

	switch {
	case mode.IsDir():
		if err := ensureDir(destDir, target, dirPerm(mode)); err != nil {
			return err
		}
		return nil

	case mode&os.ModeSymlink != 0:
		return e.extractSymlink(f, destDir, target, cleanDest)

	case mode.IsRegular():
		return e.extractFile(f, destDir, target)

	default:
		// Skip other types (devices, pipes)
		return nil
	}
}

func (e *Extractor) extractFile(f *zip.File, destDir, target string) error {
	if err := ensureDir(destDir, filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := rejectSymlink(target); err != nil {
		return err
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	src, err := f.Open()
	if err != nil {
		return extractErr("open entry", f.Name, err)
	}
	defer src.Close()

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fsErr("create file", target, err)
	}

	// Read failures mean a corrupt archive, write failures a cache problem
	tw := &trackingWriter{w: outFile}
	if _, err := io.Copy(tw, src); err != nil {
		outFile.Close()
		if tw.err != nil {
			return writeErr("write file", target, err)
		}
		return extractErr("read entry", f.Name, err)
	}

	if err := outFile.Close(); err != nil {
		return writeErr("close file", target, err)
	}

	// The umask may have stripped bits on create
	if err := os.Chmod(target, perm); err != nil {
		return writeErr("set mode", target, err)
	}

	if !f.Modified.IsZero() {
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}

	return nil
}

func (e *Extractor) extractSymlink(f *zip.File, destDir, target, cleanDest string) error {
	src, err := f.Open()
	if err != nil {
		return extractErr("open entry", f.Name, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, 4096))
	if err != nil {
		return extractErr("read symlink", f.Name, err)
	}
	linkname := string(data)

	// Links must stay inside the extracted tree
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	if filepath.IsAbs(linkname) || !strings.HasPrefix(resolved+string(os.PathSeparator), cleanDest) {
		return extractErr("extract", f.Name, fmt.Errorf("symlink escapes destination: %s", linkname))
	}
	if !upThenDown(linkname) {
		return extractErr("extract", f.Name, fmt.Errorf("symlink climbs after descending: %s", linkname))
	}

	if err := ensureDir(destDir, filepath.Dir(target), 0755); err != nil {
		return err
	}

	if err := os.Symlink(linkname, target); err != nil {
		return fsErr("create symlink", target, err)
	}

	return nil
}

// ensureDir creates dir below destDir one component at a time. An existing
// component must be a real directory: writing through a symlink extracted
// earlier could land outside destDir.
func ensureDir(destDir, dir string, perm os.FileMode) error {
	rel, err := filepath.Rel(destDir, dir)
	if err != nil {
		return extractErr("extract", dir, err)
	}
	if rel == "." {
		return nil
	}

	current := destDir
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		current = filepath.Join(current, part)

		info, err := os.Lstat(current)
		switch {
		case err == nil && info.Mode()&os.ModeSymlink != 0:
			return extractErr("extract", current, fmt.Errorf("path crosses a symlink"))
		case err == nil && !info.IsDir():
			return extractErr("create directory", current, syscall.ENOTDIR)
		case err == nil:
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return writeErr("inspect", current, err)
		}

		if err := os.Mkdir(current, perm); err != nil {
			return fsErr("create directory", current, err)
		}
	}
	return nil
}

// rejectSymlink fails when target already exists as a symlink, so opening it
// for writing cannot follow the link.
func rejectSymlink(target string) error {
	info, err := os.Lstat(target)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return extractErr("extract", target, fmt.Errorf("entry overwrites a symlink"))
	}
	return nil
}

// upThenDown reports whether every ".." in a link target comes before the
// first named component. Such a target resolves within the real directories
// above the link and can only descend afterwards, so a ".." evaluated after
// following another link never climbs out of the tree.
func upThenDown(linkname string) bool {
	descended := false
	for _, part := range strings.Split(filepath.ToSlash(linkname), "/") {
		switch part {
		case "", ".":
		case "..":
			if descended {
				return false
			}
		default:
			descended = true
		}
	}
	return true
}

// fsErr classifies a filesystem failure while writing an entry. Conflicts
// between entries mean a malformed package; anything else is the cache.
func fsErr(op, path string, err error) error {
	if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR) || errors.Is(err, fs.ErrExist) {
		return extractErr(op, path, err)
	}
	return writeErr(op, path, err)
}

// dirPerm keeps extracted directories traversable by their owner.
func dirPerm(mode os.FileMode) os.FileMode {
	perm := mode.Perm() | 0700
	if mode.Perm() == 0 {
		perm = 0755
	}
	return perm
}

// trackingWriter records whether a copy failed on the write side.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
