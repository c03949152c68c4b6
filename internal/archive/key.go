package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultPackageExtensions are the file extensions treated as packages.
var DefaultPackageExtensions = []string{".ipa", ".zip"}

var (
	zipLocalHeader = []byte("PK\x03\x04")
	zipEmptyHeader = []byte("PK\x05\x06")
)

// IdentityKey fingerprints the bytes of the file at path.
// The same bytes always give the same key; any change gives a new one.
func IdentityKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", sourceErr("open", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", sourceErr("hash", path, err)
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// IsPackage reports whether path looks like a package: its extension is in
// exts (case-insensitive) or it starts with a zip signature.
func IsPackage(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext != "" && ext == strings.ToLower(e) {
			return true
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 4)
	if _, err := io.ReadFull(f, buf); err != nil {
		return false
	}
	return bytes.Equal(buf, zipLocalHeader) || bytes.Equal(buf, zipEmptyHeader)
}
