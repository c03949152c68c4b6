// Package testutil provides utilities for testing IPAView in isolation.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Root      string
	ConfigDir string
	DataDir   string
	CacheDir  string
	Downloads string
}

// SetupTestEnv creates isolated directories for a test and points the
// IPAVIEW_* environment variables and HOME at them, so tests never touch
// the user's real cache, recent list, or configuration.
//
// Cleanup is handled by t.TempDir.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Root:      tmpDir,
		ConfigDir: filepath.Join(tmpDir, "config"),
		DataDir:   filepath.Join(tmpDir, "data"),
		CacheDir:  filepath.Join(tmpDir, "cache"),
		Downloads: filepath.Join(tmpDir, "home", "Downloads"),
	}

	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "home", ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "home", ".local", "share"))
	t.Setenv("XDG_DOWNLOAD_DIR", "")
	t.Setenv("IPAVIEW_CONFIG_DIR", env.ConfigDir)
	t.Setenv("IPAVIEW_DATA_DIR", env.DataDir)
	t.Setenv("IPAVIEW_CACHE_DIR", env.CacheDir)
	t.Setenv("IPAVIEW_LOG_LEVEL", "")

	for _, dir := range []string{env.ConfigDir, env.DataDir, env.Downloads} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}

// ZipFile describes one entry of a test archive.
type ZipFile struct {
	Body    string
	Mode    os.FileMode // 0 means 0644 for files
	Symlink string      // link target; Body is ignored when set
}

// MachOBody is a minimal 64-bit Mach-O header prefix.
const MachOBody = "\xcf\xfa\xed\xfe\x0c\x00\x00\x01"

// ZipEntry is a named ZipFile for archives whose entry order matters.
type ZipEntry struct {
	Name string
	ZipFile
}

// CreateTestZip writes a zip archive named name into dir, with entries in
// name order. Names ending in "/" become directory entries.
func CreateTestZip(t *testing.T, dir, name string, files map[string]ZipFile) string {
	t.Helper()

	// Stable entry order keeps archive bytes deterministic
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]ZipEntry, len(names))
	for i, n := range names {
		entries[i] = ZipEntry{Name: n, ZipFile: files[n]}
	}
	return CreateOrderedZip(t, dir, name, entries)
}

// CreateOrderedZip writes a zip archive with entries exactly in the given
// order, duplicates included.
func CreateOrderedZip(t *testing.T, dir, name string, entries []ZipEntry) string {
	t.Helper()

	archivePath := filepath.Join(dir, name)
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)

	for _, e := range entries {
		n, zf := e.Name, e.ZipFile
		header := &zip.FileHeader{Name: n, Method: zip.Deflate}

		switch {
		case n[len(n)-1] == '/':
			header.SetMode(os.ModeDir | 0755)
		case zf.Symlink != "":
			header.SetMode(os.ModeSymlink | 0777)
		case zf.Mode != 0:
			header.SetMode(zf.Mode)
		default:
			header.SetMode(0644)
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("failed to write header for %s: %v", n, err)
		}

		body := zf.Body
		if zf.Symlink != "" {
			body = zf.Symlink
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("failed to write content for %s: %v", n, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize archive: %v", err)
	}

	return archivePath
}

// CreateTestIPA writes a typical IPA layout: Payload/<app>.app with an
// executable, an Info.plist, and a framework binary.
func CreateTestIPA(t *testing.T, dir, name, app string) string {
	t.Helper()

	bundle := "Payload/" + app + ".app/"
	return CreateTestZip(t, dir, name, map[string]ZipFile{
		"Payload/":            {},
		bundle:                {},
		bundle + app:          {Body: MachOBody, Mode: 0755},
		bundle + "Info.plist": {Body: "<plist version=\"1.0\"></plist>"},
		bundle + "Frameworks/Kit.framework/Kit": {Body: MachOBody, Mode: 0755},
		"iTunesMetadata.plist":                 {Body: "<plist/>"},
	})
}
