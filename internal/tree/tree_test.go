package tree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/macho"
)

// mkTree creates files and directories under a temp dir.
// Names ending in "/" are directories.
func mkTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("mkdir %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir parent of %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestLocateEntryPoint(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string // relative to root, "." for root
	}{
		{
			name:  "bundle at top level",
			files: map[string]string{"MyApp.app/Info.plist": "x", "README": "x"},
			want:  "MyApp.app",
		},
		{
			name:  "bundle under Payload",
			files: map[string]string{"Payload/MyApp.app/Info.plist": "x", "iTunesMetadata.plist": "x"},
			want:  "Payload/MyApp.app",
		},
		{
			name:  "file with bundle suffix is ignored",
			files: map[string]string{"Fake.app": "not a dir", "Real.app/": ""},
			want:  "Real.app",
		},
		{
			name:  "no bundle falls back to root",
			files: map[string]string{"docs/readme.txt": "x"},
			want:  ".",
		},
		{
			name:  "deeper bundles are not found",
			files: map[string]string{"a/b/Deep.app/": ""},
			want:  ".",
		},
		{
			name:  "first in enumeration order wins",
			files: map[string]string{"Beta.app/": "", "Alpha.app/": ""},
			want:  "Alpha.app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mkTree(t, tt.files)
			got := LocateEntryPoint(root, DefaultBundleSuffix)
			want := filepath.Join(root, filepath.FromSlash(tt.want))
			if got != want {
				t.Errorf("LocateEntryPoint() = %q, want %q", got, want)
			}
		})
	}
}

func TestLocateEntryPoint_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "gone")
	if got := LocateEntryPoint(root, ""); got != root {
		t.Errorf("LocateEntryPoint(missing) = %q, want root", got)
	}
}

func TestLocateEntryPoint_SymlinkedBundle(t *testing.T) {
	root := mkTree(t, map[string]string{"store/Linked.app/Info.plist": "x"})
	if err := os.Symlink(filepath.Join(root, "store", "Linked.app"), filepath.Join(root, "Linked.app")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got := LocateEntryPoint(root, ".app")
	if got != filepath.Join(root, "Linked.app") {
		t.Errorf("LocateEntryPoint() = %q", got)
	}
}

func TestList(t *testing.T) {
	machO := string([]byte{0xCF, 0xFA, 0xED, 0xFE, 0x0C, 0x00, 0x00, 0x01})
	root := mkTree(t, map[string]string{
		"MyApp":            machO,
		"Info.plist":       "<plist/>",
		"Frameworks/":      "",
		"_CodeSignature/":  "",
		"Assets.car":       "car",
		"PlugIns/x.appex/": "",
	})

	entries, err := List(context.Background(), root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	wantOrder := []string{"Frameworks", "PlugIns", "_CodeSignature", "Assets.car", "Info.plist", "MyApp"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantOrder))
	}
	for i, name := range wantOrder {
		if entries[i].Name != name {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Name, name)
		}
	}

	for _, e := range entries {
		switch e.Name {
		case "MyApp":
			if e.Kind != macho.NativeExecutable {
				t.Errorf("MyApp kind = %v, want NativeExecutable", e.Kind)
			}
			if e.Magic != macho.Magic64 {
				t.Errorf("MyApp magic = %v, want 64-bit", e.Magic)
			}
			if e.Size != int64(len(machO)) {
				t.Errorf("MyApp size = %d", e.Size)
			}
		case "Frameworks":
			if !e.IsDir || e.Kind != macho.Unknown {
				t.Errorf("Frameworks = %+v", e)
			}
		default:
			if e.Kind != macho.Unknown {
				t.Errorf("%s kind = %v, want Unknown", e.Name, e.Kind)
			}
		}
	}
}

func TestList_Errors(t *testing.T) {
	if _, err := List(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("List(missing) should fail")
	}

	root := mkTree(t, map[string]string{"a": "1", "b": "2"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := List(ctx, root); err == nil {
		t.Error("List(cancelled) should fail")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 bytes"},
		{1, "1 byte"},
		{999, "999 bytes"},
		{1000, "1.0 KB"},
		{1500, "1.5 KB"},
		{12_345_678, "12.3 MB"},
		{3_000_000_000, "3.0 GB"},
		{5_000_000_000_000_000, "5000.0 TB"},
		{-1, "0 bytes"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.size); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
