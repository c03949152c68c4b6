package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPackages(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)

	files := []struct {
		name string
		age  time.Duration
	}{
		{"Old.ipa", 3 * time.Hour},
		{"New.IPA", time.Hour},
		{"Bundle.zip", 2 * time.Hour},
		{"Same-b.ipa", 4 * time.Hour},
		{"Same-a.ipa", 4 * time.Hour},
		{"notes.txt", 0},
		{".hidden.ipa", 0},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte("PK"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := base.Add(-f.age)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "Folder.ipa"), 0755); err != nil {
		t.Fatal(err)
	}

	pkgs, err := Packages(dir, []string{".ipa", ".ZIP"})
	if err != nil {
		t.Fatalf("Packages() error = %v", err)
	}

	want := []string{"New.IPA", "Bundle.zip", "Old.ipa", "Same-a.ipa", "Same-b.ipa"}
	if len(pkgs) != len(want) {
		t.Fatalf("got %d packages, want %d: %+v", len(pkgs), len(want), pkgs)
	}
	for i, w := range want {
		if pkgs[i].Name != w {
			t.Errorf("package %d = %s, want %s", i, pkgs[i].Name, w)
		}
		if pkgs[i].Path != filepath.Join(dir, w) {
			t.Errorf("package %d path = %s", i, pkgs[i].Path)
		}
		if pkgs[i].Size != 2 {
			t.Errorf("package %d size = %d, want 2", i, pkgs[i].Size)
		}
	}
}

func TestPackages_Empty(t *testing.T) {
	pkgs, err := Packages(t.TempDir(), []string{".ipa"})
	if err != nil {
		t.Fatalf("Packages() error = %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("got %v, want none", pkgs)
	}
}

func TestPackages_MissingDir(t *testing.T) {
	if _, err := Packages(filepath.Join(t.TempDir(), "absent"), []string{".ipa"}); err == nil {
		t.Error("Packages() on missing dir should fail")
	}
}
