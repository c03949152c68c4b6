package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/testutil"
)

func TestEntriesAndClear(t *testing.T) {
	m := newTestMaterializer(t)
	ctx := context.Background()

	// Missing cache root is not an error
	trees, err := m.Entries()
	if err != nil || len(trees) != 0 {
		t.Fatalf("Entries() on missing root = %v, %v", trees, err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() on missing root = %v", err)
	}

	dir := t.TempDir()
	one, err := m.Materialize(ctx, testutil.CreateTestIPA(t, dir, "One.ipa", "One"))
	if err != nil {
		t.Fatal(err)
	}
	two, err := m.Materialize(ctx, testutil.CreateTestIPA(t, dir, "Two.ipa", "Two"))
	if err != nil {
		t.Fatal(err)
	}

	// Leftover staging dirs are not listed
	if err := os.MkdirAll(filepath.Join(m.CacheDir(), stagingPrefix+"leftover"), 0755); err != nil {
		t.Fatal(err)
	}

	trees, err = m.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d trees, want 2", len(trees))
	}

	keys := map[string]bool{}
	for _, tr := range trees {
		keys[tr.Key] = true
		if tr.Size <= 0 {
			t.Errorf("tree %s size = %d, want > 0", tr.Key, tr.Size)
		}
	}
	if !keys[one.Key] || !keys[two.Key] {
		t.Errorf("keys = %v, want %s and %s", keys, one.Key, two.Key)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	names, err := os.ReadDir(m.CacheDir())
	if err != nil {
		t.Fatalf("cache root removed by Clear: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("cache has %d entries after Clear", len(names))
	}

	// Reopening after a clear extracts again
	again, err := m.Materialize(ctx, filepath.Join(dir, "One.ipa"))
	if err != nil {
		t.Fatal(err)
	}
	if again.Reused {
		t.Error("materialize after Clear should extract")
	}
}
