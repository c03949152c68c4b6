package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/platform"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/testutil"
)

func loadWith(t *testing.T, env testutil.Env) (*Loaded, error) {
	t.Helper()
	return Load(context.Background(), LoadOptions{
		Detector: stubDetector{info: &platform.Info{OS: "linux", Arch: "amd64"}},
	})
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	loaded, err := loadWith(t, env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.FromFile {
		t.Error("FromFile should be false without a config file")
	}
	if loaded.Config.RecentLimit != 20 {
		t.Errorf("RecentLimit = %d, want default", loaded.Config.RecentLimit)
	}

	p := loaded.Paths
	if p.ConfigFile != filepath.Join(env.ConfigDir, FileName) {
		t.Errorf("ConfigFile = %s", p.ConfigFile)
	}
	if p.AppSupport != env.DataDir {
		t.Errorf("AppSupport = %s, want %s", p.AppSupport, env.DataDir)
	}
	if p.RecentFile != filepath.Join(env.DataDir, RecentFileName) {
		t.Errorf("RecentFile = %s", p.RecentFile)
	}
	if p.CacheDir != env.CacheDir {
		t.Errorf("CacheDir = %s, want %s", p.CacheDir, env.CacheDir)
	}
	if p.Downloads != env.Downloads {
		t.Errorf("Downloads = %s, want %s", p.Downloads, env.Downloads)
	}
}

func TestLoad_DefaultLocations(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvCacheDir, "")

	loaded, err := loadWith(t, env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home := filepath.Join(env.Root, "home")
	support := filepath.Join(home, ".local", "share", "ipaview")
	if loaded.Paths.AppSupport != support {
		t.Errorf("AppSupport = %s, want %s", loaded.Paths.AppSupport, support)
	}
	if loaded.Paths.CacheDir != filepath.Join(support, CacheDirName) {
		t.Errorf("CacheDir = %s", loaded.Paths.CacheDir)
	}
	if loaded.Paths.ConfigFile != filepath.Join(home, ".config", "ipaview", FileName) {
		t.Errorf("ConfigFile = %s", loaded.Paths.ConfigFile)
	}
}

func TestLoad_File(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	t.Setenv(EnvCacheDir, "")
	writeConfig(t, env.ConfigDir, `ipaview = {
		cache_dir = "~/cache",
		downloads_dir = platform.downloads_dir .. "/ipas",
		recent_limit = 7,
		log = { level = "warn" },
	}`)

	loaded, err := loadWith(t, env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.FromFile {
		t.Error("FromFile should be true")
	}

	home := filepath.Join(env.Root, "home")
	if loaded.Paths.CacheDir != filepath.Join(home, "cache") {
		t.Errorf("CacheDir = %s, want ~ expanded", loaded.Paths.CacheDir)
	}
	if loaded.Paths.Downloads != filepath.Join(env.Downloads, "ipas") {
		t.Errorf("Downloads = %s", loaded.Paths.Downloads)
	}
	if loaded.Config.RecentLimit != 7 || loaded.Config.Log.Level != "warn" {
		t.Errorf("Config = %+v", loaded.Config)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	writeConfig(t, env.ConfigDir, `ipaview = { cache_dir = "/from/file", log = { level = "info" } }`)
	t.Setenv(EnvLogLevel, "DEBUG")

	loaded, err := loadWith(t, env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Paths.CacheDir != env.CacheDir {
		t.Errorf("CacheDir = %s, environment should win over file", loaded.Paths.CacheDir)
	}
	if loaded.Config.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", loaded.Config.Log.Level)
	}

	t.Setenv(EnvLogLevel, "noisy")
	if _, err := loadWith(t, env); err == nil {
		t.Error("Load() should reject an invalid IPAVIEW_LOG_LEVEL")
	}
}

func TestLoad_BadFile(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	writeConfig(t, env.ConfigDir, `ipaview = { recent_limit = -4 }`)

	_, err := loadWith(t, env)
	if err == nil {
		t.Fatal("Load() should fail on an invalid config")
	}
	if !strings.Contains(err.Error(), env.ConfigDir) {
		t.Errorf("error %q should name the file", err)
	}
	if msg := FormatError(err, false); !strings.Contains(msg, "recent_limit") {
		t.Errorf("FormatError() = %q", msg)
	}
}

func TestExpandHome(t *testing.T) {
	home := filepath.FromSlash("/home/u")
	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/x/y", filepath.Join(home, "x", "y")},
		{"/abs/./p/", filepath.FromSlash("/abs/p")},
		{"~other", "~other"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in, home); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
