package config

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() error = %v", err)
	}
	if cfg.BundleSuffix != ".app" || cfg.RecentLimit != 20 {
		t.Errorf("Defaults() = %+v", cfg)
	}
	if len(cfg.PackageExtensions) != 2 || cfg.PackageExtensions[0] != ".ipa" {
		t.Errorf("PackageExtensions = %v, want [.ipa .zip]", cfg.PackageExtensions)
	}

	// Defaults must not share the archive package's slice
	cfg.PackageExtensions[0] = ".changed"
	if Defaults().PackageExtensions[0] != ".ipa" {
		t.Error("Defaults() returned a shared slice")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero limit allowed", mutate: func(c *Config) { c.RecentLimit = 0 }},
		{name: "empty suffix", mutate: func(c *Config) { c.BundleSuffix = "" }, wantField: "bundle_suffix"},
		{name: "suffix with separator", mutate: func(c *Config) { c.BundleSuffix = "x/.app" }, wantField: "bundle_suffix"},
		{name: "negative limit", mutate: func(c *Config) { c.RecentLimit = -1 }, wantField: "recent_limit"},
		{name: "huge limit", mutate: func(c *Config) { c.RecentLimit = MaxRecentLimit + 1 }, wantField: "recent_limit"},
		{name: "extension without dot", mutate: func(c *Config) { c.PackageExtensions = []string{"ipa"} }, wantField: "package_extensions[1]"},
		{name: "bare dot", mutate: func(c *Config) { c.PackageExtensions = []string{".ipa", "."} }, wantField: "package_extensions[2]"},
		{name: "NUL in cache dir", mutate: func(c *Config) { c.CacheDir = "/tmp/\x00" }, wantField: "cache_dir"},
		{name: "unknown level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantField: "log.level"},
		{name: "unknown format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantField: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", vErr.Field, tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Error() = %q should name the field", err.Error())
			}
		})
	}
}
