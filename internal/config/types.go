package config

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/archive"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/recent"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

// Config is the user-facing configuration.
type Config struct {
	// CacheDir overrides the cache root. Empty means
	// <app-support>/CacheDirectory.
	CacheDir string

	// BundleSuffix marks the entry-point directory of an opened tree.
	BundleSuffix string

	// RecentLimit caps the recent entries list.
	RecentLimit int

	// PackageExtensions are the file extensions opened as packages.
	PackageExtensions []string

	// DownloadsDir overrides the directory scanned for packages.
	DownloadsDir string

	Log LogConfig
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"console": true, "json": true}
)

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		BundleSuffix:      tree.DefaultBundleSuffix,
		RecentLimit:       recent.DefaultLimit,
		PackageExtensions: append([]string(nil), archive.DefaultPackageExtensions...),
		Log:               LogConfig{Level: "info", Format: "console"},
	}
}

// Validate checks every field against the schema.
func (c *Config) Validate() error {
	if c.BundleSuffix == "" {
		return &ValidationError{Field: luaFieldBundleSuffix, Message: "cannot be empty"}
	}
	if strings.ContainsAny(c.BundleSuffix, `/\`) {
		return &ValidationError{Field: luaFieldBundleSuffix, Message: fmt.Sprintf("%q must not contain path separators", c.BundleSuffix)}
	}

	if c.RecentLimit < 0 {
		return &ValidationError{Field: luaFieldRecentLimit, Message: fmt.Sprintf("must not be negative, got %d", c.RecentLimit)}
	}
	if c.RecentLimit > MaxRecentLimit {
		return &ValidationError{Field: luaFieldRecentLimit, Message: fmt.Sprintf("%d exceeds the maximum of %d", c.RecentLimit, MaxRecentLimit)}
	}

	if len(c.PackageExtensions) > MaxPackageExtensions {
		return &ValidationError{
			Field:   luaFieldPackageExts,
			Message: fmt.Sprintf("too many extensions (%d), maximum is %d", len(c.PackageExtensions), MaxPackageExtensions),
		}
	}
	for i, ext := range c.PackageExtensions {
		if err := validateExtension(ext); err != nil {
			return &ValidationError{Field: fmt.Sprintf("%s[%d]", luaFieldPackageExts, i+1), Message: err.Error()}
		}
	}

	for field, path := range map[string]string{luaFieldCacheDir: c.CacheDir, luaFieldDownloadsDir: c.DownloadsDir} {
		if strings.ContainsRune(path, 0) {
			return &ValidationError{Field: field, Message: "contains a NUL byte"}
		}
	}

	if !validLevels[c.Log.Level] {
		return &ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.Log.Level)}
	}
	if !validFormats[c.Log.Format] {
		return &ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown format %q (want console or json)", c.Log.Format)}
	}

	return nil
}

func validateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return fmt.Errorf("%q must start with a dot and name an extension", ext)
	}
	if strings.ContainsAny(ext, `/\ `) {
		return fmt.Errorf("%q must not contain separators or spaces", ext)
	}
	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}
