package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/platform"
)

// Paths are the effective locations derived from the config and environment.
type Paths struct {
	ConfigFile string
	AppSupport string
	CacheDir   string
	RecentFile string
	Downloads  string
}

// Loaded is the result of Load.
type Loaded struct {
	Config   *Config
	Paths    Paths
	Platform *platform.Info
	// FromFile reports whether a config file was found and parsed.
	FromFile bool
}

// LoadOptions configures Load. Zero values use the real platform.
type LoadOptions struct {
	Detector platform.Detector
	Getenv   func(string) string
	Logger   logging.Logger
}

// Load resolves the config file, parses it when present, applies the
// IPAVIEW_* environment overrides and returns the effective settings.
// A missing file is not an error.
func Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	detector := opts.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := logging.OrNop(opts.Logger)

	info, err := detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	dirs, err := platform.ResolveDirs(info, getenv)
	if err != nil {
		return nil, fmt.Errorf("resolve directories: %w", err)
	}

	configDir := dirs.Config
	if v := getenv(EnvConfigDir); v != "" {
		configDir = expandHome(v, dirs.Home)
	}
	configFile := filepath.Join(configDir, FileName)

	loaded := &Loaded{Platform: info}

	cfg, err := NewParser(detector, dirs).WithLogger(logger).ParseFile(ctx, configFile)
	switch {
	case err == nil:
		loaded.FromFile = true
		logger.Debug("loaded config", "path", configFile)
	case errors.Is(err, fs.ErrNotExist):
		cfg = Defaults()
		logger.Debug("no config file, using defaults", "path", configFile)
	default:
		return nil, fmt.Errorf("load %s: %w", configFile, err)
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	appSupport := dirs.AppSupport
	if v := getenv(EnvDataDir); v != "" {
		appSupport = expandHome(v, dirs.Home)
	}

	loaded.Config = cfg
	loaded.Paths = Paths{
		ConfigFile: configFile,
		AppSupport: appSupport,
		CacheDir:   filepath.Join(appSupport, CacheDirName),
		RecentFile: filepath.Join(appSupport, RecentFileName),
		Downloads:  dirs.Downloads,
	}
	if cfg.CacheDir != "" {
		loaded.Paths.CacheDir = expandHome(cfg.CacheDir, dirs.Home)
	}
	if cfg.DownloadsDir != "" {
		loaded.Paths.Downloads = expandHome(cfg.DownloadsDir, dirs.Home)
	}

	return loaded, nil
}

// expandHome replaces a leading "~" with home and cleans the result.
func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return filepath.Clean(path)
}
