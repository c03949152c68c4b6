package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalIPAView     = "ipaview"
	luaFieldCacheDir     = "cache_dir"
	luaFieldBundleSuffix = "bundle_suffix"
	luaFieldRecentLimit  = "recent_limit"
	luaFieldPackageExts  = "package_extensions"
	luaFieldDownloadsDir = "downloads_dir"
	luaFieldLog          = "log"
	luaFieldLevel        = "level"
	luaFieldFormat       = "format"
)

// Environment overrides
const (
	EnvConfigDir = "IPAVIEW_CONFIG_DIR"
	EnvDataDir   = "IPAVIEW_DATA_DIR"
	EnvCacheDir  = "IPAVIEW_CACHE_DIR"
	EnvLogLevel  = "IPAVIEW_LOG_LEVEL"
)

const (
	// FileName is the configuration file inside the config directory.
	FileName = "config.lua"
	// CacheDirName is the cache root inside the application-support directory.
	CacheDirName = "CacheDirectory"
	// RecentFileName is the recent-entries file inside the application-support directory.
	RecentFileName = "recent.json"

	// MaxConfigSize bounds the configuration file.
	MaxConfigSize = 1 << 20
	// MaxRecentLimit bounds recent_limit.
	MaxRecentLimit = 1000
	// MaxPackageExtensions bounds package_extensions.
	MaxPackageExtensions = 64
	// DefaultParseTimeout applies when the caller's context has no deadline.
	DefaultParseTimeout = 5 * time.Second

	callStackSize = 256
	registrySize  = 1024 * 8
)
