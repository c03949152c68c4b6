// Package config loads IPAView's Lua configuration.
//
// The configuration file is plain Lua executed in a sandboxed gopher-lua VM.
// Only the string, table, math and base libraries are available, minus the
// base functions that load code. A read-only "platform" table describes the
// host and its per-user directories, so a config can branch on the platform:
//
//	ipaview = {
//	  cache_dir = platform.when(platform.is_linux, platform.home .. "/.cache/ipaview"),
//	  bundle_suffix = ".app",
//	  recent_limit = 20,
//	  package_extensions = { ".ipa", ".zip" },
//	  log = { level = "info", format = "console" },
//	}
//
// Every field is optional; missing fields keep their defaults. Load resolves
// the file location, applies the IPAVIEW_* environment overrides, and
// returns the effective paths the rest of the program uses.
//
// # Errors
//
// Lua failures are reported as *ParseError and schema failures as
// *ValidationError (wrapped in a ParseError when they come from a file).
// FormatError renders either for the terminal.
package config
