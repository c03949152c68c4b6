package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/platform"
)

// Parser evaluates Lua config with the platform table injected.
type Parser struct {
	detector platform.Detector
	dirs     platform.Dirs
	logger   logging.Logger
}

// NewParser creates a config parser. A nil detector skips the platform
// table entirely.
func NewParser(detector platform.Detector, dirs platform.Dirs) *Parser {
	return &Parser{detector: detector, dirs: dirs, logger: logging.Nop()}
}

// WithLogger sets the logger used for parse diagnostics.
func (p *Parser) WithLogger(l logging.Logger) *Parser {
	p.logger = logging.OrNop(l)
	return p
}

// ParseFile reads and parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	p.logger.Debug("parsing config", "path", path, "bytes", len(data))
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string. Fields the config does not
// set keep their defaults.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info, p.dirs); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "config evaluation timed out", Detail: ctxErr.Error()}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "ipaview" table. A config without the
// table yields the defaults.
func extractConfig(L *lua.LState) (*Config, error) {
	cfg := Defaults()

	global := L.GetGlobal(luaGlobalIPAView)
	switch global.Type() {
	case lua.LTNil:
		return cfg, nil
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: "invalid 'ipaview' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	var errs []error
	str := func(field string, dst *string) {
		switch v := table.RawGetString(field); v.Type() {
		case lua.LTNil:
		case lua.LTString:
			*dst = v.String()
		default:
			errs = append(errs, typeErr(field, "string", v))
		}
	}

	str(luaFieldCacheDir, &cfg.CacheDir)
	str(luaFieldBundleSuffix, &cfg.BundleSuffix)
	str(luaFieldDownloadsDir, &cfg.DownloadsDir)

	switch v := table.RawGetString(luaFieldRecentLimit); v.Type() {
	case lua.LTNil:
	case lua.LTNumber:
		n := float64(lua.LVAsNumber(v))
		if n != float64(int(n)) {
			errs = append(errs, &ValidationError{Field: luaFieldRecentLimit, Message: fmt.Sprintf("must be a whole number, got %v", n)})
		} else {
			cfg.RecentLimit = int(n)
		}
	default:
		errs = append(errs, typeErr(luaFieldRecentLimit, "number", v))
	}

	switch v := table.RawGetString(luaFieldPackageExts); v.Type() {
	case lua.LTNil:
	case lua.LTTable:
		exts, err := extractExtensions(v.(*lua.LTable))
		if err != nil {
			errs = append(errs, err)
		} else if len(exts) > 0 {
			cfg.PackageExtensions = exts
		}
	default:
		errs = append(errs, typeErr(luaFieldPackageExts, "table", v))
	}

	switch v := table.RawGetString(luaFieldLog); v.Type() {
	case lua.LTNil:
	case lua.LTTable:
		logTable := v.(*lua.LTable)
		if lv := logTable.RawGetString(luaFieldLevel); lv.Type() == lua.LTString {
			cfg.Log.Level = strings.ToLower(lv.String())
		} else if lv.Type() != lua.LTNil {
			errs = append(errs, typeErr("log.level", "string", lv))
		}
		if fv := logTable.RawGetString(luaFieldFormat); fv.Type() == lua.LTString {
			cfg.Log.Format = strings.ToLower(fv.String())
		} else if fv.Type() != lua.LTNil {
			errs = append(errs, typeErr("log.format", "string", fv))
		}
	default:
		errs = append(errs, typeErr(luaFieldLog, "table", v))
	}

	if len(errs) == 0 {
		if err := cfg.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  errors.Join(errs...).Error(),
		}
	}

	return cfg, nil
}

// extractExtensions reads an array of strings. nil holes left by
// platform.when are skipped.
func extractExtensions(table *lua.LTable) ([]string, error) {
	var exts []string
	var err error

	table.ForEach(func(key, value lua.LValue) {
		if err != nil || value.Type() == lua.LTNil {
			return
		}
		if value.Type() != lua.LTString {
			err = typeErr(fmt.Sprintf("%s[%s]", luaFieldPackageExts, key), "string", value)
			return
		}
		exts = append(exts, strings.ToLower(value.String()))
	})

	return exts, err
}

func typeErr(field, want string, got lua.LValue) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("expected %s, got %s", want, got.Type())}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
