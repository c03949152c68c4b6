package config

import (
	"bytes"
	"fmt"
	"strings"
)

// Generator renders a Config as Lua source that Parser reads back.
type Generator struct {
	indent string
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{indent: "  "}
}

// Generate renders cfg. Empty optional paths are written as comments so the
// output doubles as a template.
func (g *Generator) Generate(cfg *Config) string {
	var buf bytes.Buffer

	buf.WriteString("-- IPAView configuration\n")
	buf.WriteString("-- The read-only `platform` table describes this machine, e.g.\n")
	buf.WriteString("--   cache_dir = platform.when(platform.is_linux, platform.home .. \"/.cache/ipaview\"),\n\n")
	buf.WriteString(luaGlobalIPAView + " = {\n")

	g.writePath(&buf, luaFieldCacheDir, cfg.CacheDir)
	g.writeField(&buf, 1, luaFieldBundleSuffix, g.quoteLuaString(cfg.BundleSuffix))
	g.writeField(&buf, 1, luaFieldRecentLimit, fmt.Sprintf("%d", cfg.RecentLimit))

	quoted := make([]string, len(cfg.PackageExtensions))
	for i, ext := range cfg.PackageExtensions {
		quoted[i] = g.quoteLuaString(ext)
	}
	g.writeField(&buf, 1, luaFieldPackageExts, "{ "+strings.Join(quoted, ", ")+" }")

	g.writePath(&buf, luaFieldDownloadsDir, cfg.DownloadsDir)

	buf.WriteString(g.indent + luaFieldLog + " = {\n")
	g.writeField(&buf, 2, luaFieldLevel, g.quoteLuaString(cfg.Log.Level))
	g.writeField(&buf, 2, luaFieldFormat, g.quoteLuaString(cfg.Log.Format))
	buf.WriteString(g.indent + "},\n")

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeField(buf *bytes.Buffer, depth int, name, value string) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(value)
	buf.WriteString(",\n")
}

func (g *Generator) writePath(buf *bytes.Buffer, name, value string) {
	if value == "" {
		buf.WriteString(g.indent + "-- " + name + " = \"...\",\n")
		return
	}
	g.writeField(buf, 1, name, g.quoteLuaString(value))
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
