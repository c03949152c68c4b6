//go:build go1.18

package config

import (
	"context"
	"testing"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/platform"
)

func FuzzParser_ParseString(f *testing.F) {
	f.Add(`ipaview = { recent_limit = 5 }`)
	f.Add(`ipaview = { package_extensions = { ".ipa" } }`)
	f.Add(`ipaview = { log = { level = "debug" } }`)

	parser := NewParser(nil, platform.Dirs{})

	f.Fuzz(func(t *testing.T, luaCode string) {
		cfg, err := parser.ParseString(context.Background(), luaCode)
		if err == nil {
			if vErr := cfg.Validate(); vErr != nil {
				t.Errorf("ParseString accepted an invalid config: %v", vErr)
			}
		}
	})
}

func FuzzGenerator_QuoteLuaString(f *testing.F) {
	f.Add("hello")
	f.Add(`say "hello"`)
	f.Add("line1\nline2")
	f.Add(`C:\\Users\\test`)

	gen := NewGenerator()

	f.Fuzz(func(t *testing.T, input string) {
		quoted := gen.quoteLuaString(input)
		if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
			t.Errorf("quoteLuaString(%q) = %q, invalid format", input, quoted)
		}
	})
}
