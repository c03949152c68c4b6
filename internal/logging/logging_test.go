package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}

	l := Nop()
	if got := OrNop(l); got != l {
		t.Error("OrNop should return the provided logger")
	}

	// Must not panic
	l.Debug("debug", "k", "v")
	l.Info("info")
	l.Warn("warn")
	l.Error("error", "err", "boom")
}

func TestZapLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Debug("extracting", "key", "abc123")
	l.Info("opened", "path", "/tmp/App.ipa")
	l.Warn("dropped event", "kind", "navigated")
	l.Error("extraction failed", "err", "corrupt")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("got %d log entries, want 4", len(entries))
	}

	wantLevels := []string{"debug", "info", "warn", "error"}
	for i, e := range entries {
		if e.Level.String() != wantLevels[i] {
			t.Errorf("entry %d level = %s, want %s", i, e.Level, wantLevels[i])
		}
	}

	ctx := entries[1].ContextMap()
	if ctx["path"] != "/tmp/App.ipa" {
		t.Errorf("path field = %v, want /tmp/App.ipa", ctx["path"])
	}
}

func TestZapLogger_With(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewFromZap(zap.New(core)).With("session", "s1")

	l.Info("navigated")
	l.Debug("filtered out")

	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1 (debug filtered)", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["session"]; got != "s1" {
		t.Errorf("session field = %v, want s1", got)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "console default", cfg: Config{}},
		{name: "json debug", cfg: Config{Level: "debug", Format: "json"}},
		{name: "bad level falls back", cfg: Config{Level: "loud", Format: "console"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello")
		})
	}
}

func TestNew_BadOutputPath(t *testing.T) {
	_, err := New(Config{OutputPath: "/nonexistent-dir-ipaview/sub/log.txt"})
	if err == nil {
		t.Fatal("expected error for unwritable output path")
	}
	if !strings.Contains(err.Error(), "build zap logger") {
		t.Errorf("error = %v, want wrapped build error", err)
	}
}
