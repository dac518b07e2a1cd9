package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
)

func TestResolveDefaults(t *testing.T) {
	s := resolve(nil)
	if s.level != slog.LevelInfo || s.format != formatJSON || s.profile != "prod" {
		t.Fatalf("defaults = %+v", s)
	}
	if s.sampleN != 1 || s.sampleD != 50 {
		t.Fatalf("sample = %d/%d", s.sampleN, s.sampleD)
	}
	if s.filePath != "" {
		t.Fatalf("file path = %q", s.filePath)
	}
}

func TestResolveDevProfile(t *testing.T) {
	s := resolve(&coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "WARNING",
		Profile:     "Dev",
		KeysOrder:   "event, level,,ts",
		DebugSample: "0",
		Dir:         "/var/log/bot",
		BotFile:     "bot.log",
	}})
	if s.level != slog.LevelWarn {
		t.Fatalf("level = %v", s.level)
	}
	if s.format != formatKV {
		t.Fatalf("dev profile should default to kv, got %q", s.format)
	}
	if len(s.keyOrder) != 3 || s.keyOrder[0] != "event" || s.keyOrder[2] != "ts" {
		t.Fatalf("key order = %v", s.keyOrder)
	}
	if s.sampleN != 0 || s.sampleD != 0 {
		t.Fatalf("sample = %d/%d", s.sampleN, s.sampleD)
	}
	if s.filePath != filepath.Join("/var/log/bot", "bot.log") {
		t.Fatalf("file path = %q", s.filePath)
	}
}

func TestResolveExplicitJSONWins(t *testing.T) {
	s := resolve(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Format: "json", Profile: "debug", DebugSample: "3/10"}})
	if s.format != formatJSON {
		t.Fatalf("format = %q", s.format)
	}
	if s.sampleN != 3 || s.sampleD != 10 {
		t.Fatalf("sample = %d/%d", s.sampleN, s.sampleD)
	}
}
