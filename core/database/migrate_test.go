package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListMigrationFilesAndSelectApplied(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql", "000001_init.down.sql",
		"000002_index.up.sql", "000002_index.down.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files := listMigrationFiles(dir)
	if len(files) != 2 || files[0] != "000001_init.up.sql" || files[1] != "000002_index.up.sql" {
		t.Fatalf("files = %v", files)
	}
	if got := selectApplied(files, 0, 2); len(got) != 2 {
		t.Fatalf("applied 0->2 = %v", got)
	}
	if got := selectApplied(files, 1, 2); len(got) != 1 || got[0] != "000002_index.up.sql" {
		t.Fatalf("applied 1->2 = %v", got)
	}
	if got := selectApplied(files, 2, 2); got != nil {
		t.Fatalf("no change should apply nothing, got %v", got)
	}
}

func TestParseVersion(t *testing.T) {
	if v := parseVersion("000012_add.up.sql"); v != 12 {
		t.Fatalf("version = %d", v)
	}
	if v := parseVersion("junk.sql"); v != 0 {
		t.Fatalf("junk version = %d", v)
	}
}

func TestConfigNormalizeAndURL(t *testing.T) {
	cfg := Config{Host: "db", Name: "booking", User: "bot", Password: "p@ss word"}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Port != "5432" || cfg.SSLMode != "disable" || cfg.MaxConnections != 10 || cfg.MigrationsDir != "migrations" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	want := "postgres://bot:p%40ss%20word@db:5432/booking?sslmode=disable"
	if got := cfg.URL(); got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
	if err := (&Config{Name: "x"}).Normalize(); err == nil {
		t.Fatalf("missing host should fail")
	}
}
