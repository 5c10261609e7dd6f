package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCoreConfigDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:7787" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:7787" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestLoadCoreConfigFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".recap")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte("[daemon]\naddress = \"http://127.0.0.1:9999/\"\n\n[logging]\nlevel = \"debug\"\n")
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:9999" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestResolveCalendarFeed(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	cfg := CoreConfig{}
	path, err := cfg.ResolveCalendarFeed()
	if err != nil {
		t.Fatalf("ResolveCalendarFeed default: %v", err)
	}
	if want := filepath.Join(home, ".recap", "calendar.json"); path != want {
		t.Fatalf("unexpected default path: got=%q want=%q", path, want)
	}

	cfg.Calendar.Feed = "feeds/work.json"
	path, err = cfg.ResolveCalendarFeed()
	if err != nil {
		t.Fatalf("ResolveCalendarFeed relative: %v", err)
	}
	if want := filepath.Join(home, ".recap", "feeds", "work.json"); path != want {
		t.Fatalf("unexpected relative path: got=%q want=%q", path, want)
	}

	cfg.Calendar.Feed = "~/cal.json"
	path, err = cfg.ResolveCalendarFeed()
	if err != nil {
		t.Fatalf("ResolveCalendarFeed home: %v", err)
	}
	if want := filepath.Join(home, "cal.json"); path != want {
		t.Fatalf("unexpected home path: got=%q want=%q", path, want)
	}
}
