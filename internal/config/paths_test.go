package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, filepath.Join(".recap")) {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	configPath, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if !strings.HasSuffix(configPath, filepath.Join(".recap", "config.toml")) {
		t.Fatalf("unexpected config path: %s", configPath)
	}

	dbPath, err := DBPath()
	if err != nil {
		t.Fatalf("DBPath: %v", err)
	}
	if !strings.HasSuffix(dbPath, filepath.Join(".recap", "recap.db")) {
		t.Fatalf("unexpected db path: %s", dbPath)
	}

	tokenPath, err := TokenPath()
	if err != nil {
		t.Fatalf("TokenPath: %v", err)
	}
	if !strings.HasSuffix(tokenPath, filepath.Join(".recap", "daemon.token")) {
		t.Fatalf("unexpected token path: %s", tokenPath)
	}

	lockPath, err := LockPath()
	if err != nil {
		t.Fatalf("LockPath: %v", err)
	}
	if !strings.HasSuffix(lockPath, filepath.Join(".recap", "daemon.lock")) {
		t.Fatalf("unexpected lock path: %s", lockPath)
	}

	logPath, err := DaemonLogPath()
	if err != nil {
		t.Fatalf("DaemonLogPath: %v", err)
	}
	if !strings.HasSuffix(logPath, filepath.Join(".recap", "daemon.log")) {
		t.Fatalf("unexpected log path: %s", logPath)
	}

	feedPath, err := CalendarFeedPath()
	if err != nil {
		t.Fatalf("CalendarFeedPath: %v", err)
	}
	if !strings.HasSuffix(feedPath, filepath.Join(".recap", "calendar.json")) {
		t.Fatalf("unexpected calendar feed path: %s", feedPath)
	}
}
