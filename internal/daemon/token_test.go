package daemon

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "token")

	token, err := LoadOrCreateToken(path)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	raw, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("token %q is not hex: %v", token, err)
	}
	if len(raw) != 32 {
		t.Fatalf("token is %d bytes, want 32", len(raw))
	}

	again, err := LoadOrCreateToken(path)
	if err != nil {
		t.Fatalf("reload token: %v", err)
	}
	if again != token {
		t.Fatalf("second load returned a different token")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file mode = %o, want 600", perm)
	}
}

func TestLoadOrCreateTokenTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  abc123\n"), 0o600); err != nil {
		t.Fatalf("seed token file: %v", err)
	}

	token, err := LoadOrCreateToken(path)
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("token = %q, want abc123", token)
	}
}

func TestLoadOrCreateTokenRegeneratesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("seed token file: %v", err)
	}

	token, err := LoadOrCreateToken(path)
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a generated token for an empty file")
	}
}
