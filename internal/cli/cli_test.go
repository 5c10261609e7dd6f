package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recap/internal/client"
)

// fakeDaemon answers the handful of routes a command under test touches.
// Health always succeeds so EnsureDaemon never tries to spawn a process.
type fakeDaemon struct {
	mux    *http.ServeMux
	server *httptest.Server
}

func newFakeDaemon(t *testing.T) (*fakeDaemon, *Dependencies) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"ok": true, "version": "test", "pid": 4242})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	deps := &Dependencies{Client: client.NewWithBaseURL(server.URL, "token")}
	return &fakeDaemon{mux: mux, server: server}, deps
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func runCommand(t *testing.T, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
