package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestShutdownEndpoint(t *testing.T) {
	called := make(chan struct{}, 1)
	api := &API{
		Version: "test",
		Shutdown: func(ctx context.Context) error {
			called <- struct{}{}
			return nil
		},
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	server := httptest.NewServer(TokenAuthMiddleware("token", mux))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/v1/shutdown", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("shutdown request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	select {
	case <-called:
	case <-time.After(1 * time.Second):
		t.Fatalf("shutdown not called")
	}
}

func TestShutdownRequiresPost(t *testing.T) {
	api := &API{Version: "test"}
	rec := httptest.NewRecorder()

	api.ShutdownDaemon(rec, httptest.NewRequest(http.MethodGet, "/v1/shutdown", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
