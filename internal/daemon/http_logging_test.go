package daemon

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recap/internal/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, logging.Info)

	handler := LoggingMiddleware(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/meetings", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}

	line := buf.String()
	for _, want := range []string{"http_request", "method=GET", "path=/v1/meetings", "status=418"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %q: %s", want, line)
		}
	}
}

func TestLoggingMiddlewareKeepsCallerRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, logging.Info)

	handler := LoggingMiddleware(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "caller-id-1")
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "caller-id-1" {
		t.Fatalf("request id = %q, want caller-id-1", got)
	}
	if !strings.Contains(buf.String(), "request_id=caller-id-1") {
		t.Fatalf("log line missing caller request id: %s", buf.String())
	}
}
