package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recap/internal/types"
)

func TestEventsParsesStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/events" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)

		_, _ = w.Write([]byte(": heartbeat\n\n"))
		_, _ = w.Write([]byte("data: {\"kind\":\"recording-started\",\"payload\":{\"meeting_id\":\"m1\"}}\n\n"))
		_, _ = w.Write([]byte("data: {\"kind\":\"recording-stopped\"}\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "token")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, stop, err := c.Events(ctx, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	defer stop()

	select {
	case ev := <-ch:
		if ev.Kind != types.EventRecordingStarted {
			t.Fatalf("unexpected first event: %+v", ev)
		}
		var payload types.RecordingStartedPayload
		if err := ev.Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.MeetingID != "m1" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for first event")
	}

	select {
	case ev := <-ch:
		if ev.Kind != types.EventRecordingStopped {
			t.Fatalf("unexpected second event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for second event")
	}
}

func TestEventsSendsReplayParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("replay"); got != "32" {
			t.Errorf("unexpected replay param: %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "token")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch, stop, err := c.Events(ctx, 32)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	stop()
	for range ch {
	}
}

func TestEventsRejectsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"missing token"}`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "token")
	_, _, err := c.Events(context.Background(), 0)
	if err == nil {
		t.Fatalf("expected error for unauthorized stream")
	}
	if apiErr := AsAPIError(err); apiErr == nil || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
}
