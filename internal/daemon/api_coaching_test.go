package daemon

import (
	"net/http"
	"testing"

	"recap/internal/types"
)

type feedbackHistoryResponse struct {
	Entries []types.FeedbackEntry `json:"entries"`
}

type coachWindowResponse struct {
	IsOpen bool `json:"is_open"`
}

func TestCoachingEndpoints(t *testing.T) {
	api, stores := newTestAPI(t)
	server := newTestServer(t, api)

	meeting := createTestMeeting(t, stores, types.Meeting{Title: "Coached call"})

	var state types.CoachingSessionState
	code := doRequest(t, server, http.MethodGet, "/v1/coaching", nil, &state)
	if code != http.StatusOK {
		t.Fatalf("state status = %d, want 200", code)
	}
	if state.IsActive {
		t.Fatalf("coaching should start inactive")
	}

	code = doRequest(t, server, http.MethodPost, "/v1/coaching/start", StartCoachingRequest{
		MeetingID:    meeting.ID,
		CoachingType: "sales",
	}, &state)
	if code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", code)
	}
	if !state.IsActive || state.MeetingID != meeting.ID {
		t.Fatalf("unexpected state: %+v", state)
	}

	var entry types.FeedbackEntry
	code = doRequest(t, server, http.MethodPost, "/v1/coaching/feedback", AddFeedbackRequest{
		Kind: "praise",
		Text: "Good opening",
	}, &entry)
	if code != http.StatusCreated {
		t.Fatalf("feedback status = %d, want 201", code)
	}
	if entry.ID == "" || entry.Kind != types.FeedbackKindPraise {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	var history feedbackHistoryResponse
	code = doRequest(t, server, http.MethodGet, "/v1/coaching/history", nil, &history)
	if code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", code)
	}
	if len(history.Entries) != 1 || history.Entries[0].Text != "Good opening" {
		t.Fatalf("unexpected history: %+v", history.Entries)
	}

	code = doRequest(t, server, http.MethodPost, "/v1/coaching/stop", nil, &state)
	if code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", code)
	}
	if state.IsActive {
		t.Fatalf("expected inactive state after stop")
	}

	// Feedback after stop is rejected.
	code = doRequest(t, server, http.MethodPost, "/v1/coaching/feedback", AddFeedbackRequest{Text: "late"}, nil)
	if code != http.StatusConflict {
		t.Fatalf("late feedback status = %d, want 409", code)
	}
}

func TestCoachWindowEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)
	server := newTestServer(t, api)

	var window coachWindowResponse
	code := doRequest(t, server, http.MethodGet, "/v1/coaching/window", nil, &window)
	if code != http.StatusOK {
		t.Fatalf("window status = %d, want 200", code)
	}
	if window.IsOpen {
		t.Fatalf("window should start closed")
	}

	code = doRequest(t, server, http.MethodPost, "/v1/coaching/window/open", nil, &window)
	if code != http.StatusOK {
		t.Fatalf("open status = %d, want 200", code)
	}
	if !window.IsOpen {
		t.Fatalf("expected open window")
	}

	code = doRequest(t, server, http.MethodPost, "/v1/coaching/window/close", nil, &window)
	if code != http.StatusOK {
		t.Fatalf("close status = %d, want 200", code)
	}
	if window.IsOpen {
		t.Fatalf("expected closed window")
	}

	code = doRequest(t, server, http.MethodPost, "/v1/coaching/window/toggle", nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown action status = %d, want 404", code)
	}

	code = doRequest(t, server, http.MethodGet, "/v1/coaching/window/open", nil, nil)
	if code != http.StatusMethodNotAllowed {
		t.Fatalf("get action status = %d, want 405", code)
	}
}
