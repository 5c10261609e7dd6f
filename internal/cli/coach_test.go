package cli

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"recap/internal/client"
	"recap/internal/types"
)

func TestCoachFeedbackRejectsUnknownKind(t *testing.T) {
	deps := &Dependencies{Client: client.NewWithBaseURL("http://127.0.0.1:0", "token")}

	_, err := runCommand(t, deps, "coach", "feedback", "slow down", "--kind", "scolding")
	if err == nil || !strings.Contains(err.Error(), "feedback kind") {
		t.Fatalf("expected kind error, got %v", err)
	}
}

func TestCoachWindowRejectsUnknownAction(t *testing.T) {
	deps := &Dependencies{Client: client.NewWithBaseURL("http://127.0.0.1:0", "token")}

	if _, err := runCommand(t, deps, "coach", "window", "minimize"); err == nil {
		t.Fatal("expected invalid argument error")
	}
}

func TestCoachHistoryFiltersByMeeting(t *testing.T) {
	now := time.Now()
	fake, deps := newFakeDaemon(t)
	serveMeetings(fake, []types.Meeting{
		{ID: "abc12345", Title: "A"},
		{ID: "def67890", Title: "B"},
	})
	fake.mux.HandleFunc("GET /v1/coaching/history", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, client.FeedbackHistoryResponse{Entries: []types.FeedbackEntry{
			{ID: "f1", MeetingID: "abc12345", Kind: types.FeedbackKindTip, Text: "pause more", CreatedAt: now},
			{ID: "f2", MeetingID: "def67890", Kind: types.FeedbackKindPraise, Text: "great recap", CreatedAt: now},
		}})
	})

	out, err := runCommand(t, deps, "coach", "history", "--meeting", "abc")
	if err != nil {
		t.Fatalf("coach history: %v", err)
	}
	if !strings.Contains(out, "pause more") {
		t.Fatalf("expected matching entry:\n%s", out)
	}
	if strings.Contains(out, "great recap") {
		t.Fatalf("entry for other meeting leaked:\n%s", out)
	}
}
