package daemon

import (
	"context"
	"testing"

	"recap/internal/types"
)

func TestCleanTranscriptLifecycle(t *testing.T) {
	ctx := context.Background()
	api, stores := newTestAPI(t)

	meeting := createTestMeeting(t, stores, types.Meeting{
		Title:      "Retro",
		Transcript: "Um, so let's start\nthis is, uh, important\nhmm\nRegular line",
	})

	events, cancel := api.Hub.Subscribe(0)
	defer cancel()

	if err := api.Cleaner.Clean(ctx, meeting.ID); err != nil {
		t.Fatalf("clean: %v", err)
	}

	waitForEvent(t, events, types.EventCleaningStarted)
	for _, want := range []int{25, 50, 75} {
		ev := waitForEvent(t, events, types.EventCleaningProgress)
		var payload types.CleaningProgressPayload
		if err := ev.Decode(&payload); err != nil {
			t.Fatalf("decode progress: %v", err)
		}
		pct, ok := payload.PercentageValue()
		if !ok || pct != want {
			t.Fatalf("progress = %d (ok=%v), want %d", pct, ok, want)
		}
	}
	waitForEvent(t, events, types.EventCleaningCompleted)
	waitForEvent(t, events, types.EventMeetingsUpdated)

	cleaned, ok, err := stores.Meetings.Get(ctx, meeting.ID)
	if err != nil || !ok {
		t.Fatalf("reload meeting: ok=%v err=%v", ok, err)
	}
	want := "so let's start\nthis is, important\nRegular line"
	if cleaned.Transcript != want {
		t.Fatalf("transcript = %q, want %q", cleaned.Transcript, want)
	}
}

func TestCleanValidation(t *testing.T) {
	ctx := context.Background()
	api, stores := newTestAPI(t)

	err := api.Cleaner.Clean(ctx, "missing")
	assertServiceErrorKind(t, err, ServiceErrorNotFound)

	empty := createTestMeeting(t, stores, types.Meeting{Title: "No transcript yet"})
	err = api.Cleaner.Clean(ctx, empty.ID)
	assertServiceErrorKind(t, err, ServiceErrorInvalid)

	gone := createTestMeeting(t, stores, types.Meeting{
		Title:           "Removed",
		Transcript:      "some words",
		CalendarEventID: "cal-2",
	})
	gone.Title = types.TombstoneTitle(gone.Title)
	if _, err := stores.Meetings.Update(ctx, gone); err != nil {
		t.Fatalf("tombstone: %v", err)
	}
	err = api.Cleaner.Clean(ctx, gone.ID)
	assertServiceErrorKind(t, err, ServiceErrorInvalid)
}

func TestStripFillerWords(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "leading-filler", in: "Um, so we begin", want: "so we begin"},
		{name: "embedded-filler", in: "the plan is, uh, simple", want: "the plan is, simple"},
		{name: "case-insensitive", in: "UH UHH Erm fine", want: "fine"},
		{name: "only-fillers", in: "um uh hmm", want: ""},
		{name: "punctuation-trimmed", in: "right, um... next item", want: "right, next item"},
		{name: "keeps-real-words", in: "umbrella ahead", want: "umbrella ahead"},
		{name: "collapses-whitespace", in: "  spaced   out  ", want: "spaced out"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripFillerWords(tc.in); got != tc.want {
				t.Fatalf("stripFillerWords(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
