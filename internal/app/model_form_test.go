package app

import (
	"strings"
	"testing"
	"time"
)

func TestParseStartTimeFormats(t *testing.T) {
	now := time.Date(2026, 8, 25, 9, 30, 0, 0, time.Local)

	got, err := parseStartTime("", now)
	if err != nil || !got.IsZero() {
		t.Fatalf("blank start = %v, %v; want zero time", got, err)
	}

	got, err = parseStartTime("14:45", now)
	if err != nil {
		t.Fatalf("clock-only: %v", err)
	}
	want := time.Date(2026, 8, 25, 14, 45, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("clock-only = %v, want %v", got, want)
	}

	got, err = parseStartTime("2026-09-01 10:00", now)
	if err != nil {
		t.Fatalf("date+clock: %v", err)
	}
	want = time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("date+clock = %v, want %v", got, want)
	}

	got, err = parseStartTime("2026-09-01T10:00:00Z", now)
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !got.Equal(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 = %v", got)
	}

	if _, err := parseStartTime("next tuesday", now); err == nil {
		t.Fatalf("prose date should be rejected")
	}
}

func TestParseDurationMinutes(t *testing.T) {
	if got, err := parseDurationMinutes(""); err != nil || got != 0 {
		t.Fatalf("blank = %d, %v; want 0, nil", got, err)
	}
	if got, err := parseDurationMinutes(" 45 "); err != nil || got != 45 {
		t.Fatalf("padded = %d, %v; want 45, nil", got, err)
	}
	for _, raw := range []string{"0", "-5", "soon"} {
		if _, err := parseDurationMinutes(raw); err == nil {
			t.Fatalf("%q accepted, want error", raw)
		}
	}
}

func TestFormBuildRequest(t *testing.T) {
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	form := newMeetingForm(now)
	form.inputs[formFieldTitle].SetValue("  Design review ")
	form.inputs[formFieldStarts].SetValue("2026-08-26 11:00")
	form.inputs[formFieldDuration].SetValue("25")
	form.inputs[formFieldNotes].SetValue("bring the mocks")

	req, err := form.buildRequest(now)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Title != "Design review" {
		t.Fatalf("title = %q, want trimmed", req.Title)
	}
	if req.DurationMin != 25 {
		t.Fatalf("duration = %d, want 25", req.DurationMin)
	}
	if req.StartsAt.IsZero() {
		t.Fatalf("starts_at should be set")
	}
	if req.Notes != "bring the mocks" {
		t.Fatalf("notes = %q", req.Notes)
	}
}

func TestFormBuildRequestRequiresTitle(t *testing.T) {
	now := time.Now()
	form := newMeetingForm(now)
	form.inputs[formFieldTitle].SetValue("   ")

	if _, err := form.buildRequest(now); err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("blank title accepted: %v", err)
	}
}

func TestFormFocusWraps(t *testing.T) {
	form := newMeetingForm(time.Now())
	if form.focus != formFieldTitle {
		t.Fatalf("initial focus = %d", form.focus)
	}
	form.focusField(form.focus - 1)
	if form.focus != formFieldNotes {
		t.Fatalf("focus wrapped to %d, want notes", form.focus)
	}
	if !form.inputs[formFieldNotes].Focused() {
		t.Fatalf("notes input not focused")
	}
	if form.inputs[formFieldTitle].Focused() {
		t.Fatalf("title input still focused")
	}
}
