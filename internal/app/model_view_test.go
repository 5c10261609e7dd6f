package app

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"recap/internal/state"
	"recap/internal/types"
)

func TestToastLineRendersPill(t *testing.T) {
	toast := &state.Toast{Message: "Transcript cleaned", Kind: state.ToastSuccess}
	line := toastLine(60, toast)
	if line == "" {
		t.Fatalf("active toast rendered nothing")
	}
	if got := lipgloss.Width(line); got != 60 {
		t.Fatalf("toast line width = %d, want 60", got)
	}
	plain := xansi.Strip(line)
	if !strings.Contains(plain, "Transcript cleaned") {
		t.Fatalf("toast text missing from %q", plain)
	}
	if !strings.HasSuffix(strings.TrimRight(plain, " "), "Transcript cleaned ") {
		t.Fatalf("toast pill should sit at the right edge: %q", plain)
	}
}

func TestToastLineEmptyCases(t *testing.T) {
	if got := toastLine(60, nil); got != "" {
		t.Fatalf("nil toast rendered %q", got)
	}
	if got := toastLine(0, &state.Toast{Message: "x"}); got != "" {
		t.Fatalf("zero width rendered %q", got)
	}
	if got := toastLine(60, &state.Toast{Message: "   "}); got != "" {
		t.Fatalf("blank message rendered %q", got)
	}
}

func TestToastLineTruncatesLongMessages(t *testing.T) {
	toast := &state.Toast{Message: strings.Repeat("report ", 30), Kind: state.ToastInfo}
	line := toastLine(24, toast)
	if got := lipgloss.Width(line); got != 24 {
		t.Fatalf("width = %d, want 24", got)
	}
	if !strings.Contains(xansi.Strip(line), "…") {
		t.Fatalf("long toast should be truncated with an ellipsis")
	}
}

func TestSyncAgeLabel(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		last time.Time
		want string
	}{
		{time.Time{}, "never synced"},
		{now.Add(-20 * time.Second), "synced just now"},
		{now.Add(-5 * time.Minute), "synced 5m ago"},
		{now.Add(-3 * time.Hour), "synced 3h ago"},
		{now.Add(-72 * time.Hour), "synced 3d ago"},
	}
	for _, tc := range cases {
		if got := syncAgeLabel(tc.last, now); got != tc.want {
			t.Fatalf("syncAgeLabel(%v) = %q, want %q", tc.last, got, tc.want)
		}
	}
}

func TestRenderStatusLinePadsToWidth(t *testing.T) {
	line := renderStatusLine(40, "left", "right")
	if got := lipgloss.Width(line); got != 40 {
		t.Fatalf("width = %d, want 40", got)
	}
	if !strings.HasPrefix(line, "left") || !strings.HasSuffix(line, "right") {
		t.Fatalf("segments misplaced: %q", line)
	}
}

func TestRenderStatusLineSqueezesLeftSegment(t *testing.T) {
	line := renderStatusLine(20, strings.Repeat("status ", 10), "right")
	if got := lipgloss.Width(line); got != 20 {
		t.Fatalf("width = %d, want 20", got)
	}
	if !strings.HasSuffix(line, "right") {
		t.Fatalf("right segment lost: %q", line)
	}
}

func TestMeetingMarkdownSections(t *testing.T) {
	meeting := types.Meeting{
		ID:          "m-1",
		Title:       "Roadmap sync",
		StartsAt:    time.Date(2026, 8, 25, 15, 0, 0, 0, time.Local),
		DurationMin: 30,
		Status:      types.MeetingStatusCompleted,
		Notes:       "- decide scope",
		Transcript:  "# not a heading\nplain words",
	}
	snap := state.Snapshot{
		Coaching: types.CoachingSessionState{IsActive: true, MeetingID: "m-1"},
		Feedback: []types.FeedbackEntry{{Kind: types.FeedbackKindTip, Text: "slow down"}},
	}

	doc := meetingMarkdown(meeting, snap)
	for _, want := range []string{"# Roadmap sync", "## Notes", "- decide scope", "## Transcript", "## Coaching", "slow down"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	if !strings.Contains(doc, "\\# not a heading") {
		t.Fatalf("transcript heading not escaped:\n%s", doc)
	}
}

func TestMeetingMarkdownSkipsForeignCoaching(t *testing.T) {
	meeting := types.Meeting{ID: "m-2", Title: "Other", StartsAt: time.Now()}
	snap := state.Snapshot{
		Coaching: types.CoachingSessionState{IsActive: true, MeetingID: "m-1"},
		Feedback: []types.FeedbackEntry{{Kind: types.FeedbackKindTip, Text: "slow down"}},
	}
	if doc := meetingMarkdown(meeting, snap); strings.Contains(doc, "## Coaching") {
		t.Fatalf("coaching for another meeting leaked into the document:\n%s", doc)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	in := "# heading\n1. item\nplain `code`"
	out := escapeMarkdown(in)
	if !strings.Contains(out, "\\# heading") {
		t.Fatalf("heading not escaped: %q", out)
	}
	if !strings.Contains(out, "\\1. item") {
		t.Fatalf("numbered list not escaped: %q", out)
	}
	if !strings.Contains(out, "\\`code\\`") {
		t.Fatalf("backticks not escaped: %q", out)
	}
}
