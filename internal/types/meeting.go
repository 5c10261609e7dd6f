package types

import (
	"strings"
	"time"
)

type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusRecording MeetingStatus = "recording"
	MeetingStatusActive    MeetingStatus = "active"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusPartial   MeetingStatus = "partial"
	MeetingStatusError     MeetingStatus = "error"
)

const DefaultMeetingDurationMin = 60

const tombstoneMarker = "[deleted]"

// TombstonePrefix marks a meeting retained only as a deletion record.
const TombstonePrefix = tombstoneMarker + " "

type Meeting struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	StartsAt        time.Time     `json:"starts_at"`
	EndsAt          *time.Time    `json:"ends_at,omitempty"`
	DurationMin     int           `json:"duration_min,omitempty"`
	Status          MeetingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	Transcript      string        `json:"transcript,omitempty"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty"`
}

// EffectiveEnd derives the end instant used for temporal partitioning:
// the explicit end time if set, else start plus duration, else start plus
// the default duration.
func (m Meeting) EffectiveEnd() time.Time {
	if m.EndsAt != nil {
		return *m.EndsAt
	}
	if m.DurationMin > 0 {
		return m.StartsAt.Add(time.Duration(m.DurationMin) * time.Minute)
	}
	return m.StartsAt.Add(DefaultMeetingDurationMin * time.Minute)
}

func (m Meeting) Tombstoned() bool {
	return strings.HasPrefix(m.Title, tombstoneMarker)
}

// HasContent reports whether the meeting captured anything worth showing
// in the past view.
func (m Meeting) HasContent() bool {
	return strings.TrimSpace(m.Notes) != "" || strings.TrimSpace(m.Transcript) != ""
}

func TombstoneTitle(title string) string {
	if strings.HasPrefix(title, tombstoneMarker) {
		return title
	}
	return TombstonePrefix + title
}

func CloneMeeting(in Meeting) Meeting {
	out := in
	if in.EndsAt != nil {
		v := *in.EndsAt
		out.EndsAt = &v
	}
	return out
}

func CloneMeetings(in []Meeting) []Meeting {
	if in == nil {
		return nil
	}
	out := make([]Meeting, 0, len(in))
	for _, m := range in {
		out = append(out, CloneMeeting(m))
	}
	return out
}

func NormalizeMeetingStatus(raw string) (MeetingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scheduled":
		return MeetingStatusScheduled, true
	case "recording":
		return MeetingStatusRecording, true
	case "active", "in_progress", "in-progress":
		return MeetingStatusActive, true
	case "completed", "done":
		return MeetingStatusCompleted, true
	case "partial":
		return MeetingStatusPartial, true
	case "error", "failed":
		return MeetingStatusError, true
	default:
		return "", false
	}
}

// MeetingInProgress reports whether the status marks a live session; such
// meetings stay in the upcoming view even past their nominal end.
func MeetingInProgress(status MeetingStatus) bool {
	return status == MeetingStatusRecording || status == MeetingStatusActive
}
