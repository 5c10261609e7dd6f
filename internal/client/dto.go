package client

import (
	"time"

	"recap/internal/types"
)

type MeetingsResponse struct {
	Meetings []types.Meeting `json:"meetings"`
}

type CreateMeetingRequest struct {
	Title       string     `json:"title"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	DurationMin int        `json:"duration_min,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type UpdateMeetingRequest struct {
	Title       *string    `json:"title,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	DurationMin *int       `json:"duration_min,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Transcript  *string    `json:"transcript,omitempty"`
}

type FeedbackHistoryResponse struct {
	Entries []types.FeedbackEntry `json:"entries"`
}

type StartCoachingRequest struct {
	MeetingID    string `json:"meeting_id"`
	CoachingType string `json:"coaching_type,omitempty"`
}

type AddFeedbackRequest struct {
	Kind string `json:"kind,omitempty"`
	Text string `json:"text"`
}

type SyncCalendarResponse struct {
	Imported int       `json:"imported"`
	Updated  int       `json:"updated"`
	Ready    int       `json:"ready"`
	SyncedAt time.Time `json:"synced_at"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}
