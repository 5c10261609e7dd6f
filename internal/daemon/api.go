package daemon

import (
	"context"
	"strconv"
	"time"

	"recap/internal/logging"
)

type API struct {
	Version   string
	StartedAt time.Time
	Stores    *Stores
	Hub       *EventHub
	Recorder  *RecordingManager
	Coach     *CoachingManager
	Cleaner   *TranscriptCleaner
	Calendar  *CalendarImporter
	Shutdown  func(context.Context) error
	Logger    logging.Logger
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

type StartCoachingRequest struct {
	MeetingID    string `json:"meeting_id"`
	CoachingType string `json:"coaching_type,omitempty"`
}

type AddFeedbackRequest struct {
	Kind string `json:"kind,omitempty"`
	Text string `json:"text"`
}

func parseReplay(raw string) int {
	if raw == "" {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0
	}
	return val
}
