package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind names one backend push event. Kinds are wire identifiers and
// never change meaning between daemon versions.
type EventKind string

const (
	EventMeetingsUpdated      EventKind = "meetings-updated"
	EventRecordingStarted     EventKind = "recording-started"
	EventRecordingStopped     EventKind = "recording-stopped"
	EventRecordingAutoStopped EventKind = "recording-auto-stopped"
	EventConnectionStatus     EventKind = "connection-status"
	EventSettingsUpdated      EventKind = "settings-updated"
	EventCoachingFeedback     EventKind = "coaching-feedback"
	EventCoachingError        EventKind = "coaching-error"
	EventCoachWindowStatus    EventKind = "coach-window-status"
	EventSelectMeeting        EventKind = "select-meeting"
	EventMeetingReady         EventKind = "meeting-ready"
	EventCleaningStarted      EventKind = "transcript-correction-started"
	EventCleaningProgress     EventKind = "transcript-correction-progress"
	EventCleaningCompleted    EventKind = "transcript-correction-completed"
	EventCleaningFailed       EventKind = "transcript-correction-failed"
)

// PushEvent is the envelope carried on the event channel. Payload stays
// raw until a handler decodes it: a malformed payload must only fail the
// handler that asked for it, never the transport.
type PushEvent struct {
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RecordingStartedPayload struct {
	Meeting   *Meeting `json:"meeting,omitempty"`
	MeetingID string   `json:"meeting_id,omitempty"`
}

type RecordingAutoStoppedPayload struct {
	Reason          string `json:"reason,omitempty"`
	TranscriptCount *int   `json:"transcript_count,omitempty"`
}

type CoachingErrorPayload struct {
	MeetingID string `json:"meeting_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type CoachWindowStatusPayload struct {
	IsOpen *bool `json:"is_open,omitempty"`
}

type SelectMeetingPayload struct {
	MeetingID string `json:"meeting_id"`
}

type MeetingReadyPayload struct {
	CalendarEvent CalendarEvent `json:"calendar_event"`
}

// CleaningProgressPayload keeps the percentage raw so a non-numeric value
// can be ignored instead of failing the whole event decode.
type CleaningProgressPayload struct {
	Percentage json.RawMessage `json:"percentage,omitempty"`
}

// PercentageValue decodes the raw percentage, clamped to [0,100]. The
// second result is false when the field is absent or not numeric.
func (p CleaningProgressPayload) PercentageValue() (int, bool) {
	if len(p.Percentage) == 0 {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(p.Percentage, &v); err != nil {
		return 0, false
	}
	pct := int(v)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

var ErrNoPayload = errors.New("push event has no payload")

func NewPushEvent(kind EventKind, payload any) (PushEvent, error) {
	ev := PushEvent{Kind: kind}
	if payload == nil {
		return ev, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return PushEvent{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	ev.Payload = raw
	return ev, nil
}

// Decode unmarshals the payload into out. Handlers that tolerate a missing
// payload should check for ErrNoPayload.
func (e PushEvent) Decode(out any) error {
	if len(e.Payload) == 0 {
		return ErrNoPayload
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}
