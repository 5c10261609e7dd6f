package types

import (
	"strings"
	"time"
)

type CoachingType string

const (
	CoachingTypeGeneral      CoachingType = "general"
	CoachingTypeSales        CoachingType = "sales"
	CoachingTypeInterview    CoachingType = "interview"
	CoachingTypePresentation CoachingType = "presentation"
)

type FeedbackKind string

const (
	FeedbackKindTip     FeedbackKind = "tip"
	FeedbackKindWarning FeedbackKind = "warning"
	FeedbackKindPraise  FeedbackKind = "praise"
)

// CoachingSessionState mirrors the backend's view of the live coaching
// session. When IsActive is false the remaining fields are stale and
// presentation logic must ignore them.
type CoachingSessionState struct {
	IsActive     bool         `json:"is_active"`
	CoachingType CoachingType `json:"coaching_type,omitempty"`
	MeetingID    string       `json:"meeting_id,omitempty"`
}

type FeedbackEntry struct {
	ID        string       `json:"id"`
	MeetingID string       `json:"meeting_id,omitempty"`
	Kind      FeedbackKind `json:"kind"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

func DefaultCoachingSessionState() CoachingSessionState {
	return CoachingSessionState{IsActive: false}
}

func CloneFeedbackHistory(in []FeedbackEntry) []FeedbackEntry {
	if in == nil {
		return nil
	}
	out := make([]FeedbackEntry, len(in))
	copy(out, in)
	return out
}

func NormalizeCoachingType(raw string) (CoachingType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "general", "default":
		return CoachingTypeGeneral, true
	case "sales", "sales-call", "sales_call":
		return CoachingTypeSales, true
	case "interview":
		return CoachingTypeInterview, true
	case "presentation", "demo":
		return CoachingTypePresentation, true
	default:
		return "", false
	}
}

func NormalizeFeedbackKind(raw string) (FeedbackKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tip", "suggestion":
		return FeedbackKindTip, true
	case "warning", "warn":
		return FeedbackKindWarning, true
	case "praise", "positive":
		return FeedbackKindPraise, true
	default:
		return "", false
	}
}
