package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"recap/internal/types"
)

type CoachingStore interface {
	LoadState(ctx context.Context) (types.CoachingSessionState, error)
	SaveState(ctx context.Context, state types.CoachingSessionState) error
	ListFeedback(ctx context.Context, meetingID string) ([]types.FeedbackEntry, error)
	AppendFeedback(ctx context.Context, entry types.FeedbackEntry) (types.FeedbackEntry, error)
	// ClearFeedback removes every entry for the meeting. Clearing a meeting
	// with no entries is not an error.
	ClearFeedback(ctx context.Context, meetingID string) error
}

func normalizeFeedbackEntry(entry types.FeedbackEntry) (types.FeedbackEntry, error) {
	normalized := entry
	normalized.MeetingID = strings.TrimSpace(normalized.MeetingID)
	if normalized.MeetingID == "" {
		return types.FeedbackEntry{}, errors.New("feedback entry requires meeting_id")
	}
	normalized.Text = strings.TrimSpace(normalized.Text)
	if normalized.Text == "" {
		return types.FeedbackEntry{}, errors.New("feedback entry requires text")
	}
	if strings.TrimSpace(normalized.ID) == "" {
		normalized.ID = uuid.NewString()
	}
	if _, ok := types.NormalizeFeedbackKind(string(normalized.Kind)); !ok {
		normalized.Kind = types.FeedbackKindTip
	}
	if normalized.CreatedAt.IsZero() {
		normalized.CreatedAt = time.Now().UTC()
	}
	return normalized, nil
}
