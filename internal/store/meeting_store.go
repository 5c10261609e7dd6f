package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"recap/internal/types"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrMeetingExists   = errors.New("meeting already exists")
)

type MeetingStore interface {
	List(ctx context.Context) ([]types.Meeting, error)
	Get(ctx context.Context, id string) (types.Meeting, bool, error)
	GetByCalendarEvent(ctx context.Context, calendarEventID string) (types.Meeting, bool, error)
	Create(ctx context.Context, meeting types.Meeting) (types.Meeting, error)
	Update(ctx context.Context, meeting types.Meeting) (types.Meeting, error)
	Delete(ctx context.Context, id string) error
}

func normalizeMeeting(meeting types.Meeting, existing *types.Meeting) (types.Meeting, error) {
	normalized := types.CloneMeeting(meeting)
	normalized.Title = strings.TrimSpace(normalized.Title)
	if normalized.Title == "" {
		return types.Meeting{}, errors.New("meeting title is required")
	}
	if strings.TrimSpace(normalized.ID) == "" {
		normalized.ID = uuid.NewString()
	}
	if normalized.StartsAt.IsZero() {
		normalized.StartsAt = time.Now().UTC()
	}
	if normalized.DurationMin < 0 {
		normalized.DurationMin = 0
	}
	if _, ok := types.NormalizeMeetingStatus(string(normalized.Status)); !ok {
		normalized.Status = types.MeetingStatusScheduled
	}
	now := time.Now().UTC()
	if existing != nil {
		normalized.ID = existing.ID
		normalized.CreatedAt = existing.CreatedAt
		normalized.UpdatedAt = now
	} else {
		if normalized.CreatedAt.IsZero() {
			normalized.CreatedAt = now
		}
		normalized.UpdatedAt = normalized.CreatedAt
	}
	return normalized, nil
}

func sortMeetings(meetings []types.Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		if !meetings[i].StartsAt.Equal(meetings[j].StartsAt) {
			return meetings[i].StartsAt.Before(meetings[j].StartsAt)
		}
		return meetings[i].CreatedAt.Before(meetings[j].CreatedAt)
	})
}
