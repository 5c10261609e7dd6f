package state

import (
	"context"

	"recap/internal/types"
)

// Backend is the slice of the daemon's request surface the synchronizer
// needs for corroborating fetches. The HTTP client satisfies it; tests
// substitute a fake.
type Backend interface {
	ListMeetings(ctx context.Context) ([]types.Meeting, error)
	RecordingState(ctx context.Context) (types.RecordingState, error)
	CoachingState(ctx context.Context) (types.CoachingSessionState, error)
	CoachingHistory(ctx context.Context) ([]types.FeedbackEntry, error)
	CoachWindowStatus(ctx context.Context) (bool, error)
}
