package app

import (
	"context"

	"recap/internal/client"
	"recap/internal/types"
)

// MeetingAPI is the slice of the daemon client the meeting pane drives.
// *client.Client satisfies it; tests substitute fakes.
type MeetingAPI interface {
	CreateMeeting(ctx context.Context, req client.CreateMeetingRequest) (*types.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	StartRecording(ctx context.Context, meetingID string) (types.RecordingState, error)
	StopRecording(ctx context.Context) error
	CleanTranscript(ctx context.Context, meetingID string) error
	SyncCalendar(ctx context.Context) (*client.SyncCalendarResponse, error)
}

// CoachAPI covers the coach window toggle. Coaching sessions themselves
// are driven from the CLI and the coach window process, not this screen.
type CoachAPI interface {
	OpenCoachWindow(ctx context.Context) error
	CloseCoachWindow(ctx context.Context) error
}
