package app

import (
	"time"

	"recap/internal/client"
	"recap/internal/types"
)

type tickMsg time.Time

type meetingCreatedMsg struct {
	meeting *types.Meeting
	err     error
}

type meetingDeletedMsg struct {
	id    string
	title string
	err   error
}

type selectRequestedMsg struct {
	id string
}

type recordingStartedMsg struct {
	state types.RecordingState
	err   error
}

type recordingStoppedMsg struct {
	err error
}

type cleaningRequestedMsg struct {
	id  string
	err error
}

type calendarSyncedMsg struct {
	result *client.SyncCalendarResponse
	err    error
}

type coachWindowMsg struct {
	open bool
	err  error
}
