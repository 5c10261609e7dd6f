package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"recap/internal/client"
	"recap/internal/types"
)

func createMeetingCmd(api MeetingAPI, req client.CreateMeetingRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		meeting, err := api.CreateMeeting(ctx, req)
		return meetingCreatedMsg{meeting: meeting, err: err}
	}
}

func deleteMeetingCmd(api MeetingAPI, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.DeleteMeeting(ctx, id)
		return meetingDeletedMsg{id: id, title: title, err: err}
	}
}

// selectMeetingCmd routes the selection request through the event channel
// so it lands in the same ordered lane as daemon pushes. The store only
// changes once the reconciler has corroborated the meeting exists.
func selectMeetingCmd(dispatch func(types.PushEvent), id string) tea.Cmd {
	return func() tea.Msg {
		ev, err := types.NewPushEvent(types.EventSelectMeeting, types.SelectMeetingPayload{MeetingID: id})
		if err == nil && dispatch != nil {
			dispatch(ev)
		}
		return selectRequestedMsg{id: id}
	}
}

func startRecordingCmd(api MeetingAPI, meetingID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		state, err := api.StartRecording(ctx, meetingID)
		return recordingStartedMsg{state: state, err: err}
	}
}

func stopRecordingCmd(api MeetingAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.StopRecording(ctx)
		return recordingStoppedMsg{err: err}
	}
}

func cleanTranscriptCmd(api MeetingAPI, meetingID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.CleanTranscript(ctx, meetingID)
		return cleaningRequestedMsg{id: meetingID, err: err}
	}
}

func syncCalendarCmd(api MeetingAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		result, err := api.SyncCalendar(ctx)
		return calendarSyncedMsg{result: result, err: err}
	}
}

func toggleCoachWindowCmd(api CoachAPI, open bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		var err error
		if open {
			err = api.OpenCoachWindow(ctx)
		} else {
			err = api.CloseCoachWindow(ctx)
		}
		return coachWindowMsg{open: open, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
