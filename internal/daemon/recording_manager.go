package daemon

import (
	"context"
	"strings"
	"sync"
	"time"

	"recap/internal/logging"
	"recap/internal/store"
	"recap/internal/types"
)

// TranscriptSource is the capture pipeline behind a recording. Begin is
// called when a recording claims the slot and Finish when it releases it;
// Finish returns whatever transcript text the source captured. The daemon
// ships with a no-op source, desktop builds plug in the real recorder.
type TranscriptSource interface {
	Begin(meeting types.Meeting)
	Finish(meetingID string) string
}

type nopTranscriptSource struct{}

func (nopTranscriptSource) Begin(types.Meeting) {}

func (nopTranscriptSource) Finish(string) string { return "" }

// RecordingManager owns the single recording slot. All lifecycle methods
// serialize on one mutex: at most one meeting records at a time, and the
// auto-stop watchdog cannot race a manual stop.
type RecordingManager struct {
	stores *Stores
	hub    *EventHub
	log    logging.Logger
	source TranscriptSource

	mu        sync.Mutex
	meetingID string
	watchdog  *time.Timer
}

func NewRecordingManager(stores *Stores, hub *EventHub, log logging.Logger) *RecordingManager {
	if log == nil {
		log = logging.Nop()
	}
	return &RecordingManager{
		stores: stores,
		hub:    hub,
		log:    log,
		source: nopTranscriptSource{},
	}
}

// ActiveMeetingID returns the id of the meeting currently recording, or ""
// when the slot is free.
func (m *RecordingManager) ActiveMeetingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meetingID
}

func (m *RecordingManager) State(ctx context.Context) (types.RecordingState, error) {
	m.mu.Lock()
	id := m.meetingID
	m.mu.Unlock()

	if id == "" {
		return types.RecordingState{IsRecording: false}, nil
	}
	state := types.RecordingState{IsRecording: true, MeetingID: id}
	if m.stores != nil && m.stores.Meetings != nil {
		if meeting, ok, err := m.stores.Meetings.Get(ctx, id); err == nil && ok {
			state.Meeting = &meeting
		}
	}
	return state, nil
}

// Start claims the recording slot for the meeting. Starting the meeting
// that is already recording is a no-op; starting while another meeting
// holds the slot is a conflict.
func (m *RecordingManager) Start(ctx context.Context, id string) (types.RecordingState, error) {
	if m.stores == nil || m.stores.Meetings == nil {
		return types.RecordingState{}, unavailableError("meeting store not available", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return types.RecordingState{}, invalidError("meeting id is required", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok, err := m.stores.Meetings.Get(ctx, id)
	if err != nil {
		return types.RecordingState{}, unavailableError(err.Error(), err)
	}
	if !ok {
		return types.RecordingState{}, notFoundError("meeting not found", store.ErrMeetingNotFound)
	}
	if meeting.Tombstoned() {
		return types.RecordingState{}, invalidError("meeting was deleted", nil)
	}

	if m.meetingID == id {
		return types.RecordingState{IsRecording: true, MeetingID: id, Meeting: &meeting}, nil
	}
	if m.meetingID != "" {
		return types.RecordingState{}, conflictError("another meeting is being recorded", nil)
	}

	meeting.Status = types.MeetingStatusRecording
	updated, err := m.stores.Meetings.Update(ctx, meeting)
	if err != nil {
		return types.RecordingState{}, unavailableError(err.Error(), err)
	}

	m.meetingID = updated.ID
	m.source.Begin(types.CloneMeeting(updated))

	// Only meetings whose end is still ahead get a watchdog; recording an
	// already-finished slot runs until the user stops it.
	if end := updated.EffectiveEnd(); end.After(time.Now()) {
		meetingID := updated.ID
		m.watchdog = time.AfterFunc(time.Until(end), func() { m.autoStop(meetingID) })
	}

	m.hub.Publish(types.EventRecordingStarted, types.RecordingStartedPayload{
		Meeting:   &updated,
		MeetingID: updated.ID,
	})
	m.hub.Publish(types.EventMeetingsUpdated, nil)
	m.log.Info("recording_started", logging.F("meeting_id", updated.ID))

	return types.RecordingState{IsRecording: true, MeetingID: updated.ID, Meeting: &updated}, nil
}

// Stop releases the slot and settles the meeting. Stopping with nothing
// recording succeeds and reports the idle state.
func (m *RecordingManager) Stop(ctx context.Context) (types.RecordingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.meetingID == "" {
		return types.RecordingState{IsRecording: false}, nil
	}
	id := m.meetingID
	m.releaseLocked()

	if _, err := m.settleLocked(ctx, id); err != nil {
		return types.RecordingState{}, err
	}

	m.hub.Publish(types.EventRecordingStopped, nil)
	m.hub.Publish(types.EventMeetingsUpdated, nil)
	m.log.Info("recording_stopped", logging.F("meeting_id", id))

	return types.RecordingState{IsRecording: false}, nil
}

// autoStop is the watchdog callback for a meeting that reached its end
// time while still recording.
func (m *RecordingManager) autoStop(meetingID string) {
	ctx := context.Background()

	m.mu.Lock()
	defer m.mu.Unlock()

	// The timer can fire after a manual stop already settled this meeting.
	if m.meetingID != meetingID {
		return
	}
	m.releaseLocked()

	settled, err := m.settleLocked(ctx, meetingID)
	if err != nil {
		m.log.Warn("recording_auto_stop_failed", logging.F("meeting_id", meetingID), logging.F("error", err))
		return
	}

	count := countTranscriptLines(settled.Transcript)
	m.hub.Publish(types.EventRecordingAutoStopped, types.RecordingAutoStoppedPayload{
		Reason:          "meeting ended",
		TranscriptCount: &count,
	})
	m.hub.Publish(types.EventRecordingStopped, nil)
	m.hub.Publish(types.EventMeetingsUpdated, nil)
	m.log.Info("recording_auto_stopped", logging.F("meeting_id", meetingID))
}

// RecoverInterrupted settles meetings a dead process left in a live
// status. Runs once at startup before the HTTP surface comes up.
func (m *RecordingManager) RecoverInterrupted(ctx context.Context) error {
	if m.stores == nil || m.stores.Meetings == nil {
		return nil
	}
	meetings, err := m.stores.Meetings.List(ctx)
	if err != nil {
		return err
	}

	recovered := 0
	for _, meeting := range meetings {
		if !types.MeetingInProgress(meeting.Status) {
			continue
		}
		meeting.Status = settledStatus(meeting.Transcript)
		if _, err := m.stores.Meetings.Update(ctx, meeting); err != nil {
			return err
		}
		recovered++
		m.log.Info("recording_recovered",
			logging.F("meeting_id", meeting.ID),
			logging.F("status", string(meeting.Status)),
		)
	}
	if recovered > 0 {
		m.hub.Publish(types.EventMeetingsUpdated, nil)
	}
	return nil
}

// Close stops the watchdog without settling the active meeting; the next
// startup's recovery sweep settles anything left in a live status.
func (m *RecordingManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

func (m *RecordingManager) releaseLocked() {
	m.meetingID = ""
	if m.watchdog != nil {
		m.watchdog.Stop()
		m.watchdog = nil
	}
}

// settleLocked finalizes a meeting after its recording ended: the source
// transcript is attached and the status lands on completed or partial.
func (m *RecordingManager) settleLocked(ctx context.Context, meetingID string) (types.Meeting, error) {
	transcript := m.source.Finish(meetingID)

	meeting, ok, err := m.stores.Meetings.Get(ctx, meetingID)
	if err != nil {
		return types.Meeting{}, unavailableError(err.Error(), err)
	}
	if !ok {
		return types.Meeting{}, notFoundError("meeting not found", store.ErrMeetingNotFound)
	}

	if transcript != "" {
		meeting.Transcript = transcript
	}
	meeting.Status = settledStatus(meeting.Transcript)

	updated, err := m.stores.Meetings.Update(ctx, meeting)
	if err != nil {
		return types.Meeting{}, unavailableError(err.Error(), err)
	}
	return updated, nil
}

func settledStatus(transcript string) types.MeetingStatus {
	if strings.TrimSpace(transcript) != "" {
		return types.MeetingStatusCompleted
	}
	return types.MeetingStatusPartial
}

func countTranscriptLines(transcript string) int {
	count := 0
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
