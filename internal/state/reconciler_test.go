package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recap/internal/logging"
	"recap/internal/types"
)

type fakeBackend struct {
	mu           sync.Mutex
	meetings     []types.Meeting
	meetingsErr  error
	recording    types.RecordingState
	recordingErr error
	coaching     types.CoachingSessionState
	coachingErr  error
	history      []types.FeedbackEntry
	historyErr   error
	windowOpen   bool
	windowErr    error
	listCalls    int
}

func (f *fakeBackend) ListMeetings(context.Context) ([]types.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.meetingsErr != nil {
		return nil, f.meetingsErr
	}
	return types.CloneMeetings(f.meetings), nil
}

func (f *fakeBackend) RecordingState(context.Context) (types.RecordingState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordingErr != nil {
		return types.RecordingState{}, f.recordingErr
	}
	return f.recording, nil
}

func (f *fakeBackend) CoachingState(context.Context) (types.CoachingSessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coachingErr != nil {
		return types.CoachingSessionState{}, f.coachingErr
	}
	return f.coaching, nil
}

func (f *fakeBackend) CoachingHistory(context.Context) ([]types.FeedbackEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return types.CloneFeedbackHistory(f.history), nil
}

func (f *fakeBackend) CoachWindowStatus(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.windowErr != nil {
		return false, f.windowErr
	}
	return f.windowOpen, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func mustEvent(t *testing.T, kind types.EventKind, payload any) types.PushEvent {
	t.Helper()
	ev, err := types.NewPushEvent(kind, payload)
	if err != nil {
		t.Fatalf("NewPushEvent(%s): %v", kind, err)
	}
	return ev
}

func newTestReconciler(t *testing.T, backend *fakeBackend) (*Reconciler, *Store) {
	t.Helper()
	store := New()
	t.Cleanup(store.Close)
	r := NewReconciler(backend, store, logging.Nop())
	t.Cleanup(r.Close)
	return r, store
}

func TestMeetingsUpdatedRefreshesSnapshot(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m1", "standup")}}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventMeetingsUpdated, nil))
	if got := store.Meetings(); len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("snapshot not applied: %+v", got)
	}
}

func TestMeetingsUpdatedFetchFailureRetainsPrior(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m1", "standup")}}
	r, store := newTestReconciler(t, backend)
	r.Handle(context.Background(), mustEvent(t, types.EventMeetingsUpdated, nil))

	backend.mu.Lock()
	backend.meetingsErr = errors.New("daemon busy")
	backend.mu.Unlock()
	r.Handle(context.Background(), mustEvent(t, types.EventMeetingsUpdated, nil))

	if got := store.Meetings(); len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("transient failure regressed state: %+v", got)
	}
}

func TestRecordingStartedWithMeetingPayload(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)

	started := storeMeeting("m5", "kickoff")
	started.Status = types.MeetingStatusRecording
	started.CalendarEventID = "cal-9"
	store.MarkReadyToRecord("cal-9")

	r.Handle(context.Background(), mustEvent(t, types.EventRecordingStarted,
		types.RecordingStartedPayload{Meeting: &started}))

	if !store.IsRecording() {
		t.Fatalf("recording flag not set")
	}
	if got := store.SelectedMeeting(); got == nil || got.ID != "m5" {
		t.Fatalf("started meeting not selected: %+v", got)
	}
	if backend.calls() != 0 {
		t.Fatalf("meeting-bearing payload should not trigger a fetch, got %d calls", backend.calls())
	}
	if store.IsReadyToRecord("cal-9") {
		t.Fatalf("ready-to-record entry should clear once its recording starts")
	}
}

func TestRecordingStartedIDOnlyFetchesAndSelects(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m7", "sync")}}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventRecordingStarted,
		types.RecordingStartedPayload{MeetingID: "m7"}))

	if !store.IsRecording() {
		t.Fatalf("recording flag not set on id-only payload")
	}
	if got := store.SelectedMeeting(); got == nil || got.ID != "m7" {
		t.Fatalf("id-only payload did not select after refresh: %+v", got)
	}
	if backend.calls() != 1 {
		t.Fatalf("expected exactly one corroborating fetch, got %d", backend.calls())
	}
}

func TestRecordingStartedUnknownIDSurfacesError(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m1", "standup")}}
	r, store := newTestReconciler(t, backend)
	store.ApplyMeetingsSnapshot(backend.meetings)
	store.SelectMeeting("m1")

	r.Handle(context.Background(), mustEvent(t, types.EventRecordingStarted,
		types.RecordingStartedPayload{MeetingID: "ghost"}))

	if got := store.SelectedMeeting(); got == nil || got.ID != "m1" {
		t.Fatalf("unknown id changed the selection: %+v", got)
	}
	toast := store.Toast()
	if toast == nil || toast.Kind != ToastError {
		t.Fatalf("missing error toast for unknown meeting: %+v", toast)
	}
}

func TestRecordingStoppedClearsFlagAndRefreshes(t *testing.T) {
	done := storeMeeting("m1", "standup")
	done.Status = types.MeetingStatusCompleted
	backend := &fakeBackend{meetings: []types.Meeting{done}}
	r, store := newTestReconciler(t, backend)
	store.ApplyRecordingStarted(&types.Meeting{ID: "m1", Title: "standup", Status: types.MeetingStatusRecording})

	r.Handle(context.Background(), mustEvent(t, types.EventRecordingStopped, nil))

	if store.IsRecording() {
		t.Fatalf("recording flag still set")
	}
	got := store.Meetings()
	if len(got) != 1 || got[0].Status != types.MeetingStatusCompleted {
		t.Fatalf("stop should refresh persisted status, got %+v", got)
	}
}

func TestRecordingAutoStoppedIndependentSignal(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)
	store.ApplyRecordingStarted(nil)

	r.Handle(context.Background(), mustEvent(t, types.EventRecordingAutoStopped,
		types.RecordingAutoStoppedPayload{Reason: "meeting ended"}))

	if store.IsRecording() {
		t.Fatalf("auto-stop must clear the flag without waiting for recording-stopped")
	}
	toast := store.Toast()
	if toast == nil || toast.Kind != ToastInfo || toast.Message != "Recording stopped: meeting ended" {
		t.Fatalf("unexpected auto-stop toast: %+v", toast)
	}
}

func TestConnectionStatusNormalizes(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventConnectionStatus, "connected"))
	if store.Connection() != types.ConnectionStatusConnected {
		t.Fatalf("connected status not applied: %q", store.Connection())
	}

	r.Handle(context.Background(), mustEvent(t, types.EventConnectionStatus, "sideways"))
	if store.Connection() != types.ConnectionStatusConnected {
		t.Fatalf("malformed status replaced prior value: %q", store.Connection())
	}
}

func TestSettingsUpdatedApplies(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventSettingsUpdated,
		types.Settings{AutoRecord: true, DefaultDurationMin: 45, CoachingType: types.CoachingTypeSales}))

	got := store.Settings()
	if !got.AutoRecord || got.DefaultDurationMin != 45 || got.CoachingType != types.CoachingTypeSales {
		t.Fatalf("settings not applied: %+v", got)
	}
}

func TestCoachingFeedbackTriggersFullRefetch(t *testing.T) {
	backend := &fakeBackend{
		coaching: types.CoachingSessionState{IsActive: true, CoachingType: types.CoachingTypeInterview, MeetingID: "m1"},
		history: []types.FeedbackEntry{
			{ID: "f1", Kind: types.FeedbackKindTip, Text: "pause more"},
			{ID: "f2", Kind: types.FeedbackKindPraise, Text: "good recap"},
		},
	}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventCoachingFeedback, nil))

	gotState, gotHistory := store.Coaching()
	if !gotState.IsActive || gotState.CoachingType != types.CoachingTypeInterview {
		t.Fatalf("coaching state not refreshed: %+v", gotState)
	}
	if len(gotHistory) != 2 {
		t.Fatalf("history not refreshed: %d entries", len(gotHistory))
	}
}

func TestCoachingRefetchFailureRetainsPrior(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)
	prior := types.CoachingSessionState{IsActive: true, CoachingType: types.CoachingTypeSales, MeetingID: "m3"}
	store.ApplyCoachingRefresh(&prior, []types.FeedbackEntry{{ID: "f1", Kind: types.FeedbackKindTip, Text: "x"}})

	backend.mu.Lock()
	backend.coachingErr = errors.New("coach offline")
	backend.mu.Unlock()
	r.Handle(context.Background(), mustEvent(t, types.EventCoachingFeedback, nil))

	gotState, gotHistory := store.Coaching()
	if !gotState.IsActive || gotState.MeetingID != "m3" || len(gotHistory) != 1 {
		t.Fatalf("failed refetch regressed coaching state: %+v %d entries", gotState, len(gotHistory))
	}
}

func TestCoachingErrorEmitsToastAndRefetches(t *testing.T) {
	backend := &fakeBackend{coaching: types.CoachingSessionState{IsActive: false}}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventCoachingError,
		types.CoachingErrorPayload{MeetingID: "m1", Error: "microphone unavailable"}))

	toast := store.Toast()
	if toast == nil || toast.Kind != ToastError || toast.Message != "Coaching error: microphone unavailable" {
		t.Fatalf("unexpected coaching error toast: %+v", toast)
	}
}

func TestCoachWindowStatusDefaultsClosed(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)

	open := true
	r.Handle(context.Background(), mustEvent(t, types.EventCoachWindowStatus,
		types.CoachWindowStatusPayload{IsOpen: &open}))
	if !store.CoachWindowOpen() {
		t.Fatalf("open status not applied")
	}

	r.Handle(context.Background(), mustEvent(t, types.EventCoachWindowStatus,
		types.CoachWindowStatusPayload{}))
	if store.CoachWindowOpen() {
		t.Fatalf("missing is_open should default to closed")
	}
}

func TestSelectMeetingFallsBackToRefresh(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m4", "review")}}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventSelectMeeting,
		types.SelectMeetingPayload{MeetingID: "m4"}))

	if got := store.SelectedMeeting(); got == nil || got.ID != "m4" {
		t.Fatalf("select-meeting did not land after refresh: %+v", got)
	}
	if backend.calls() != 1 {
		t.Fatalf("expected one corroborating fetch, got %d", backend.calls())
	}
}

func TestMeetingReadyInsertsWithExpiry(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)
	store.readyTTL = 60 * time.Millisecond

	ev := mustEvent(t, types.EventMeetingReady, types.MeetingReadyPayload{
		CalendarEvent: types.CalendarEvent{ID: "cal-7", Title: "1:1"},
	})
	r.Handle(context.Background(), ev)

	if !store.IsReadyToRecord("cal-7") {
		t.Fatalf("calendar event not marked ready")
	}
	toast := store.Toast()
	if toast == nil || toast.Message != "Ready to record: 1:1" {
		t.Fatalf("unexpected ready toast: %+v", toast)
	}

	// Re-delivery of the same event must not extend the deadline.
	time.Sleep(35 * time.Millisecond)
	r.Handle(context.Background(), ev)
	time.Sleep(45 * time.Millisecond)
	if store.IsReadyToRecord("cal-7") {
		t.Fatalf("replayed meeting-ready extended the expiry")
	}
}

func TestCleaningProgressClampsAndIgnoresGarbage(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)

	r.Handle(context.Background(), mustEvent(t, types.EventCleaningStarted, nil))
	if got := store.Cleaning(); !got.IsCleaning {
		t.Fatalf("cleaning not started: %+v", got)
	}

	r.Handle(context.Background(), mustEvent(t, types.EventCleaningProgress,
		map[string]any{"percentage": 150}))
	got := store.Cleaning()
	if got.Percentage == nil || *got.Percentage != 100 {
		t.Fatalf("percentage not clamped to 100: %+v", got)
	}
	toast := store.Toast()
	if toast == nil || toast.Message != "Cleaning transcript: 100%" {
		t.Fatalf("unexpected progress toast: %+v", toast)
	}

	r.Handle(context.Background(), mustEvent(t, types.EventCleaningProgress,
		map[string]any{"percentage": "almost"}))
	got = store.Cleaning()
	if got.Percentage == nil || *got.Percentage != 100 {
		t.Fatalf("non-numeric percentage should be ignored: %+v", got)
	}

	r.Handle(context.Background(), mustEvent(t, types.EventCleaningCompleted, nil))
	if got := store.Cleaning(); got.IsCleaning || got.Percentage != nil {
		t.Fatalf("cleaning state not cleared: %+v", got)
	}
	toast = store.Toast()
	if toast == nil || toast.Kind != ToastSuccess {
		t.Fatalf("missing completion toast: %+v", toast)
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	backend := &fakeBackend{}
	r, store := newTestReconciler(t, backend)
	before := store.Version()

	r.Handle(context.Background(), types.PushEvent{Kind: "mystery-event"})
	if store.Version() != before {
		t.Fatalf("unknown event mutated state")
	}
}

func TestHandleToleratesMissingCollaborators(t *testing.T) {
	var r *Reconciler
	r.Handle(context.Background(), types.PushEvent{Kind: types.EventMeetingsUpdated})

	half := &Reconciler{bus: NewEventBus(), log: logging.Nop()}
	half.Handle(context.Background(), types.PushEvent{Kind: types.EventMeetingsUpdated})
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	backend := &fakeBackend{meetings: []types.Meeting{storeMeeting("m1", "standup")}}
	r, store := newTestReconciler(t, backend)

	events := make(chan types.PushEvent, 2)
	events <- mustEvent(t, types.EventMeetingsUpdated, nil)
	close(events)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after channel close")
	}
	if got := store.Meetings(); len(got) != 1 {
		t.Fatalf("queued event not processed before exit: %+v", got)
	}
}
