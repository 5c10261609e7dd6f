package state

import (
	"context"
	"errors"
	"testing"

	"recap/internal/agenda"
	"recap/internal/logging"
	"recap/internal/types"
)

func TestBootstrapForcesActiveRecordingSelection(t *testing.T) {
	snapshotCopy := storeMeeting("m1", "standup")
	snapshotCopy.Status = types.MeetingStatusScheduled
	live := storeMeeting("m1", "standup")
	live.Status = types.MeetingStatusRecording
	backend := &fakeBackend{
		meetings:  []types.Meeting{snapshotCopy},
		recording: types.RecordingState{IsRecording: true, MeetingID: "m1", Meeting: &live},
	}

	store := New()
	defer store.Close()
	store.SetView(agenda.ViewPast)

	Bootstrap(context.Background(), backend, store, logging.Nop())

	got := store.SelectedMeeting()
	if got == nil || got.ID != "m1" {
		t.Fatalf("active recording meeting not selected: %+v", got)
	}
	if got.Status != types.MeetingStatusRecording {
		t.Fatalf("recording-state meeting should win over the snapshot copy, got %q", got.Status)
	}
	if store.View() != agenda.ViewUpcoming {
		t.Fatalf("bootstrap must force the upcoming view, got %q", store.View())
	}
	if !store.IsRecording() {
		t.Fatalf("recording flag not set")
	}
}

func TestBootstrapIDOnlyRecordingSelectsFromSnapshot(t *testing.T) {
	backend := &fakeBackend{
		meetings:  []types.Meeting{storeMeeting("m1", "standup"), storeMeeting("m2", "retro")},
		recording: types.RecordingState{IsRecording: true, MeetingID: "m2"},
	}

	store := New()
	defer store.Close()
	Bootstrap(context.Background(), backend, store, logging.Nop())

	if got := store.SelectedMeeting(); got == nil || got.ID != "m2" {
		t.Fatalf("id-only recording state did not select from snapshot: %+v", got)
	}
}

func TestBootstrapPartialFailuresDegrade(t *testing.T) {
	backend := &fakeBackend{
		meetingsErr: errors.New("list unavailable"),
		coachingErr: errors.New("coach unavailable"),
		windowErr:   errors.New("window unavailable"),
	}

	store := New()
	defer store.Close()
	Bootstrap(context.Background(), backend, store, logging.Nop())

	if store.IsRecording() {
		t.Fatalf("recording flag set with no active recording")
	}
	gotState, gotHistory := store.Coaching()
	if gotState.IsActive || len(gotHistory) != 0 {
		t.Fatalf("coaching failure should degrade to no active session: %+v", gotState)
	}
	if store.CoachWindowOpen() {
		t.Fatalf("window failure should degrade to closed")
	}
}

func TestBootstrapCoachingStateApplied(t *testing.T) {
	backend := &fakeBackend{
		coaching:   types.CoachingSessionState{IsActive: true, CoachingType: types.CoachingTypePresentation, MeetingID: "m8"},
		history:    []types.FeedbackEntry{{ID: "f1", Kind: types.FeedbackKindWarning, Text: "monotone"}},
		windowOpen: true,
	}

	store := New()
	defer store.Close()
	Bootstrap(context.Background(), backend, store, logging.Nop())

	gotState, gotHistory := store.Coaching()
	if !gotState.IsActive || gotState.CoachingType != types.CoachingTypePresentation {
		t.Fatalf("coaching state not applied: %+v", gotState)
	}
	if len(gotHistory) != 1 {
		t.Fatalf("history not applied: %d entries", len(gotHistory))
	}
	if !store.CoachWindowOpen() {
		t.Fatalf("coach window status not applied")
	}
}

func TestBootstrapNilCollaboratorsNoop(t *testing.T) {
	Bootstrap(context.Background(), nil, nil, nil)
	Bootstrap(context.Background(), &fakeBackend{}, nil, nil)

	store := New()
	defer store.Close()
	Bootstrap(context.Background(), nil, store, nil)
	if store.Version() != 0 {
		t.Fatalf("nil backend bootstrap mutated the store")
	}
}
