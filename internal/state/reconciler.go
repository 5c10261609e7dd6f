package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recap/internal/logging"
	"recap/internal/types"
)

// Reconciler is the single subscriber to the daemon's push events. Each
// event kind maps to one handler that translates it into Store operations,
// fetching corroborating state when the payload under-specifies. A failed
// fetch leaves prior state untouched: the store never regresses because a
// transient call failed.
type Reconciler struct {
	backend Backend
	store   *Store
	bus     *EventBus
	log     logging.Logger
}

func NewReconciler(backend Backend, store *Store, log logging.Logger) *Reconciler {
	if log == nil {
		log = logging.Nop()
	}
	r := &Reconciler{
		backend: backend,
		store:   store,
		bus:     NewEventBus(),
		log:     log,
	}
	r.registerHandlers()
	return r
}

func (r *Reconciler) registerHandlers() {
	handlers := map[types.EventKind]HandlerFunc{
		types.EventMeetingsUpdated:      r.handleMeetingsUpdated,
		types.EventRecordingStarted:     r.handleRecordingStarted,
		types.EventRecordingStopped:     r.handleRecordingStopped,
		types.EventRecordingAutoStopped: r.handleRecordingAutoStopped,
		types.EventConnectionStatus:     r.handleConnectionStatus,
		types.EventSettingsUpdated:      r.handleSettingsUpdated,
		types.EventCoachingFeedback:     r.handleCoachingFeedback,
		types.EventCoachingError:        r.handleCoachingError,
		types.EventCoachWindowStatus:    r.handleCoachWindowStatus,
		types.EventSelectMeeting:        r.handleSelectMeeting,
		types.EventMeetingReady:         r.handleMeetingReady,
		types.EventCleaningStarted:      r.handleCleaningStarted,
		types.EventCleaningProgress:     r.handleCleaningProgress,
		types.EventCleaningCompleted:    r.handleCleaningCompleted,
		types.EventCleaningFailed:       r.handleCleaningFailed,
	}
	for kind, fn := range handlers {
		if err := r.bus.Register(kind, fn); err != nil {
			r.log.Error("register event handler", logging.F("kind", string(kind)), logging.F("error", err))
		}
	}
}

// Run consumes events until the channel closes or the context ends.
// Events are handled in delivery order, one at a time.
func (r *Reconciler) Run(ctx context.Context, events <-chan types.PushEvent) {
	if r == nil || events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ctx, ev)
		}
	}
}

// Handle reconciles one event. A partially-initialized reconciler no-ops
// instead of panicking.
func (r *Reconciler) Handle(ctx context.Context, ev types.PushEvent) {
	if r == nil || r.store == nil || r.backend == nil {
		return
	}
	if err := r.bus.Dispatch(ctx, ev); err != nil {
		if errors.Is(err, ErrUnhandledEvent) {
			r.log.Debug("ignoring event", logging.F("kind", string(ev.Kind)))
			return
		}
		r.log.Warn("event reconcile failed", logging.F("kind", string(ev.Kind)), logging.F("error", err))
	}
}

// Close tears down every registered handler together.
func (r *Reconciler) Close() {
	if r == nil {
		return
	}
	r.bus.Teardown()
}

func (r *Reconciler) refreshMeetings(ctx context.Context) error {
	list, err := r.backend.ListMeetings(ctx)
	if err != nil {
		return fmt.Errorf("refresh meetings: %w", err)
	}
	r.store.ApplyMeetingsSnapshot(list)
	return nil
}

func (r *Reconciler) refreshCoaching(ctx context.Context) error {
	st, err := r.backend.CoachingState(ctx)
	if err != nil {
		return fmt.Errorf("refresh coaching state: %w", err)
	}
	history, err := r.backend.CoachingHistory(ctx)
	if err != nil {
		return fmt.Errorf("refresh coaching history: %w", err)
	}
	r.store.ApplyCoachingRefresh(&st, history)
	return nil
}

func (r *Reconciler) handleMeetingsUpdated(ctx context.Context, _ types.PushEvent) error {
	return r.refreshMeetings(ctx)
}

func (r *Reconciler) handleRecordingStarted(ctx context.Context, ev types.PushEvent) error {
	var payload types.RecordingStartedPayload
	if err := ev.Decode(&payload); err != nil && !errors.Is(err, types.ErrNoPayload) {
		return err
	}
	if payload.Meeting != nil {
		r.store.ApplyRecordingStarted(payload.Meeting)
		if payload.Meeting.CalendarEventID != "" {
			r.store.RemoveReadyToRecord(payload.Meeting.CalendarEventID)
		}
		return nil
	}
	// Id-only payload: the flag is true either way, but selection needs a
	// fresh snapshot to search.
	r.store.ApplyRecordingStarted(nil)
	if err := r.refreshMeetings(ctx); err != nil {
		return err
	}
	if payload.MeetingID == "" {
		return nil
	}
	if !r.store.SelectMeeting(payload.MeetingID) {
		r.store.ShowToast(ToastError, "Recording started for an unknown meeting")
		return fmt.Errorf("recording started for unknown meeting %s", payload.MeetingID)
	}
	return nil
}

func (r *Reconciler) handleRecordingStopped(ctx context.Context, _ types.PushEvent) error {
	r.store.ApplyRecordingStopped()
	// Stopping mutates persisted status fields the event does not carry.
	return r.refreshMeetings(ctx)
}

func (r *Reconciler) handleRecordingAutoStopped(_ context.Context, ev types.PushEvent) error {
	var payload types.RecordingAutoStoppedPayload
	if err := ev.Decode(&payload); err != nil && !errors.Is(err, types.ErrNoPayload) {
		return err
	}
	// Auto-stop and regular stop arrive independently; clearing the flag
	// here must not assume recording-stopped already did.
	r.store.ApplyRecordingStopped()
	message := "Recording stopped"
	if reason := strings.TrimSpace(payload.Reason); reason != "" {
		message = "Recording stopped: " + reason
	}
	r.store.ShowToast(ToastInfo, message)
	return nil
}

func (r *Reconciler) handleConnectionStatus(_ context.Context, ev types.PushEvent) error {
	var raw string
	if err := ev.Decode(&raw); err != nil {
		return err
	}
	status, ok := types.NormalizeConnectionStatus(raw)
	if !ok {
		return fmt.Errorf("unrecognized connection status %q", raw)
	}
	r.store.ApplyConnectionStatus(status)
	return nil
}

func (r *Reconciler) handleSettingsUpdated(_ context.Context, ev types.PushEvent) error {
	var settings types.Settings
	if err := ev.Decode(&settings); err != nil {
		return err
	}
	r.store.ApplySettings(settings)
	return nil
}

func (r *Reconciler) handleCoachingFeedback(ctx context.Context, _ types.PushEvent) error {
	// Trigger-only event: coaching data is never trusted from a partial
	// payload, always refetched.
	return r.refreshCoaching(ctx)
}

func (r *Reconciler) handleCoachingError(ctx context.Context, ev types.PushEvent) error {
	var payload types.CoachingErrorPayload
	if err := ev.Decode(&payload); err != nil && !errors.Is(err, types.ErrNoPayload) {
		return err
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		r.store.ShowToast(ToastError, "Coaching error: "+msg)
	}
	return r.refreshCoaching(ctx)
}

func (r *Reconciler) handleCoachWindowStatus(_ context.Context, ev types.PushEvent) error {
	var payload types.CoachWindowStatusPayload
	if err := ev.Decode(&payload); err != nil && !errors.Is(err, types.ErrNoPayload) {
		return err
	}
	open := payload.IsOpen != nil && *payload.IsOpen
	r.store.SetCoachWindowOpen(open)
	return nil
}

func (r *Reconciler) handleSelectMeeting(ctx context.Context, ev types.PushEvent) error {
	var payload types.SelectMeetingPayload
	if err := ev.Decode(&payload); err != nil {
		return err
	}
	if payload.MeetingID == "" {
		return errors.New("select-meeting event without meeting id")
	}
	if r.store.SelectMeeting(payload.MeetingID) {
		return nil
	}
	// Unknown locally: corroborate with a fresh snapshot before giving up.
	if err := r.refreshMeetings(ctx); err != nil {
		return err
	}
	if !r.store.SelectMeeting(payload.MeetingID) {
		return fmt.Errorf("select-meeting for unknown meeting %s", payload.MeetingID)
	}
	return nil
}

func (r *Reconciler) handleMeetingReady(_ context.Context, ev types.PushEvent) error {
	var payload types.MeetingReadyPayload
	if err := ev.Decode(&payload); err != nil {
		return err
	}
	if payload.CalendarEvent.ID == "" {
		return errors.New("meeting-ready event without calendar event id")
	}
	r.store.MarkReadyToRecord(payload.CalendarEvent.ID)
	if title := strings.TrimSpace(payload.CalendarEvent.Title); title != "" {
		r.store.ShowToast(ToastInfo, "Ready to record: "+title)
	}
	return nil
}

func (r *Reconciler) handleCleaningStarted(_ context.Context, _ types.PushEvent) error {
	r.store.ApplyCleaningStarted()
	r.store.ShowToast(ToastInfo, "Cleaning transcript...")
	return nil
}

func (r *Reconciler) handleCleaningProgress(_ context.Context, ev types.PushEvent) error {
	var payload types.CleaningProgressPayload
	if err := ev.Decode(&payload); err != nil && !errors.Is(err, types.ErrNoPayload) {
		return err
	}
	pct, ok := payload.PercentageValue()
	if !ok {
		// Non-numeric percentage: drop the tick, keep the last good value.
		return nil
	}
	r.store.ApplyCleaningProgress(pct)
	r.store.ShowToast(ToastInfo, fmt.Sprintf("Cleaning transcript: %d%%", pct))
	return nil
}

func (r *Reconciler) handleCleaningCompleted(_ context.Context, _ types.PushEvent) error {
	r.store.ApplyCleaningFinished()
	r.store.ShowToast(ToastSuccess, "Transcript cleaned")
	return nil
}

func (r *Reconciler) handleCleaningFailed(_ context.Context, _ types.PushEvent) error {
	r.store.ApplyCleaningFinished()
	r.store.ShowToast(ToastError, "Transcript cleaning failed")
	return nil
}
