package daemon

import (
	"context"
	"strings"
	"sync"

	"recap/internal/logging"
	"recap/internal/store"
	"recap/internal/types"
)

// CoachingManager drives the live coaching session. Session state and
// feedback history persist through the repository; the coach window flag
// is process-local because the window dies with the daemon anyway.
type CoachingManager struct {
	stores *Stores
	hub    *EventHub
	log    logging.Logger

	mu         sync.Mutex
	windowOpen bool
}

func NewCoachingManager(stores *Stores, hub *EventHub, log logging.Logger) *CoachingManager {
	if log == nil {
		log = logging.Nop()
	}
	return &CoachingManager{stores: stores, hub: hub, log: log}
}

func (c *CoachingManager) State(ctx context.Context) (types.CoachingSessionState, error) {
	if c.stores == nil || c.stores.Coaching == nil {
		return types.CoachingSessionState{}, unavailableError("coaching store not available", nil)
	}
	state, err := c.stores.Coaching.LoadState(ctx)
	if err != nil {
		return types.CoachingSessionState{}, unavailableError(err.Error(), err)
	}
	return state, nil
}

// History returns feedback for the session's meeting, active or not, so a
// client can review the last session after it ends. No session yet means
// an empty history.
func (c *CoachingManager) History(ctx context.Context) ([]types.FeedbackEntry, error) {
	state, err := c.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.MeetingID == "" {
		return []types.FeedbackEntry{}, nil
	}
	entries, err := c.stores.Coaching.ListFeedback(ctx, state.MeetingID)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	if entries == nil {
		entries = []types.FeedbackEntry{}
	}
	return entries, nil
}

// Start activates coaching for a meeting. Feedback from any previous
// session on that meeting is cleared so the history shown is all from the
// run that is live now.
func (c *CoachingManager) Start(ctx context.Context, req StartCoachingRequest) (types.CoachingSessionState, error) {
	if c.stores == nil || c.stores.Coaching == nil || c.stores.Meetings == nil {
		return types.CoachingSessionState{}, unavailableError("coaching store not available", nil)
	}
	meetingID := strings.TrimSpace(req.MeetingID)
	if meetingID == "" {
		return types.CoachingSessionState{}, invalidError("meeting id is required", nil)
	}

	meeting, ok, err := c.stores.Meetings.Get(ctx, meetingID)
	if err != nil {
		return types.CoachingSessionState{}, c.failStart(meetingID, unavailableError(err.Error(), err))
	}
	if !ok {
		return types.CoachingSessionState{}, c.failStart(meetingID, notFoundError("meeting not found", store.ErrMeetingNotFound))
	}
	if meeting.Tombstoned() {
		return types.CoachingSessionState{}, c.failStart(meetingID, invalidError("meeting was deleted", nil))
	}

	current, err := c.stores.Coaching.LoadState(ctx)
	if err != nil {
		return types.CoachingSessionState{}, c.failStart(meetingID, unavailableError(err.Error(), err))
	}
	if current.IsActive && current.MeetingID == meetingID {
		return current, nil
	}
	if current.IsActive {
		return types.CoachingSessionState{}, conflictError("coaching is active for another meeting", nil)
	}

	state := types.CoachingSessionState{
		IsActive:     true,
		CoachingType: c.resolveCoachingType(ctx, req.CoachingType),
		MeetingID:    meetingID,
	}

	if err := c.stores.Coaching.ClearFeedback(ctx, meetingID); err != nil {
		return types.CoachingSessionState{}, c.failStart(meetingID, unavailableError(err.Error(), err))
	}
	if err := c.stores.Coaching.SaveState(ctx, state); err != nil {
		return types.CoachingSessionState{}, c.failStart(meetingID, unavailableError(err.Error(), err))
	}

	c.hub.Publish(types.EventCoachingFeedback, nil)
	c.log.Info("coaching_started",
		logging.F("meeting_id", meetingID),
		logging.F("coaching_type", string(state.CoachingType)),
	)
	return state, nil
}

// Stop deactivates the session but keeps its meeting id so History still
// resolves. Stopping an idle session is a no-op.
func (c *CoachingManager) Stop(ctx context.Context) (types.CoachingSessionState, error) {
	if c.stores == nil || c.stores.Coaching == nil {
		return types.CoachingSessionState{}, unavailableError("coaching store not available", nil)
	}
	state, err := c.stores.Coaching.LoadState(ctx)
	if err != nil {
		return types.CoachingSessionState{}, unavailableError(err.Error(), err)
	}
	if !state.IsActive {
		return state, nil
	}

	state.IsActive = false
	if err := c.stores.Coaching.SaveState(ctx, state); err != nil {
		return types.CoachingSessionState{}, unavailableError(err.Error(), err)
	}

	c.hub.Publish(types.EventCoachingFeedback, nil)
	c.log.Info("coaching_stopped", logging.F("meeting_id", state.MeetingID))
	return state, nil
}

// AddFeedback records one coach observation against the active session.
// The coach window process calls this; rejecting writes outside an active
// session keeps history scoped to a real run.
func (c *CoachingManager) AddFeedback(ctx context.Context, req AddFeedbackRequest) (types.FeedbackEntry, error) {
	if c.stores == nil || c.stores.Coaching == nil {
		return types.FeedbackEntry{}, unavailableError("coaching store not available", nil)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return types.FeedbackEntry{}, invalidError("feedback text is required", nil)
	}

	state, err := c.stores.Coaching.LoadState(ctx)
	if err != nil {
		return types.FeedbackEntry{}, unavailableError(err.Error(), err)
	}
	if !state.IsActive {
		err := conflictError("no active coaching session", nil)
		c.publishError("", err)
		return types.FeedbackEntry{}, err
	}

	kind, ok := types.NormalizeFeedbackKind(req.Kind)
	if !ok {
		kind = types.FeedbackKindTip
	}
	entry := types.FeedbackEntry{
		MeetingID: state.MeetingID,
		Kind:      kind,
		Text:      text,
	}
	saved, err := c.stores.Coaching.AppendFeedback(ctx, entry)
	if err != nil {
		wrapped := unavailableError(err.Error(), err)
		c.publishError(state.MeetingID, wrapped)
		return types.FeedbackEntry{}, wrapped
	}

	c.hub.Publish(types.EventCoachingFeedback, nil)
	return saved, nil
}

func (c *CoachingManager) WindowStatus() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowOpen
}

func (c *CoachingManager) SetWindowOpen(open bool) {
	c.mu.Lock()
	changed := c.windowOpen != open
	c.windowOpen = open
	c.mu.Unlock()

	if !changed {
		return
	}
	c.hub.Publish(types.EventCoachWindowStatus, types.CoachWindowStatusPayload{IsOpen: &open})
	c.log.Info("coach_window_status", logging.F("is_open", open))
}

func (c *CoachingManager) resolveCoachingType(ctx context.Context, raw string) types.CoachingType {
	if normalized, ok := types.NormalizeCoachingType(raw); ok {
		return normalized
	}
	if c.stores != nil && c.stores.Settings != nil {
		if settings, err := c.stores.Settings.Load(ctx); err == nil {
			return settings.CoachingType
		}
	}
	return types.CoachingTypeGeneral
}

// failStart reports a start failure on the event channel too, so the coach
// window learns about it without polling.
func (c *CoachingManager) failStart(meetingID string, err error) error {
	c.publishError(meetingID, err)
	return err
}

func (c *CoachingManager) publishError(meetingID string, err error) {
	if c.hub == nil || err == nil {
		return
	}
	c.hub.Publish(types.EventCoachingError, types.CoachingErrorPayload{
		MeetingID: meetingID,
		Error:     err.Error(),
	})
}
