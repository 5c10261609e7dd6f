// Package state holds the client's authoritative copy of what is true
// right now: the meeting collection, the selected meeting, recording and
// coaching status, transient notifications, and calendar-sync freshness.
// The daemon is the source of truth; this package keeps the local copy
// consistent with it under concurrent, out-of-order, and duplicated event
// delivery.
//
// All mutation goes through the Store's named operations. Every operation
// is total and idempotent under replay: the daemon may re-deliver an event
// after a reconnect, and applying it twice must land in the same state as
// applying it once.
package state

import (
	"sort"
	"sync"
	"time"

	"recap/internal/agenda"
	"recap/internal/types"
)

const (
	defaultToastTTL = 5 * time.Second
	defaultReadyTTL = 5 * time.Minute
)

// CleaningProgress tracks the transcript correction job. Its lifecycle is
// independent of the toast slot but drives toast content while active.
type CleaningProgress struct {
	IsCleaning bool
	Percentage *int
}

// Snapshot is a consistent copy of the whole Store, taken under one lock
// acquisition so the rendering layer never observes a half-applied update.
type Snapshot struct {
	Meetings         []types.Meeting
	SelectedID       string
	View             agenda.View
	Recording        bool
	Coaching         types.CoachingSessionState
	Feedback         []types.FeedbackEntry
	Connection       types.ConnectionStatus
	CoachWindowOpen  bool
	Settings         types.Settings
	Cleaning         CleaningProgress
	ReadyToRecord    []string
	LastCalendarSync time.Time
	Toast            *Toast
	Version          uint64
}

type Store struct {
	mu sync.Mutex

	meetings         []types.Meeting
	selectedID       string
	view             agenda.View
	recording        bool
	coaching         types.CoachingSessionState
	feedback         []types.FeedbackEntry
	connection       types.ConnectionStatus
	coachWindowOpen  bool
	settings         types.Settings
	cleaning         CleaningProgress
	lastCalendarSync time.Time

	toast      *Toast
	toastTimer *time.Timer
	toastGen   uint64
	toastTTL   time.Duration

	ready    map[string]*time.Timer
	readyTTL time.Duration

	version uint64
	closed  bool
}

func New() *Store {
	return &Store{
		view:       agenda.ViewUpcoming,
		coaching:   types.DefaultCoachingSessionState(),
		connection: types.ConnectionStatusDisconnected,
		settings:   types.DefaultSettings(),
		ready:      map[string]*time.Timer{},
		toastTTL:   defaultToastTTL,
		readyTTL:   defaultReadyTTL,
	}
}

// Close cancels every pending timer. Operations on a closed store still
// mutate plain fields but never schedule new work.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	for id, timer := range s.ready {
		timer.Stop()
		delete(s.ready, id)
	}
}

// Version increments on every applied change; pollers re-derive derived
// state only when it moves.
func (s *Store) Version() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Meetings:         types.CloneMeetings(s.meetings),
		SelectedID:       s.selectedID,
		View:             s.view,
		Recording:        s.recording,
		Coaching:         s.coaching,
		Feedback:         types.CloneFeedbackHistory(s.feedback),
		Connection:       s.connection,
		CoachWindowOpen:  s.coachWindowOpen,
		Settings:         s.settings,
		Cleaning:         cloneCleaning(s.cleaning),
		ReadyToRecord:    s.readyIDsLocked(),
		LastCalendarSync: s.lastCalendarSync,
		Toast:            s.toast.clone(),
		Version:          s.version,
	}
}

// ApplyMeetingsSnapshot replaces the meeting collection wholesale and
// re-derives the selection by identity: a selected id absent from the new
// list clears the selection rather than going stale.
func (s *Store) ApplyMeetingsSnapshot(list []types.Meeting) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = types.CloneMeetings(list)
	if s.selectedID != "" && s.findLocked(s.selectedID) == nil {
		s.selectedID = ""
	}
	s.bumpLocked()
}

// ApplyRecordingStarted sets the recording flag. A meeting-bearing payload
// is upserted by identity (the most recent snapshot wins) and selected;
// callers with an id-only payload refresh the snapshot first and then
// select by id.
func (s *Store) ApplyRecordingStarted(m *types.Meeting) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = true
	if m != nil {
		s.upsertLocked(*m)
		s.selectedID = m.ID
	}
	s.bumpLocked()
}

func (s *Store) ApplyRecordingStopped() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = false
	s.bumpLocked()
}

// ApplyCoachingRefresh replaces the coaching session state and feedback
// history wholesale. A nil state means "no active session"; inactive
// sessions drop their stale type and meeting binding.
func (s *Store) ApplyCoachingRefresh(st *types.CoachingSessionState, history []types.FeedbackEntry) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == nil {
		s.coaching = types.DefaultCoachingSessionState()
	} else {
		s.coaching = *st
		if !s.coaching.IsActive {
			s.coaching.CoachingType = ""
			s.coaching.MeetingID = ""
		}
	}
	s.feedback = types.CloneFeedbackHistory(history)
	s.bumpLocked()
}

func (s *Store) ApplyConnectionStatus(status types.ConnectionStatus) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connection == status {
		return
	}
	s.connection = status
	s.bumpLocked()
}

func (s *Store) ApplySettings(settings types.Settings) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = types.NormalizeSettings(settings)
	s.bumpLocked()
}

// SelectMeeting selects by identity lookup and reports whether the id was
// found; an unknown id leaves the selection untouched.
func (s *Store) SelectMeeting(id string) bool {
	if s == nil || id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return false
	}
	if s.selectedID == id {
		return true
	}
	s.selectedID = id
	s.bumpLocked()
	return true
}

func (s *Store) ClearSelection() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return
	}
	s.selectedID = ""
	s.bumpLocked()
}

func (s *Store) SelectedMeeting() *types.Meeting {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.findLocked(s.selectedID)
	if m == nil {
		return nil
	}
	out := types.CloneMeeting(*m)
	return &out
}

func (s *Store) Meetings() []types.Meeting {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneMeetings(s.meetings)
}

func (s *Store) IsRecording() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

func (s *Store) Coaching() (types.CoachingSessionState, []types.FeedbackEntry) {
	if s == nil {
		return types.DefaultCoachingSessionState(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coaching, types.CloneFeedbackHistory(s.feedback)
}

func (s *Store) Connection() types.ConnectionStatus {
	if s == nil {
		return types.ConnectionStatusDisconnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connection
}

func (s *Store) SetCoachWindowOpen(open bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coachWindowOpen == open {
		return
	}
	s.coachWindowOpen = open
	s.bumpLocked()
}

func (s *Store) CoachWindowOpen() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coachWindowOpen
}

func (s *Store) SetView(view agenda.View) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == view {
		return
	}
	s.view = view
	s.bumpLocked()
}

func (s *Store) View() agenda.View {
	if s == nil {
		return agenda.ViewUpcoming
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Store) Settings() types.Settings {
	if s == nil {
		return types.DefaultSettings()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) SetLastCalendarSync(at time.Time) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCalendarSync = at
	s.bumpLocked()
}

func (s *Store) LastCalendarSync() time.Time {
	if s == nil {
		return time.Time{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCalendarSync
}

// MarkReadyToRecord inserts a calendar event id into the ready set and
// schedules its expiry exactly once: replaying the insert keeps the
// original deadline instead of extending it.
func (s *Store) MarkReadyToRecord(id string) {
	if s == nil || id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, exists := s.ready[id]; exists {
		return
	}
	s.ready[id] = time.AfterFunc(s.readyTTL, func() {
		s.expireReadyToRecord(id)
	})
	s.bumpLocked()
}

// RemoveReadyToRecord drops an entry ahead of its deadline, e.g. once a
// recording for that calendar event actually starts.
func (s *Store) RemoveReadyToRecord(id string) {
	if s == nil || id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, exists := s.ready[id]
	if !exists {
		return
	}
	timer.Stop()
	delete(s.ready, id)
	s.bumpLocked()
}

func (s *Store) expireReadyToRecord(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ready[id]; !exists {
		return
	}
	delete(s.ready, id)
	s.bumpLocked()
}

func (s *Store) IsReadyToRecord(id string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.ready[id]
	return exists
}

func (s *Store) ReadyToRecord() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyIDsLocked()
}

func (s *Store) ApplyCleaningStarted() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaning = CleaningProgress{IsCleaning: true}
	s.bumpLocked()
}

// ApplyCleaningProgress records an already-clamped percentage; callers
// discard non-numeric payloads before getting here.
func (s *Store) ApplyCleaningProgress(pct int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaning.IsCleaning = true
	s.cleaning.Percentage = &pct
	s.bumpLocked()
}

func (s *Store) ApplyCleaningFinished() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaning = CleaningProgress{}
	s.bumpLocked()
}

func (s *Store) Cleaning() CleaningProgress {
	if s == nil {
		return CleaningProgress{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCleaning(s.cleaning)
}

func (s *Store) bumpLocked() {
	s.version++
}

func (s *Store) findLocked(id string) *types.Meeting {
	if id == "" {
		return nil
	}
	for i := range s.meetings {
		if s.meetings[i].ID == id {
			return &s.meetings[i]
		}
	}
	return nil
}

func (s *Store) upsertLocked(m types.Meeting) {
	for i := range s.meetings {
		if s.meetings[i].ID == m.ID {
			s.meetings[i] = types.CloneMeeting(m)
			return
		}
	}
	s.meetings = append(s.meetings, types.CloneMeeting(m))
}

func (s *Store) readyIDsLocked() []string {
	if len(s.ready) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.ready))
	for id := range s.ready {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func cloneCleaning(in CleaningProgress) CleaningProgress {
	out := in
	if in.Percentage != nil {
		v := *in.Percentage
		out.Percentage = &v
	}
	return out
}
