package state

import (
	"context"

	"recap/internal/agenda"
	"recap/internal/logging"
)

// Bootstrap rebuilds the Store from the daemon's current truth without
// relying on any event having been seen. It runs once per process start
// and again after an event-stream reconnect. Order matters: the meetings
// snapshot lands first, then recording state; an in-progress recording
// forces its meeting selected and the upcoming view shown, whatever the
// snapshot said about it. Individual fetch failures degrade to "no active
// session" instead of aborting.
func Bootstrap(ctx context.Context, backend Backend, store *Store, log logging.Logger) {
	if backend == nil || store == nil {
		return
	}
	if log == nil {
		log = logging.Nop()
	}

	if meetings, err := backend.ListMeetings(ctx); err != nil {
		log.Warn("bootstrap: meetings fetch failed", logging.F("error", err))
	} else {
		store.ApplyMeetingsSnapshot(meetings)
	}

	if rec, err := backend.RecordingState(ctx); err != nil {
		log.Warn("bootstrap: recording state fetch failed", logging.F("error", err))
	} else if rec.IsRecording {
		if rec.Meeting != nil {
			store.ApplyRecordingStarted(rec.Meeting)
		} else {
			store.ApplyRecordingStarted(nil)
			if rec.MeetingID != "" && !store.SelectMeeting(rec.MeetingID) {
				log.Error("bootstrap: active recording references unknown meeting",
					logging.F("meeting_id", rec.MeetingID))
			}
		}
		store.SetView(agenda.ViewUpcoming)
	}

	if st, err := backend.CoachingState(ctx); err != nil {
		log.Warn("bootstrap: coaching state fetch failed", logging.F("error", err))
		store.ApplyCoachingRefresh(nil, nil)
	} else {
		history, herr := backend.CoachingHistory(ctx)
		if herr != nil {
			log.Warn("bootstrap: coaching history fetch failed", logging.F("error", herr))
			history = nil
		}
		store.ApplyCoachingRefresh(&st, history)
	}

	if open, err := backend.CoachWindowStatus(ctx); err != nil {
		log.Warn("bootstrap: coach window fetch failed", logging.F("error", err))
		store.SetCoachWindowOpen(false)
	} else {
		store.SetCoachWindowOpen(open)
	}
}
