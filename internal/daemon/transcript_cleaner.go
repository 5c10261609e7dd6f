package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"

	"recap/internal/logging"
	"recap/internal/store"
	"recap/internal/types"
)

// fillerWords are the disfluencies stripped from transcripts. Matching is
// case-insensitive after trailing punctuation is trimmed.
var fillerWords = map[string]struct{}{
	"um":  {},
	"umm": {},
	"uh":  {},
	"uhh": {},
	"er":  {},
	"erm": {},
	"ah":  {},
	"hmm": {},
	"mhm": {},
}

// TranscriptCleaner rewrites a meeting's transcript in the background,
// reporting progress over the event channel. One clean per meeting at a
// time; a second request while one runs is a conflict.
type TranscriptCleaner struct {
	stores *Stores
	hub    *EventHub
	log    logging.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

func NewTranscriptCleaner(stores *Stores, hub *EventHub, log logging.Logger) *TranscriptCleaner {
	if log == nil {
		log = logging.Nop()
	}
	return &TranscriptCleaner{
		stores:  stores,
		hub:     hub,
		log:     log,
		running: make(map[string]struct{}),
	}
}

// Clean validates the request and starts the background job. The result
// arrives as transcript-correction events, not on this call.
func (c *TranscriptCleaner) Clean(ctx context.Context, meetingID string) error {
	if c.stores == nil || c.stores.Meetings == nil {
		return unavailableError("meeting store not available", nil)
	}
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return invalidError("meeting id is required", nil)
	}

	meeting, ok, err := c.stores.Meetings.Get(ctx, meetingID)
	if err != nil {
		return unavailableError(err.Error(), err)
	}
	if !ok {
		return notFoundError("meeting not found", store.ErrMeetingNotFound)
	}
	if meeting.Tombstoned() {
		return invalidError("meeting was deleted", nil)
	}
	if strings.TrimSpace(meeting.Transcript) == "" {
		return invalidError("meeting has no transcript", nil)
	}

	c.mu.Lock()
	if _, busy := c.running[meetingID]; busy {
		c.mu.Unlock()
		return conflictError("transcript cleaning already in progress", nil)
	}
	c.running[meetingID] = struct{}{}
	c.mu.Unlock()

	go c.run(meeting)
	return nil
}

func (c *TranscriptCleaner) run(meeting types.Meeting) {
	ctx := context.Background()
	defer func() {
		c.mu.Lock()
		delete(c.running, meeting.ID)
		c.mu.Unlock()
	}()

	c.hub.Publish(types.EventCleaningStarted, map[string]string{"meeting_id": meeting.ID})

	lines := strings.Split(meeting.Transcript, "\n")
	cleaned := make([]string, 0, len(lines))
	marks := []int{25, 50, 75}
	nextMark := 0
	for i, line := range lines {
		stripped := stripFillerWords(line)
		if stripped != "" {
			cleaned = append(cleaned, stripped)
		}
		done := (i + 1) * 100 / len(lines)
		for nextMark < len(marks) && done >= marks[nextMark] {
			c.hub.Publish(types.EventCleaningProgress, map[string]any{
				"meeting_id": meeting.ID,
				"percentage": marks[nextMark],
			})
			nextMark++
		}
	}

	// Refetch before writing: the meeting may have been edited or removed
	// while the clean ran, and only the transcript belongs to this job.
	current, ok, err := c.stores.Meetings.Get(ctx, meeting.ID)
	if err != nil {
		c.fail(meeting.ID, err)
		return
	}
	if !ok {
		c.fail(meeting.ID, errors.New("meeting removed while cleaning"))
		return
	}
	current.Transcript = strings.Join(cleaned, "\n")
	if _, err := c.stores.Meetings.Update(ctx, current); err != nil {
		c.fail(meeting.ID, err)
		return
	}

	c.hub.Publish(types.EventCleaningCompleted, map[string]string{"meeting_id": meeting.ID})
	c.hub.Publish(types.EventMeetingsUpdated, nil)
	c.log.Info("transcript_cleaned",
		logging.F("meeting_id", meeting.ID),
		logging.F("lines", len(cleaned)),
	)
}

func (c *TranscriptCleaner) fail(meetingID string, err error) {
	c.log.Warn("transcript_clean_failed", logging.F("meeting_id", meetingID), logging.F("error", err))
	c.hub.Publish(types.EventCleaningFailed, map[string]string{
		"meeting_id": meetingID,
		"error":      err.Error(),
	})
}

func stripFillerWords(line string) string {
	fields := strings.Fields(line)
	kept := make([]string, 0, len(fields))
	for _, word := range fields {
		normalized := strings.ToLower(strings.Trim(word, ".,!?;:"))
		if _, filler := fillerWords[normalized]; filler {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
