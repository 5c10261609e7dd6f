package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"recap/internal/config"
	"recap/internal/logging"
	"recap/internal/types"
)

// readyWindow is how far ahead of its start a calendar meeting counts as
// ready to record.
const readyWindow = 10 * time.Minute

type CalendarSyncResult struct {
	Imported int       `json:"imported"`
	Updated  int       `json:"updated"`
	Ready    int       `json:"ready"`
	SyncedAt time.Time `json:"synced_at"`
}

// calendarFeed is the on-disk shape of the exported calendar file.
type calendarFeed struct {
	Events []types.CalendarEvent `json:"events"`
}

// CalendarImporter folds the local calendar feed into the meeting store.
// The feed is authoritative for times only: user-edited titles and
// tombstones always win over what the feed says.
type CalendarImporter struct {
	stores *Stores
	hub    *EventHub
	log    logging.Logger
}

func NewCalendarImporter(stores *Stores, hub *EventHub, log logging.Logger) *CalendarImporter {
	if log == nil {
		log = logging.Nop()
	}
	return &CalendarImporter{stores: stores, hub: hub, log: log}
}

func (c *CalendarImporter) Sync(ctx context.Context) (CalendarSyncResult, error) {
	if c.stores == nil || c.stores.Meetings == nil || c.stores.Settings == nil {
		return CalendarSyncResult{}, unavailableError("meeting store not available", nil)
	}

	settings, err := c.stores.Settings.Load(ctx)
	if err != nil {
		return CalendarSyncResult{}, unavailableError(err.Error(), err)
	}
	feedPath, err := config.ResolveFeed(settings.CalendarFeed)
	if err != nil {
		return CalendarSyncResult{}, invalidError("resolve calendar feed path", err)
	}

	data, err := os.ReadFile(feedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CalendarSyncResult{}, notFoundError("calendar feed not found", err)
		}
		return CalendarSyncResult{}, unavailableError("read calendar feed", err)
	}
	var feed calendarFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return CalendarSyncResult{}, invalidError("calendar feed is not valid json", err)
	}

	now := time.Now().UTC()
	result := CalendarSyncResult{SyncedAt: now}
	for _, event := range feed.Events {
		if strings.TrimSpace(event.ID) == "" {
			continue
		}
		changed, imported, err := c.applyEvent(ctx, event)
		if err != nil {
			return CalendarSyncResult{}, err
		}
		if imported {
			result.Imported++
		} else if changed {
			result.Updated++
		}
		if c.announceIfReady(event, now) {
			result.Ready++
		}
	}

	if result.Imported > 0 || result.Updated > 0 {
		c.hub.Publish(types.EventMeetingsUpdated, nil)
	}
	c.log.Info("calendar_synced",
		logging.F("feed", feedPath),
		logging.F("imported", result.Imported),
		logging.F("updated", result.Updated),
		logging.F("ready", result.Ready),
	)
	return result, nil
}

// applyEvent upserts one feed event. Reports (changed, imported): imported
// means a new meeting was created, changed means an existing one moved.
func (c *CalendarImporter) applyEvent(ctx context.Context, event types.CalendarEvent) (bool, bool, error) {
	existing, ok, err := c.stores.Meetings.GetByCalendarEvent(ctx, event.ID)
	if err != nil {
		return false, false, unavailableError(err.Error(), err)
	}

	if !ok {
		title := strings.TrimSpace(event.Title)
		if title == "" {
			title = "Untitled meeting"
		}
		meeting := types.Meeting{
			Title:           title,
			StartsAt:        event.StartsAt,
			EndsAt:          cloneTime(event.EndsAt),
			DurationMin:     event.DurationMin,
			Status:          types.MeetingStatusScheduled,
			CalendarEventID: event.ID,
			Notes:           attendeeNotes(event.Attendees),
		}
		if _, err := c.stores.Meetings.Create(ctx, meeting); err != nil {
			return false, false, unavailableError(err.Error(), err)
		}
		return false, true, nil
	}

	// A tombstone means the user deleted this meeting; re-importing it
	// would undo that decision.
	if existing.Tombstoned() {
		return false, false, nil
	}

	merged := types.CloneMeeting(existing)
	merged.StartsAt = event.StartsAt
	merged.EndsAt = cloneTime(event.EndsAt)
	if event.DurationMin > 0 {
		merged.DurationMin = event.DurationMin
	}
	if meetingsEqualForSync(existing, merged) {
		return false, false, nil
	}
	if _, err := c.stores.Meetings.Update(ctx, merged); err != nil {
		return false, false, unavailableError(err.Error(), err)
	}
	return true, false, nil
}

// announceIfReady publishes meeting-ready for events starting inside the
// ready window. Events already underway or further out stay quiet.
func (c *CalendarImporter) announceIfReady(event types.CalendarEvent, now time.Time) bool {
	starts := event.StartsAt
	if starts.Before(now) || starts.After(now.Add(readyWindow)) {
		return false
	}
	c.hub.Publish(types.EventMeetingReady, types.MeetingReadyPayload{
		CalendarEvent: types.CloneCalendarEvent(event),
	})
	return true
}

func meetingsEqualForSync(a, b types.Meeting) bool {
	if !a.StartsAt.Equal(b.StartsAt) || a.DurationMin != b.DurationMin {
		return false
	}
	switch {
	case a.EndsAt == nil && b.EndsAt == nil:
		return true
	case a.EndsAt == nil || b.EndsAt == nil:
		return false
	default:
		return a.EndsAt.Equal(*b.EndsAt)
	}
}

func attendeeNotes(attendees []string) string {
	if len(attendees) == 0 {
		return ""
	}
	return fmt.Sprintf("Attendees: %s", strings.Join(attendees, ", "))
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
