package types

import "time"

// CalendarEvent is one entry from the local calendar feed. The importer
// turns these into meetings keyed by the event id.
type CalendarEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	DurationMin int        `json:"duration_min,omitempty"`
	Attendees   []string   `json:"attendees,omitempty"`
}

func CloneCalendarEvent(in CalendarEvent) CalendarEvent {
	out := in
	if in.EndsAt != nil {
		v := *in.EndsAt
		out.EndsAt = &v
	}
	if in.Attendees != nil {
		out.Attendees = append([]string{}, in.Attendees...)
	}
	return out
}
