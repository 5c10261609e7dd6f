// Package agenda partitions the meeting collection into the upcoming and
// past views. Everything here is a pure function of the collection and a
// wall-clock instant so the rendering layer can re-derive its lists on
// every state change.
package agenda

import (
	"sort"
	"time"

	"recap/internal/types"
)

type View string

const (
	ViewUpcoming View = "upcoming"
	ViewPast     View = "past"
)

func NormalizeView(raw string) (View, bool) {
	switch raw {
	case string(ViewUpcoming):
		return ViewUpcoming, true
	case string(ViewPast):
		return ViewPast, true
	default:
		return "", false
	}
}

// Meetings returns the ordered meetings for one view. Tombstoned records
// never appear. Upcoming is ascending by start, past descending; ties keep
// collection order.
func Meetings(list []types.Meeting, view View, now time.Time) []types.Meeting {
	switch view {
	case ViewPast:
		return Past(list, now)
	default:
		return Upcoming(list, now)
	}
}

// Upcoming keeps meetings that have not effectively ended, plus any live
// session regardless of its nominal end: an overrunning recording must stay
// visible. Completed meetings never count as upcoming even when their end
// time has not elapsed.
func Upcoming(list []types.Meeting, now time.Time) []types.Meeting {
	out := make([]types.Meeting, 0, len(list))
	for _, m := range list {
		if m.Tombstoned() {
			continue
		}
		if types.MeetingInProgress(m.Status) {
			out = append(out, types.CloneMeeting(m))
			continue
		}
		if m.Status == types.MeetingStatusCompleted {
			continue
		}
		if !m.EffectiveEnd().Before(now) {
			out = append(out, types.CloneMeeting(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

// Past keeps meetings that have ended (or were marked completed) and
// captured some content; an empty past meeting is noise, not history.
func Past(list []types.Meeting, now time.Time) []types.Meeting {
	out := make([]types.Meeting, 0, len(list))
	for _, m := range list {
		if m.Tombstoned() {
			continue
		}
		if types.MeetingInProgress(m.Status) {
			continue
		}
		ended := m.EffectiveEnd().Before(now) || m.Status == types.MeetingStatusCompleted
		if !ended {
			continue
		}
		if !m.HasContent() {
			continue
		}
		out = append(out, types.CloneMeeting(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartsAt.After(out[j].StartsAt)
	})
	return out
}
