package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"recap/internal/agenda"
	"recap/internal/state"
	"recap/internal/types"
)

type meetingRow struct {
	id        string
	title     string
	timeLabel string
	recording bool
	ready     bool
	selected  bool
}

// buildRows derives the visible list from one snapshot. Everything is a
// function of the snapshot and now, so tests can pin the clock.
func buildRows(snap state.Snapshot, now time.Time) []meetingRow {
	meetings := agenda.Meetings(snap.Meetings, snap.View, now)
	ready := make(map[string]struct{}, len(snap.ReadyToRecord))
	for _, id := range snap.ReadyToRecord {
		ready[id] = struct{}{}
	}

	rows := make([]meetingRow, 0, len(meetings))
	for _, meeting := range meetings {
		_, isReady := ready[meeting.CalendarEventID]
		rows = append(rows, meetingRow{
			id:        meeting.ID,
			title:     meeting.Title,
			timeLabel: listTimeLabel(meeting, snap.View, now),
			recording: types.MeetingInProgress(meeting.Status),
			ready:     meeting.CalendarEventID != "" && isReady,
			selected:  meeting.ID == snap.SelectedID,
		})
	}
	return rows
}

// listTimeLabel keeps the list column narrow: upcoming meetings within a
// week show the weekday, today shows just the clock, everything further
// out (and all past meetings) shows the date.
func listTimeLabel(meeting types.Meeting, view agenda.View, now time.Time) string {
	starts := meeting.StartsAt.Local()
	if view == agenda.ViewPast {
		return starts.Format("Jan _2")
	}
	day := now.Local()
	sameDay := starts.Year() == day.Year() && starts.YearDay() == day.YearDay()
	if sameDay {
		return starts.Format("15:04")
	}
	if starts.Before(now.Add(7 * 24 * time.Hour)) {
		return starts.Format("Mon 15:04")
	}
	return starts.Format("Jan _2")
}

func (r meetingRow) marker() string {
	switch {
	case r.recording:
		return recordingMarkStyle.Render("●")
	case r.ready:
		return readyMarkStyle.Render("◆")
	default:
		return " "
	}
}

func (m *Model) listView(width, height int) string {
	if width < 4 {
		width = 4
	}
	lines := make([]string, 0, height)
	if len(m.rows) == 0 {
		empty := "No upcoming meetings."
		if m.snap.View == agenda.ViewPast {
			empty = "No past meetings."
		}
		lines = append(lines, listTimeStyle.Render(truncateToWidth(empty, width)))
	}

	end := min(len(m.rows), m.offset+height)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderRow(row meetingRow, underCursor bool, width int) string {
	prefix := "  "
	if row.selected {
		prefix = "▸ "
	}
	timeLabel := row.timeLabel
	titleWidth := width - lipgloss.Width(prefix) - 2 - lipgloss.Width(timeLabel) - 1
	title := truncateToWidth(row.title, max(1, titleWidth))
	pad := max(1, titleWidth-lipgloss.Width(title)+1)

	if underCursor {
		line := prefix + stripMarker(row) + " " + title + strings.Repeat(" ", pad) + timeLabel
		return selectedStyle.Render(truncateToWidth(line, width))
	}
	return prefix + row.marker() + " " + listTitleStyle.Render(title) +
		strings.Repeat(" ", pad) + listTimeStyle.Render(timeLabel)
}

// stripMarker renders the marker glyph without its own colors so the
// cursor background stays unbroken across the line.
func stripMarker(row meetingRow) string {
	switch {
	case row.recording:
		return "●"
	case row.ready:
		return "◆"
	default:
		return " "
	}
}
