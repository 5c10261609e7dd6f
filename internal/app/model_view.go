package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"recap/internal/agenda"
	"recap/internal/client"
	"recap/internal/state"
	"recap/internal/types"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "starting..."
	}

	header := m.headerLine()
	body := m.bodyView()
	toast := toastLine(m.width, m.snap.Toast)
	status := renderStatusLine(m.width, m.leftStatus(), m.rightStatus(time.Now()))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, toast, status)
}

func (m *Model) headerLine() string {
	title := headerStyle.Render(" recap ")
	upcoming := tabStyle.Render(" upcoming ")
	past := tabStyle.Render(" past ")
	if m.snap.View == agenda.ViewPast {
		past = tabActiveStyle.Render(" past ")
	} else {
		upcoming = tabActiveStyle.Render(" upcoming ")
	}
	return title + " " + upcoming + " " + past
}

func (m *Model) bodyView() string {
	contentHeight := max(minContentHeight, m.height-3)
	listWidth := m.listWidth()

	left := m.listView(listWidth, contentHeight)
	divider := dividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", contentHeight), "\n"))

	var right string
	switch m.mode {
	case uiModeForm:
		if m.form != nil {
			right = m.form.view(m.viewport.Width)
		}
	case uiModeConfirmDelete:
		right = m.confirmView()
	default:
		right = m.detailHeader() + "\n" + m.viewport.View()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, divider, " "+right)
}

func (m *Model) detailHeader() string {
	meeting, ok := m.detailMeeting()
	if !ok {
		return headerStyle.Render("Detail")
	}
	return headerStyle.Render(truncateToWidth(meeting.Title, max(1, m.viewport.Width)))
}

func (m *Model) confirmView() string {
	title := ""
	if m.confirm != nil {
		title = m.confirm.title
	}
	prompt := fmt.Sprintf("Delete %q?", truncateToWidth(title, 40))
	body := prompt + "\n\n" + helpStyle.Render("y delete · n keep")
	return confirmStyle.Render(body)
}

// renderDetail rebuilds the viewport content for the open meeting. Called
// on every store change and on resize; the markdown renderer is cached per
// width so redraws stay cheap.
func (m *Model) renderDetail() {
	meeting, ok := m.detailMeeting()
	if !ok {
		m.viewport.SetContent(helpStyle.Render("Press enter to open a meeting."))
		return
	}
	markdown := meetingMarkdown(meeting, m.snap)
	m.viewport.SetContent(renderMarkdown(markdown, m.viewport.Width))
}

// meetingMarkdown composes the detail document. Notes are the user's own
// markdown and render as written; the transcript is spoken text and gets
// escaped so a stray "#" cannot restyle the page.
func meetingMarkdown(meeting types.Meeting, snap state.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(meeting.Title))
	starts := meeting.StartsAt.Local()
	ends := meeting.EffectiveEnd().Local()
	fmt.Fprintf(&b, "**When:** %s – %s\n\n", starts.Format("Mon, 02 Jan 2006 15:04"), ends.Format("15:04"))
	fmt.Fprintf(&b, "**Status:** %s\n\n", meeting.Status)
	if meeting.CalendarEventID != "" {
		b.WriteString("**Calendar:** linked\n\n")
	}

	if notes := strings.TrimSpace(meeting.Notes); notes != "" {
		b.WriteString("## Notes\n\n")
		b.WriteString(notes)
		b.WriteString("\n\n")
	}

	if transcript := strings.TrimSpace(meeting.Transcript); transcript != "" {
		b.WriteString("## Transcript\n\n")
		b.WriteString(escapeMarkdown(transcript))
		b.WriteString("\n\n")
	}

	if snap.Coaching.MeetingID == meeting.ID && len(snap.Feedback) > 0 {
		b.WriteString("## Coaching\n\n")
		for _, entry := range snap.Feedback {
			fmt.Fprintf(&b, "- **%s** %s\n", entry.Kind, escapeMarkdown(entry.Text))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// toastLine renders the notification slot as a right-aligned pill. The
// slot swaps text in place, so consecutive progress updates never leave
// an empty frame between them.
func toastLine(width int, toast *state.Toast) string {
	if toast == nil || width <= 0 || strings.TrimSpace(toast.Message) == "" {
		return ""
	}
	text := truncateToWidth(toast.Message, max(1, width-4))
	pill := toastStyle(toast.Kind).Render(" " + text + " ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, pill)
}

func toastStyle(kind state.ToastKind) lipgloss.Style {
	switch kind {
	case state.ToastSuccess:
		return toastSuccessStyle
	case state.ToastError:
		return toastErrorStyle
	default:
		return toastInfoStyle
	}
}

func (m *Model) leftStatus() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return helpStyle.Render(m.helpText())
}

func (m *Model) helpText() string {
	switch m.mode {
	case uiModeForm:
		return "tab next field · enter save · esc cancel"
	case uiModeConfirmDelete:
		return "y delete · n keep"
	}
	record := "r record"
	if m.snap.Recording {
		record = "r stop"
	}
	return "j/k move · enter open · " + record + " · n new · d delete · c copy · C clean · s sync · o coach · tab view · q quit"
}

func (m *Model) rightStatus(now time.Time) string {
	parts := make([]string, 0, 5)
	if m.busy > 0 {
		parts = append(parts, m.loader.View())
	}
	if m.snap.Recording {
		parts = append(parts, recordingMarkStyle.Render("● rec"))
	}
	if m.snap.Coaching.IsActive {
		badge := " coach "
		if m.snap.Coaching.CoachingType != "" {
			badge = " coach:" + string(m.snap.Coaching.CoachingType) + " "
		}
		parts = append(parts, coachBadgeStyle.Render(badge))
	}
	parts = append(parts, statusStyle.Render(syncAgeLabel(m.snap.LastCalendarSync, now)))
	if m.snap.Connection == types.ConnectionStatusConnected {
		parts = append(parts, connectedStyle.Render("●"))
	} else {
		parts = append(parts, disconnectedStyle.Render("● offline"))
	}
	return strings.Join(parts, "  ")
}

// syncAgeLabel reports how stale the calendar mirror is, coarsely: people
// care about "minutes versus days", not seconds.
func syncAgeLabel(lastSync time.Time, now time.Time) string {
	if lastSync.IsZero() {
		return "never synced"
	}
	age := now.Sub(lastSync)
	switch {
	case age < time.Minute:
		return "synced just now"
	case age < time.Hour:
		return fmt.Sprintf("synced %dm ago", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("synced %dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("synced %dd ago", int(age.Hours()/24))
	}
}

func syncSummary(result *client.SyncCalendarResponse) string {
	return fmt.Sprintf("calendar synced: %d imported, %d updated, %d ready", result.Imported, result.Updated, result.Ready)
}

func renderStatusLine(width int, left, right string) string {
	if width <= 0 {
		return left + " " + right
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	padding := width - leftWidth - rightWidth
	if padding < statusLinePadding {
		left = truncateToWidth(left, max(1, width-rightWidth-statusLinePadding))
		padding = max(statusLinePadding, width-lipgloss.Width(left)-rightWidth)
	}
	return left + strings.Repeat(" ", padding) + right
}
