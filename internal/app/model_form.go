package app

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recap/internal/client"
)

const (
	formFieldTitle = iota
	formFieldStarts
	formFieldDuration
	formFieldNotes
	formFieldCount
)

var formLabels = [formFieldCount]string{"Title", "Starts", "Minutes", "Notes"}

type meetingForm struct {
	inputs [formFieldCount]textinput.Model
	focus  int
	errMsg string
	now    time.Time
}

func newMeetingForm(now time.Time) *meetingForm {
	form := &meetingForm{now: now}

	title := textinput.New()
	title.Placeholder = "Weekly sync"
	title.CharLimit = 200
	title.Focus()
	form.inputs[formFieldTitle] = title

	starts := textinput.New()
	starts.Placeholder = now.Format("2006-01-02 15:04") + " (blank: now)"
	starts.CharLimit = 32
	form.inputs[formFieldStarts] = starts

	duration := textinput.New()
	duration.Placeholder = "60 (blank: default)"
	duration.CharLimit = 5
	form.inputs[formFieldDuration] = duration

	notes := textinput.New()
	notes.Placeholder = "Agenda, links, attendees"
	notes.CharLimit = 2000
	form.inputs[formFieldNotes] = notes

	return form
}

func (f *meetingForm) focusField(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = (idx + formFieldCount) % formFieldCount
	f.inputs[f.focus].Focus()
}

// buildRequest validates the raw field values into a create request.
// Zero values are left for the daemon to default: a blank start means
// now, a blank duration means the configured default length.
func (f *meetingForm) buildRequest(now time.Time) (client.CreateMeetingRequest, error) {
	var req client.CreateMeetingRequest

	req.Title = strings.TrimSpace(f.inputs[formFieldTitle].Value())
	if req.Title == "" {
		return req, errors.New("title is required")
	}

	starts, err := parseStartTime(f.inputs[formFieldStarts].Value(), now)
	if err != nil {
		return req, err
	}
	req.StartsAt = starts

	duration, err := parseDurationMinutes(f.inputs[formFieldDuration].Value())
	if err != nil {
		return req, err
	}
	req.DurationMin = duration

	req.Notes = strings.TrimSpace(f.inputs[formFieldNotes].Value())
	return req, nil
}

// parseStartTime accepts the formats people type: a bare clock means
// today, a date with a clock is taken in local time, RFC3339 passes
// through. Blank stays zero so the daemon stamps its own now.
func parseStartTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", raw, now.Location()); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, errors.New("start time must look like 15:04, 2006-01-02 15:04, or RFC3339")
}

func parseDurationMinutes(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, errors.New("minutes must be a positive number")
	}
	return minutes, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.form
	if form == nil {
		m.mode = uiModeNormal
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.exitForm()
		return m, nil
	case "tab", "down":
		form.focusField(form.focus + 1)
		return m, nil
	case "shift+tab", "up":
		form.focusField(form.focus - 1)
		return m, nil
	case "enter":
		req, err := form.buildRequest(time.Now())
		if err != nil {
			form.errMsg = err.Error()
			return m, nil
		}
		form.errMsg = ""
		return m, m.startWork(createMeetingCmd(m.meetings, req))
	}

	var cmd tea.Cmd
	form.inputs[form.focus], cmd = form.inputs[form.focus].Update(msg)
	return m, cmd
}

func (f *meetingForm) view(width int) string {
	lines := []string{headerStyle.Render("New meeting"), ""}
	for i := range f.inputs {
		label := formLabelStyle.Render(formLabels[i])
		lines = append(lines, label, f.inputs[i].View(), "")
	}
	if f.errMsg != "" {
		lines = append(lines, formErrorStyle.Render(truncateToWidth(f.errMsg, max(1, width))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
