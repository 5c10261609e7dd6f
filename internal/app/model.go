package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"recap/internal/agenda"
	"recap/internal/state"
	"recap/internal/types"
)

const (
	tickInterval      = 100 * time.Millisecond
	minListWidth      = 26
	maxListWidth      = 44
	minViewportWidth  = 20
	minContentHeight  = 6
	statusLinePadding = 1
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeForm
	uiModeConfirmDelete
)

type deleteTarget struct {
	id    string
	title string
}

// Model renders the session store. It never mutates shared state directly
// from key handlers: reads go through one snapshot per change, writes go
// through the daemon (and come back as events) or through the store's own
// serialized operations.
type Model struct {
	meetings MeetingAPI
	coach    CoachAPI
	store    *state.Store
	dispatch func(types.PushEvent)

	viewport viewport.Model
	loader   spinner.Model
	mode     uiMode
	form     *meetingForm
	confirm  *deleteTarget

	width  int
	height int

	snap        state.Snapshot
	rows        []meetingRow
	cursor      int
	offset      int
	cursorID    string
	seenVersion uint64
	status      string
	busy        int
}

func NewModel(meetings MeetingAPI, coach CoachAPI, store *state.Store, dispatch func(types.PushEvent)) Model {
	vp := viewport.New(minViewportWidth, minContentHeight-1)
	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()

	m := Model{
		meetings: meetings,
		coach:    coach,
		store:    store,
		dispatch: dispatch,
		viewport: vp,
		loader:   loader,
		mode:     uiModeNormal,
	}
	m.refreshFromStore()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if v := m.store.Version(); v != m.seenVersion {
			m.refreshFromStore()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		if m.busy > 0 {
			var cmd tea.Cmd
			m.loader, cmd = m.loader.Update(msg)
			return m, cmd
		}
		return m, nil

	case meetingCreatedMsg:
		m.finishWork()
		if msg.err != nil {
			if m.form != nil {
				m.form.errMsg = msg.err.Error()
				return m, nil
			}
			m.status = "create failed: " + msg.err.Error()
			return m, nil
		}
		m.exitForm()
		if msg.meeting != nil {
			m.status = "meeting created: " + msg.meeting.Title
			m.cursorID = msg.meeting.ID
			return m, selectMeetingCmd(m.dispatch, msg.meeting.ID)
		}
		m.status = "meeting created"
		return m, nil

	case meetingDeletedMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "delete failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "meeting deleted: " + msg.title
		return m, nil

	case selectRequestedMsg:
		return m, nil

	case recordingStartedMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "start recording failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "recording started"
		return m, nil

	case recordingStoppedMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "stop recording failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "recording stopped"
		return m, nil

	case cleaningRequestedMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "clean failed: " + msg.err.Error()
		}
		return m, nil

	case calendarSyncedMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "calendar sync failed: " + msg.err.Error()
			return m, nil
		}
		if msg.result != nil {
			m.store.SetLastCalendarSync(msg.result.SyncedAt)
			m.status = syncSummary(msg.result)
		}
		return m, nil

	case coachWindowMsg:
		m.finishWork()
		if msg.err != nil {
			m.status = "coach window failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch m.mode {
		case uiModeForm:
			return m.updateForm(msg)
		case uiModeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "tab":
		m.toggleView()
		return m, nil
	case "enter":
		row, ok := m.highlightedRow()
		if !ok {
			return m, nil
		}
		return m, selectMeetingCmd(m.dispatch, row.id)
	case "esc":
		if m.snap.SelectedID != "" {
			m.store.ClearSelection()
		}
		return m, nil
	case "r":
		if m.snap.Recording {
			return m, m.startWork(stopRecordingCmd(m.meetings))
		}
		row, ok := m.highlightedRow()
		if !ok {
			m.status = "no meeting to record"
			return m, nil
		}
		return m, m.startWork(startRecordingCmd(m.meetings, row.id))
	case "n":
		m.form = newMeetingForm(time.Now())
		m.mode = uiModeForm
		return m, textinput.Blink
	case "d":
		row, ok := m.highlightedRow()
		if !ok {
			return m, nil
		}
		m.confirm = &deleteTarget{id: row.id, title: row.title}
		m.mode = uiModeConfirmDelete
		return m, nil
	case "c":
		meeting, ok := m.detailMeeting()
		if !ok {
			m.status = "no meeting open"
			return m, nil
		}
		if strings.TrimSpace(meeting.Transcript) == "" {
			m.status = "no transcript to copy"
			return m, nil
		}
		if err := copyToClipboard(meeting.Transcript); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "transcript copied"
		return m, nil
	case "C":
		row, ok := m.highlightedRow()
		if !ok {
			return m, nil
		}
		return m, m.startWork(cleanTranscriptCmd(m.meetings, row.id))
	case "s":
		return m, m.startWork(syncCalendarCmd(m.meetings))
	case "o":
		return m, m.startWork(toggleCoachWindowCmd(m.coach, !m.snap.CoachWindowOpen))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.confirm
	switch msg.String() {
	case "y", "enter":
		m.confirm = nil
		m.mode = uiModeNormal
		if target == nil {
			return m, nil
		}
		return m, m.startWork(deleteMeetingCmd(m.meetings, target.id, target.title))
	case "n", "esc", "q":
		m.confirm = nil
		m.mode = uiModeNormal
		return m, nil
	}
	return m, nil
}

func (m *Model) refreshFromStore() {
	m.snap = m.store.Snapshot()
	m.seenVersion = m.snap.Version
	m.rebuildRows(time.Now())
	m.renderDetail()
}

func (m *Model) rebuildRows(now time.Time) {
	m.rows = buildRows(m.snap, now)
	if m.cursorID != "" {
		for i, row := range m.rows {
			if row.id == m.cursorID {
				m.cursor = i
				m.clampOffset()
				return
			}
		}
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.rows)-1))
	if len(m.rows) > 0 {
		m.cursorID = m.rows[m.cursor].id
	} else {
		m.cursorID = ""
	}
	m.clampOffset()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.rows)-1)
	m.cursorID = m.rows[m.cursor].id
	m.clampOffset()
}

func (m *Model) clampOffset() {
	visible := m.listHeight()
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) toggleView() {
	next := agenda.ViewPast
	if m.snap.View == agenda.ViewPast {
		next = agenda.ViewUpcoming
	}
	m.cursor = 0
	m.offset = 0
	m.cursorID = ""
	m.store.SetView(next)
	m.refreshFromStore()
}

func (m *Model) highlightedRow() (meetingRow, bool) {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return meetingRow{}, false
	}
	return m.rows[m.cursor], true
}

// detailMeeting resolves what the right pane shows: the store-selected
// meeting when one is set, else the cursor row. Selection survives even
// when the meeting has left the current view's rows.
func (m *Model) detailMeeting() (types.Meeting, bool) {
	if m.snap.SelectedID != "" {
		if meeting, ok := findMeeting(m.snap.Meetings, m.snap.SelectedID); ok {
			return meeting, true
		}
	}
	row, ok := m.highlightedRow()
	if !ok {
		return types.Meeting{}, false
	}
	return findMeeting(m.snap.Meetings, row.id)
}

func (m *Model) exitForm() {
	m.form = nil
	if m.mode == uiModeForm {
		m.mode = uiModeNormal
	}
}

func (m *Model) startWork(cmd tea.Cmd) tea.Cmd {
	m.busy++
	if m.busy == 1 {
		return tea.Batch(cmd, m.loader.Tick)
	}
	return cmd
}

func (m *Model) finishWork() {
	if m.busy > 0 {
		m.busy--
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := max(minContentHeight, height-3)
	listWidth := clamp(width/3, minListWidth, maxListWidth)
	if width-listWidth-1 < minViewportWidth {
		listWidth = max(minListWidth/2, width/2)
	}
	m.viewport.Width = max(minViewportWidth, width-listWidth-3)
	m.viewport.Height = max(1, contentHeight-1)
	m.clampOffset()
	m.renderDetail()
}

func (m *Model) listWidth() int {
	if m.width <= 0 {
		return minListWidth
	}
	listWidth := clamp(m.width/3, minListWidth, maxListWidth)
	if m.width-listWidth-1 < minViewportWidth {
		listWidth = max(minListWidth/2, m.width/2)
	}
	return listWidth
}

func (m *Model) listHeight() int {
	if m.height <= 0 {
		return minContentHeight
	}
	return max(minContentHeight, m.height-3)
}

func findMeeting(list []types.Meeting, id string) (types.Meeting, bool) {
	for _, meeting := range list {
		if meeting.ID == id {
			return types.CloneMeeting(meeting), true
		}
	}
	return types.Meeting{}, false
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if xansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return xansi.Cut(text, 0, width-1) + "…"
}
