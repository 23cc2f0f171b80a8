package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/poller"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/recorder"
	"github.com/kovar/sps5000x/internal/scpi"
	"github.com/kovar/sps5000x/internal/stats"
	"github.com/kovar/sps5000x/internal/ui"
)

// Span adjustment bounds for the +/- keys.
const (
	minSpan = 10 * time.Second
	maxSpan = time.Hour
)

// flashDuration is how long a transient status message stays visible.
const flashDuration = 3 * time.Second

// consoleEntry is one dispatched command and its outcome.
type consoleEntry struct {
	cmd   string
	reply string
	err   error
}

// consoleLogSize bounds the console scrollback shown in the input box.
const consoleLogSize = 4

// Model is the Bubble Tea model for the monitoring dashboard.
type Model struct {
	session *scpi.Session
	poller  *poller.Poller
	board   *stats.Board
	window  *history.Window

	channels int
	address  string

	// Connection state, driven by ConnMsg
	connState scpi.State
	identity  string
	connErr   error

	// Latest completed cycle
	reading     psu.Reading
	haveReading bool
	lastUpdate  time.Time

	// Last discarded cycle, shown until the next good reading
	cycleErr   error
	cycleErrAt time.Time

	paused   bool
	quitting bool
	showHelp bool

	width  int
	height int

	spin spinner.Model

	// Console state
	consoleInput   textinput.Model
	consoleFocused bool
	consoleLog     []consoleEntry

	// Flash message state
	flash    string
	flashErr bool
	flashSeq int

	// exportDir is where 'e' writes history CSV snapshots ("" = cwd).
	exportDir string
}

// NewModel creates the dashboard model. The session, poller, board, and
// window are shared with the polling goroutines; board and window guard
// themselves, so View can read them directly.
func NewModel(session *scpi.Session, p *poller.Poller, board *stats.Board, window *history.Window, channels int, address string) Model {
	input := textinput.New()
	input.Prompt = "SCPI> "
	input.PromptStyle = TitleStyle
	input.TextStyle = ValueStyle
	input.Placeholder = "MEASURE:VOLTAGE? CH1"
	input.PlaceholderStyle = MutedStyle
	input.CharLimit = 128

	return Model{
		session:      session,
		poller:       p,
		board:        board,
		window:       window,
		channels:     channels,
		address:      address,
		connState:    scpi.StateConnecting,
		spin:         ui.NewTUISpinner(ColorWarning),
		consoleInput: input,
	}
}

// Init starts the spinner and the header refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.tickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		return m, m.tickCmd()

	case ReadingMsg:
		m.reading = msg.Reading
		m.haveReading = true
		m.lastUpdate = msg.Reading.At
		m.cycleErr = nil

	case CycleErrorMsg:
		// Connection loss already shows in the header; only keep cycle
		// errors that happen while connected.
		if m.connState == scpi.StateConnected {
			m.cycleErr = msg.Err
			m.cycleErrAt = time.Now()
		}

	case ConnMsg:
		m.connState = msg.Event.State
		m.connErr = msg.Event.Err
		if msg.Event.Identity != "" {
			m.identity = msg.Event.Identity
		}
		if msg.Event.State != scpi.StateConnected {
			m.cycleErr = nil
		}

	case ConsoleReplyMsg:
		m.consoleLog = append(m.consoleLog, consoleEntry{
			cmd:   msg.Cmd,
			reply: msg.Reply,
			err:   msg.Err,
		})
		if len(m.consoleLog) > consoleLogSize {
			m.consoleLog = m.consoleLog[len(m.consoleLog)-consoleLogSize:]
		}

	case flashMsg:
		cmd := m.setFlash(msg.text, msg.isErr)
		return m, cmd

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}

	case exportDoneMsg:
		var cmd tea.Cmd
		if msg.err != nil {
			cmd = m.setFlash("export failed: "+msg.err.Error(), true)
		} else {
			cmd = m.setFlash("history written to "+msg.path, false)
		}
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// tickCmd schedules the next header refresh.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// setFlash replaces the flash message and schedules its expiry.
func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}

// exportCmd writes the current history window to a timestamped CSV file
// off the UI goroutine.
func (m *Model) exportCmd() tea.Cmd {
	win := m.window
	dir := m.exportDir
	return func() tea.Msg {
		name := fmt.Sprintf("spsmon-%s.csv", time.Now().Format("20060102-150405"))
		path := filepath.Join(dir, name)

		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer f.Close()

		if err := recorder.WriteHistoryCSV(f, win); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// SecondsSinceUpdate returns how many seconds have passed since the last
// completed cycle.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(time.Since(m.lastUpdate).Seconds())
}
