package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/sttplay/internal/history"
	"github.com/studiowebux/sttplay/internal/keybinds"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

// Focus is the widget receiving unbound keys
type Focus int

const (
	FocusKey Focus = iota
	FocusDraft
	FocusLog
)

const focusCount = 3

func (f Focus) String() string {
	switch f {
	case FocusKey:
		return "key"
	case FocusDraft:
		return "draft"
	default:
		return "log"
	}
}

// Options configures a Model
type Options struct {
	Endpoint   string
	HeaderName string
	Language   string
	APIKey     string

	Transport playground.Transport
	Clipboard playground.Clipboard
	Keys      *keybinds.Registry

	// History, when set, records the session
	History *history.Manager

	Highlight    bool
	ExportFormat string
	ExportDir    string

	Now func() time.Time
}

// Model represents the TUI state
type Model struct {
	pg     *playground.Playground
	keys   *keybinds.Registry
	events chan types.Event

	historyManager *history.Manager
	sessionID      string

	focus       Focus
	keyInput    textinput.Model
	draft       textarea.Model
	logView     viewport.Model
	filterInput textinput.Model
	filtering   bool
	filterQuery string

	highlight    bool
	exportFormat string
	exportDir    string
	now          func() time.Time

	statusMsg string
	errorMsg  string

	width  int
	height int
}

// New creates a new TUI model
func New(opts Options) (*Model, error) {
	if opts.Keys == nil {
		opts.Keys = keybinds.NewDefaultRegistry()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = "json"
	}

	m := &Model{
		keys:           opts.Keys,
		events:         make(chan types.Event, EventBuffer),
		historyManager: opts.History,
		highlight:      opts.Highlight,
		exportFormat:   opts.ExportFormat,
		exportDir:      opts.ExportDir,
		now:            opts.Now,
		logView:        viewport.New(80, 10),
	}

	var recorder func(types.LogEntry)
	if m.historyManager != nil {
		id, err := m.historyManager.StartSession(opts.Endpoint, opts.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to start history session: %w", err)
		}
		m.sessionID = id
		recorder = m.historyManager.Recorder(id)
	}

	m.pg = playground.New(playground.Options{
		Endpoint:   opts.Endpoint,
		HeaderName: opts.HeaderName,
		Language:   opts.Language,
		Transport:  opts.Transport,
		Clipboard:  opts.Clipboard,
		Sink:       m.sink,
		Recorder:   recorder,
		Now:        opts.Now,
	})
	m.pg.SetAPIKey(opts.APIKey)

	m.keyInput = textinput.New()
	m.keyInput.Prompt = ""
	m.keyInput.Placeholder = fmt.Sprintf("Enter your %s", m.pg.HeaderName())
	m.keyInput.EchoMode = textinput.EchoPassword
	m.keyInput.EchoCharacter = '•'
	m.keyInput.SetValue(opts.APIKey)

	m.draft = textarea.New()
	m.draft.ShowLineNumbers = false
	m.draft.CharLimit = 0
	m.draft.SetValue(m.pg.Draft())

	m.filterInput = textinput.New()
	m.filterInput.Prompt = "/"
	m.filterInput.Placeholder = "filter log"

	m.setFocus(FocusKey)
	m.refreshLog()

	return m, nil
}

// sink runs on socket goroutines; it only hands the event over
func (m *Model) sink(ev types.Event) {
	m.events <- ev
}

// socketEventMsg carries a socket event into Update
type socketEventMsg types.Event

type clearStatusMsg struct{}

// waitForEvent returns a Cmd that waits for the next socket event
func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return socketEventMsg(ev)
	}
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// Cleanup closes the socket and the history database
func (m *Model) Cleanup() {
	m.pg.Close()
	if m.historyManager != nil {
		if err := m.historyManager.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing history database: %v\n", err)
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case socketEventMsg:
		m.pg.HandleEvent(types.Event(msg))
		m.refreshLog()
		cmd = m.waitForEvent()

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""

	default:
		// Cursor blink and other widget messages
		cmd = m.updateFocused(msg)
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	return m.renderMain()
}

// Playground exposes the component, mainly for tests
func (m *Model) Playground() *playground.Playground {
	return m.pg
}

// SessionID returns the history session id, empty when history is off
func (m *Model) SessionID() string {
	return m.sessionID
}
