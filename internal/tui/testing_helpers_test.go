package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

// fakeSocket records sends and reports readiness on demand
type fakeSocket struct {
	id     string
	ready  bool
	sent   []string
	closed bool
}

func (s *fakeSocket) ID() string  { return s.id }
func (s *fakeSocket) Ready() bool { return s.ready && !s.closed }
func (s *fakeSocket) Send(text string) error {
	if !s.Ready() {
		return errors.New("socket not open")
	}
	s.sent = append(s.sent, text)
	return nil
}
func (s *fakeSocket) Close() error {
	s.closed = true
	return nil
}

// fakeTransport hands out fake sockets and remembers the handshake headers
type fakeTransport struct {
	sockets []*fakeSocket
	targets []playground.Target
	sink    types.EventSink
}

func (t *fakeTransport) Open(target playground.Target, sink types.EventSink) (playground.Socket, error) {
	s := &fakeSocket{id: fmt.Sprintf("socket-%d", len(t.sockets)+1)}
	t.sockets = append(t.sockets, s)
	t.targets = append(t.targets, target)
	t.sink = sink
	return s, nil
}

func (t *fakeTransport) last() *fakeSocket {
	return t.sockets[len(t.sockets)-1]
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// CreateTestModel creates a Model with fake transport and clipboard, sized
// like a small terminal
func CreateTestModel(t *testing.T) (*Model, *fakeTransport, *fakeClipboard) {
	t.Helper()

	transport := &fakeTransport{}
	clip := &fakeClipboard{}

	m, err := New(Options{
		Endpoint:  "wss://example.test/stream",
		Transport: transport,
		Clipboard: clip,
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) },
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, transport, clip
}

// pressKey sends a key through Update
func pressKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyMsg(key))
	return cmd
}

// typeText sends each rune as a key press
func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// AssertModelField is a helper to assert model field values
func AssertModelField(t *testing.T, fieldName string, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
