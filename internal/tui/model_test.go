package tui

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/sttplay/internal/history"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

func lastEntry(t *testing.T, m *Model) types.LogEntry {
	t.Helper()
	entries := m.pg.Entries()
	if len(entries) == 0 {
		t.Fatal("Expected at least one log entry")
	}
	return entries[len(entries)-1]
}

// connect types a key, connects and delivers the open event
func connect(t *testing.T, m *Model, transport *fakeTransport) *fakeSocket {
	t.Helper()
	typeText(m, "secret")
	pressKey(m, "ctrl+o")
	if len(transport.sockets) == 0 {
		t.Fatal("Expected a socket to be opened")
	}
	socket := transport.last()
	socket.ready = true
	m.Update(socketEventMsg{SocketID: socket.id, Type: types.EventOpen})
	return socket
}

func TestNew_InitialState(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	AssertModelField(t, "focus", m.focus, FocusKey)
	AssertModelField(t, "status", m.pg.Status(), types.StatusDisconnected)
	AssertModelField(t, "selected", m.pg.Selected(), playground.TemplateConfig)

	want, _ := m.pg.Catalog().Get(playground.TemplateConfig)
	AssertModelField(t, "draft", m.draft.Value(), want)
	AssertModelField(t, "sessionID", m.SessionID(), "")
}

func TestConnect_RequiresKey(t *testing.T) {
	m, transport, _ := CreateTestModel(t)

	pressKey(m, "ctrl+o")

	if len(transport.sockets) != 0 {
		t.Error("No socket should be opened without a key")
	}
	entry := lastEntry(t, m)
	if entry.Kind != types.KindError || entry.Content != "Please enter your Fano-license-key" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestConnect_OpenSendDisconnect(t *testing.T) {
	m, transport, _ := CreateTestModel(t)

	socket := connect(t, m, transport)

	if got := transport.targets[0].Header.Get("Fano-license-key"); got != "secret" {
		t.Errorf("Expected handshake header 'secret', got %q", got)
	}
	AssertModelField(t, "status", m.pg.Status(), types.StatusConnected)

	pressKey(m, "f3")
	pressKey(m, "ctrl+s")

	eof, _ := m.pg.Catalog().Get(playground.TemplateEOF)
	if len(socket.sent) != 1 || socket.sent[0] != eof {
		t.Errorf("Expected eof template sent, got %v", socket.sent)
	}
	AssertModelField(t, "last kind", lastEntry(t, m).Kind, types.KindSent)

	m.Update(socketEventMsg{SocketID: socket.id, Type: types.EventMessage, Data: `{"results":[]}`})
	AssertModelField(t, "received", lastEntry(t, m).Content, "{\n  \"results\": []\n}")

	pressKey(m, "ctrl+o")
	AssertModelField(t, "status", m.pg.Status(), types.StatusDisconnected)
	if !socket.closed {
		t.Error("Expected socket closed on disconnect")
	}
}

func TestSend_NotConnected(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	pressKey(m, "ctrl+s")

	entry := lastEntry(t, m)
	if entry.Kind != types.KindError || entry.Content != playground.NotConnectedMessage {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestFocus_Cycle(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	pressKey(m, "tab")
	AssertModelField(t, "focus after tab", m.focus, FocusDraft)
	pressKey(m, "tab")
	AssertModelField(t, "focus after 2 tabs", m.focus, FocusLog)
	pressKey(m, "tab")
	AssertModelField(t, "focus wraps", m.focus, FocusKey)
	pressKey(m, "shift+tab")
	AssertModelField(t, "focus back", m.focus, FocusLog)
}

func TestDraft_EditsReachPlayground(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	pressKey(m, "tab")
	pressKey(m, "f3")
	typeText(m, "x")

	if !strings.HasSuffix(m.pg.Draft(), "x") {
		t.Errorf("Expected edit in draft, got %q", m.pg.Draft())
	}
	AssertModelField(t, "draft synced", m.pg.Draft(), m.draft.Value())

	// Selecting a template discards edits
	pressKey(m, "f2")
	audio, _ := m.pg.Catalog().Get(playground.TemplateAudio)
	AssertModelField(t, "draft reset", m.draft.Value(), audio)
}

func TestKeyInput_LettersAreNotShortcuts(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	// q quits only when the log has focus
	pressKey(m, "q")
	AssertModelField(t, "api key", m.pg.APIKey(), "q")
}

func TestLogFilter(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	pressKey(m, "ctrl+s") // Not connected
	pressKey(m, "ctrl+o") // Please enter your key
	pressKey(m, "tab")
	pressKey(m, "tab")
	AssertModelField(t, "focus", m.focus, FocusLog)

	pressKey(m, "/")
	AssertModelField(t, "filtering", m.filtering, true)
	typeText(m, "license")
	pressKey(m, "enter")

	AssertModelField(t, "filtering", m.filtering, false)
	AssertModelField(t, "filterQuery", m.filterQuery, "license")

	content := m.renderLogContent(100)
	if !strings.Contains(content, "Fano-license-key") || strings.Contains(content, "Not connected") {
		t.Errorf("Filter not applied:\n%s", content)
	}

	pressKey(m, "esc")
	AssertModelField(t, "filter cleared", m.filterQuery, "")
}

func TestCopyWscat(t *testing.T) {
	m, _, clip := CreateTestModel(t)

	typeText(m, "secret")
	pressKey(m, "ctrl+y")

	want := `wscat -c "wss://example.test/stream" -H "Fano-license-key: secret"`
	AssertModelField(t, "clipboard", clip.text, want)
	AssertModelField(t, "status message", m.statusMsg, "wscat command copied to clipboard!")
}

func TestCopyWscat_ClipboardFailure(t *testing.T) {
	m, _, clip := CreateTestModel(t)
	clip.err = errors.New("no clipboard utility")

	pressKey(m, "ctrl+y")

	if lastEntry(t, m).Kind != types.KindError {
		t.Errorf("Expected error entry, got %+v", lastEntry(t, m))
	}
	if !strings.Contains(m.errorMsg, "no clipboard utility") {
		t.Errorf("Expected error in footer, got %q", m.errorMsg)
	}
}

func TestExportAndClear(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	pressKey(m, "ctrl+s")
	pressKey(m, "ctrl+e")

	path := filepath.Join(m.exportDir, "sttplay-20260102-030405.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected export file: %v", err)
	}
	var export LogExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Export is not JSON: %v", err)
	}
	if len(export.Entries) != 1 || export.Entries[0].Content != playground.NotConnectedMessage {
		t.Errorf("Unexpected export: %+v", export)
	}
	if !strings.Contains(m.statusMsg, path) {
		t.Errorf("Expected export path in status, got %q", m.statusMsg)
	}

	pressKey(m, "ctrl+l")
	AssertModelField(t, "entries after clear", len(m.pg.Entries()), 0)
}

func TestWriteExport_YAML(t *testing.T) {
	dir := t.TempDir()
	export := LogExport{
		Endpoint: "ws://x",
		Entries:  []types.LogEntry{{Kind: types.KindInfo, Content: "hi", Timestamp: "10:00:00"}},
	}

	path, err := writeExport(export, "yaml", dir, m0())
	if err != nil {
		t.Fatalf("writeExport failed: %v", err)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Expected .yaml file, got %s", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "content: hi") {
		t.Errorf("Unexpected yaml:\n%s", data)
	}

	if _, err := writeExport(export, "xml", dir, m0()); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestQuit(t *testing.T) {
	m, transport, _ := CreateTestModel(t)
	socket := connect(t, m, transport)

	cmd := pressKey(m, "ctrl+c")
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !socket.closed {
		t.Error("Expected socket closed on quit")
	}
}

func TestSinkBridge(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	go m.sink(types.Event{SocketID: "abc", Type: types.EventClose, Code: 1000})

	msg := m.waitForEvent()()
	ev, ok := msg.(socketEventMsg)
	if !ok {
		t.Fatalf("Expected socketEventMsg, got %T", msg)
	}
	if ev.SocketID != "abc" || ev.Code != 1000 {
		t.Errorf("Unexpected event: %+v", ev)
	}

	// A stale close is still logged
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("Expected the bridge to keep listening")
	}
	AssertModelField(t, "stale close", lastEntry(t, m).Content, "Disconnected (code: 1000)")
}

func TestView(t *testing.T) {
	m, _, _ := CreateTestModel(t)

	view := m.View()
	for _, want := range []string{"sttplay", "wss://example.test/stream", "Status:", "config", "Message", "Log"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}
}

func TestHistoryRecording(t *testing.T) {
	mgr, err := history.NewManager(filepath.Join(t.TempDir(), "sttplay.db"))
	if err != nil {
		t.Fatal(err)
	}

	m, err := New(Options{
		Endpoint:  "wss://example.test/stream",
		Transport: &fakeTransport{},
		Clipboard: &fakeClipboard{},
		History:   mgr,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Cleanup()

	if m.SessionID() == "" {
		t.Fatal("Expected a history session")
	}

	pressKey(m, "ctrl+s")

	entries, err := mgr.Entries(m.SessionID())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Content != playground.NotConnectedMessage {
		t.Errorf("Unexpected recorded entries: %+v", entries)
	}
}
