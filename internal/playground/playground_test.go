package playground

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/sttplay/internal/types"
)

type fakeSocket struct {
	id      string
	ready   bool
	sendErr error
	sent    []string
	closed  int
}

func (s *fakeSocket) ID() string  { return s.id }
func (s *fakeSocket) Ready() bool { return s.ready }

func (s *fakeSocket) Send(text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSocket) Close() error {
	s.closed++
	s.ready = false
	return nil
}

type fakeTransport struct {
	opened  []*fakeSocket
	targets []Target
	openErr error
}

func (f *fakeTransport) Open(target Target, sink types.EventSink) (Socket, error) {
	f.targets = append(f.targets, target)
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeSocket{id: fmt.Sprintf("sock-%d", len(f.opened)+1)}
	f.opened = append(f.opened, s)
	return s, nil
}

func (f *fakeTransport) last() *fakeSocket {
	return f.opened[len(f.opened)-1]
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

func newTestPlayground(t *testing.T) (*Playground, *fakeTransport, *fakeClipboard) {
	t.Helper()
	tr := &fakeTransport{}
	cb := &fakeClipboard{}
	p := New(Options{
		Transport: tr,
		Clipboard: cb,
		Now: func() time.Time {
			return time.Date(2026, 1, 2, 13, 4, 5, 0, time.Local)
		},
	})
	return p, tr, cb
}

// connectOpen connects and delivers the open event
func connectOpen(t *testing.T, p *Playground, tr *fakeTransport) *fakeSocket {
	t.Helper()
	p.SetAPIKey("secret")
	p.Connect()
	s := tr.last()
	s.ready = true
	p.HandleEvent(types.Event{SocketID: s.id, Type: types.EventOpen})
	return s
}

func countKind(entries []types.LogEntry, kind types.EntryKind) int {
	n := 0
	for _, e := range entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNew_InitialState(t *testing.T) {
	p, _, _ := newTestPlayground(t)

	if p.Status() != types.StatusDisconnected {
		t.Errorf("Expected disconnected, got %s", p.Status())
	}
	if p.Selected() != TemplateConfig {
		t.Errorf("Expected config template selected, got %s", p.Selected())
	}
	want, _ := p.Catalog().Get(TemplateConfig)
	if p.Draft() != want {
		t.Errorf("Expected draft seeded from config template, got %q", p.Draft())
	}
	if len(p.Entries()) != 0 {
		t.Errorf("Expected empty log, got %d entries", len(p.Entries()))
	}
	if p.Endpoint() != DefaultEndpoint || p.HeaderName() != DefaultHeaderName {
		t.Errorf("Expected default endpoint and header, got %s / %s", p.Endpoint(), p.HeaderName())
	}
}

func TestConnect_EmptyAPIKey(t *testing.T) {
	for _, key := range []string{"", "   ", "\t\n"} {
		p, tr, _ := newTestPlayground(t)
		p.SetAPIKey(key)
		p.Connect()

		if len(tr.targets) != 0 {
			t.Errorf("key %q: expected no socket, got %d opens", key, len(tr.targets))
		}
		entries := p.Entries()
		if len(entries) != 1 || entries[0].Kind != types.KindError {
			t.Fatalf("key %q: expected exactly one error entry, got %+v", key, entries)
		}
		if entries[0].Content != "Please enter your Fano-license-key" {
			t.Errorf("Unexpected message: %q", entries[0].Content)
		}
		if p.Status() != types.StatusDisconnected {
			t.Errorf("Expected status unchanged, got %s", p.Status())
		}
	}
}

func TestConnect_SendsHeaderAndLogsAttempt(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	p.SetAPIKey("  secret  ")
	p.Connect()

	if p.Status() != types.StatusConnecting {
		t.Errorf("Expected connecting, got %s", p.Status())
	}
	if len(tr.targets) != 1 {
		t.Fatalf("Expected one open, got %d", len(tr.targets))
	}
	target := tr.targets[0]
	if target.URL != DefaultEndpoint {
		t.Errorf("Expected default endpoint, got %s", target.URL)
	}
	if got := target.Header.Get(DefaultHeaderName); got != "secret" {
		t.Errorf("Expected trimmed key in header, got %q", got)
	}

	entries := p.Entries()
	if len(entries) != 1 || entries[0].Kind != types.KindInfo {
		t.Fatalf("Expected one info entry, got %+v", entries)
	}
	if entries[0].Content != "Connecting to "+DefaultEndpoint+"..." {
		t.Errorf("Unexpected message: %q", entries[0].Content)
	}
	if entries[0].Timestamp != "13:04:05" {
		t.Errorf("Expected 13:04:05, got %s", entries[0].Timestamp)
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	tr.openErr = errors.New("malformed ws or wss URL")
	p.SetAPIKey("secret")
	p.Connect()

	if p.Status() != types.StatusError {
		t.Errorf("Expected error status, got %s", p.Status())
	}
	if p.hasSocket() {
		t.Error("Expected no socket after failed open")
	}
	last := p.Entries()[len(p.Entries())-1]
	if last.Kind != types.KindError || last.Content != "malformed ws or wss URL" {
		t.Errorf("Unexpected last entry: %+v", last)
	}
}

func TestHandleEvent_Open(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	p.SetAPIKey("secret")
	p.Connect()
	before := countKind(p.Entries(), types.KindSuccess)

	s := tr.last()
	s.ready = true
	p.HandleEvent(types.Event{SocketID: s.id, Type: types.EventOpen})

	if p.Status() != types.StatusConnected {
		t.Errorf("Expected connected, got %s", p.Status())
	}
	if got := countKind(p.Entries(), types.KindSuccess) - before; got != 1 {
		t.Errorf("Expected exactly one success entry, got %d", got)
	}
}

func TestHandleEvent_Message(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"json object", `{"a":1}`, "{\n  \"a\": 1\n}"},
		{"plain text", "hello", "hello"},
		{"nested json", `{"results":[{"transcript":"hi","final":true}]}`,
			"{\n  \"results\": [\n    {\n      \"transcript\": \"hi\",\n      \"final\": true\n    }\n  ]\n}"},
		{"broken json", `{"a":`, `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, tr, _ := newTestPlayground(t)
			s := connectOpen(t, p, tr)

			p.HandleEvent(types.Event{SocketID: s.id, Type: types.EventMessage, Data: tt.data})

			last := p.Entries()[len(p.Entries())-1]
			if last.Kind != types.KindReceived {
				t.Errorf("Expected received entry, got %s", last.Kind)
			}
			if last.Content != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, last.Content)
			}
			if p.Status() != types.StatusConnected {
				t.Errorf("Message should not change status, got %s", p.Status())
			}
		})
	}
}

func TestHandleEvent_ErrorThenClose(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	s := connectOpen(t, p, tr)

	p.HandleEvent(types.Event{SocketID: s.id, Type: types.EventError, Err: errors.New("bad handshake")})
	if p.Status() != types.StatusError {
		t.Errorf("Expected error status, got %s", p.Status())
	}
	last := p.Entries()[len(p.Entries())-1]
	if last.Kind != types.KindError || !strings.Contains(last.Content, "bad handshake") {
		t.Errorf("Unexpected error entry: %+v", last)
	}

	p.HandleEvent(types.Event{SocketID: s.id, Type: types.EventClose, Code: 1006})
	if p.Status() != types.StatusDisconnected {
		t.Errorf("Expected disconnected, got %s", p.Status())
	}
	if p.hasSocket() {
		t.Error("Expected handle cleared after close")
	}
	last = p.Entries()[len(p.Entries())-1]
	if last.Content != "Disconnected (code: 1006)" {
		t.Errorf("Unexpected close entry: %q", last.Content)
	}
}

func TestSend_NotConnected(t *testing.T) {
	p, tr, _ := newTestPlayground(t)

	// No handle at all
	p.Send()
	entries := p.Entries()
	if len(entries) != 1 || entries[0].Kind != types.KindError || entries[0].Content != NotConnectedMessage {
		t.Fatalf("Expected one 'Not connected' entry, got %+v", entries)
	}

	// Handle exists but is still connecting
	p.SetAPIKey("secret")
	p.Connect()
	p.ClearLog()
	p.Send()

	if len(tr.last().sent) != 0 {
		t.Errorf("Expected no transmission, got %v", tr.last().sent)
	}
	entries = p.Entries()
	if len(entries) != 1 || entries[0].Content != NotConnectedMessage {
		t.Errorf("Expected one 'Not connected' entry, got %+v", entries)
	}
}

func TestSend_TransmitsDraftVerbatim(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	s := connectOpen(t, p, tr)

	p.SetDraft("not json at all {")
	p.Send()

	if len(s.sent) != 1 || s.sent[0] != "not json at all {" {
		t.Fatalf("Expected draft sent verbatim, got %v", s.sent)
	}
	last := p.Entries()[len(p.Entries())-1]
	if last.Kind != types.KindSent || last.Content != "not json at all {" {
		t.Errorf("Unexpected sent entry: %+v", last)
	}
}

func TestSend_FailureKeepsStatus(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	s := connectOpen(t, p, tr)
	s.sendErr = errors.New("broken pipe")

	p.Send()

	if p.Status() != types.StatusConnected {
		t.Errorf("Expected status unchanged, got %s", p.Status())
	}
	last := p.Entries()[len(p.Entries())-1]
	if last.Kind != types.KindError || last.Content != "broken pipe" {
		t.Errorf("Unexpected entry: %+v", last)
	}
}

func TestDisconnect_Immediate(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	s := connectOpen(t, p, tr)

	p.Disconnect()

	if p.Status() != types.StatusDisconnected {
		t.Errorf("Expected disconnected immediately, got %s", p.Status())
	}
	if p.hasSocket() {
		t.Error("Expected handle cleared")
	}
	if s.closed != 1 {
		t.Errorf("Expected socket closed once, got %d", s.closed)
	}

	// Disconnect without a handle still forces the status
	p.HandleEvent(types.Event{SocketID: "other", Type: types.EventOpen})
	p.Disconnect()
	if p.Status() != types.StatusDisconnected {
		t.Errorf("Expected disconnected, got %s", p.Status())
	}
}

func TestHandleEvent_StaleSocket(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	old := connectOpen(t, p, tr)
	p.Disconnect()

	p.SetAPIKey("secret")
	p.Connect()
	before := len(p.Entries())

	// Late events from the first socket
	p.HandleEvent(types.Event{SocketID: old.id, Type: types.EventMessage, Data: "late"})
	p.HandleEvent(types.Event{SocketID: old.id, Type: types.EventError})
	if p.Status() != types.StatusConnecting {
		t.Errorf("Stale events must not change status, got %s", p.Status())
	}
	if len(p.Entries()) != before {
		t.Errorf("Stale message and error must not be logged")
	}

	p.HandleEvent(types.Event{SocketID: old.id, Type: types.EventClose, Code: 1000})
	if p.Status() != types.StatusConnecting {
		t.Errorf("Stale close must not change status, got %s", p.Status())
	}
	if !p.hasSocket() {
		t.Error("Stale close must not clear the current handle")
	}
	last := p.Entries()[len(p.Entries())-1]
	if last.Content != "Disconnected (code: 1000)" {
		t.Errorf("Expected stale close logged, got %q", last.Content)
	}
}

func TestConnect_ReplacesLiveHandle(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	first := connectOpen(t, p, tr)

	p.Connect()

	if first.closed != 1 {
		t.Errorf("Expected prior socket closed, got %d closes", first.closed)
	}
	if len(tr.opened) != 2 {
		t.Fatalf("Expected two sockets opened, got %d", len(tr.opened))
	}
	if p.Status() != types.StatusConnecting {
		t.Errorf("Expected connecting, got %s", p.Status())
	}
}

func TestSelectTemplate_DiscardsEdits(t *testing.T) {
	p, _, _ := newTestPlayground(t)
	p.SetDraft("my edits")

	if err := p.SelectTemplate(TemplateAudio); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want, _ := p.Catalog().Get(TemplateAudio)
	if p.Draft() != want {
		t.Errorf("Expected audio template, got %q", p.Draft())
	}
	if p.Selected() != TemplateAudio {
		t.Errorf("Expected audio selected, got %s", p.Selected())
	}
}

func TestSelectTemplate_Unknown(t *testing.T) {
	p, _, _ := newTestPlayground(t)
	draft := p.Draft()

	if err := p.SelectTemplate("pcm"); err == nil {
		t.Fatal("Expected error for unknown template")
	}
	if p.Draft() != draft || p.Selected() != TemplateConfig {
		t.Error("Unknown template must not change selection or draft")
	}
	if countKind(p.Entries(), types.KindError) != 1 {
		t.Error("Expected one error entry")
	}
}

func TestCopyWscat(t *testing.T) {
	p, _, cb := newTestPlayground(t)

	p.CopyWscat()
	want := `wscat -c "` + DefaultEndpoint + `" -H "Fano-license-key: YOUR_API_KEY"`
	if cb.text != want {
		t.Errorf("Expected %q, got %q", want, cb.text)
	}

	p.SetAPIKey("abc123")
	p.CopyWscat()
	if !strings.HasSuffix(cb.text, `-H "Fano-license-key: abc123"`) {
		t.Errorf("Expected key in command, got %q", cb.text)
	}

	last, ok := p.LastEntry()
	if !ok || last.Kind != types.KindInfo || last.Content != "wscat command copied to clipboard!" {
		t.Errorf("Unexpected entry: %+v", last)
	}
}

func TestCopyWscat_ClipboardFailure(t *testing.T) {
	p, _, cb := newTestPlayground(t)
	cb.err = errors.New("no clipboard utility")

	p.CopyWscat()

	entries := p.Entries()
	if len(entries) != 1 || entries[0].Kind != types.KindError {
		t.Fatalf("Expected one error entry, got %+v", entries)
	}
}

func TestRecorder_SeesEveryEntry(t *testing.T) {
	var recorded []types.LogEntry
	p := New(Options{
		Transport: &fakeTransport{},
		Clipboard: &fakeClipboard{},
		Recorder:  func(e types.LogEntry) { recorded = append(recorded, e) },
	})

	for i := 0; i < MaxLogEntries+5; i++ {
		p.Send()
	}

	if len(recorded) != MaxLogEntries+5 {
		t.Errorf("Expected recorder to see %d entries, got %d", MaxLogEntries+5, len(recorded))
	}
	if len(p.Entries()) != MaxLogEntries {
		t.Errorf("Expected log capped at %d, got %d", MaxLogEntries, len(p.Entries()))
	}
}

func TestClose_Teardown(t *testing.T) {
	p, tr, _ := newTestPlayground(t)
	s := connectOpen(t, p, tr)
	before := len(p.Entries())

	p.Close()

	if s.closed != 1 || p.hasSocket() {
		t.Error("Expected socket closed and released")
	}
	if len(p.Entries()) != before {
		t.Error("Close must not log")
	}
}
