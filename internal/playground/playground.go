package playground

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/types"
)

const (
	// DefaultEndpoint is the streaming transcript endpoint
	DefaultEndpoint = "wss://app.fano.ai/api/v1/speech-to-text/streaming-transcript"

	// DefaultHeaderName carries the API key on the handshake
	DefaultHeaderName = "Fano-license-key"

	// TimestampFormat is how log entry timestamps are rendered
	TimestampFormat = "15:04:05"
)

// NotConnectedMessage is logged when sending without an open socket
const NotConnectedMessage = "Not connected"

// Target describes where and how a socket is opened
type Target struct {
	URL    string
	Header http.Header
}

// Socket is a live connection handle
type Socket interface {
	ID() string
	// Ready reports whether the socket is open and can send
	Ready() bool
	Send(text string) error
	Close() error
}

// Transport opens sockets. Open must not block on the network; the outcome
// arrives later on sink as an open or error event.
type Transport interface {
	Open(target Target, sink types.EventSink) (Socket, error)
}

// Options configures a Playground
type Options struct {
	Endpoint   string
	HeaderName string
	Language   string
	Transport  Transport
	Clipboard  Clipboard
	Sink       types.EventSink

	// Recorder, when set, sees every appended entry
	Recorder func(types.LogEntry)

	// Now is the clock for entry timestamps
	Now func() time.Time
}

// Playground is the state of one interactive session
type Playground struct {
	endpoint   string
	headerName string
	transport  Transport
	clipboard  Clipboard
	sink       types.EventSink
	recorder   func(types.LogEntry)
	now        func() time.Time

	catalog  *Catalog
	apiKey   string
	status   types.ConnectionStatus
	log      *Log
	selected TemplateName
	draft    string
	socket   Socket
}

// New creates a playground in the disconnected state with the config
// template selected
func New(opts Options) *Playground {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.HeaderName == "" {
		opts.HeaderName = DefaultHeaderName
	}
	if opts.Clipboard == nil {
		opts.Clipboard = SystemClipboard{}
	}
	if opts.Sink == nil {
		opts.Sink = func(types.Event) {}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Playground{
		endpoint:   opts.Endpoint,
		headerName: opts.HeaderName,
		transport:  opts.Transport,
		clipboard:  opts.Clipboard,
		sink:       opts.Sink,
		recorder:   opts.Recorder,
		now:        opts.Now,
		catalog:    NewCatalog(opts.Language),
		status:     types.StatusDisconnected,
		log:        NewLog(MaxLogEntries),
		selected:   TemplateConfig,
	}
	p.draft, _ = p.catalog.Get(TemplateConfig)
	return p
}

// Endpoint returns the socket URL
func (p *Playground) Endpoint() string { return p.endpoint }

// HeaderName returns the name of the license header
func (p *Playground) HeaderName() string { return p.headerName }

// APIKey returns the API key as entered
func (p *Playground) APIKey() string { return p.apiKey }

// SetAPIKey replaces the API key
func (p *Playground) SetAPIKey(key string) { p.apiKey = key }

// Status returns the connection status
func (p *Playground) Status() types.ConnectionStatus { return p.status }

// Entries returns the event log, oldest first
func (p *Playground) Entries() []types.LogEntry { return p.log.Entries() }

// LastEntry returns the newest log entry
func (p *Playground) LastEntry() (types.LogEntry, bool) { return p.log.Last() }

// Selected returns the selected template name
func (p *Playground) Selected() TemplateName { return p.selected }

// Draft returns the editable message text
func (p *Playground) Draft() string { return p.draft }

// SetDraft replaces the message text
func (p *Playground) SetDraft(text string) { p.draft = text }

// Catalog returns the template catalog
func (p *Playground) Catalog() *Catalog { return p.catalog }

// hasSocket reports whether a connection handle is held
func (p *Playground) hasSocket() bool { return p.socket != nil }

// Ready reports whether messages can be sent right now
func (p *Playground) Ready() bool {
	return p.socket != nil && p.socket.Ready()
}

// ClearLog drops every log entry
func (p *Playground) ClearLog() { p.log.Clear() }

func (p *Playground) addEntry(kind types.EntryKind, content string) {
	entry := types.LogEntry{
		Kind:      kind,
		Content:   content,
		Timestamp: p.now().Format(TimestampFormat),
	}
	p.log.Append(entry)
	if p.recorder != nil {
		p.recorder(entry)
	}
}

func (p *Playground) fire(trigger Trigger) {
	next := Next(p.status, trigger)
	if next != p.status {
		log.Debug().
			Str("from", string(p.status)).
			Str("to", string(next)).
			Str("trigger", string(trigger)).
			Msg("status change")
	}
	p.status = next
}

// SelectTemplate swaps the draft for a template, discarding edits
func (p *Playground) SelectTemplate(name TemplateName) error {
	text, ok := p.catalog.Get(name)
	if !ok {
		err := fmt.Errorf("unknown template %q", name)
		p.addEntry(types.KindError, err.Error())
		return err
	}
	p.selected = name
	p.draft = text
	return nil
}

// Connect opens a socket to the endpoint with the license header
func (p *Playground) Connect() {
	key := strings.TrimSpace(p.apiKey)
	if key == "" {
		p.addEntry(types.KindError, fmt.Sprintf("Please enter your %s", p.headerName))
		return
	}

	if p.socket != nil {
		p.closeSocket()
	}

	p.fire(TriggerConnect)
	p.addEntry(types.KindInfo, fmt.Sprintf("Connecting to %s...", p.endpoint))

	if p.transport == nil {
		p.failOpen(errors.New("no transport configured"))
		return
	}

	header := http.Header{}
	header.Set(p.headerName, key)

	socket, err := p.transport.Open(Target{URL: p.endpoint, Header: header}, p.sink)
	if err != nil {
		p.failOpen(err)
		return
	}
	p.socket = socket
	log.Debug().Str("socket", socket.ID()).Str("url", p.endpoint).Msg("socket opening")
}

func (p *Playground) failOpen(err error) {
	log.Warn().Err(err).Str("url", p.endpoint).Msg("socket open failed")
	p.addEntry(types.KindError, err.Error())
	p.fire(TriggerError)
}

// Disconnect closes the socket if any. The status becomes disconnected
// immediately, without waiting for the close event.
func (p *Playground) Disconnect() {
	if p.socket != nil {
		p.closeSocket()
	}
	p.fire(TriggerDisconnect)
}

func (p *Playground) closeSocket() {
	socket := p.socket
	p.socket = nil
	if err := socket.Close(); err != nil {
		log.Debug().Err(err).Str("socket", socket.ID()).Msg("socket close")
	}
}

// Send transmits the draft verbatim
func (p *Playground) Send() {
	if !p.Ready() {
		p.addEntry(types.KindError, NotConnectedMessage)
		return
	}

	if err := p.socket.Send(p.draft); err != nil {
		log.Warn().Err(err).Str("socket", p.socket.ID()).Msg("send failed")
		p.addEntry(types.KindError, err.Error())
		return
	}
	p.addEntry(types.KindSent, p.draft)
}

// WscatCommand returns the wscat invocation for the current key
func (p *Playground) WscatCommand() string {
	return WscatCommand(p.endpoint, p.headerName, p.apiKey)
}

// CopyWscat copies the wscat invocation to the clipboard
func (p *Playground) CopyWscat() {
	if err := p.clipboard.WriteAll(p.WscatCommand()); err != nil {
		p.addEntry(types.KindError, fmt.Sprintf("Failed to copy: %v", err))
		return
	}
	p.addEntry(types.KindInfo, "wscat command copied to clipboard!")
}

// HandleEvent applies a socket event. Events from a socket that is no
// longer the current handle are ignored, except close which is still logged.
func (p *Playground) HandleEvent(ev types.Event) {
	current := p.socket != nil && p.socket.ID() == ev.SocketID
	if !current {
		if ev.Type == types.EventClose {
			p.addEntry(types.KindInfo, fmt.Sprintf("Disconnected (code: %d)", ev.Code))
		}
		return
	}

	switch ev.Type {
	case types.EventOpen:
		p.fire(TriggerOpen)
		p.addEntry(types.KindSuccess, fmt.Sprintf("Connected! %s header sent with the handshake.", p.headerName))

	case types.EventMessage:
		p.fire(TriggerMessage)
		p.addEntry(types.KindReceived, FormatIncoming(ev.Data))

	case types.EventError:
		p.fire(TriggerError)
		msg := fmt.Sprintf("Connection error - the server rejected or dropped the socket. Check your %s and the endpoint.", p.headerName)
		if ev.Err != nil {
			msg = fmt.Sprintf("%s (%v)", msg, ev.Err)
		}
		p.addEntry(types.KindError, msg)

	case types.EventClose:
		p.socket = nil
		p.fire(TriggerClose)
		p.addEntry(types.KindInfo, fmt.Sprintf("Disconnected (code: %d)", ev.Code))
	}
}

// Close releases the socket without touching the log. Call on teardown.
func (p *Playground) Close() {
	if p.socket != nil {
		p.closeSocket()
	}
	p.status = types.StatusDisconnected
}
