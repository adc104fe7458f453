package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

const (
	// DefaultHandshakeTimeout bounds the opening handshake
	DefaultHandshakeTimeout = 45 * time.Second

	// writeTimeout bounds a single frame write
	writeTimeout = 10 * time.Second

	// closeGrace is how long Close waits for the server to answer the close frame
	closeGrace = 2 * time.Second

	// sendQueueSize bounds the frames waiting for the writer goroutine
	sendQueueSize = 64

	// CloseAbnormal is reported when the connection dropped without a close frame
	CloseAbnormal = websocket.CloseAbnormalClosure
)

// ErrSocketNotOpen is returned when sending on a socket that is not open
var ErrSocketNotOpen = errors.New("socket is not open")

// ErrSendQueueFull is returned when the peer is not draining frames
var ErrSendQueueFull = errors.New("send queue is full")

// Options configures the dialer shared by every socket
type Options struct {
	HandshakeTimeout time.Duration
	Subprotocols     []string
	TLS              *types.TLSConfig
}

// Transport opens playground sockets over gorilla/websocket
type Transport struct {
	opts Options
}

// NewTransport creates a transport
func NewTransport(opts Options) *Transport {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Transport{opts: opts}
}

// Open validates the target and starts dialing in the background. The sink
// receives open, message, error and close events from other goroutines.
func (t *Transport) Open(target playground.Target, sink types.EventSink) (playground.Socket, error) {
	dialer, err := newDialer(target.URL, t.opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Socket{
		id:     uuid.NewString(),
		url:    target.URL,
		header: target.Header.Clone(),
		dialer: dialer,
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan string, sendQueueSize),
		done:   make(chan struct{}),
	}

	go s.run()
	return s, nil
}

// newDialer validates the URL and builds a dialer for it
func newDialer(rawURL string, opts Options) (*websocket.Dialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid URL %q: scheme must be ws or wss", rawURL)
	}

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
		Subprotocols:     opts.Subprotocols,
	}

	if opts.TLS != nil && u.Scheme == "wss" {
		tlsClientConfig, err := buildTLSConfig(opts.TLS)
		if err != nil {
			return nil, fmt.Errorf("TLS configuration error: %w", err)
		}
		dialer.TLSClientConfig = tlsClientConfig
	}

	return dialer, nil
}

type socketState int

const (
	stateConnecting socketState = iota
	stateOpen
	stateClosing
	stateClosed
)

// Socket is one connection attempt and, once open, the live connection
type Socket struct {
	id     string
	url    string
	header http.Header
	dialer *websocket.Dialer
	sink   types.EventSink
	ctx    context.Context
	cancel context.CancelFunc

	// out feeds the writer goroutine; done is closed when the read loop ends
	out  chan string
	done chan struct{}

	// mu guards conn and state
	mu        sync.Mutex
	conn      *websocket.Conn
	state     socketState
	closeOnce sync.Once
}

// ID returns the socket id carried on every event
func (s *Socket) ID() string { return s.id }

// Ready reports whether the handshake completed and the socket is not closing
func (s *Socket) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateOpen
}

// Send queues text as a single text frame. It never waits on the network.
func (s *Socket) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateOpen || s.conn == nil {
		return ErrSocketNotOpen
	}
	select {
	case s.out <- text:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close starts the closing handshake, or aborts a dial in progress.
// The close frame is written by the writer goroutine. It is safe to call
// more than once.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.conn == nil {
			s.state = stateClosed
		} else {
			s.state = stateClosing
		}
		s.mu.Unlock()

		s.cancel()
	})
	return nil
}

// writeLoop owns every data write on conn. Queued frames are flushed
// before the close frame.
func (s *Socket) writeLoop(conn *websocket.Conn) {
	write := func(messageType int, data []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteMessage(messageType, data)
	}

	for {
		select {
		case text := <-s.out:
			if err := write(websocket.TextMessage, []byte(text)); err != nil {
				log.Debug().Err(err).Str("socket", s.id).Msg("write failed")
				// The read loop reports the broken connection
				conn.Close()
				return
			}

		case <-s.ctx.Done():
		drain:
			for {
				select {
				case text := <-s.out:
					if err := write(websocket.TextMessage, []byte(text)); err != nil {
						conn.Close()
						return
					}
				default:
					break drain
				}
			}
			if err := write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
				conn.Close()
				return
			}
			// The read loop normally ends when the server echoes the close frame
			time.AfterFunc(closeGrace, func() { conn.Close() })
			return

		case <-s.done:
			return
		}
	}
}

func (s *Socket) emit(ev types.Event) {
	ev.SocketID = s.id
	if s.sink != nil {
		s.sink(ev)
	}
}

func (s *Socket) run() {
	conn, resp, err := s.dialer.DialContext(s.ctx, s.url, s.header)
	if err != nil {
		s.setState(stateClosed)
		if s.ctx.Err() != nil {
			// Closed by the owner while dialing
			s.emit(types.Event{Type: types.EventClose, Code: CloseAbnormal})
			return
		}
		if resp != nil {
			err = fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("connection failed: %w", err)
		}
		log.Debug().Err(err).Str("socket", s.id).Msg("dial failed")
		s.emit(types.Event{Type: types.EventError, Err: err})
		s.emit(types.Event{Type: types.EventClose, Code: CloseAbnormal})
		return
	}

	s.mu.Lock()
	if s.state != stateConnecting {
		s.mu.Unlock()
		conn.Close()
		s.emit(types.Event{Type: types.EventClose, Code: CloseAbnormal})
		return
	}
	s.conn = conn
	s.state = stateOpen
	s.mu.Unlock()

	log.Debug().Str("socket", s.id).Str("url", s.url).Msg("socket open")
	s.emit(types.Event{Type: types.EventOpen})

	go s.writeLoop(conn)
	s.readLoop(conn)
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	defer close(s.done)
	defer conn.Close()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			closing := s.setState(stateClosed) == stateClosing

			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				s.emit(types.Event{Type: types.EventClose, Code: closeErr.Code})
			case closing:
				s.emit(types.Event{Type: types.EventClose, Code: websocket.CloseNormalClosure})
			default:
				log.Debug().Err(err).Str("socket", s.id).Msg("read failed")
				s.emit(types.Event{Type: types.EventError, Err: err})
				s.emit(types.Event{Type: types.EventClose, Code: CloseAbnormal})
			}
			return
		}

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		s.emit(types.Event{Type: types.EventMessage, Data: string(message)})
	}
}

// setState stores next and returns the previous state
func (s *Socket) setState(next socketState) socketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = next
	return prev
}

// buildTLSConfig creates a TLS configuration for socket connections
func buildTLSConfig(tlsConfig *types.TLSConfig) (*tls.Config, error) {
	config := &tls.Config{
		InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
	}

	// Load client certificate if specified
	if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	// Load CA certificate if specified
	if tlsConfig.CAFile != "" {
		caCert, err := os.ReadFile(tlsConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = caCertPool
	}

	return config, nil
}
