package types

// ConnectionStatus is the lifecycle state of the playground socket
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// EntryKind tags a log entry for display
type EntryKind string

const (
	KindInfo     EntryKind = "info"
	KindSuccess  EntryKind = "success"
	KindError    EntryKind = "error"
	KindSent     EntryKind = "sent"
	KindReceived EntryKind = "received"
)

// Label returns the short label shown in front of an entry
func (k EntryKind) Label() string {
	switch k {
	case KindSent:
		return "→ SENT"
	case KindReceived:
		return "← RECV"
	case KindSuccess:
		return "SUCCESS"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LogEntry is one line of the playground event log
type LogEntry struct {
	Kind      EntryKind `json:"kind" yaml:"kind"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"` // Local HH:MM:SS
}

// EventType identifies a socket callback
type EventType string

const (
	EventOpen    EventType = "open"
	EventMessage EventType = "message"
	EventError   EventType = "error"
	EventClose   EventType = "close"
)

// Event is delivered by a socket to the playground
type Event struct {
	SocketID string    // Id of the socket that produced the event
	Type     EventType
	Data     string // Payload for message events
	Err      error  // Cause for error events
	Code     int    // Close code for close events
}

// EventSink receives socket events. Implementations must not block for long.
type EventSink func(Event)
