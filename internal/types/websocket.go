package types

// Script represents a scripted streaming session from .ws or YAML files
type Script struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	URL          string            `json:"url" yaml:"url"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Subprotocols []string          `json:"subprotocols,omitempty" yaml:"subprotocols,omitempty"`
	Steps        []ScriptStep      `json:"steps,omitempty" yaml:"steps,omitempty"`
	TLS          *TLSConfig        `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// ScriptStep represents a message to send or expect in the sequence
type ScriptStep struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`         // "text" | "json" | "binary"
	Template  string `json:"template,omitempty" yaml:"template,omitempty"` // "config" | "audio" | "eof"
	Content   string `json:"content,omitempty" yaml:"content,omitempty"`
	Direction string `json:"direction" yaml:"direction"`                 // "send" | "receive"
	Timeout   int    `json:"timeout,omitempty" yaml:"timeout,omitempty"` // Seconds, receive steps only
}

// ScriptResult contains the scripted session data
type ScriptResult struct {
	Messages         []Frame `json:"messages" yaml:"messages"`
	SentCount        int     `json:"sentCount" yaml:"sentCount"`
	ReceivedCount    int     `json:"receivedCount" yaml:"receivedCount"`
	Duration         int64   `json:"duration" yaml:"duration"` // Milliseconds
	Error            string  `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"` // RFC3339 start time
	DisconnectReason string  `json:"disconnectReason,omitempty" yaml:"disconnectReason,omitempty"`
}

// Frame is a single message exchanged during a scripted session
type Frame struct {
	Type      string `json:"type" yaml:"type"` // "text" | "binary" | "system"
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"` // RFC3339
	Direction string `json:"direction" yaml:"direction"` // "sent" | "received" | "system"
	Size      int    `json:"size,omitempty" yaml:"size,omitempty"`
}

// FrameCallback is called for each frame during a scripted session.
// done indicates the session finished.
type FrameCallback func(frame *Frame, done bool)

// TLSConfig holds TLS settings for the socket dialer
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}
