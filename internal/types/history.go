package types

import "time"

// SessionSummary describes one recorded playground session
type SessionSummary struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	Endpoint   string    `json:"endpoint" yaml:"endpoint"`
	Language   string    `json:"language,omitempty" yaml:"language,omitempty"`
	EntryCount int       `json:"entryCount" yaml:"entryCount"`
}

// HistoryEntry is a log entry persisted under a session
type HistoryEntry struct {
	SessionID string    `json:"sessionId" yaml:"sessionId"`
	Seq       int       `json:"seq" yaml:"seq"`
	Kind      EntryKind `json:"kind" yaml:"kind"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
}
