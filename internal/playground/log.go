package playground

import "github.com/studiowebux/sttplay/internal/types"

// MaxLogEntries is how many entries the event log keeps
const MaxLogEntries = 20

// Log is a bounded, ordered event log. The oldest entry is evicted first.
type Log struct {
	entries []types.LogEntry
	limit   int
}

// NewLog creates a log holding at most limit entries
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = MaxLogEntries
	}
	return &Log{
		entries: make([]types.LogEntry, 0, limit),
		limit:   limit,
	}
}

// Append adds an entry, trimming the oldest ones past the limit
func (l *Log) Append(entry types.LogEntry) {
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
}

// Entries returns a copy of the entries, oldest first
func (l *Log) Entries() []types.LogEntry {
	out := make([]types.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *Log) Len() int {
	return len(l.entries)
}

// Last returns the newest entry
func (l *Log) Last() (types.LogEntry, bool) {
	if len(l.entries) == 0 {
		return types.LogEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Clear drops every entry
func (l *Log) Clear() {
	l.entries = l.entries[:0]
}
