package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/sttplay/internal/history"
	"github.com/studiowebux/sttplay/internal/types"
	"gopkg.in/yaml.v3"
)

// SessionDetail is a recorded session with its entries
type SessionDetail struct {
	Session types.SessionSummary `json:"session" yaml:"session"`
	Entries []types.HistoryEntry `json:"entries" yaml:"entries"`
}

// ListHistory prints the most recent sessions
func ListHistory(w io.Writer, mgr *history.Manager, limit int, format string) error {
	sessions, err := mgr.ListSessions(limit)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []types.SessionSummary{}
	}

	switch format {
	case "json", "yaml":
		return encode(w, sessions, format)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No recorded sessions")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintln(w, formatSessionLine(s))
	}
	return nil
}

// ShowHistory prints every entry of a session; id may be a unique prefix
func ShowHistory(w io.Writer, mgr *history.Manager, id string, format string) error {
	sessionID, err := mgr.ResolveSessionID(id)
	if err != nil {
		return err
	}

	entries, err := mgr.Entries(sessionID)
	if err != nil {
		return err
	}

	detail := SessionDetail{Session: types.SessionSummary{ID: sessionID}, Entries: entries}
	sessions, err := mgr.ListSessions(0)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if s.ID == sessionID {
			detail.Session = s
			break
		}
	}

	switch format {
	case "json", "yaml":
		return encode(w, detail, format)
	}

	fmt.Fprintln(w, formatSessionLine(detail.Session))
	fmt.Fprintln(w)
	for _, e := range entries {
		fmt.Fprintf(w, "%s[%s] %s%s %s\n", kindColor(e.Kind), e.Timestamp, e.Kind.Label(), colorReset, e.Content)
	}
	return nil
}

// ClearHistory removes every recorded session
func ClearHistory(w io.Writer, mgr *history.Manager) error {
	count, err := mgr.GetCount()
	if err != nil {
		return err
	}
	if err := mgr.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared %d session(s)\n", count)
	return nil
}

func formatSessionLine(s types.SessionSummary) string {
	var sb strings.Builder
	sb.WriteString(shortID(s.ID))
	sb.WriteString("  ")
	sb.WriteString(s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	sb.WriteString(fmt.Sprintf("  %3d entries  %s", s.EntryCount, s.Endpoint))
	if s.Language != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", s.Language))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func encode(w io.Writer, v interface{}, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
