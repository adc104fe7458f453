package playground

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatIncoming pretty-prints a JSON payload with two-space indentation.
// Key order, number spelling and escapes are kept as received.
// Anything that is not valid JSON is returned verbatim.
func FormatIncoming(data string) string {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return data
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return data
	}
	return buf.String()
}
