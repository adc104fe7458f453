package playground

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// APIKeyPlaceholder is used in the wscat command when no key is entered
const APIKeyPlaceholder = "YOUR_API_KEY"

// Clipboard writes text to the system clipboard
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes through atotto/clipboard
type SystemClipboard struct{}

// WriteAll copies text to the system clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// WscatCommand builds a wscat invocation that sends the license header.
// Values are wrapped in double quotes and not escaped.
func WscatCommand(endpoint, headerName, apiKey string) string {
	if apiKey == "" {
		apiKey = APIKeyPlaceholder
	}
	return fmt.Sprintf(`wscat -c "%s" -H "%s: %s"`, endpoint, headerName, apiKey)
}
