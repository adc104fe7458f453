// Package logger configures zerolog for sttplay.
//
// The TUI owns the terminal, so diagnostics are written to a file
// instead of stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init points the global logger at path with the given level.
// The returned closer releases the file.
func Init(level, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	lvl := ParseLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(file).With().Timestamp().Logger()

	log.Info().
		Str("level", lvl.String()).
		Str("time_format", "unix ms").
		Msg("Logger initialized")

	return file, nil
}

// Discard silences the global logger, used by one-shot commands that print to stdout
func Discard() {
	log.Logger = zerolog.Nop()
}
