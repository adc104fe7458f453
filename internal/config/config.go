package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
	"github.com/tidwall/jsonc"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// Environment overrides
	EnvAPIKey   = "STTPLAY_API_KEY"
	EnvEndpoint = "STTPLAY_ENDPOINT"
	EnvLogLevel = "LOG_LEVEL"
)

var (
	// ConfigDir is the global configuration directory (~/.sttplay)
	ConfigDir string

	// ConfigFile is the JSONC configuration file
	ConfigFile string

	// DatabasePath is the SQLite database file for transcript history
	DatabasePath string

	// LogFile receives diagnostic logs while the TUI owns the terminal
	LogFile string

	// ExportDir is where exported logs are written
	ExportDir string
)

// defaultConfigFile is written on first run
const defaultConfigFile = `{
  // Streaming transcript endpoint
  "endpoint": "wss://app.fano.ai/api/v1/speech-to-text/streaming-transcript",

  // Handshake header that carries the API key
  "headerName": "Fano-license-key",

  // Language used by the config message template
  "languageCode": "yue-x-auto",

  "handshakeTimeoutSeconds": 45,

  // Record every log entry to ~/.sttplay/sttplay.db
  "historyEnabled": false,

  // json or yaml
  "exportFormat": "json",

  // Colour JSON payloads in the log
  "highlight": true,

  // debug, info, warn or error
  "logLevel": "info",
}
`

// Config holds user settings
type Config struct {
	Endpoint                string           `json:"endpoint"`
	HeaderName              string           `json:"headerName"`
	LanguageCode            string           `json:"languageCode"`
	HandshakeTimeoutSeconds int              `json:"handshakeTimeoutSeconds"`
	HistoryEnabled          bool             `json:"historyEnabled"`
	ExportFormat            string           `json:"exportFormat"`
	ExportDir               string           `json:"exportDir,omitempty"`
	Highlight               bool             `json:"highlight"`
	LogLevel                string           `json:"logLevel"`
	TLS                     *types.TLSConfig `json:"tls,omitempty"`

	// APIKey only comes from the environment or flags, never from the file
	APIKey string `json:"-"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Endpoint:                playground.DefaultEndpoint,
		HeaderName:              playground.DefaultHeaderName,
		LanguageCode:            playground.DefaultLanguageCode,
		HandshakeTimeoutSeconds: 45,
		ExportFormat:            "json",
		Highlight:               true,
		LogLevel:                "info",
	}
}

// Initialize sets up the configuration directory and files
// It creates ~/.sttplay/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".sttplay"))
}

// InitializeAt sets up the configuration under dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.jsonc")
	DatabasePath = filepath.Join(ConfigDir, "sttplay.db")
	LogFile = filepath.Join(ConfigDir, "sttplay.log")
	ExportDir = filepath.Join(ConfigDir, "exports")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfigFile), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// Load reads the config file, then applies environment overrides
func Load() (*Config, error) {
	cfg, err := LoadFile(ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// LoadFile reads a JSONC config file over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks settings that would otherwise fail later and obscurely
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if !strings.HasPrefix(c.Endpoint, "ws://") && !strings.HasPrefix(c.Endpoint, "wss://") {
		return fmt.Errorf("endpoint %q must start with ws:// or wss://", c.Endpoint)
	}
	if strings.TrimSpace(c.HeaderName) == "" {
		return fmt.Errorf("headerName must not be empty")
	}
	switch c.ExportFormat {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("exportFormat must be json or yaml, got %q", c.ExportFormat)
	}
	if c.HandshakeTimeoutSeconds < 0 {
		return fmt.Errorf("handshakeTimeoutSeconds must not be negative")
	}
	return nil
}

// HandshakeTimeout returns the handshake timeout as a duration
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}

// ExportDirectory returns the export directory, expanding a configured one
func (c *Config) ExportDirectory() (string, error) {
	if c.ExportDir == "" {
		return ExportDir, nil
	}
	return ExpandPath(c.ExportDir)
}

// ExpandPath expands a leading ~/ and resolves relative paths against ConfigDir
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	return filepath.Join(ConfigDir, path), nil
}
