package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/config"
	"github.com/studiowebux/sttplay/internal/executor"
	"github.com/studiowebux/sttplay/internal/filter"
	"github.com/studiowebux/sttplay/internal/history"
	"github.com/studiowebux/sttplay/internal/parser"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
	"gopkg.in/yaml.v3"
)

// apiKeyVar is the placeholder scripts use for the license key
const apiKeyVar = "apiKey"

// promptForVariable prompts the user to enter a value for a variable
func promptForVariable(in io.Reader, name string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter value for '%s': ", name)
	reader := bufio.NewReader(in)
	value, err := reader.ReadString('\n')
	if err != nil && value == "" {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// RunOptions contains options for running a script in CLI mode
type RunOptions struct {
	ScriptPath       string
	APIKey           string
	HeaderName       string
	Language         string
	HandshakeTimeout time.Duration
	Query            string // JMESPath applied to received JSON frames
	OutputFormat     string // json, yaml, text
	SavePath         string

	// History, when set, records the run as a session
	History *history.Manager

	Stdout io.Writer
	Stdin  io.Reader

	// Interactive reports whether prompting is possible; defaults to a TTY check
	Interactive func() bool
}

// Run executes a script file in CLI mode
func Run(opts RunOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nSession cancelled by user")
			cancel()
		case <-ctx.Done():
		}
	}()

	return RunContext(ctx, opts)
}

// RunContext executes a script file until it completes or ctx is cancelled
func RunContext(ctx context.Context, opts RunOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Interactive == nil {
		opts.Interactive = isInteractive
	}
	if opts.HeaderName == "" {
		opts.HeaderName = playground.DefaultHeaderName
	}

	filePath, err := resolveFilePath(opts.ScriptPath)
	if err != nil {
		return err
	}

	script, err := parser.ParseScriptFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	var query *filter.Query
	if opts.Query != "" {
		if query, err = filter.Compile(opts.Query); err != nil {
			return err
		}
	}

	apiKey := opts.APIKey
	if apiKey == "" && needsAPIKey(script) {
		if !opts.Interactive() {
			return fmt.Errorf("script requires an API key (non-interactive mode): set %s or use --api-key", config.EnvAPIKey)
		}
		if apiKey, err = promptForVariable(opts.Stdin, apiKeyVar); err != nil {
			return fmt.Errorf("failed to read input for '%s': %w", apiKeyVar, err)
		}
	}
	applyDefaultHeader(script, opts.HeaderName, apiKey)

	format := opts.OutputFormat
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported output format %q (json, yaml, text)", format)
	}

	var sessionID string
	if opts.History != nil {
		if sessionID, err = opts.History.StartSession(script.URL, opts.Language); err != nil {
			return fmt.Errorf("failed to start history session: %w", err)
		}
	}

	// Text output streams frames as they arrive unless it goes to a file
	live := format == "text" && opts.SavePath == ""

	runOpts := executor.RunOptions{
		HandshakeTimeout: opts.HandshakeTimeout,
		Catalog:          playground.NewCatalog(opts.Language),
		Vars:             map[string]string{apiKeyVar: apiKey},
	}
	result, err := executor.RunScript(ctx, script, runOpts, func(frame *types.Frame, done bool) {
		if done || frame == nil {
			return
		}
		display := *frame
		applyQuery(query, &display)
		if live {
			fmt.Fprintln(opts.Stdout, formatFrame(display))
		}
		if opts.History != nil {
			recordFrame(opts.History, sessionID, display)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}

	for i := range result.Messages {
		applyQuery(query, &result.Messages[i])
	}

	if opts.History != nil && result.Error != "" {
		recordFrame(opts.History, sessionID, types.Frame{
			Type:      "system",
			Content:   result.Error,
			Timestamp: time.Now().Format(time.RFC3339),
			Direction: "error",
		})
	}

	output, err := formatOutput(result, format, !live)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output saved to %s\n", opts.SavePath)
	} else {
		fmt.Fprint(opts.Stdout, output)
	}

	if result.Error != "" {
		return fmt.Errorf("script failed: %s", result.Error)
	}
	return nil
}

// needsAPIKey reports whether any header or step references {{apiKey}}
func needsAPIKey(script *types.Script) bool {
	placeholder := "{{" + apiKeyVar + "}}"
	for _, value := range script.Headers {
		if strings.Contains(value, placeholder) {
			return true
		}
	}
	for _, step := range script.Steps {
		if strings.Contains(step.Content, placeholder) {
			return true
		}
	}
	return false
}

// applyDefaultHeader adds the license header when the script does not set it
func applyDefaultHeader(script *types.Script, headerName, apiKey string) {
	if apiKey == "" {
		return
	}
	for key := range script.Headers {
		if strings.EqualFold(key, headerName) {
			return
		}
	}
	if script.Headers == nil {
		script.Headers = make(map[string]string)
	}
	script.Headers[headerName] = apiKey
}

// applyQuery replaces a received JSON frame with the query result.
// Frames that are not JSON are left as they are.
func applyQuery(query *filter.Query, frame *types.Frame) {
	if query == nil || frame.Direction != "received" || frame.Type != "text" {
		return
	}
	out, err := query.Apply(frame.Content)
	if err != nil {
		log.Debug().Err(err).Str("query", query.String()).Msg("query skipped frame")
		return
	}
	frame.Content = out
	frame.Size = len(out)
}

// recordFrame stores a frame as a history entry
func recordFrame(mgr *history.Manager, sessionID string, frame types.Frame) {
	entry := types.LogEntry{
		Kind:      frameKind(frame.Direction),
		Content:   frame.Content,
		Timestamp: localClock(frame.Timestamp),
	}
	if err := mgr.Record(sessionID, entry); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to record history entry")
	}
}

func frameKind(direction string) types.EntryKind {
	switch direction {
	case "sent":
		return types.KindSent
	case "received":
		return types.KindReceived
	case "error":
		return types.KindError
	default:
		return types.KindInfo
	}
}

// localClock turns an RFC3339 timestamp into the log's HH:MM:SS form
func localClock(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format("15:04:05")
}

// formatFrame renders one frame as a log line
func formatFrame(frame types.Frame) string {
	kind := frameKind(frame.Direction)
	color := kindColor(kind)
	return fmt.Sprintf("%s[%s] %s%s %s", color, localClock(frame.Timestamp), kind.Label(), colorReset, frame.Content)
}

// formatOutput formats the result based on the output format.
// withFrames controls whether text output repeats every frame.
func formatOutput(result *types.ScriptResult, format string, withFrames bool) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil

	default:
		var sb strings.Builder

		if withFrames {
			for _, frame := range result.Messages {
				sb.WriteString(formatFrame(frame))
				sb.WriteString("\n")
			}
		}

		statusColor := colorGreen
		if result.Error != "" {
			statusColor = colorRed
		}
		sb.WriteString(fmt.Sprintf("\n%sSent: %d | Received: %d | Duration: %dms%s\n",
			statusColor, result.SentCount, result.ReceivedCount, result.Duration, colorReset))

		if result.DisconnectReason != "" {
			sb.WriteString(fmt.Sprintf("%s\n", result.DisconnectReason))
		}
		if result.Error != "" {
			sb.WriteString(fmt.Sprintf("%sError: %s%s\n", colorRed, result.Error, colorReset))
		}

		return sb.String(), nil
	}
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

func kindColor(kind types.EntryKind) string {
	switch kind {
	case types.KindSent:
		return colorCyan
	case types.KindReceived:
		return colorGreen
	case types.KindError:
		return colorRed
	case types.KindSuccess:
		return colorYellow
	default:
		return colorGray
	}
}

// resolveFilePath attempts to find the actual file path, trying common extensions
// if the exact path doesn't exist.
func resolveFilePath(basePath string) (string, error) {
	// Empty string = exact match first
	extensions := []string{"", ".ws", ".yaml", ".yml", ".json"}

	for _, ext := range extensions {
		candidate := basePath + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if !filepath.IsAbs(basePath) && config.ConfigDir != "" {
		scripts := filepath.Join(config.ConfigDir, "scripts")
		for _, ext := range extensions {
			candidate := filepath.Join(scripts, basePath+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("file not found: %s (searched current directory and %s, tried .ws, .yaml, .yml, .json extensions)", basePath, scripts)
	}

	return "", fmt.Errorf("file not found: %s (tried .ws, .yaml, .yml, .json extensions)", basePath)
}
