package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/keybinds"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
	"gopkg.in/yaml.v3"
)

// LogExport is the file layout of an exported log
type LogExport struct {
	Endpoint   string           `json:"endpoint" yaml:"endpoint"`
	Status     string           `json:"status" yaml:"status"`
	ExportedAt string           `json:"exportedAt" yaml:"exportedAt"`
	Entries    []types.LogEntry `json:"entries" yaml:"entries"`
}

// toggleConnection disconnects a live or pending socket, otherwise connects
func (m *Model) toggleConnection() {
	switch m.pg.Status() {
	case types.StatusConnected, types.StatusConnecting:
		m.pg.Disconnect()
	default:
		m.pg.SetAPIKey(m.keyInput.Value())
		m.pg.Connect()
	}
	m.refreshLog()
}

// send transmits the editor contents
func (m *Model) send() {
	m.pg.SetDraft(m.draft.Value())
	m.pg.Send()
	m.refreshLog()
}

// copyWscat copies the wscat command and mirrors the outcome in the footer
func (m *Model) copyWscat() tea.Cmd {
	m.pg.SetAPIKey(m.keyInput.Value())
	m.pg.CopyWscat()
	m.refreshLog()

	last, ok := m.pg.LastEntry()
	if !ok {
		return nil
	}
	if last.Kind == types.KindError {
		return m.setErrorMessage(last.Content)
	}
	return m.setStatusMessage(last.Content)
}

// selectTemplate loads a template into the editor, discarding edits
func (m *Model) selectTemplate(name playground.TemplateName) {
	if err := m.pg.SelectTemplate(name); err != nil {
		m.refreshLog()
		return
	}
	m.draft.SetValue(m.pg.Draft())
}

func templateForAction(action keybinds.Action) playground.TemplateName {
	switch action {
	case keybinds.ActionTemplateAudio:
		return playground.TemplateAudio
	case keybinds.ActionTemplateEOF:
		return playground.TemplateEOF
	default:
		return playground.TemplateConfig
	}
}

// exportLog writes the current log to the export directory
func (m *Model) exportLog() tea.Cmd {
	export := LogExport{
		Endpoint:   m.pg.Endpoint(),
		Status:     string(m.pg.Status()),
		ExportedAt: m.now().Format(time.RFC3339),
		Entries:    m.pg.Entries(),
	}

	path, err := writeExport(export, m.exportFormat, m.exportDir, m.now())
	if err != nil {
		log.Warn().Err(err).Msg("log export failed")
		return m.setErrorMessage(fmt.Sprintf("Export failed: %v", err))
	}
	return m.setStatusMessage(fmt.Sprintf("Exported %d entries to %s", len(export.Entries), path))
}

// writeExport serialises an export as json or yaml into dir
func writeExport(export LogExport, format, dir string, now time.Time) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case "yaml", "yml":
		format = "yaml"
		data, err = yaml.Marshal(export)
	case "json", "":
		format = "json"
		data, err = json.MarshalIndent(export, "", "  ")
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("sttplay-%s.%s", now.Format("20060102-150405"), format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// setStatusMessage shows a footer message that clears itself
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.statusMsg = msg
	return clearStatusAfter()
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = msg
	return clearStatusAfter()
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(StatusMessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
