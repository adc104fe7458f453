package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/studiowebux/sttplay/internal/keybinds"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	styleTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleFocusedPane = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleSent = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleReceived = lipgloss.NewStyle().
			Foreground(colorBlue)
)

// statusIndicator returns the colour and glyph for a connection status
func statusIndicator(status types.ConnectionStatus) (lipgloss.Color, string) {
	switch status {
	case types.StatusConnected:
		return lipgloss.Color("10"), "●"
	case types.StatusConnecting:
		return lipgloss.Color("226"), "◐"
	case types.StatusDisconnected:
		return lipgloss.Color("241"), "○"
	default:
		return lipgloss.Color("9"), "✖"
	}
}

func kindStyle(kind types.EntryKind) lipgloss.Style {
	switch kind {
	case types.KindSent:
		return styleSent
	case types.KindReceived:
		return styleReceived
	case types.KindSuccess:
		return styleSuccess
	case types.KindError:
		return styleError
	default:
		return styleWarning
	}
}

// layout holds the computed pane sizes
type layout struct {
	draftWidth, logWidth int
	paneHeight           int
}

func (m *Model) computeLayout() layout {
	bodyHeight := m.height - HeaderLines - FooterLines - 1
	paneHeight := bodyHeight - 2
	if paneHeight < MinPaneHeight+1 {
		paneHeight = MinPaneHeight + 1
	}

	draftWidth := int(float64(m.width) * DraftWidthRatio)
	if draftWidth < MinPaneWidth {
		draftWidth = MinPaneWidth
	}
	logWidth := m.width - draftWidth - 1
	if logWidth < MinPaneWidth {
		logWidth = MinPaneWidth
	}

	return layout{draftWidth: draftWidth, logWidth: logWidth, paneHeight: paneHeight}
}

// updateLayout resizes the widgets to the window
func (m *Model) updateLayout() {
	if m.width == 0 {
		return
	}
	l := m.computeLayout()

	m.keyInput.Width = m.width - len(m.pg.HeaderName()) - 6

	m.draft.SetWidth(l.draftWidth - PaneChromeWidth)
	m.draft.SetHeight(l.paneHeight - 1)

	logHeight := l.paneHeight - 1
	if m.filtering || m.filterQuery != "" {
		logHeight--
	}
	m.logView.Width = l.logWidth - PaneChromeWidth
	m.logView.Height = logHeight
	m.filterInput.Width = m.logView.Width - 2

	m.refreshLog()
}

// refreshLog re-renders the log viewport, following the tail when already there
func (m *Model) refreshLog() {
	wasAtBottom := m.logView.AtBottom()
	m.logView.SetContent(m.renderLogContent(m.logView.Width))
	if wasAtBottom {
		m.logView.GotoBottom()
	}
}

// renderLogContent formats the filtered entries for the viewport
func (m *Model) renderLogContent(width int) string {
	entries := filterEntries(m.pg.Entries(), m.filterQuery)

	if len(entries) == 0 {
		if m.filterQuery != "" {
			return styleSubtle.Render(fmt.Sprintf("No entries matching '%s'...", m.filterQuery))
		}
		return styleSubtle.Render("No messages yet...")
	}

	// timestamp(8) + space + label(7) + space
	const prefixWidth = 17
	contentWidth := width - prefixWidth
	if contentWidth < 10 {
		contentWidth = 10
	}
	indent := strings.Repeat(" ", prefixWidth)

	var lines []string
	for _, entry := range entries {
		content := entry.Content
		if m.highlight && isJSONEntry(entry) {
			content = highlightJSON(content)
		} else {
			content = lipgloss.NewStyle().Width(contentWidth).Render(content)
		}

		contentLines := strings.Split(content, "\n")
		label := kindStyle(entry.Kind).Render(fmt.Sprintf("%-7s", entry.Kind.Label()))
		lines = append(lines, fmt.Sprintf("%s %s %s", styleSubtle.Render(entry.Timestamp), label, contentLines[0]))
		for _, line := range contentLines[1:] {
			lines = append(lines, indent+line)
		}
	}

	return strings.Join(lines, "\n")
}

// filterEntries keeps entries whose content or label contains query, case-insensitively
func filterEntries(entries []types.LogEntry, query string) []types.LogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}

	var filtered []types.LogEntry
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Content), query) ||
			strings.Contains(strings.ToLower(entry.Kind.Label()), query) ||
			strings.Contains(string(entry.Kind), query) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func isJSONEntry(entry types.LogEntry) bool {
	if entry.Kind != types.KindSent && entry.Kind != types.KindReceived {
		return false
	}
	return json.Valid([]byte(entry.Content))
}

// highlightJSON colours JSON for a 256 colour terminal, falling back to
// the plain text on failure
func highlightJSON(src string) string {
	var buf strings.Builder
	if err := quick.Highlight(&buf, src, "json", "terminal256", "monokai"); err != nil {
		return src
	}

	lines := strings.Split(buf.String(), "\n")
	trimmed := false
	for len(lines) > 1 && strings.TrimSpace(ansi.Strip(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
		trimmed = true
	}
	out := strings.Join(lines, "\n")
	if trimmed {
		out += "\x1b[0m"
	}
	return out
}

// renderMain renders the whole screen
func (m *Model) renderMain() string {
	l := m.computeLayout()

	header := styleHeader.Render(fmt.Sprintf("sttplay  %s", m.pg.Endpoint()))

	color, glyph := statusIndicator(m.pg.Status())
	status := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(fmt.Sprintf(" Status: %s %s ", glyph, m.pg.Status()))
	entries := styleSubtle.Render(fmt.Sprintf("| Log: %d/%d", len(m.pg.Entries()), playground.MaxLogEntries))
	if m.sessionID != "" {
		entries += styleSubtle.Render(fmt.Sprintf(" | Recording %s", shortID(m.sessionID)))
	}
	statusLine := lipgloss.JoinHorizontal(lipgloss.Top, status, entries)

	tabs := m.renderTabs()

	keyLabel := styleTitle.Render(m.pg.HeaderName() + ": ")
	if m.focus == FocusKey {
		keyLabel = styleTitle.Render("▸ " + m.pg.HeaderName() + ": ")
	}
	keyLine := keyLabel + m.keyInput.View()

	draftStyle := stylePane
	if m.focus == FocusDraft {
		draftStyle = styleFocusedPane
	}
	draftPane := draftStyle.
		Width(l.draftWidth - 2).
		Height(l.paneHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, styleTitle.Render("Message"), m.draft.View()))

	logStyle := stylePane
	if m.focus == FocusLog {
		logStyle = styleFocusedPane
	}
	logParts := []string{styleTitle.Render("Log")}
	if m.filtering {
		logParts = append(logParts, m.filterInput.View())
	} else if m.filterQuery != "" {
		logParts = append(logParts, styleSubtle.Render(fmt.Sprintf("Filter: %s (/ to edit, esc to clear)", m.filterQuery)))
	}
	logParts = append(logParts, m.logView.View())
	logPane := logStyle.
		Width(l.logWidth - 2).
		Height(l.paneHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, logParts...))

	panes := lipgloss.JoinHorizontal(lipgloss.Top, draftPane, " ", logPane)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		statusLine,
		tabs,
		keyLine,
		panes,
		"",
		m.renderFooter(),
	)
}

func (m *Model) renderTabs() string {
	actions := map[playground.TemplateName]keybinds.Action{
		playground.TemplateConfig: keybinds.ActionTemplateConf,
		playground.TemplateAudio:  keybinds.ActionTemplateAudio,
		playground.TemplateEOF:    keybinds.ActionTemplateEOF,
	}

	var tabs []string
	for _, name := range playground.TemplateNames {
		key := m.keys.GetBindingString(keybinds.ContextGlobal, actions[name])
		label := fmt.Sprintf("%s %s", strings.ToUpper(key), name)
		if name == m.pg.Selected() {
			tabs = append(tabs, styleTabActive.Render(label))
		} else {
			tabs = append(tabs, styleTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	if m.errorMsg != "" {
		return styleError.Bold(true).Render(" " + m.errorMsg + " ")
	}
	if m.statusMsg != "" {
		return styleSuccess.Bold(true).Render(" " + m.statusMsg + " ")
	}

	ctx := m.keyContext()
	hint := func(action keybinds.Action, label string) string {
		return fmt.Sprintf("%s: %s", m.keys.GetBindingString(ctx, action), label)
	}

	if m.filtering {
		return styleSubtle.Render(" Type to filter | " + hint(keybinds.ActionFilterApply, "Apply") + " | " + hint(keybinds.ActionFilterCancel, "Cancel") + " ")
	}

	connect := "Connect"
	if s := m.pg.Status(); s == types.StatusConnected || s == types.StatusConnecting {
		connect = "Disconnect"
	}

	parts := []string{
		hint(keybinds.ActionFocusNext, "Focus"),
		hint(keybinds.ActionToggleConnect, connect),
		hint(keybinds.ActionSend, "Send"),
		hint(keybinds.ActionCopyWscat, "Copy wscat"),
		hint(keybinds.ActionExportLog, "Export"),
		hint(keybinds.ActionClearLog, "Clear"),
	}
	if m.focus == FocusLog {
		parts = append(parts, hint(keybinds.ActionOpenFilter, "Filter"))
	}
	parts = append(parts, hint(keybinds.ActionQuit, "Quit"))

	return styleSubtle.Render(" " + strings.Join(parts, " | ") + " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
