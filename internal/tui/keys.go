package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/sttplay/internal/keybinds"
)

// handleKeyPress routes a key to a bound action, or to the focused widget
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	context := m.keyContext()

	if action, ok := m.keys.Match(context, msg.String()); ok {
		return m.runAction(action)
	}

	return m.updateFocused(msg)
}

// keyContext maps the current focus to a keybinding context
func (m *Model) keyContext() keybinds.Context {
	if m.filtering {
		return keybinds.ContextFilter
	}
	switch m.focus {
	case FocusKey:
		return keybinds.ContextKeyInput
	case FocusDraft:
		return keybinds.ContextDraft
	default:
		return keybinds.ContextLog
	}
}

// updateFocused forwards a message to the widget that has focus and keeps
// the playground in sync with edits
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if m.filtering {
		m.filterInput, cmd = m.filterInput.Update(msg)
		return cmd
	}

	switch m.focus {
	case FocusKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
		m.pg.SetAPIKey(m.keyInput.Value())
	case FocusDraft:
		m.draft, cmd = m.draft.Update(msg)
		m.pg.SetDraft(m.draft.Value())
	case FocusLog:
		// Keys are handled through bindings; only pass non-key messages
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			m.logView, cmd = m.logView.Update(msg)
		}
	}

	return cmd
}

// runAction performs a bound action
func (m *Model) runAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		m.pg.Close()
		return tea.Quit

	case keybinds.ActionFocusNext:
		return m.setFocus((m.focus + 1) % focusCount)
	case keybinds.ActionFocusPrev:
		return m.setFocus((m.focus + focusCount - 1) % focusCount)

	case keybinds.ActionToggleConnect:
		m.toggleConnection()
	case keybinds.ActionSend:
		m.send()
	case keybinds.ActionCopyWscat:
		return m.copyWscat()
	case keybinds.ActionTemplateConf, keybinds.ActionTemplateAudio, keybinds.ActionTemplateEOF:
		m.selectTemplate(templateForAction(action))
	case keybinds.ActionExportLog:
		return m.exportLog()
	case keybinds.ActionClearLog:
		m.pg.ClearLog()
		m.refreshLog()
		return m.setStatusMessage("Log cleared")

	case keybinds.ActionScrollUp:
		m.logView.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.logView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.logView.PageUp()
	case keybinds.ActionPageDown:
		m.logView.PageDown()
	case keybinds.ActionGoToTop:
		m.logView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.logView.GotoBottom()

	case keybinds.ActionOpenFilter:
		m.filtering = true
		m.filterInput.SetValue(m.filterQuery)
		m.filterInput.CursorEnd()
		m.updateLayout()
		return m.filterInput.Focus()
	case keybinds.ActionClearFilter:
		if m.filterQuery != "" {
			m.filterQuery = ""
			m.updateLayout()
		}
	case keybinds.ActionFilterApply:
		m.filtering = false
		m.filterQuery = m.filterInput.Value()
		m.filterInput.Blur()
		m.updateLayout()
	case keybinds.ActionFilterCancel:
		m.filtering = false
		m.filterInput.Blur()
		m.updateLayout()
	}

	return nil
}

// setFocus moves focus, blurring the other widgets
func (m *Model) setFocus(focus Focus) tea.Cmd {
	m.focus = focus
	m.keyInput.Blur()
	m.draft.Blur()

	switch focus {
	case FocusKey:
		return m.keyInput.Focus()
	case FocusDraft:
		return m.draft.Focus()
	}
	return nil
}
