package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal   Context = "global"    // Available everywhere
	ContextKeyInput Context = "key_input" // API key field
	ContextDraft    Context = "draft"     // Message editor
	ContextLog      Context = "log"       // Event log viewport
	ContextFilter   Context = "filter"    // Log filter prompt
)

const (
	// Global actions
	ActionQuit          Action = "quit"
	ActionFocusNext     Action = "focus_next"
	ActionFocusPrev     Action = "focus_prev"
	ActionToggleConnect Action = "toggle_connect"
	ActionSend          Action = "send"
	ActionCopyWscat     Action = "copy_wscat"
	ActionTemplateConf  Action = "template_config"
	ActionTemplateAudio Action = "template_audio"
	ActionTemplateEOF   Action = "template_eof"
	ActionExportLog     Action = "export_log"
	ActionClearLog      Action = "clear_log"

	// Log viewport
	ActionScrollUp    Action = "scroll_up"
	ActionScrollDown  Action = "scroll_down"
	ActionPageUp      Action = "page_up"
	ActionPageDown    Action = "page_down"
	ActionGoToTop     Action = "go_to_top"
	ActionGoToBottom  Action = "go_to_bottom"
	ActionOpenFilter  Action = "open_filter"
	ActionClearFilter Action = "clear_filter"

	// Filter prompt
	ActionFilterApply  Action = "filter_apply"
	ActionFilterCancel Action = "filter_cancel"
)

// AllActions lists every action a config file may bind
var AllActions = []Action{
	ActionQuit, ActionFocusNext, ActionFocusPrev, ActionToggleConnect, ActionSend,
	ActionCopyWscat, ActionTemplateConf, ActionTemplateAudio, ActionTemplateEOF,
	ActionExportLog, ActionClearLog,
	ActionScrollUp, ActionScrollDown, ActionPageUp, ActionPageDown,
	ActionGoToTop, ActionGoToBottom, ActionOpenFilter, ActionClearFilter,
	ActionFilterApply, ActionFilterCancel,
}

// AllContexts lists the contexts in lookup order for help output
var AllContexts = []Context{ContextGlobal, ContextKeyInput, ContextDraft, ContextLog, ContextFilter}

// IsKnown reports whether a is a defined action
func (a Action) IsKnown() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}
