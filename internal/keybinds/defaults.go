package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerLogBindings(r)
	registerFilterBindings(r)

	return r
}

// registerGlobalBindings sets up bindings that work whatever has focus
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuit)
	r.Register(ContextGlobal, "tab", ActionFocusNext)
	r.Register(ContextGlobal, "shift+tab", ActionFocusPrev)
	r.Register(ContextGlobal, "ctrl+o", ActionToggleConnect)
	r.Register(ContextGlobal, "ctrl+s", ActionSend)
	r.Register(ContextGlobal, "ctrl+y", ActionCopyWscat)
	r.Register(ContextGlobal, "f1", ActionTemplateConf)
	r.Register(ContextGlobal, "f2", ActionTemplateAudio)
	r.Register(ContextGlobal, "f3", ActionTemplateEOF)
	r.Register(ContextGlobal, "ctrl+e", ActionExportLog)
	r.Register(ContextGlobal, "ctrl+l", ActionClearLog)
}

// registerLogBindings sets up scrolling and filtering in the log viewport
func registerLogBindings(r *Registry) {
	r.RegisterMultiple(ContextLog, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextLog, []string{"down", "j"}, ActionScrollDown)
	r.Register(ContextLog, "pgup", ActionPageUp)
	r.Register(ContextLog, "pgdown", ActionPageDown)
	r.RegisterMultiple(ContextLog, []string{"home", "g"}, ActionGoToTop)
	r.RegisterMultiple(ContextLog, []string{"end", "G"}, ActionGoToBottom)
	r.Register(ContextLog, "/", ActionOpenFilter)
	r.Register(ContextLog, "esc", ActionClearFilter)
	r.Register(ContextLog, "q", ActionQuit)
}

// registerFilterBindings sets up the filter prompt
func registerFilterBindings(r *Registry) {
	r.Register(ContextFilter, "enter", ActionFilterApply)
	r.Register(ContextFilter, "esc", ActionFilterCancel)
	// tab would move focus away from an open prompt
	r.Register(ContextFilter, "tab", ActionFilterApply)
}
