/*
Package keybinds maps key strings to playground actions.

Bindings live in contexts that follow the focused widget of the TUI:

  - Global: available whatever has focus (ctrl and function keys only,
    so typing into the key input or the draft editor is never stolen)
  - KeyInput: the masked API key field
  - Draft: the message editor
  - Log: the event log viewport
  - Filter: the log filter prompt

Match checks the specific context first, then Global.

Users may override defaults in ~/.sttplay/keybinds.jsonc:

	{
	  // action: comma separated keys
	  "global": { "send": "ctrl+s,ctrl+enter" },
	  "log":    { "scroll_down": "down,j" }
	}

Validate reports unknown actions, malformed keys and attempts to
rebind ctrl+c.
*/
package keybinds
