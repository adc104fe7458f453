/*
Package tui implements the terminal playground for the streaming
transcript socket.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern around a single
playground.Playground:
  - model.go: Model struct, construction, Update loop
  - keys.go: key routing through the keybinds registry
  - actions.go: connect, send, export and the other user actions
  - render.go: layout and styles
  - init.go: Run wires config, history and the transport together

# Threading Model

Socket goroutines never touch the Model. They push events into a
buffered channel; waitForEvent turns the next event into a tea.Msg so
HandleEvent always runs on the Bubble Tea goroutine.
*/
package tui
