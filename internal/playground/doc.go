/*
Package playground holds the interactive state of a streaming transcript
session: the API key, the connection status, a bounded event log, the
selected message template and the editable draft.

A Playground is owned by a single goroutine (the bubbletea event loop in the
TUI). Sockets report back through an EventSink; the owner hands each event
to HandleEvent on its own goroutine, so no method here is safe for
concurrent use.

# Lifecycle

	p := playground.New(playground.Options{
		Endpoint:   cfg.Endpoint,
		HeaderName: cfg.HeaderName,
		Transport:  executor.NewTransport(executor.Options{}),
		Sink:       func(ev types.Event) { events <- ev },
	})
	p.SetAPIKey(key)
	p.Connect()
	// later, on the owner goroutine
	p.HandleEvent(<-events)
	p.Send()
	p.Disconnect()

# Status

The connection status only moves through Next, see state.go.
*/
package playground
