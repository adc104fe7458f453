/*
Package executor carries sttplay traffic over gorilla/websocket.

# Interactive sockets

Transport implements playground.Transport. Open validates the URL and TLS
settings synchronously, then dials in a goroutine:

	transport := executor.NewTransport(executor.Options{
		HandshakeTimeout: 10 * time.Second,
	})
	socket, err := transport.Open(playground.Target{
		URL:    "wss://app.fano.ai/api/v1/speech-to-text/streaming-transcript",
		Header: http.Header{"Fano-License-Key": {key}},
	}, sink)

The sink then receives, from the socket's own goroutines:
  - open once the handshake succeeds
  - message for every text or binary frame
  - error when the dial or a read fails for a reason other than a close frame
  - close exactly once, with the close code (1006 when no close frame arrived)

Writes are serialised on the socket mutex since gorilla allows a single
concurrent writer. Close sends a normal-closure frame and gives the server
a short grace period to answer before the connection is dropped.

# Scripted sessions

RunScript dials once and walks a types.Script step by step: send steps
write a frame (json steps must be well formed), receive steps wait for the
next frame with a per-step timeout. Template steps take their body from a
playground.Catalog, and {{name}} placeholders are filled from RunOptions.Vars.

	result, err := executor.RunScript(ctx, script, executor.RunOptions{
		Vars: map[string]string{"apiKey": key},
	}, func(frame *types.Frame, done bool) {
		if !done {
			fmt.Println(frame.Direction, frame.Content)
		}
	})

Transport failures are reported in ScriptResult.Error; the returned error is
reserved for scripts that cannot run at all (bad step, unknown template).

# TLS Configuration

Both paths accept a types.TLSConfig for wss endpoints:
  - Custom CA certificates
  - Client certificates (mTLS)
  - InsecureSkipVerify for development
*/
package executor
