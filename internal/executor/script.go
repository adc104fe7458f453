package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/types"
)

// DefaultReceiveTimeout applies to receive steps without a timeout
const DefaultReceiveTimeout = 30

// RunOptions configures a scripted session
type RunOptions struct {
	HandshakeTimeout time.Duration

	// Catalog resolves steps that reference a template
	Catalog *playground.Catalog

	// Vars fills {{name}} placeholders in header values and step bodies
	Vars map[string]string
}

// RunScript connects to the script endpoint and executes its steps in order
func RunScript(ctx context.Context, script *types.Script, opts RunOptions, callback types.FrameCallback) (*types.ScriptResult, error) {
	startTime := time.Now()

	result := &types.ScriptResult{
		Messages:  []types.Frame{},
		Timestamp: startTime.Format(time.RFC3339),
	}

	if opts.Catalog == nil {
		opts.Catalog = playground.NewCatalog("")
	}

	steps, err := resolveSteps(script.Steps, opts)
	if err != nil {
		return nil, err
	}

	dialer, err := newDialer(script.URL, Options{
		HandshakeTimeout: opts.HandshakeTimeout,
		Subprotocols:     script.Subprotocols,
		TLS:              script.TLS,
	})
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	headers := http.Header{}
	for key, value := range script.Headers {
		headers.Set(key, substitute(value, opts.Vars))
	}

	conn, resp, err := dialer.DialContext(ctx, script.URL, headers)
	if err != nil {
		errMsg := fmt.Sprintf("Connection failed: %v", err)
		if resp != nil {
			errMsg = fmt.Sprintf("Connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		result.Error = errMsg
		result.Duration = time.Since(startTime).Milliseconds()
		return result, nil
	}
	defer conn.Close()

	notify(callback, &types.Frame{
		Type:      "system",
		Content:   fmt.Sprintf("Connected to %s", script.URL),
		Timestamp: time.Now().Format(time.RFC3339),
		Direction: "system",
	})

	receiveChan := make(chan types.Frame, 100)
	receiveErrChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go receiveFrames(conn, receiveChan, receiveErrChan, done)

	finish := func(reason string) (*types.ScriptResult, error) {
		result.DisconnectReason = reason
		result.Duration = time.Since(startTime).Milliseconds()
		return result, nil
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			return finish("Cancelled by user")
		default:
		}

		switch step.Direction {
		case "send":
			if err := sendFrame(conn, &step); err != nil {
				result.Error = fmt.Sprintf("Failed to send message '%s': %v", step.Name, err)
				return finish("")
			}

			result.SentCount++
			sent := types.Frame{
				Type:      frameType(step.Type),
				Content:   step.Content,
				Timestamp: time.Now().Format(time.RFC3339),
				Direction: "sent",
				Size:      len(step.Content),
			}
			result.Messages = append(result.Messages, sent)
			notify(callback, &sent)

		case "receive":
			timeout := step.Timeout
			if timeout <= 0 {
				timeout = DefaultReceiveTimeout
			}
			timer := time.NewTimer(time.Duration(timeout) * time.Second)

			select {
			case received, ok := <-receiveChan:
				timer.Stop()
				if !ok {
					// The reader reports why it stopped before closing the channel
					err := <-receiveErrChan
					if code, normal := normalClose(err); normal {
						return finish(fmt.Sprintf("Connection closed by server (code %d)", code))
					}
					result.Error = fmt.Sprintf("Receive error: %v", err)
					return finish("")
				}
				result.ReceivedCount++
				result.Messages = append(result.Messages, received)
				notify(callback, &received)

			case <-timer.C:
				result.Error = fmt.Sprintf("Timeout waiting for message '%s' (%ds)", step.Name, timeout)
				return finish("")

			case <-ctx.Done():
				timer.Stop()
				return finish("Cancelled by user")
			}
		}
	}

	// Best effort, the server may already be gone
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if callback != nil {
		callback(nil, true)
	}
	return finish("Completed successfully")
}

// resolveSteps fills template bodies and placeholders, and validates directions
func resolveSteps(steps []types.ScriptStep, opts RunOptions) ([]types.ScriptStep, error) {
	out := make([]types.ScriptStep, 0, len(steps))
	for i, step := range steps {
		if step.Direction == "" {
			step.Direction = "send"
		}
		if step.Direction != "send" && step.Direction != "receive" {
			return nil, fmt.Errorf("step %d (%s): invalid direction %q", i+1, step.Name, step.Direction)
		}
		if step.Template != "" {
			text, err := opts.Catalog.Lookup(step.Template)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
			}
			step.Content = text
			if step.Type == "" {
				step.Type = "json"
			}
		}
		if step.Type == "" {
			step.Type = "text"
		}
		step.Content = substitute(step.Content, opts.Vars)
		out = append(out, step)
	}
	return out, nil
}

// substitute replaces {{name}} placeholders with vars
func substitute(s string, vars map[string]string) string {
	for name, value := range vars {
		s = strings.ReplaceAll(s, "{{"+name+"}}", value)
	}
	return s
}

func notify(callback types.FrameCallback, frame *types.Frame) {
	if callback != nil {
		callback(frame, false)
	}
}

func frameType(stepType string) string {
	if strings.ToLower(stepType) == "binary" {
		return "binary"
	}
	return "text"
}

// sendFrame sends a step through the connection
func sendFrame(conn *websocket.Conn, step *types.ScriptStep) error {
	var messageType int

	switch strings.ToLower(step.Type) {
	case "json":
		messageType = websocket.TextMessage
		var js json.RawMessage
		if err := json.Unmarshal([]byte(step.Content), &js); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	case "binary":
		messageType = websocket.BinaryMessage
	default:
		messageType = websocket.TextMessage
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(messageType, []byte(step.Content))
}

// receiveFrames reads frames until the connection ends or done is closed.
// The read error is sent on errs before frames is closed.
func receiveFrames(conn *websocket.Conn, frames chan<- types.Frame, errs chan<- error, done <-chan struct{}) {
	defer close(frames)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("script receive loop ended")
			errs <- err
			return
		}

		typ := "text"
		if messageType == websocket.BinaryMessage {
			typ = "binary"
		}

		frame := types.Frame{
			Type:      typ,
			Content:   string(message),
			Timestamp: time.Now().Format(time.RFC3339),
			Direction: "received",
			Size:      len(message),
		}

		select {
		case frames <- frame:
		case <-done:
			return
		}
	}
}

// normalClose reports whether err is a normal or going-away close from the peer
func normalClose(err error) (int, bool) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			return closeErr.Code, true
		}
	}
	return 0, false
}
