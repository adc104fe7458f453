package playground

import "github.com/studiowebux/sttplay/internal/types"

// Trigger is anything that can move the connection status
type Trigger string

const (
	TriggerConnect    Trigger = "connect"
	TriggerDisconnect Trigger = "disconnect"
	TriggerOpen       Trigger = Trigger(types.EventOpen)
	TriggerMessage    Trigger = Trigger(types.EventMessage)
	TriggerError      Trigger = Trigger(types.EventError)
	TriggerClose      Trigger = Trigger(types.EventClose)
)

// Next returns the status that follows current when trigger fires.
// Messages never change the status.
func Next(current types.ConnectionStatus, trigger Trigger) types.ConnectionStatus {
	switch trigger {
	case TriggerConnect:
		return types.StatusConnecting
	case TriggerOpen:
		return types.StatusConnected
	case TriggerError:
		return types.StatusError
	case TriggerClose, TriggerDisconnect:
		return types.StatusDisconnected
	default:
		return current
	}
}
