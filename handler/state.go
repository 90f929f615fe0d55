package handler

import "fmt"

// State tracks one side of the simulated connection. Every StateClosed* value is terminal.
type State int

const (
	StateWaiting State = iota
	StateConnected
	StateClosedByPeer
	StateClosedByUser
	StateClosedByEOF
	StateClosedByInterrupt
	StateClosedByError
)

var stateNames = [...]string{
	StateWaiting:           "WAITING_FOR_CONNECTION",
	StateConnected:         "CONNECTED",
	StateClosedByPeer:      "CLOSED_BY_PEER",
	StateClosedByUser:      "CLOSED_BY_USER",
	StateClosedByEOF:       "CLOSED_BY_EOF",
	StateClosedByInterrupt: "CLOSED_BY_INTERRUPT",
	StateClosedByError:     "CLOSED_BY_ERROR",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) Terminal() bool {
	return s >= StateClosedByPeer && s <= StateClosedByError
}
