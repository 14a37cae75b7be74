// Package handshake implements the LSP lifecycle: initialize, initialized,
// normal operation, shutdown and exit.
//
// Transition is a total function over (State, Event); Machine applies it to
// the single session of one connection.
package handshake

import (
	"errors"
	"fmt"

	"github.com/ggoodman/lsp-server-go/lsp"
)

// State is the lifecycle state of a connection.
type State int

const (
	Uninitialized State = iota
	Initializing
	Initialized
	ShuttingDown
	Exited
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	case ShuttingDown:
		return "shutting_down"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is an inbound message, reduced to what the lifecycle cares about.
type Event int

const (
	EventInitializeRequest Event = iota + 1
	EventInitializedNotification
	EventShutdownRequest
	EventExitNotification
	EventOtherRequest
	EventOtherNotification
	EventResponse
	// EventForcedExit is raised from outside the protocol, for example when
	// the client process disappears.
	EventForcedExit
	// EventCancelNotification is $/cancelRequest. Unlike other notifications
	// it is still honoured after shutdown so running requests can be stopped.
	EventCancelNotification
)

func (e Event) String() string {
	switch e {
	case EventInitializeRequest:
		return "initialize_request"
	case EventInitializedNotification:
		return "initialized_notification"
	case EventShutdownRequest:
		return "shutdown_request"
	case EventExitNotification:
		return "exit_notification"
	case EventOtherRequest:
		return "request"
	case EventOtherNotification:
		return "notification"
	case EventResponse:
		return "response"
	case EventForcedExit:
		return "forced_exit"
	case EventCancelNotification:
		return "cancel_notification"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// IsRequest reports whether the event expects a response.
func (e Event) IsRequest() bool {
	return e == EventInitializeRequest || e == EventShutdownRequest || e == EventOtherRequest
}

// ClassifyRequest maps a request method to its event.
func ClassifyRequest(method lsp.Method) Event {
	switch method {
	case lsp.MethodInitialize:
		return EventInitializeRequest
	case lsp.MethodShutdown:
		return EventShutdownRequest
	default:
		return EventOtherRequest
	}
}

// ClassifyNotification maps a notification method to its event.
func ClassifyNotification(method lsp.Method) Event {
	switch method {
	case lsp.MethodInitialized:
		return EventInitializedNotification
	case lsp.MethodExit:
		return EventExitNotification
	case lsp.MethodCancelRequest:
		return EventCancelNotification
	default:
		return EventOtherNotification
	}
}

// Verdict says what to do with the message that raised an event.
type Verdict int

const (
	// Accept hands the message on to the dispatcher.
	Accept Verdict = iota + 1
	// Reject answers a request with the outcome's error.
	Reject
	// Drop discards a notification or response, logging the outcome's error
	// when there is one.
	Drop
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

var (
	// ErrServerNotInitialized rejects traffic that arrives before the
	// handshake has completed.
	ErrServerNotInitialized = errors.New("server not initialized")
	// ErrInvalidRequest rejects a repeated initialize and traffic after
	// shutdown.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAbnormalExit reports an exit that was not preceded by shutdown.
	ErrAbnormalExit = errors.New("exit without shutdown")
)

// Outcome is the result of applying an event to a state.
type Outcome struct {
	Next    State
	Verdict Verdict
	// Err is set for Reject and for Drops that indicate a protocol violation.
	Err error
	// Abnormal is set when the event exits the session before shutdown.
	Abnormal bool
}

func accept(next State) Outcome { return Outcome{Next: next, Verdict: Accept} }

func reject(s State, err error) Outcome { return Outcome{Next: s, Verdict: Reject, Err: err} }

func drop(s State, err error) Outcome { return Outcome{Next: s, Verdict: Drop, Err: err} }

func exitAbnormal() Outcome {
	return Outcome{Next: Exited, Verdict: Accept, Abnormal: true}
}

// Transition returns the outcome of ev in state s. It is defined for every
// pair; anything not explicitly allowed is rejected (requests) or dropped
// (notifications and responses).
func Transition(s State, ev Event) Outcome {
	switch s {
	case Uninitialized:
		switch ev {
		case EventInitializeRequest:
			return accept(Initializing)
		case EventExitNotification, EventForcedExit:
			return exitAbnormal()
		}
		return refuse(s, ev, ErrServerNotInitialized)

	case Initializing:
		switch ev {
		case EventInitializeRequest:
			return reject(s, ErrInvalidRequest)
		case EventInitializedNotification:
			return accept(Initialized)
		case EventExitNotification, EventForcedExit:
			return exitAbnormal()
		case EventResponse:
			// The server may already have sent window/* requests.
			return accept(s)
		}
		return refuse(s, ev, ErrServerNotInitialized)

	case Initialized:
		switch ev {
		case EventInitializeRequest:
			return reject(s, ErrInvalidRequest)
		case EventInitializedNotification:
			return drop(s, ErrInvalidRequest)
		case EventShutdownRequest:
			return accept(ShuttingDown)
		case EventExitNotification, EventForcedExit:
			return exitAbnormal()
		case EventOtherRequest, EventOtherNotification, EventCancelNotification, EventResponse:
			return accept(s)
		}

	case ShuttingDown:
		switch ev {
		case EventExitNotification, EventForcedExit:
			return accept(Exited)
		case EventResponse, EventCancelNotification:
			return accept(s)
		}
		return refuse(s, ev, ErrInvalidRequest)

	case Exited:
		if ev == EventExitNotification || ev == EventForcedExit {
			return drop(s, nil)
		}
		return refuse(s, ev, ErrInvalidRequest)
	}

	return refuse(s, ev, ErrInvalidRequest)
}

// refuse rejects requests and drops everything else.
func refuse(s State, ev Event, err error) Outcome {
	if ev.IsRequest() {
		return reject(s, err)
	}
	return drop(s, err)
}
