package handshake

import (
	"fmt"

	"github.com/ggoodman/lsp-server-go/lsp"
)

// earlyOutbound lists the messages a server may send while the client's
// initialize request is still being answered.
var earlyOutbound = map[lsp.Method]bool{
	lsp.MethodWindowShowMessage:        true,
	lsp.MethodWindowLogMessage:         true,
	lsp.MethodWindowShowMessageRequest: true,
	lsp.MethodProgress:                 true,
	lsp.MethodLogTrace:                 true,
	"telemetry/event":                  true,
}

// CheckOutbound reports whether the server may send method to the client in
// state s. Nothing may be sent before initialize or after exit. During
// Initializing only window messages, progress and trace are allowed. After
// shutdown the server may still notify, but not start new requests.
func CheckOutbound(s State, method lsp.Method, isRequest bool) error {
	switch s {
	case Initialized:
		return nil
	case Initializing:
		if earlyOutbound[method] {
			return nil
		}
		return fmt.Errorf("%w: %s before initialized", ErrServerNotInitialized, method)
	case ShuttingDown:
		if !isRequest {
			return nil
		}
		return fmt.Errorf("%w: %s after shutdown", ErrInvalidRequest, method)
	case Uninitialized:
		return fmt.Errorf("%w: %s before initialize", ErrServerNotInitialized, method)
	default:
		return fmt.Errorf("%w: %s after exit", ErrInvalidRequest, method)
	}
}
