package lspservice

import (
	"context"
	"errors"

	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/lsp"
)

// Conn is the connection-scoped handle passed to handlers. It exposes what
// was negotiated during the handshake and lets handlers talk back to the
// client.
type Conn interface {
	// ConnID is a process-unique identifier of the connection.
	ConnID() string
	// State returns the current lifecycle state.
	State() handshake.State
	// InitializeParams returns the params of the accepted initialize
	// request, or nil before initialize.
	InitializeParams() *lsp.InitializeParams
	// ClientCapabilities returns the capabilities the client announced.
	ClientCapabilities() lsp.ClientCapabilities
	// Trace returns the current $/setTrace value.
	Trace() lsp.TraceValue

	// Notify sends a server-to-client notification. params must be of the
	// type registered for method.
	Notify(ctx context.Context, method lsp.Method, params any) error
	// Call sends a server-to-client request and returns the decoded result:
	// a pointer to the registered result type, or nil for null results.
	Call(ctx context.Context, method lsp.Method, params any) (any, error)
	// LogMessage sends window/logMessage.
	LogMessage(ctx context.Context, typ lsp.MessageType, message string) error
	// LogTrace sends $/logTrace when tracing is enabled. verbose is only
	// sent at TraceVerbose.
	LogTrace(ctx context.Context, message, verbose string) error
}

// ErrMethodNotFound is returned by handlers for methods they do not
// implement. Requests are answered with MethodNotFound; notifications are
// dropped.
var ErrMethodNotFound = errors.New("method not found")
