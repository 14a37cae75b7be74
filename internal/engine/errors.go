package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ggoodman/lsp-server-go/codec"
	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/jsonrpc"
	"github.com/ggoodman/lsp-server-go/lspservice"
	"github.com/ggoodman/lsp-server-go/registry"
)

// rpcError maps err onto the JSON-RPC error object sent to the client.
// Handlers that return a *jsonrpc.Error control the reply verbatim.
func rpcError(err error) *jsonrpc.Error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var malformed *codec.MalformedPayloadError
	switch {
	case errors.As(err, &malformed):
		e := jsonrpc.NewError(jsonrpc.ErrorCodeInvalidParams, err.Error())
		e.Data = map[string]string{"path": malformed.Path}
		return e
	case errors.Is(err, registry.ErrUnknownMethod), errors.Is(err, lspservice.ErrMethodNotFound):
		return jsonrpc.NewError(jsonrpc.ErrorCodeMethodNotFound, err.Error())
	case errors.Is(err, handshake.ErrServerNotInitialized):
		return jsonrpc.NewError(jsonrpc.ErrorCodeServerNotInitialized, err.Error())
	case errors.Is(err, handshake.ErrInvalidRequest), errors.Is(err, codec.ErrKindMismatch):
		return jsonrpc.NewError(jsonrpc.ErrorCodeInvalidRequest, err.Error())
	case errors.Is(err, errRequestCancelled):
		return jsonrpc.NewError(jsonrpc.ErrorCodeRequestCancelled, "request cancelled")
	case errors.Is(err, context.Canceled), errors.Is(err, ErrClosed):
		return jsonrpc.NewError(jsonrpc.ErrorCodeServerCancelled, "request cancelled by server")
	default:
		return jsonrpc.NewError(jsonrpc.ErrorCodeInternalError, "internal error")
	}
}

// cancellationError reports why ctx ended. A client $/cancelRequest keeps its
// own cause; anything else (engine close, transport loss, session exit) is a
// server-side cancellation.
func cancellationError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, errRequestCancelled) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrClosed, cause)
}
