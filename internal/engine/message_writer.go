package engine

import (
	"context"
	"encoding/json"
)

// MessageWriter delivers one encoded JSON-RPC message to the peer. The engine
// serializes calls, so implementations need not be safe for concurrent use.
type MessageWriter interface {
	WriteMessage(ctx context.Context, msg json.RawMessage) error
}

type MessageWriterFunc func(ctx context.Context, msg json.RawMessage) error

func (f MessageWriterFunc) WriteMessage(ctx context.Context, msg json.RawMessage) error {
	return f(ctx, msg)
}
