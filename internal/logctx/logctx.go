package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the connection and message attributes
// stored in the context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if cd, ok := ctx.Value(connDataKey{}).(*ConnData); ok {
		attrs := []any{slog.String("id", cd.ConnID)}
		if cd.State != nil {
			attrs = append(attrs, slog.String("state", cd.State()))
		}
		if cd.Client != "" {
			attrs = append(attrs, slog.String("client", cd.Client))
		}
		r.AddAttrs(slog.Group("conn", attrs...))
	}

	if msg, ok := ctx.Value(rpcMsg{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
			slog.String("type", msg.Type),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type rpcMsg struct{}

type RPCMessage struct {
	Method string
	ID     string
	Type   string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsg{}, msg)
}

type connDataKey struct{}

// ConnData identifies the connection a record belongs to. State is read at
// log time so records carry the lifecycle state current when they are emitted.
type ConnData struct {
	ConnID string
	Client string
	State  func() string
}

func WithConnData(ctx context.Context, data *ConnData) context.Context {
	return context.WithValue(ctx, connDataKey{}, data)
}
