package engine

import (
	"context"
	"fmt"

	"github.com/ggoodman/lsp-server-go/codec"
	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/registry"
)

func (e *Engine) ConnID() string { return e.id }

func (e *Engine) State() handshake.State { return e.hs.State() }

func (e *Engine) InitializeParams() *lsp.InitializeParams {
	if p, ok := e.hs.ClientParams(); ok {
		return p
	}
	return e.initializing.Load()
}

func (e *Engine) ClientCapabilities() lsp.ClientCapabilities {
	if p := e.InitializeParams(); p != nil {
		return p.Capabilities
	}
	return lsp.ClientCapabilities{}
}

func (e *Engine) Trace() lsp.TraceValue {
	e.traceMu.Lock()
	defer e.traceMu.Unlock()
	return e.trace
}

// outboundState is the state server-initiated traffic is judged against.
// While initialize is being answered the machine is still Uninitialized,
// but the server may already send window notifications. Requests must wait:
// their responses could not be read until initialize returns.
func (e *Engine) outboundState(isRequest bool) handshake.State {
	s := e.hs.State()
	if s == handshake.Uninitialized && !isRequest && e.initializing.Load() != nil {
		return handshake.Initializing
	}
	return s
}

func (e *Engine) checkOutbound(method lsp.Method, kind registry.Kind) error {
	s, err := e.codec.Registry().Lookup(method)
	if err != nil {
		return err
	}
	if s.Direction == registry.ClientToServer {
		return fmt.Errorf("%w: %s", ErrInvalidDirection, method)
	}
	if s.Kind != kind {
		return fmt.Errorf("%w: %s is a %s", codec.ErrKindMismatch, method, s.Kind)
	}
	isRequest := kind == registry.KindRequest
	return handshake.CheckOutbound(e.outboundState(isRequest), method, isRequest)
}

func (e *Engine) Notify(ctx context.Context, method lsp.Method, params any) error {
	if err := e.checkOutbound(method, registry.KindNotification); err != nil {
		return err
	}
	raw, err := e.codec.Encode(&codec.Notification{Method: method, Params: params})
	if err != nil {
		return err
	}
	return e.write(e.withConn(ctx), raw)
}

func (e *Engine) Call(ctx context.Context, method lsp.Method, params any) (any, error) {
	if err := e.checkOutbound(method, registry.KindRequest); err != nil {
		return nil, err
	}
	raw, err := e.codec.EncodeParamsFor(method, params)
	if err != nil {
		return nil, err
	}
	resp, err := e.out.Call(e.withConn(ctx), string(method), raw)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return e.codec.DecodeResult(method, resp.Result)
}

func (e *Engine) LogMessage(ctx context.Context, typ lsp.MessageType, message string) error {
	return e.Notify(ctx, lsp.MethodWindowLogMessage, &lsp.LogMessageParams{Type: typ, Message: message})
}

// LogTrace is a no-op while the trace value is off.
func (e *Engine) LogTrace(ctx context.Context, message, verbose string) error {
	trace := e.Trace()
	if trace == lsp.TraceOff {
		return nil
	}
	p := &lsp.LogTraceParams{Message: message}
	if trace == lsp.TraceVerbose && verbose != "" {
		p.Verbose = lsp.Some(verbose)
	}
	return e.Notify(ctx, lsp.MethodLogTrace, p)
}
