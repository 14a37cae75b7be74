package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ggoodman/lsp-server-go/codec"
	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/internal/logctx"
	"github.com/ggoodman/lsp-server-go/internal/outbound"
	"github.com/ggoodman/lsp-server-go/internal/procwatch"
	"github.com/ggoodman/lsp-server-go/jsonrpc"
	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/lspservice"
	"github.com/ggoodman/lsp-server-go/registry"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const defaultConcurrency = 4

var (
	// ErrClosed is returned once the engine has been closed.
	ErrClosed = errors.New("engine closed")
	// ErrInvalidDirection is returned when a handler tries to send a method
	// that only clients send.
	ErrInvalidDirection = errors.New("method cannot be sent by the server")
)

// Engine runs the protocol for one connection. Messages are fed to
// HandleMessage in arrival order; the engine applies the handshake, decodes
// payloads, dispatches them to the lspservice.Server and writes replies
// through the MessageWriter.
//
// Lifecycle messages and notifications are handled on the caller's
// goroutine. Other requests run concurrently, bounded by WithConcurrency.
type Engine struct {
	srv   lspservice.Server
	w     MessageWriter
	log   *slog.Logger
	id    string
	codec *codec.Codec
	hs    *handshake.Machine
	out   *outbound.Dispatcher

	concurrency   int
	sem           *semaphore.Weighted
	watchInterval time.Duration

	writeMu sync.Mutex

	reqs *inflight
	wg   sync.WaitGroup

	connData atomic.Pointer[logctx.ConnData]
	// initializing holds the params of an initialize request while the
	// server is answering it.
	initializing atomic.Pointer[lsp.InitializeParams]

	traceMu sync.Mutex
	trace   lsp.TraceValue

	bgCtx     context.Context
	bgCancel  context.CancelCauseFunc
	closeOnce sync.Once
}

var _ lspservice.Conn = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the Engine.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithConcurrency bounds the number of requests handled at once. Default 4.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithConnID overrides the generated connection id.
func WithConnID(id string) EngineOption {
	return func(e *Engine) {
		if id != "" {
			e.id = id
		}
	}
}

// WithProcessWatchInterval sets how often the client process named in
// initialize is polled. Zero or less disables the watch.
func WithProcessWatchInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.watchInterval = d }
}

// WithHandshake lets the caller own the lifecycle machine, for example to
// register exit hooks before the first message arrives.
func WithHandshake(m *handshake.Machine) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.hs = m
		}
	}
}

// New returns an engine that dispatches to srv and writes to w.
func New(srv lspservice.Server, w MessageWriter, opts ...EngineOption) *Engine {
	e := &Engine{
		srv:           srv,
		w:             w,
		log:           slog.Default(),
		id:            uuid.NewString(),
		hs:            handshake.NewMachine(),
		concurrency:   defaultConcurrency,
		watchInterval: procwatch.DefaultInterval,
		reqs:          newInflight(),
		trace:         lsp.TraceOff,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.codec = codec.New(srv.Registry())
	e.sem = semaphore.NewWeighted(int64(e.concurrency))
	e.out = outbound.New(transport{e})
	e.bgCtx, e.bgCancel = context.WithCancelCause(context.Background())
	e.connData.Store(&logctx.ConnData{ConnID: e.id, State: e.stateString})
	e.hs.OnExit(func(r handshake.ExitReport) {
		e.log.Info("engine.exit", slog.String("conn", e.id), slog.String("from", r.From.String()), slog.Bool("abnormal", r.Abnormal), slog.String("reason", r.Reason))
	})
	return e
}

func (e *Engine) stateString() string { return e.hs.State().String() }

// Handshake returns the lifecycle machine of the connection.
func (e *Engine) Handshake() *handshake.Machine { return e.hs }

// Done is closed when the connection reaches Exited.
func (e *Engine) Done() <-chan struct{} { return e.hs.Done() }

func (e *Engine) withConn(ctx context.Context) context.Context {
	return logctx.WithConnData(ctx, e.connData.Load())
}

// HandleMessage processes one framed message. Protocol errors are answered
// or logged and never returned; the returned error means the reply could
// not be written and the connection is unusable.
func (e *Engine) HandleMessage(ctx context.Context, data []byte) error {
	ctx = e.withConn(ctx)

	var env jsonrpc.AnyMessage
	if err := json.Unmarshal(data, &env); err != nil {
		e.log.InfoContext(ctx, "engine.handle_message.invalid", slog.String("err", err.Error()))
		code := jsonrpc.ErrorCodeInvalidRequest
		if !json.Valid(data) {
			code = jsonrpc.ErrorCodeParseError
		}
		// An id that survives a broken envelope is echoed; otherwise the
		// reply carries a null id.
		return e.writeResponse(ctx, jsonrpc.NewErrorResponse(jsonrpc.PeekID(data), code, err.Error(), nil))
	}

	switch env.Type() {
	case jsonrpc.TypeRequest:
		return e.handleRequest(ctx, &env)
	case jsonrpc.TypeNotification:
		e.handleNotification(ctx, &env)
		return nil
	default:
		e.handleResponse(ctx, &env)
		return nil
	}
}

func (e *Engine) handleRequest(ctx context.Context, env *jsonrpc.AnyMessage) error {
	start := time.Now()
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: env.Method, ID: env.ID.String(), Type: jsonrpc.TypeRequest})
	log := e.log.With(slog.String("method", env.Method))

	method := lsp.Method(env.Method)
	ev := handshake.ClassifyRequest(method)
	if out := e.hs.Check(ev); out.Verdict != handshake.Accept {
		log.InfoContext(ctx, "engine.handle_request.rejected", slog.String("err", out.Err.Error()), slog.String("state", e.hs.State().String()))
		return e.replyError(ctx, env.ID, fmt.Errorf("%s: %w", method, out.Err))
	}

	msg, err := e.decode(env)
	if err != nil {
		log.InfoContext(ctx, "engine.handle_request.invalid", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return e.replyError(ctx, env.ID, err)
	}
	req := msg.(*codec.Request)

	switch ev {
	case handshake.EventInitializeRequest:
		return e.handleInitialize(ctx, log, start, req)
	case handshake.EventShutdownRequest:
		return e.handleShutdown(ctx, log, start, req)
	}

	if out := e.hs.Apply(ev); out.Verdict != handshake.Accept {
		return e.replyError(ctx, req.ID, fmt.Errorf("%s: %w", method, out.Err))
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	key := req.ID.Key()
	if !e.reqs.add(key, cancel) {
		cancel(nil)
		log.InfoContext(ctx, "engine.handle_request.invalid", slog.String("err", "duplicate request id"))
		return e.replyError(ctx, req.ID, jsonrpc.NewError(jsonrpc.ErrorCodeInvalidRequest, "duplicate request id "+req.ID.String()))
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.reqs.remove(key)
		defer cancel(nil)

		var (
			res any
			err error
		)
		// Waiting for a slot happens off the read loop so responses to
		// outbound calls and $/cancelRequest keep flowing.
		if err = e.sem.Acquire(reqCtx, 1); err == nil {
			res, err = e.srv.HandleRequest(reqCtx, e, req.Method, req.Params)
			e.sem.Release(1)
		}
		if err == nil && reqCtx.Err() != nil {
			err = reqCtx.Err()
		}
		if err != nil {
			if reqCtx.Err() != nil {
				err = cancellationError(reqCtx)
				log.InfoContext(reqCtx, "engine.handle_request.cancelled", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
			} else if errors.Is(err, lspservice.ErrMethodNotFound) {
				log.InfoContext(reqCtx, "engine.handle_request.unsupported", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
			} else {
				log.ErrorContext(reqCtx, "engine.handle_request.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
			}
			if werr := e.replyError(ctx, req.ID, err); werr != nil {
				log.ErrorContext(ctx, "engine.write.fail", slog.String("err", werr.Error()))
			}
			return
		}

		log.InfoContext(reqCtx, "engine.handle_request.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		if werr := e.replyResult(ctx, req.ID, res); werr != nil {
			log.ErrorContext(ctx, "engine.write.fail", slog.String("err", werr.Error()))
		}
	}()
	return nil
}

// decode lifts env to a typed message, refusing methods the client is not
// allowed to send.
func (e *Engine) decode(env *jsonrpc.AnyMessage) (codec.Message, error) {
	msg, err := e.codec.DecodeMessage(env)
	if err != nil {
		return nil, err
	}
	s, err := e.codec.Registry().Lookup(lsp.Method(env.Method))
	if err != nil {
		return nil, err
	}
	if s.Direction == registry.ServerToClient {
		return nil, &registry.UnknownMethodError{Method: s.Method}
	}
	return msg, nil
}

func (e *Engine) handleInitialize(ctx context.Context, log *slog.Logger, start time.Time, req *codec.Request) error {
	params := req.Params.(*lsp.InitializeParams)

	e.initializing.Store(params)
	res, err := e.srv.Initialize(ctx, e, params)
	e.initializing.Store(nil)
	if err != nil {
		// The state is left untouched so the client may retry.
		log.ErrorContext(ctx, "engine.handle_request.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return e.replyError(ctx, req.ID, err)
	}
	if res == nil {
		res = &lsp.InitializeResult{}
	}

	if out := e.hs.Initialize(params); out.Verdict != handshake.Accept {
		return e.replyError(ctx, req.ID, fmt.Errorf("%s: %w", req.Method, out.Err))
	}
	if err := e.hs.Respond(res); err != nil {
		return e.replyError(ctx, req.ID, err)
	}
	e.setTrace(params.EffectiveTrace())

	cd := &logctx.ConnData{ConnID: e.id, State: e.stateString}
	if ci, ok := params.ClientInfo.Get(); ok {
		cd.Client = ci.Name
	}
	e.connData.Store(cd)
	ctx = logctx.WithConnData(ctx, cd)

	if pid, ok := params.ProcessID.Get(); ok && e.watchInterval > 0 {
		e.watchProcess(pid)
	}

	log.InfoContext(ctx, "engine.handle_request.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return e.replyResult(ctx, req.ID, res)
}

// watchProcess forces the session to exit once the client process is gone.
func (e *Engine) watchProcess(pid int) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithCancel(e.bgCtx)
		defer cancel()
		go func() {
			select {
			case <-e.hs.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
		if procwatch.Watch(ctx, pid, e.watchInterval) {
			e.log.Warn("engine.procwatch.gone", slog.String("conn", e.id), slog.Int("pid", pid))
			e.hs.ForceExit(fmt.Sprintf("client process %d exited", pid))
		}
	}()
}

func (e *Engine) handleShutdown(ctx context.Context, log *slog.Logger, start time.Time, req *codec.Request) error {
	if out := e.hs.Apply(handshake.EventShutdownRequest); out.Verdict != handshake.Accept {
		return e.replyError(ctx, req.ID, fmt.Errorf("%s: %w", req.Method, out.Err))
	}
	if err := e.srv.Shutdown(ctx, e); err != nil {
		// Shutdown has been accepted; the failure is reported but the
		// session stays in ShuttingDown.
		log.ErrorContext(ctx, "engine.handle_request.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return e.replyError(ctx, req.ID, err)
	}
	log.InfoContext(ctx, "engine.handle_request.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return e.replyResult(ctx, req.ID, nil)
}

func (e *Engine) handleNotification(ctx context.Context, env *jsonrpc.AnyMessage) {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: env.Method, Type: jsonrpc.TypeNotification})
	log := e.log.With(slog.String("method", env.Method))

	method := lsp.Method(env.Method)
	ev := handshake.ClassifyNotification(method)
	if out := e.hs.Check(ev); out.Verdict != handshake.Accept {
		if out.Err != nil {
			log.InfoContext(ctx, "engine.handle_notification.dropped", slog.String("err", out.Err.Error()), slog.String("state", e.hs.State().String()))
		}
		return
	}

	msg, err := e.decode(env)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownMethod) && method.IsImplementationDependent() {
			log.DebugContext(ctx, "engine.handle_notification.ignored")
			return
		}
		log.InfoContext(ctx, "engine.handle_notification.invalid", slog.String("err", err.Error()))
		return
	}
	n := msg.(*codec.Notification)

	switch method {
	case lsp.MethodExit:
		e.hs.Apply(handshake.EventExitNotification)
		return
	case lsp.MethodInitialized:
		if out := e.hs.Apply(ev); out.Verdict != handshake.Accept {
			return
		}
		if err := e.srv.Initialized(ctx, e); err != nil {
			log.ErrorContext(ctx, "engine.handle_notification.fail", slog.String("err", err.Error()))
		}
		return
	}

	if out := e.hs.Apply(ev); out.Verdict != handshake.Accept {
		return
	}

	switch p := n.Params.(type) {
	case *lsp.CancelParams:
		if !e.reqs.cancel(p.ID.Key(), errRequestCancelled) {
			log.DebugContext(ctx, "engine.cancel.unknown", slog.String("id", p.ID.String()))
		}
		return
	case *lsp.SetTraceParams:
		e.setTrace(p.Value)
		return
	}

	if err := e.srv.HandleNotification(ctx, e, method, n.Params); err != nil {
		if errors.Is(err, lspservice.ErrMethodNotFound) {
			log.DebugContext(ctx, "engine.handle_notification.unsupported")
			return
		}
		log.ErrorContext(ctx, "engine.handle_notification.fail", slog.String("err", err.Error()))
	}
}

func (e *Engine) handleResponse(ctx context.Context, env *jsonrpc.AnyMessage) {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{ID: env.ID.String(), Type: jsonrpc.TypeResponse})

	if out := e.hs.Apply(handshake.EventResponse); out.Verdict != handshake.Accept {
		e.log.InfoContext(ctx, "engine.handle_response.dropped", slog.String("state", e.hs.State().String()))
		return
	}
	if !e.out.OnResponse(env.AsResponse()) {
		e.log.InfoContext(ctx, "engine.handle_response.unmatched")
	}
}

func (e *Engine) replyResult(ctx context.Context, id *jsonrpc.RequestID, result any) error {
	raw, err := e.codec.Encode(&codec.Response{ID: id, Result: result})
	if err != nil {
		e.log.ErrorContext(ctx, "engine.encode.fail", slog.String("err", err.Error()))
		raw, err = e.codec.Encode(&codec.Response{ID: id, Error: jsonrpc.NewError(jsonrpc.ErrorCodeInternalError, "internal error")})
		if err != nil {
			return err
		}
	}
	return e.write(ctx, raw)
}

func (e *Engine) replyError(ctx context.Context, id *jsonrpc.RequestID, err error) error {
	return e.writeResponse(ctx, &jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, Error: rpcError(err), ID: id})
}

func (e *Engine) writeResponse(ctx context.Context, resp *jsonrpc.Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return e.write(ctx, raw)
}

func (e *Engine) write(ctx context.Context, raw json.RawMessage) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.w.WriteMessage(ctx, raw)
}

func (e *Engine) setTrace(v lsp.TraceValue) {
	e.traceMu.Lock()
	e.trace = v
	e.traceMu.Unlock()
}

// Inflight returns the number of requests currently being handled.
func (e *Engine) Inflight() int { return e.reqs.len() }

// Close cancels in-flight requests, fails pending server-to-client calls
// and stops the process watch. It does not change the lifecycle state.
func (e *Engine) Close(cause error) {
	e.closeOnce.Do(func() {
		if cause == nil {
			cause = ErrClosed
		}
		e.reqs.cancelAll(cause)
		e.out.Close(cause)
		e.bgCancel(cause)
	})
}

// Wait blocks until every request goroutine has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// transport adapts the engine's writer for the outbound dispatcher.
type transport struct{ e *Engine }

func (t transport) SendRequest(ctx context.Context, req *jsonrpc.Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return t.e.write(ctx, raw)
}

func (t transport) SendCancel(ctx context.Context, id *jsonrpc.RequestID) error {
	raw, err := t.e.codec.Encode(&codec.Notification{Method: lsp.MethodCancelRequest, Params: &lsp.CancelParams{ID: *id}})
	if err != nil {
		return err
	}
	return t.e.write(ctx, raw)
}
