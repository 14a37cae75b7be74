package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/lsp-server-go/jsonrpc"
)

// Transport sends server-initiated messages to the client.
type Transport interface {
	// SendRequest emits req. The dispatcher has registered the pending call
	// before SendRequest runs, so a fast response is never missed.
	SendRequest(ctx context.Context, req *jsonrpc.Request) error
	// SendCancel emits $/cancelRequest for id.
	SendCancel(ctx context.Context, id *jsonrpc.RequestID) error
}

var (
	// ErrDispatcherClosed indicates the dispatcher is closed.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

type pendingCall struct {
	method string
	respCh chan *jsonrpc.Response
}

// Dispatcher correlates server-to-client requests with their responses.
// Request ids are allocated from a per-dispatcher counter, so they are unique
// for the lifetime of one connection.
type Dispatcher struct {
	t Transport

	mu      sync.Mutex
	pending map[string]*pendingCall // id.Key() -> call

	nextID atomic.Int64

	closed   atomic.Bool
	closeErr error
	done     chan struct{}
}

// New constructs a Dispatcher using the provided transport.
func New(t Transport) *Dispatcher {
	return &Dispatcher{t: t, pending: make(map[string]*pendingCall), done: make(chan struct{})}
}

// Call sends a request and waits for its response, the dispatcher closing, or
// ctx ending. When ctx ends first the client is sent $/cancelRequest and the
// late response, if any, is discarded.
func (d *Dispatcher) Call(ctx context.Context, method string, params json.RawMessage) (*jsonrpc.Response, error) {
	if d.closed.Load() {
		return nil, d.err()
	}

	id := jsonrpc.NewRequestID(d.nextID.Add(1))
	key := id.Key()

	pc := &pendingCall{method: method, respCh: make(chan *jsonrpc.Response, 1)}
	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		return nil, d.err()
	}
	d.pending[key] = pc
	d.mu.Unlock()

	req := &jsonrpc.Request{JSONRPCVersion: jsonrpc.ProtocolVersion, Method: method, Params: params, ID: id}
	if err := d.t.SendRequest(ctx, req); err != nil {
		d.forget(key)
		return nil, err
	}

	select {
	case resp := <-pc.respCh:
		return resp, nil
	case <-d.done:
		return nil, d.err()
	case <-ctx.Done():
		d.forget(key)
		_ = d.t.SendCancel(context.WithoutCancel(ctx), id)
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) forget(key string) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

func (d *Dispatcher) err() error {
	if d.closeErr != nil {
		return d.closeErr
	}
	return ErrDispatcherClosed
}

// OnResponse delivers an incoming response to a waiting call. It reports
// whether a call was waiting; unmatched responses are ignored.
func (d *Dispatcher) OnResponse(resp *jsonrpc.Response) bool {
	if resp == nil || resp.ID.IsNil() {
		return false
	}
	key := resp.ID.Key()
	d.mu.Lock()
	pc, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if ok {
		pc.respCh <- resp
	}
	return ok
}

// Pending returns the number of calls awaiting a response.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close fails all pending calls with err and prevents new calls.
func (d *Dispatcher) Close(err error) {
	if err == nil {
		err = ErrDispatcherClosed
	}
	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		return
	}
	d.closeErr = err
	d.closed.Store(true)
	for key := range d.pending {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	close(d.done)
}
