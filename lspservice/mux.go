package lspservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/registry"
)

// RequestHandlerFunc answers a request. params is a pointer to the
// registered params type, or nil for methods without params.
type RequestHandlerFunc func(ctx context.Context, conn Conn, params any) (any, error)

// NotificationHandlerFunc handles a notification.
type NotificationHandlerFunc func(ctx context.Context, conn Conn, params any) error

// Mux routes feature methods to typed handlers and builds the registry that
// describes them. Register everything before the first call to Registry;
// the registry is immutable from then on.
type Mux struct {
	mu            sync.Mutex
	entries       []registry.Entry
	requests      map[lsp.Method]RequestHandlerFunc
	notifications map[lsp.Method]NotificationHandlerFunc
	reg           *registry.Registry
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{
		requests:      make(map[lsp.Method]RequestHandlerFunc),
		notifications: make(map[lsp.Method]NotificationHandlerFunc),
	}
}

// Register adds schemas without handlers, typically server-to-client methods
// the server sends through Conn.Notify or Conn.Call.
func (m *Mux) Register(entries ...registry.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeOpen()
	m.entries = append(m.entries, entries...)
}

func (m *Mux) mustBeOpen() {
	if m.reg != nil {
		panic("lspservice: Mux modified after its registry was built")
	}
}

// Handle registers fn for the request described by info.
func Handle[P, R any](m *Mux, info registry.RequestInfo[P, R], fn func(ctx context.Context, conn Conn, params *P) (R, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeOpen()
	m.entries = append(m.entries, info.Entry())
	m.requests[info.Method] = func(ctx context.Context, conn Conn, params any) (any, error) {
		p, err := paramsAs[P](info.Method, params)
		if err != nil {
			return nil, err
		}
		res, err := fn(ctx, conn, p)
		if _, void := any(res).(registry.Void); void {
			// Void results are sent as null.
			return nil, err
		}
		return res, err
	}
}

// HandleNotification registers fn for the notification described by info.
func HandleNotification[P any](m *Mux, info registry.NotificationInfo[P], fn func(ctx context.Context, conn Conn, params *P) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeOpen()
	m.entries = append(m.entries, info.Entry())
	m.notifications[info.Method] = func(ctx context.Context, conn Conn, params any) error {
		p, err := paramsAs[P](info.Method, params)
		if err != nil {
			return err
		}
		return fn(ctx, conn, p)
	}
}

func paramsAs[P any](method lsp.Method, params any) (*P, error) {
	if params == nil {
		return new(P), nil
	}
	p, ok := params.(*P)
	if !ok {
		return nil, fmt.Errorf("%s: params of type %T, want %T", method, params, (*P)(nil))
	}
	return p, nil
}

// Registry returns the builtin methods plus everything registered on m.
func (m *Mux) Registry() *registry.Registry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reg == nil {
		m.reg = registry.New(append(registry.Builtin(), m.entries...)...)
	}
	return m.reg
}

// ServeRequest calls the handler registered for method.
func (m *Mux) ServeRequest(ctx context.Context, conn Conn, method lsp.Method, params any) (any, error) {
	m.mu.Lock()
	fn, ok := m.requests[method]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
	return fn(ctx, conn, params)
}

// ServeNotification calls the handler registered for method.
func (m *Mux) ServeNotification(ctx context.Context, conn Conn, method lsp.Method, params any) error {
	m.mu.Lock()
	fn, ok := m.notifications[method]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
	return fn(ctx, conn, params)
}
