package lspservice

import (
	"context"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/registry"
)

// Server is the method dispatcher a connection hands accepted traffic to.
//
// Lifecycle methods are called on the connection's read loop, in order.
// HandleRequest may be called concurrently for different requests.
// HandleNotification is called on the read loop so that notifications are
// seen in the order they were sent.
type Server interface {
	// Registry returns the methods the server understands, including the
	// lifecycle methods.
	Registry() *registry.Registry

	Initialize(ctx context.Context, conn Conn, params *lsp.InitializeParams) (*lsp.InitializeResult, error)
	Initialized(ctx context.Context, conn Conn) error
	Shutdown(ctx context.Context, conn Conn) error

	// HandleRequest answers a feature request. params is a pointer to the
	// registered params type. Returning a *jsonrpc.Error controls the error
	// code sent to the client.
	HandleRequest(ctx context.Context, conn Conn, method lsp.Method, params any) (any, error)
	HandleNotification(ctx context.Context, conn Conn, method lsp.Method, params any) error
}

// ServerOption configures the Server built by NewServer.
type ServerOption func(*server)

type server struct {
	info         *lsp.ServerInfo
	caps         lsp.ServerCapabilities
	capsProvider func(ctx context.Context, conn Conn) (lsp.ServerCapabilities, error)

	onInitialized func(ctx context.Context, conn Conn) error
	onShutdown    func(ctx context.Context, conn Conn) error

	mux *Mux
}

// NewServer builds a Server from options. Without WithMux it answers every
// feature request with MethodNotFound.
func NewServer(opts ...ServerOption) Server {
	s := &server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.mux == nil {
		s.mux = NewMux()
	}
	return s
}

// WithServerInfo sets the serverInfo member of the initialize result.
func WithServerInfo(info lsp.ServerInfo) ServerOption {
	return func(s *server) { s.info = &info }
}

// WithCapabilities sets static server capabilities.
func WithCapabilities(caps lsp.ServerCapabilities) ServerOption {
	return func(s *server) { s.caps = caps }
}

// WithCapabilitiesProvider computes server capabilities per connection, for
// example from the client capabilities. It takes precedence over
// WithCapabilities.
func WithCapabilitiesProvider(fn func(ctx context.Context, conn Conn) (lsp.ServerCapabilities, error)) ServerOption {
	return func(s *server) { s.capsProvider = fn }
}

// WithInitializedFunc runs fn when the client completes the handshake.
func WithInitializedFunc(fn func(ctx context.Context, conn Conn) error) ServerOption {
	return func(s *server) { s.onInitialized = fn }
}

// WithShutdownFunc runs fn when the client requests shutdown.
func WithShutdownFunc(fn func(ctx context.Context, conn Conn) error) ServerOption {
	return func(s *server) { s.onShutdown = fn }
}

// WithMux routes feature requests and notifications through m.
func WithMux(m *Mux) ServerOption {
	return func(s *server) { s.mux = m }
}

func (s *server) Registry() *registry.Registry { return s.mux.Registry() }

func (s *server) Initialize(ctx context.Context, conn Conn, params *lsp.InitializeParams) (*lsp.InitializeResult, error) {
	caps := s.caps
	if s.capsProvider != nil {
		var err error
		if caps, err = s.capsProvider(ctx, conn); err != nil {
			return nil, err
		}
	}
	res := &lsp.InitializeResult{Capabilities: caps}
	if s.info != nil {
		res.ServerInfo = lsp.Some(*s.info)
	}
	return res, nil
}

func (s *server) Initialized(ctx context.Context, conn Conn) error {
	if s.onInitialized == nil {
		return nil
	}
	return s.onInitialized(ctx, conn)
}

func (s *server) Shutdown(ctx context.Context, conn Conn) error {
	if s.onShutdown == nil {
		return nil
	}
	return s.onShutdown(ctx, conn)
}

func (s *server) HandleRequest(ctx context.Context, conn Conn, method lsp.Method, params any) (any, error) {
	return s.mux.ServeRequest(ctx, conn, method, params)
}

func (s *server) HandleNotification(ctx context.Context, conn Conn, method lsp.Method, params any) error {
	return s.mux.ServeNotification(ctx, conn, method, params)
}
