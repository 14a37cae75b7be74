package lspservice

import (
	"context"
	"errors"
	"testing"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hoverParams struct {
	URI  lsp.DocumentURI `json:"uri" jsonschema:"required"`
	Line int             `json:"line"`
}

type hoverResult struct {
	Contents string `json:"contents"`
}

var (
	hoverMethod = registry.RequestInfo[hoverParams, lsp.Nullable[hoverResult]]{Method: "textDocument/hover"}
	pingMethod  = registry.RequestInfo[registry.Void, registry.Void]{Method: "test/ping"}
	openMethod  = registry.NotificationInfo[hoverParams]{Method: "textDocument/didOpen"}
	pushMethod  = registry.NotificationInfo[hoverParams]{Method: "test/push", Direction: registry.ServerToClient}
)

func TestMux_RoutesTypedHandlers(t *testing.T) {
	m := NewMux()
	Handle(m, hoverMethod, func(ctx context.Context, conn Conn, p *hoverParams) (lsp.Nullable[hoverResult], error) {
		if p.Line < 0 {
			return lsp.Null[hoverResult](), nil
		}
		return lsp.NewNullable(hoverResult{Contents: string(p.URI)}), nil
	})
	var opened []lsp.DocumentURI
	HandleNotification(m, openMethod, func(ctx context.Context, conn Conn, p *hoverParams) error {
		opened = append(opened, p.URI)
		return nil
	})

	res, err := m.ServeRequest(context.Background(), nil, "textDocument/hover", &hoverParams{URI: "file:///a"})
	require.NoError(t, err)
	got, ok := res.(lsp.Nullable[hoverResult]).Get()
	require.True(t, ok)
	assert.Equal(t, "file:///a", got.Contents)

	require.NoError(t, m.ServeNotification(context.Background(), nil, "textDocument/didOpen", &hoverParams{URI: "file:///b"}))
	assert.Equal(t, []lsp.DocumentURI{"file:///b"}, opened)
}

func TestMux_WrongParamsType(t *testing.T) {
	m := NewMux()
	Handle(m, hoverMethod, func(ctx context.Context, conn Conn, p *hoverParams) (lsp.Nullable[hoverResult], error) {
		return lsp.Nullable[hoverResult]{}, nil
	})
	_, err := m.ServeRequest(context.Background(), nil, "textDocument/hover", &hoverResult{})
	assert.Error(t, err)
}

func TestMux_VoidResultIsNull(t *testing.T) {
	m := NewMux()
	Handle(m, pingMethod, func(ctx context.Context, conn Conn, _ *registry.Void) (registry.Void, error) {
		return registry.Void{}, nil
	})
	res, err := m.ServeRequest(context.Background(), nil, "test/ping", nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestMux_MethodNotFound(t *testing.T) {
	m := NewMux()
	_, err := m.ServeRequest(context.Background(), nil, "textDocument/hover", nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)
	assert.ErrorIs(t, m.ServeNotification(context.Background(), nil, "textDocument/didOpen", nil), ErrMethodNotFound)
}

func TestMux_Registry(t *testing.T) {
	m := NewMux()
	Handle(m, hoverMethod, func(ctx context.Context, conn Conn, p *hoverParams) (lsp.Nullable[hoverResult], error) {
		return lsp.Nullable[hoverResult]{}, nil
	})
	m.Register(pushMethod.Entry())

	reg := m.Registry()
	assert.Same(t, reg, m.Registry())

	s, err := reg.Lookup("textDocument/hover")
	require.NoError(t, err)
	assert.Equal(t, []string{"uri"}, s.RequiredKeys())

	s, err = reg.Lookup("test/push")
	require.NoError(t, err)
	assert.Equal(t, registry.ServerToClient, s.Direction)

	_, err = reg.Lookup(lsp.MethodInitialize)
	assert.NoError(t, err, "builtin methods are always registered")

	assert.Panics(t, func() { m.Register(openMethod.Entry()) })
}

func TestNewServer_Initialize(t *testing.T) {
	srv := NewServer(
		WithServerInfo(lsp.ServerInfo{Name: "srv", Version: lsp.Some("1.0")}),
		WithCapabilities(lsp.ServerCapabilities{HoverProvider: lsp.BoolOption[lsp.HoverOptions](true)}),
	)

	res, err := srv.Initialize(context.Background(), nil, &lsp.InitializeParams{})
	require.NoError(t, err)
	assert.True(t, res.Capabilities.HoverProvider.Enabled())
	info, ok := res.ServerInfo.Get()
	require.True(t, ok)
	assert.Equal(t, "srv", info.Name)

	_, err = srv.HandleRequest(context.Background(), nil, "textDocument/hover", nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestNewServer_LifecycleHooks(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	srv := NewServer(
		WithCapabilitiesProvider(func(ctx context.Context, conn Conn) (lsp.ServerCapabilities, error) {
			calls = append(calls, "caps")
			return lsp.ServerCapabilities{}, nil
		}),
		WithInitializedFunc(func(ctx context.Context, conn Conn) error {
			calls = append(calls, "initialized")
			return nil
		}),
		WithShutdownFunc(func(ctx context.Context, conn Conn) error {
			calls = append(calls, "shutdown")
			return boom
		}),
	)

	_, err := srv.Initialize(context.Background(), nil, &lsp.InitializeParams{})
	require.NoError(t, err)
	require.NoError(t, srv.Initialized(context.Background(), nil))
	assert.ErrorIs(t, srv.Shutdown(context.Background(), nil), boom)
	assert.Equal(t, []string{"caps", "initialized", "shutdown"}, calls)
}
