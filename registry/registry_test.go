package registry

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lifecycle(t *testing.T) {
	tests := []struct {
		method lsp.Method
		kind   Kind
		params reflect.Type
		result reflect.Type
	}{
		{lsp.MethodInitialize, KindRequest, reflect.TypeFor[lsp.InitializeParams](), reflect.TypeFor[lsp.InitializeResult]()},
		{lsp.MethodInitialized, KindNotification, reflect.TypeFor[lsp.InitializedParams](), nil},
		{lsp.MethodShutdown, KindRequest, nil, nil},
		{lsp.MethodExit, KindNotification, nil, nil},
		{lsp.MethodCancelRequest, KindNotification, reflect.TypeFor[lsp.CancelParams](), nil},
		{lsp.MethodSetTrace, KindNotification, reflect.TypeFor[lsp.SetTraceParams](), nil},
	}

	for _, test := range tests {
		t.Run(string(test.method), func(t *testing.T) {
			s, err := Lookup(test.method)
			require.NoError(t, err)
			assert.Equal(t, test.method, s.Method)
			assert.Equal(t, test.kind, s.Kind)
			assert.Equal(t, test.params, s.Params)
			assert.Equal(t, test.result, s.Result)
			assert.Equal(t, test.kind == KindRequest, s.HasResponse())
		})
	}
}

func TestLookup_UnknownMethod(t *testing.T) {
	_, err := Lookup("textDocument/hover")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))

	var unknown *UnknownMethodError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, lsp.Method("textDocument/hover"), unknown.Method)
}

func TestSchema_RequiredKeys(t *testing.T) {
	s, err := Lookup(lsp.MethodInitialize)
	require.NoError(t, err)
	assert.Equal(t, []string{"capabilities"}, s.RequiredKeys())
	require.NotNil(t, s.ParamsSchema())
	require.NotNil(t, s.ResultSchema())
	assert.Contains(t, s.ResultSchema().Required, "capabilities")

	s, err = Lookup(lsp.MethodCancelRequest)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.RequiredKeys())

	s, err = Lookup(lsp.MethodShutdown)
	require.NoError(t, err)
	assert.Empty(t, s.RequiredKeys())
	assert.Nil(t, s.ParamsSchema())
	assert.Nil(t, s.NewParams())
}

func TestSchema_NewParams(t *testing.T) {
	s, err := Lookup(lsp.MethodInitialize)
	require.NoError(t, err)
	_, ok := s.NewParams().(*lsp.InitializeParams)
	assert.True(t, ok)
	_, ok = s.NewResult().(*lsp.InitializeResult)
	assert.True(t, ok)
}

type hoverParams struct {
	URI string `json:"uri" jsonschema:"required"`
}

type hoverResult struct {
	Contents string `json:"contents"`
}

func TestNew_Extension(t *testing.T) {
	hover := RequestInfo[hoverParams, lsp.Nullable[hoverResult]]{Method: "textDocument/hover"}
	r := New(append(Builtin(), hover.Entry())...)

	s, err := r.Lookup("textDocument/hover")
	require.NoError(t, err)
	assert.Equal(t, KindRequest, s.Kind)
	assert.Equal(t, ClientToServer, s.Direction)
	assert.Equal(t, []string{"uri"}, s.RequiredKeys())
	assert.Equal(t, Default().Len()+1, r.Len())
	assert.Contains(t, r.Methods(), lsp.Method("textDocument/hover"))

	// The default registry is unaffected.
	_, err = Lookup("textDocument/hover")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNew_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		New(Initialize.Entry(), Initialize.Entry())
	})
	assert.Panics(t, func() {
		New(NotificationInfo[Void]{Method: "exit"}.Entry(), Exit.Entry())
	})
}

func TestNew_PanicsOnInvalidEntry(t *testing.T) {
	assert.Panics(t, func() { New(Entry{Kind: KindRequest}) })
	assert.Panics(t, func() { New(Entry{Method: "x"}) })
	assert.Panics(t, func() {
		New(Entry{Method: "x", Kind: KindNotification, Result: reflect.TypeFor[int]()})
	})
}

func TestMethods_Sorted(t *testing.T) {
	methods := Default().Methods()
	assert.True(t, slices.IsSorted(methods))
	assert.Len(t, methods, len(Builtin()))
}
