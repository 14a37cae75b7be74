package lsp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeParams_RootURLRename(t *testing.T) {
	p := InitializeParams{RootURL: NewNullable(DocumentURI("file:///ws"))}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rootUri":"file:///ws","capabilities":{}}`, string(b))

	var got InitializeParams
	require.NoError(t, json.Unmarshal([]byte(`{"rootUri":"file:///other","capabilities":{}}`), &got))
	u, ok := got.RootURL.Get()
	require.True(t, ok)
	assert.Equal(t, DocumentURI("file:///other"), u)
}

func TestInitializeParams_AbsentVersusNull(t *testing.T) {
	var absent InitializeParams
	require.NoError(t, json.Unmarshal([]byte(`{"capabilities":{}}`), &absent))
	assert.False(t, absent.RootURL.IsSet())
	assert.False(t, absent.ProcessID.IsSet())

	var null InitializeParams
	require.NoError(t, json.Unmarshal([]byte(`{"rootUri":null,"processId":null,"capabilities":{}}`), &null))
	assert.True(t, null.RootURL.IsSet())
	assert.True(t, null.RootURL.IsNull())
	assert.True(t, null.ProcessID.IsNull())

	b, err := json.Marshal(null)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rootUri":null,"processId":null,"capabilities":{}}`, string(b))
}

func TestInitializeParams_Trace(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want TraceValue
	}{
		{name: "absent", wire: `{"capabilities":{}}`, want: TraceOff},
		{name: "null", wire: `{"trace":null,"capabilities":{}}`, want: TraceOff},
		{name: "verbose", wire: `{"trace":"verbose","capabilities":{}}`, want: TraceVerbose},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var p InitializeParams
			require.NoError(t, json.Unmarshal([]byte(test.wire), &p))
			assert.Equal(t, test.want, p.EffectiveTrace())

			b, err := json.Marshal(p)
			require.NoError(t, err)
			assert.JSONEq(t, test.wire, string(b))
		})
	}

	var p InitializeParams
	assert.Error(t, json.Unmarshal([]byte(`{"trace":"loud","capabilities":{}}`), &p))
}

func TestInitializeParams_Root(t *testing.T) {
	var p InitializeParams
	_, ok := p.Root()
	assert.False(t, ok)

	p.RootPath = NewNullable("/ws")
	root, ok := p.Root()
	require.True(t, ok)
	assert.Equal(t, "/ws", root)

	p.RootURL = NewNullable(DocumentURI("file:///ws"))
	root, _ = p.Root()
	assert.Equal(t, "file:///ws", root)
}

func TestInitializeParams_InitializationOptionsOpaque(t *testing.T) {
	wire := `{"initializationOptions":{"a":[1,2,{"b":null}]},"capabilities":{}}`
	var p InitializeParams
	require.NoError(t, json.Unmarshal([]byte(wire), &p))
	assert.JSONEq(t, `{"a":[1,2,{"b":null}]}`, string(p.InitializationOptions))

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(b))
}

func TestCancelParams_PreservesIDRepresentation(t *testing.T) {
	for _, wire := range []string{`{"id":5}`, `{"id":"5"}`} {
		var p CancelParams
		require.NoError(t, json.Unmarshal([]byte(wire), &p))
		b, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, wire, string(b))
	}
}

func TestMethod_IsImplementationDependent(t *testing.T) {
	assert.True(t, MethodCancelRequest.IsImplementationDependent())
	assert.True(t, Method("$/custom").IsImplementationDependent())
	assert.False(t, MethodInitialize.IsImplementationDependent())
}
