package lsp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCapabilities_ResidueRoundTrip(t *testing.T) {
	wire := `{
		"workspace": {"applyEdit": true, "futureWorkspaceThing": {"x": 1}},
		"textDocument": {
			"hover": {"contentFormat": ["markdown", "plaintext"]},
			"inlayHint": {"dynamicRegistration": true}
		},
		"general": {"positionEncodings": ["utf-8", "utf-16"]},
		"experimental": {"myExtension": true},
		"futureTopLevel": [1, 2, 3]
	}`

	var c ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(wire), &c))

	ws, ok := c.Workspace.Get()
	require.True(t, ok)
	assert.True(t, ws.ApplyEdit.ValueOr(false))
	raw, ok := ws.Extra.Get("futureWorkspaceThing")
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(raw))

	td, ok := c.TextDocument.Get()
	require.True(t, ok)
	_, ok = td.Extra.Get("inlayHint")
	assert.True(t, ok)

	_, ok = c.Extra.Get("futureTopLevel")
	assert.True(t, ok)
	assert.True(t, c.SupportsPositionEncoding(PositionEncodingUTF8))
	assert.False(t, c.SupportsPositionEncoding(PositionEncodingUTF32))

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(b))
}

func TestClientCapabilities_NestedResidueRoundTrip(t *testing.T) {
	wire := `{
		"textDocument": {
			"completion": {
				"dynamicRegistration": true,
				"completionList": {"itemDefaults": ["commitCharacters", "editRange"]},
				"completionItem": {
					"snippetSupport": true,
					"resolveSupport": {"properties": ["documentation", "detail"]}
				}
			},
			"hover": {"contentFormat": ["markdown"], "futureFlag": true},
			"synchronization": {"didSave": true, "willSaveNotebook": 1}
		},
		"workspace": {"workspaceEdit": {"documentChanges": true, "changeAnnotationSupport": {"groupsOnLabel": true}}},
		"window": {"showMessage": {"messageActionItem": {"additionalPropertiesSupport": true, "icons": false}}},
		"general": {"markdown": {"parser": "marked", "flavor": "gfm"}},
		"futureTop": 1
	}`

	var c ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(wire), &c))

	td, ok := c.TextDocument.Get()
	require.True(t, ok)
	completion, ok := td.Completion.Get()
	require.True(t, ok)
	raw, ok := completion.Extra.Get("completionList")
	require.True(t, ok)
	assert.JSONEq(t, `{"itemDefaults":["commitCharacters","editRange"]}`, string(raw))
	item, ok := completion.CompletionItem.Get()
	require.True(t, ok)
	assert.True(t, item.SnippetSupport.ValueOr(false))
	_, ok = item.Extra.Get("resolveSupport")
	assert.True(t, ok)
	hover, ok := td.Hover.Get()
	require.True(t, ok)
	_, ok = hover.Extra.Get("futureFlag")
	assert.True(t, ok)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(b))
}

func TestServerCapabilities_OptionsResidueRoundTrip(t *testing.T) {
	wire := `{
		"completionProvider": {"resolveProvider": true, "completionItem": {"labelDetailsSupport": true}},
		"hoverProvider": {"workDoneProgress": true, "futureHover": "x"},
		"textDocumentSync": {"openClose": true, "save": {"includeText": false, "futureSave": 2}}
	}`

	var c ServerCapabilities
	require.NoError(t, json.Unmarshal([]byte(wire), &c))
	hover, ok := c.HoverProvider.Options()
	require.True(t, ok)
	_, ok = hover.Extra.Get("futureHover")
	assert.True(t, ok)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(b))
}

func TestClientCapabilities_MemberCaseFolding(t *testing.T) {
	// encoding/json fills Workspace from "Workspace"; it must not also be
	// carried as residue and emitted twice.
	var c ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(`{"Workspace":{"applyEdit":true}}`), &c))
	assert.True(t, c.Workspace.IsSet())
	assert.Empty(t, c.Extra)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workspace":{"applyEdit":true}}`, string(b))
}

func TestClientCapabilities_EmptyStaysEmpty(t *testing.T) {
	var c ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(`{}`), &c))
	assert.Nil(t, c.Extra)
	assert.True(t, c.SupportsPositionEncoding(PositionEncodingUTF16))

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
}

func TestClientCapabilities_RejectsNull(t *testing.T) {
	var p InitializeParams
	err := json.Unmarshal([]byte(`{"capabilities":null}`), &p)
	require.Error(t, err)
	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "capabilities", typeErr.Field)
}

func TestServerCapabilities_Encode(t *testing.T) {
	c := ServerCapabilities{
		PositionEncoding: Some(PositionEncodingUTF16),
		TextDocumentSync: SyncKind(TextDocumentSyncKindIncremental),
		HoverProvider:    BoolOption[HoverOptions](true),
		CompletionProvider: Some(CompletionOptions{
			TriggerCharacters: Some([]string{"."}),
		}),
		ExecuteCommandProvider: Some(ExecuteCommandOptions{Commands: []string{"fix"}}),
		Extra: Extra{
			"inlayHintProvider": json.RawMessage(`true`),
			// Typed members win over residue with the same key.
			"hoverProvider": json.RawMessage(`false`),
		},
	}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"positionEncoding": "utf-16",
		"textDocumentSync": 2,
		"hoverProvider": true,
		"completionProvider": {"triggerCharacters": ["."]},
		"executeCommandProvider": {"commands": ["fix"]},
		"inlayHintProvider": true
	}`, string(b))

	var got ServerCapabilities
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, got.HoverProvider.Enabled())
	assert.Equal(t, TextDocumentSyncKindIncremental, got.TextDocumentSync.Kind())
	assert.Equal(t, Extra{"inlayHintProvider": json.RawMessage(`true`)}, got.Extra)
}

func TestInitializeResult_Encode(t *testing.T) {
	r := InitializeResult{
		ServerInfo: Some(ServerInfo{Name: "example", Version: Some("1.0.0")}),
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"capabilities":{},"serverInfo":{"name":"example","version":"1.0.0"}}`, string(b))
}
