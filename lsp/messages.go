package lsp

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ggoodman/lsp-server-go/jsonrpc"
)

// DocumentURI is a URI identifying a document or workspace folder.
type DocumentURI string

// TraceValue controls the verbosity of $/logTrace notifications.
type TraceValue string

const (
	TraceOff      TraceValue = "off"
	TraceMessages TraceValue = "messages"
	TraceVerbose  TraceValue = "verbose"
)

// IsValid reports whether v is one of the protocol-defined trace values.
func (v TraceValue) IsValid() bool {
	switch v {
	case TraceOff, TraceMessages, TraceVerbose:
		return true
	default:
		return false
	}
}

func (v *TraceValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !TraceValue(s).IsValid() {
		return &json.UnmarshalTypeError{Value: fmt.Sprintf("string %q", s), Type: reflect.TypeFor[TraceValue]()}
	}
	*v = TraceValue(s)
	return nil
}

// ClientInfo identifies the client editor.
type ClientInfo struct {
	Name    string           `json:"name" jsonschema:"required"`
	Version Optional[string] `json:"version,omitzero"`
}

// ServerInfo identifies the language server.
type ServerInfo struct {
	Name    string           `json:"name" jsonschema:"required"`
	Version Optional[string] `json:"version,omitzero"`
}

// WorkspaceFolder is a root folder configured in the client.
type WorkspaceFolder struct {
	URI  DocumentURI `json:"uri" jsonschema:"required"`
	Name string      `json:"name" jsonschema:"required"`
}

// InitializeParams is the payload of the initialize request, the first
// request a client sends.
type InitializeParams struct {
	// ProcessID is the pid of the process that started the server. Null when
	// the server was started by another process and should not be monitored.
	ProcessID Nullable[int] `json:"processId,omitzero"`

	ClientInfo Optional[ClientInfo] `json:"clientInfo,omitzero"`
	Locale     Optional[string]     `json:"locale,omitzero"`

	// RootPath is deprecated in favour of RootURL.
	RootPath Nullable[string] `json:"rootPath,omitzero"`
	// RootURL takes precedence over RootPath.
	RootURL Nullable[DocumentURI] `json:"rootUri,omitzero"`

	// InitializationOptions are user-provided options, kept opaque.
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`

	Capabilities ClientCapabilities `json:"capabilities" jsonschema:"required"`

	// Trace is the initial trace setting. Absent and null both mean TraceOff;
	// see EffectiveTrace.
	Trace Nullable[TraceValue] `json:"trace,omitzero"`

	WorkspaceFolders Nullable[[]WorkspaceFolder] `json:"workspaceFolders,omitzero"`
}

// EffectiveTrace returns the trace value the server should apply.
func (p *InitializeParams) EffectiveTrace() TraceValue {
	return p.Trace.ValueOr(TraceOff)
}

// Root returns the workspace root, preferring rootUri over the deprecated
// rootPath. ok is false when neither is set.
func (p *InitializeParams) Root() (root string, ok bool) {
	if u, ok := p.RootURL.Get(); ok {
		return string(u), true
	}
	if path, ok := p.RootPath.Get(); ok {
		return path, true
	}
	return "", false
}

// InitializeResult is the server's answer to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities   `json:"capabilities" jsonschema:"required"`
	ServerInfo   Optional[ServerInfo] `json:"serverInfo,omitzero"`
}

// InitializedParams is the (empty) payload of the initialized notification.
type InitializedParams struct{}

// CancelParams is the payload of $/cancelRequest.
type CancelParams struct {
	ID jsonrpc.RequestID `json:"id" jsonschema:"required"`
}

// SetTraceParams is the payload of $/setTrace.
type SetTraceParams struct {
	Value TraceValue `json:"value" jsonschema:"required"`
}

// LogTraceParams is the payload of $/logTrace.
type LogTraceParams struct {
	Message string           `json:"message" jsonschema:"required"`
	Verbose Optional[string] `json:"verbose,omitzero"`
}

// ProgressParams is the payload of $/progress. Value is interpreted by the
// party that created the token.
type ProgressParams struct {
	Token jsonrpc.RequestID `json:"token" jsonschema:"required"`
	Value json.RawMessage   `json:"value" jsonschema:"required"`
}

// MessageType is the severity of a window message.
type MessageType int

const (
	MessageTypeError   MessageType = 1
	MessageTypeWarning MessageType = 2
	MessageTypeInfo    MessageType = 3
	MessageTypeLog     MessageType = 4
	MessageTypeDebug   MessageType = 5
)

// LogMessageParams is the payload of window/logMessage.
type LogMessageParams struct {
	Type    MessageType `json:"type" jsonschema:"required"`
	Message string      `json:"message" jsonschema:"required"`
}

// ShowMessageParams is the payload of window/showMessage.
type ShowMessageParams struct {
	Type    MessageType `json:"type" jsonschema:"required"`
	Message string      `json:"message" jsonschema:"required"`
}

// MessageActionItem is a button offered by window/showMessageRequest.
type MessageActionItem struct {
	Title string `json:"title" jsonschema:"required"`
}

// ShowMessageRequestParams is the payload of window/showMessageRequest.
type ShowMessageRequestParams struct {
	Type    MessageType         `json:"type" jsonschema:"required"`
	Message string              `json:"message" jsonschema:"required"`
	Actions []MessageActionItem `json:"actions,omitempty"`
}
