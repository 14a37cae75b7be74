package jsonrpc

import "fmt"

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// Codes reserved by the Language Server Protocol.
const (
	// ErrorCodeServerNotInitialized is returned for requests received before
	// the initialize handshake has completed.
	ErrorCodeServerNotInitialized ErrorCode = -32002
	// ErrorCodeUnknownErrorCode is the catch-all LSP error.
	ErrorCodeUnknownErrorCode ErrorCode = -32001
	// ErrorCodeRequestFailed indicates a syntactically valid request that failed.
	ErrorCodeRequestFailed ErrorCode = -32803
	// ErrorCodeServerCancelled indicates the server cancelled the request itself.
	ErrorCodeServerCancelled ErrorCode = -32802
	// ErrorCodeContentModified indicates document state changed under the request.
	ErrorCodeContentModified ErrorCode = -32801
	// ErrorCodeRequestCancelled indicates the client cancelled the request.
	ErrorCodeRequestCancelled ErrorCode = -32800
)

var codeNames = map[ErrorCode]string{
	ErrorCodeParseError:           "ParseError",
	ErrorCodeInvalidRequest:       "InvalidRequest",
	ErrorCodeMethodNotFound:       "MethodNotFound",
	ErrorCodeInvalidParams:        "InvalidParams",
	ErrorCodeInternalError:        "InternalError",
	ErrorCodeServerNotInitialized: "ServerNotInitialized",
	ErrorCodeUnknownErrorCode:     "UnknownErrorCode",
	ErrorCodeRequestFailed:        "RequestFailed",
	ErrorCodeServerCancelled:      "ServerCancelled",
	ErrorCodeContentModified:      "ContentModified",
	ErrorCodeRequestCancelled:     "RequestCancelled",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is a JSON-RPC error object. It doubles as a Go error so handlers can
// return protocol errors directly.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d (%s): %s", int(e.Code), e.Code, e.Message)
}

// NewError builds an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}
