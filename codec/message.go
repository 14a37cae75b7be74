package codec

import (
	"encoding/json"

	"github.com/ggoodman/lsp-server-go/jsonrpc"
	"github.com/ggoodman/lsp-server-go/lsp"
)

// Kind tags a Message.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindNotification
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return jsonrpc.TypeRequest
	case KindNotification:
		return jsonrpc.TypeNotification
	case KindResponse:
		return jsonrpc.TypeResponse
	default:
		return "unknown"
	}
}

// Message is a typed protocol message: *Request, *Notification or *Response.
type Message interface {
	Kind() Kind
	isMessage()
}

// Request is a decoded request. Params is a pointer to the registered params
// type, or nil for methods without params.
type Request struct {
	ID     *jsonrpc.RequestID
	Method lsp.Method
	Params any
}

func (*Request) Kind() Kind { return KindRequest }
func (*Request) isMessage() {}

// Notification is a decoded notification.
type Notification struct {
	Method lsp.Method
	Params any
}

func (*Notification) Kind() Kind { return KindNotification }
func (*Notification) isMessage() {}

// Response answers a request. Exactly one of Result and Error is meaningful.
//
// On decode, Result is the raw JSON: the method is only known to whoever sent
// the request, which passes it to DecodeResult. On encode, Result is any
// value, and nil encodes as null.
type Response struct {
	ID     *jsonrpc.RequestID
	Result any
	Error  *jsonrpc.Error
}

func (*Response) Kind() Kind { return KindResponse }
func (*Response) isMessage() {}

// RawResult returns the undecoded result of a decoded response.
func (r *Response) RawResult() json.RawMessage {
	raw, _ := r.Result.(json.RawMessage)
	return raw
}
