// Package codec converts between typed LSP messages and their JSON-RPC wire
// form, using a registry to find the payload type of each method.
//
// A Codec holds nothing but its registry and is safe for concurrent use.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/ggoodman/lsp-server-go/jsonrpc"
	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/ggoodman/lsp-server-go/registry"
)

// Codec decodes and encodes payloads of the methods in its registry.
type Codec struct {
	reg *registry.Registry
}

// New returns a Codec for reg. A nil reg means registry.Default().
func New(reg *registry.Registry) *Codec {
	if reg == nil {
		reg = registry.Default()
	}
	return &Codec{reg: reg}
}

// Registry returns the registry the codec resolves methods against.
func (c *Codec) Registry() *registry.Registry { return c.reg }

// Decode decodes the params of method. It returns a pointer to the registered
// params type, or nil when the method takes none or the params are absent.
//
// Unknown members are ignored. A member of the wrong JSON type, or a missing
// required member, fails with a *MalformedPayloadError naming its path. An
// unregistered method fails with a *registry.UnknownMethodError.
func (c *Codec) Decode(method lsp.Method, raw json.RawMessage) (any, error) {
	s, err := c.reg.Lookup(method)
	if err != nil {
		return nil, err
	}
	return decodeParams(s, raw)
}

func decodeParams(s registry.Schema, raw json.RawMessage) (any, error) {
	if s.Params == nil {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if keys := s.RequiredKeys(); len(keys) > 0 {
			return nil, &MalformedPayloadError{Method: s.Method, Path: keys[0], Err: ErrMissingField}
		}
		// Absent params stay absent so they are not re-encoded as {}.
		return nil, nil
	}

	if s.Params.Kind() == reflect.Struct {
		if raw[0] != '{' {
			return nil, &MalformedPayloadError{Method: s.Method, Err: fmt.Errorf("params must be an object")}
		}
		if err := checkRequired(s, raw); err != nil {
			return nil, err
		}
	}

	v := s.NewParams()
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, malformed(s.Method, err)
	}
	return v, nil
}

func checkRequired(s registry.Schema, raw json.RawMessage) error {
	keys := s.RequiredKeys()
	if len(keys) == 0 {
		return nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return malformed(s.Method, err)
	}
	for _, k := range keys {
		if _, ok := members[k]; !ok {
			return &MalformedPayloadError{Method: s.Method, Path: k, Err: ErrMissingField}
		}
	}
	return nil
}

// DecodeResult decodes the result of a request previously sent for method.
// It returns nil for requests whose result is always null.
func (c *Codec) DecodeResult(method lsp.Method, raw json.RawMessage) (any, error) {
	s, err := c.reg.Lookup(method)
	if err != nil {
		return nil, err
	}
	if s.Kind != registry.KindRequest {
		return nil, fmt.Errorf("%w: %s is a %s", ErrKindMismatch, method, s.Kind)
	}
	if s.Result == nil {
		return nil, nil
	}
	v := s.NewResult()
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &MalformedPayloadError{Method: method, Err: errors.New("missing result")}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, malformed(method, err)
	}
	return v, nil
}

// DecodeMessage lifts a validated envelope to a typed message. Requests and
// notifications have their params decoded; responses keep the raw result.
func (c *Codec) DecodeMessage(env *jsonrpc.AnyMessage) (Message, error) {
	switch env.Type() {
	case jsonrpc.TypeResponse:
		resp := &Response{ID: env.ID, Error: env.Error}
		if env.Error == nil {
			resp.Result = env.Result
		}
		return resp, nil
	case jsonrpc.TypeRequest:
		method := lsp.Method(env.Method)
		s, err := c.lookupKind(method, registry.KindRequest)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(s, env.Params)
		if err != nil {
			return nil, err
		}
		return &Request{ID: env.ID, Method: method, Params: params}, nil
	default:
		method := lsp.Method(env.Method)
		s, err := c.lookupKind(method, registry.KindNotification)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(s, env.Params)
		if err != nil {
			return nil, err
		}
		return &Notification{Method: method, Params: params}, nil
	}
}

func (c *Codec) lookupKind(method lsp.Method, kind registry.Kind) (registry.Schema, error) {
	s, err := c.reg.Lookup(method)
	if err != nil {
		return registry.Schema{}, err
	}
	if s.Kind != kind {
		return registry.Schema{}, fmt.Errorf("%w: %s is a %s, received as a %s", ErrKindMismatch, method, s.Kind, kind)
	}
	return s, nil
}

// Encode renders msg as a complete JSON-RPC envelope. Params must be of the
// registered type (value or pointer). Absent optional members are omitted.
func (c *Codec) Encode(msg Message) (json.RawMessage, error) {
	switch m := msg.(type) {
	case *Request:
		if m.ID.IsNil() {
			return nil, fmt.Errorf("encode %s: request without id", m.Method)
		}
		params, err := c.encodeParams(m.Method, registry.KindRequest, m.Params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(&jsonrpc.Request{
			JSONRPCVersion: jsonrpc.ProtocolVersion,
			Method:         string(m.Method),
			Params:         params,
			ID:             m.ID,
		})
	case *Notification:
		params, err := c.encodeParams(m.Method, registry.KindNotification, m.Params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(jsonrpc.NewNotification(string(m.Method), params))
	case *Response:
		if m.Error != nil {
			return json.Marshal(&jsonrpc.Response{
				JSONRPCVersion: jsonrpc.ProtocolVersion,
				Error:          m.Error,
				ID:             m.ID,
			})
		}
		resp, err := jsonrpc.NewResultResponse(m.ID, m.Result)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", msg)
	}
}

// EncodeParamsFor marshals the params of an outgoing request or
// notification for method, checking them against the registered type.
func (c *Codec) EncodeParamsFor(method lsp.Method, params any) (json.RawMessage, error) {
	s, err := c.reg.Lookup(method)
	if err != nil {
		return nil, err
	}
	return encodeSchemaParams(s, params)
}

func (c *Codec) encodeParams(method lsp.Method, kind registry.Kind, params any) (json.RawMessage, error) {
	s, err := c.lookupKind(method, kind)
	if err != nil {
		return nil, err
	}
	return encodeSchemaParams(s, params)
}

func encodeSchemaParams(s registry.Schema, params any) (json.RawMessage, error) {
	method := s.Method
	if params == nil {
		return nil, nil
	}
	if s.Params == nil {
		return nil, fmt.Errorf("encode %s: method takes no params, got %T", method, params)
	}
	t := reflect.TypeOf(params)
	if t != s.Params && t != reflect.PointerTo(s.Params) {
		return nil, fmt.Errorf("encode %s: params must be %s, got %s", method, s.Params, t)
	}
	return EncodeParams(params)
}

// EncodeParams marshals a payload value. A nil value yields nil, meaning the
// params member is left out.
func EncodeParams(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return b, nil
}
