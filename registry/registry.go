// Package registry maps LSP method names to payload schemas.
//
// A Registry is built once from a fixed list of entries and is read-only
// afterwards, so it can be shared by every connection without locking.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/invopop/jsonschema"
)

// Kind tells requests from notifications.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Direction records which side may originate a method.
type Direction int

const (
	ClientToServer Direction = iota + 1
	ServerToClient
	Both
)

func (d Direction) String() string {
	switch d {
	case ClientToServer:
		return "clientToServer"
	case ServerToClient:
		return "serverToClient"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ErrUnknownMethod is matched by every *UnknownMethodError.
var ErrUnknownMethod = errors.New("unknown method")

// UnknownMethodError reports a lookup of a method with no registered schema.
type UnknownMethodError struct {
	Method lsp.Method
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q", string(e.Method))
}

func (e *UnknownMethodError) Is(target error) bool { return target == ErrUnknownMethod }

// Schema describes the payload shapes of one method.
type Schema struct {
	Method    lsp.Method
	Kind      Kind
	Direction Direction

	// Params is the params payload type. Nil when the method takes no params.
	Params reflect.Type
	// Result is the response payload type. Nil for notifications and for
	// requests that answer with null.
	Result reflect.Type

	requiredKeys []string
	params       *jsonschema.Schema
	result       *jsonschema.Schema
}

// HasResponse reports whether the method expects exactly one response.
func (s Schema) HasResponse() bool { return s.Kind == KindRequest }

// RequiredKeys lists the wire keys the params object must carry.
func (s Schema) RequiredKeys() []string { return slices.Clone(s.requiredKeys) }

// ParamsSchema returns the JSON Schema of the params, or nil.
func (s Schema) ParamsSchema() *jsonschema.Schema { return s.params }

// ResultSchema returns the JSON Schema of the result, or nil.
func (s Schema) ResultSchema() *jsonschema.Schema { return s.result }

// NewParams allocates a zero params value, returning a pointer. It returns
// nil when the method takes no params.
func (s Schema) NewParams() any {
	if s.Params == nil {
		return nil
	}
	return reflect.New(s.Params).Interface()
}

// NewResult allocates a zero result value, returning a pointer. It returns
// nil when the method has no typed result.
func (s Schema) NewResult() any {
	if s.Result == nil {
		return nil
	}
	return reflect.New(s.Result).Interface()
}

// Entry is a registration: one method and its payload types.
type Entry struct {
	Method    lsp.Method
	Kind      Kind
	Direction Direction
	Params    reflect.Type
	Result    reflect.Type
}

// RequestInfo is a typed descriptor of a request. P and R are the params and
// result types; use Void for either side that carries nothing.
type RequestInfo[P, R any] struct {
	Method    lsp.Method
	Direction Direction
}

// Entry returns the registration for the request.
func (i RequestInfo[P, R]) Entry() Entry {
	return Entry{
		Method:    i.Method,
		Kind:      KindRequest,
		Direction: directionOr(i.Direction),
		Params:    payloadType[P](),
		Result:    payloadType[R](),
	}
}

// NotificationInfo is a typed descriptor of a notification with params P.
type NotificationInfo[P any] struct {
	Method    lsp.Method
	Direction Direction
}

// Entry returns the registration for the notification.
func (i NotificationInfo[P]) Entry() Entry {
	return Entry{
		Method:    i.Method,
		Kind:      KindNotification,
		Direction: directionOr(i.Direction),
		Params:    payloadType[P](),
	}
}

// Void marks a payload that is absent (params) or null (result).
type Void struct{}

func payloadType[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if t == reflect.TypeFor[Void]() {
		return nil
	}
	return t
}

func directionOr(d Direction) Direction {
	if d == 0 {
		return ClientToServer
	}
	return d
}

// Registry is an immutable method table.
type Registry struct {
	schemas map[lsp.Method]Schema
	methods []lsp.Method
}

// New builds a registry from entries. It panics when a method is registered
// twice or an entry is incomplete: registration is static, so both are
// programming errors.
func New(entries ...Entry) *Registry {
	r := &Registry{schemas: make(map[lsp.Method]Schema, len(entries))}
	for _, e := range entries {
		if e.Method == "" {
			panic("registry: entry without method")
		}
		if e.Kind != KindRequest && e.Kind != KindNotification {
			panic(fmt.Sprintf("registry: method %q has invalid kind %v", e.Method, e.Kind))
		}
		if e.Kind == KindNotification && e.Result != nil {
			panic(fmt.Sprintf("registry: notification %q declares a result", e.Method))
		}
		if _, dup := r.schemas[e.Method]; dup {
			panic(fmt.Sprintf("registry: method %q registered twice", e.Method))
		}
		r.schemas[e.Method] = compile(e)
		r.methods = append(r.methods, e.Method)
	}
	slices.Sort(r.methods)
	return r
}

func compile(e Entry) Schema {
	s := Schema{
		Method:    e.Method,
		Kind:      e.Kind,
		Direction: directionOr(e.Direction),
		Params:    e.Params,
		Result:    e.Result,
	}
	if e.Params != nil {
		s.params = lsp.ReflectSchema(e.Params)
		s.requiredKeys = slices.Clone(s.params.Required)
		slices.Sort(s.requiredKeys)
	}
	if e.Result != nil {
		s.result = lsp.ReflectSchema(e.Result)
	}
	return s
}

// Lookup returns the schema registered for method.
func (r *Registry) Lookup(method lsp.Method) (Schema, error) {
	s, ok := r.schemas[method]
	if !ok {
		return Schema{}, &UnknownMethodError{Method: method}
	}
	return s, nil
}

// Methods returns the registered method names in sorted order.
func (r *Registry) Methods() []lsp.Method {
	return slices.Clone(r.methods)
}

// Len returns the number of registered methods.
func (r *Registry) Len() int { return len(r.methods) }

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(Builtin()...)
})

// Default returns the process-wide registry of Builtin methods.
func Default() *Registry { return defaultRegistry() }

// Lookup resolves method against the default registry.
func Lookup(method lsp.Method) (Schema, error) {
	return Default().Lookup(method)
}
