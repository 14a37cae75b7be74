package lsp

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

var jsonNull = []byte("null")

type customSchema interface {
	JSONSchema() *jsonschema.Schema
}

var customSchemaType = reflect.TypeFor[customSchema]()

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

// Optional is a member that may be omitted from the wire. Absence is its zero
// value; tag the field with `omitzero` so absent values are not emitted.
// JSON null is not a legal Optional value and fails to decode.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool { return o.set }

// IsZero reports whether the member is absent.
func (o Optional[T]) IsZero() bool { return !o.set }

// ValueOr returns the value if present and def otherwise.
func (o Optional[T]) ValueOr(def T) T {
	if o.set {
		return o.value
	}
	return def
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		// Only reachable when the field lacks omitzero.
		return jsonNull, nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeFor[T]()}
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

func (Optional[T]) JSONSchema() *jsonschema.Schema {
	return inlineSchema[T]()
}

type nullState uint8

const (
	stateAbsent nullState = iota
	stateNull
	statePresent
)

// Nullable is a member that may be absent, explicitly null, or carry a value.
// The three cases stay distinct through a decode/encode round trip. Absence is
// the zero value; tag the field with `omitzero`.
type Nullable[T any] struct {
	value T
	state nullState
}

// NewNullable returns a Nullable holding v.
func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, state: statePresent}
}

// Null returns an explicitly null Nullable.
func Null[T any]() Nullable[T] {
	return Nullable[T]{state: stateNull}
}

// Get returns the value and whether a non-null value is present.
func (n Nullable[T]) Get() (T, bool) { return n.value, n.state == statePresent }

// IsNull reports whether the member was explicitly null.
func (n Nullable[T]) IsNull() bool { return n.state == stateNull }

// IsSet reports whether the member is present on the wire, null or not.
func (n Nullable[T]) IsSet() bool { return n.state != stateAbsent }

// IsZero reports whether the member is absent.
func (n Nullable[T]) IsZero() bool { return n.state == stateAbsent }

// ValueOr returns the value if present and def when absent or null.
func (n Nullable[T]) ValueOr(def T) T {
	if n.state == statePresent {
		return n.value
	}
	return def
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.state != statePresent {
		return jsonNull, nil
	}
	return json.Marshal(n.value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		var zero T
		n.value, n.state = zero, stateNull
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value, n.state = v, statePresent
	return nil
}

func (Nullable[T]) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			inlineSchema[T](),
			{Type: "null"},
		},
	}
}

func inlineSchema[T any]() *jsonschema.Schema {
	return ReflectSchema(reflect.TypeFor[T]())
}

// ReflectSchema reflects t into an inline JSON Schema. Struct members are
// required only when tagged `jsonschema:"required"`.
func ReflectSchema(t reflect.Type) *jsonschema.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Implements(customSchemaType) {
		return reflect.Zero(t).Interface().(customSchema).JSONSchema()
	}
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
	s := r.ReflectFromType(t)
	s.Version = ""
	s.ID = ""
	return s
}
