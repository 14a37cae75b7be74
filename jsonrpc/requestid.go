package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// RequestID represents a JSON-RPC ID that can be either a string or a number.
//
// The ID keeps the exact JSON token it was decoded from so that a response
// carries the same representation back: a string "7" never turns into the
// number 7 or the other way round.
type RequestID struct {
	raw json.RawMessage
}

// NewRequestID creates a new RequestID from a string or an integer value.
// Unsupported types yield a nil-valued ID.
func NewRequestID(value any) *RequestID {
	switch v := value.(type) {
	case string:
		b, _ := json.Marshal(v)
		return &RequestID{raw: b}
	case int:
		return &RequestID{raw: []byte(strconv.FormatInt(int64(v), 10))}
	case int32:
		return &RequestID{raw: []byte(strconv.FormatInt(int64(v), 10))}
	case int64:
		return &RequestID{raw: []byte(strconv.FormatInt(v, 10))}
	case uint32:
		return &RequestID{raw: []byte(strconv.FormatUint(uint64(v), 10))}
	case uint64:
		return &RequestID{raw: []byte(strconv.FormatUint(v, 10))}
	case json.Number:
		return &RequestID{raw: []byte(v.String())}
	default:
		return &RequestID{}
	}
}

// String returns the string representation of the ID: the string value for
// string IDs and the decimal text for numeric IDs.
func (id *RequestID) String() string {
	if id.IsNil() {
		return ""
	}
	if id.IsString() {
		var s string
		if err := json.Unmarshal(id.raw, &s); err != nil {
			panic("unreachable: RequestID holds an invalid string token")
		}
		return s
	}
	return string(id.raw)
}

// Key returns a map key that distinguishes string IDs from numeric IDs with
// the same text.
func (id *RequestID) Key() string {
	if id.IsNil() {
		return ""
	}
	return string(id.raw)
}

// IsString reports whether the ID was transmitted as a JSON string.
func (id *RequestID) IsString() bool {
	return !id.IsNil() && id.raw[0] == '"'
}

// Value returns the underlying value: a string or a json.Number.
func (id *RequestID) Value() any {
	if id.IsNil() {
		return nil
	}
	if id.IsString() {
		return id.String()
	}
	return json.Number(id.raw)
}

// IsNil returns true if the ID is nil/empty.
func (id *RequestID) IsNil() bool {
	if id == nil {
		return true
	}
	return len(id.raw) == 0
}

// Equal reports whether both IDs carry the same value in the same representation.
func (id *RequestID) Equal(other *RequestID) bool {
	if id.IsNil() || other.IsNil() {
		return id.IsNil() && other.IsNil()
	}
	return bytes.Equal(id.raw, other.raw)
}

// MarshalJSON implements json.Marshaler
func (id RequestID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &json.UnmarshalTypeError{Value: "empty", Type: reflect.TypeFor[RequestID]()}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("JSON-RPC ID: %w", err)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("JSON-RPC ID: %w", err)
		}
	default:
		// Reported as a type error so decoders can name the offending member.
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeFor[RequestID]()}
	}

	id.raw = append(id.raw[:0], data...)
	return nil
}
