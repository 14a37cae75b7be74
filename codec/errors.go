package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ggoodman/lsp-server-go/lsp"
)

var (
	// ErrMalformedPayload is matched by every *MalformedPayloadError.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMissingField is the cause of a MalformedPayloadError for a required
	// member that was not sent.
	ErrMissingField = errors.New("missing required field")
	// ErrKindMismatch reports a request sent for a notification method or the
	// other way round.
	ErrKindMismatch = errors.New("message kind does not match method")
)

// MalformedPayloadError reports a payload whose JSON does not fit the
// registered shape. Path is the dotted wire path of the offending member, or
// empty when the payload as a whole is wrong.
type MalformedPayloadError struct {
	Method lsp.Method
	Path   string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed %s payload: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("malformed %s payload at %q: %v", e.Method, e.Path, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

// malformed converts a decoding error into a MalformedPayloadError, keeping
// the field path encoding/json reports.
func malformed(method lsp.Method, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &MalformedPayloadError{Method: method, Path: typeErr.Field, Err: err}
	}
	return &MalformedPayloadError{Method: method, Err: err}
}
