package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// BoolOr is a member that is either a boolean or an options record, such as
// hoverProvider. The zero value is absent.
type BoolOr[T any] struct {
	options *T
	enabled bool
	set     bool
}

// BoolOption returns a BoolOr holding the boolean b.
func BoolOption[T any](b bool) BoolOr[T] {
	return BoolOr[T]{enabled: b, set: true}
}

// OptionsOf returns a BoolOr holding the options record o.
func OptionsOf[T any](o T) BoolOr[T] {
	return BoolOr[T]{options: &o, enabled: true, set: true}
}

// IsZero reports whether the member is absent.
func (u BoolOr[T]) IsZero() bool { return !u.set }

// Enabled reports whether the feature is on: true, or any options record.
func (u BoolOr[T]) Enabled() bool { return u.set && u.enabled }

// Options returns the options record when the member carried one.
func (u BoolOr[T]) Options() (T, bool) {
	if u.options == nil {
		var zero T
		return zero, false
	}
	return *u.options, true
}

func (u BoolOr[T]) MarshalJSON() ([]byte, error) {
	switch {
	case !u.set:
		return jsonNull, nil
	case u.options != nil:
		return json.Marshal(*u.options)
	default:
		return json.Marshal(u.enabled)
	}
}

func (u *BoolOr[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &json.UnmarshalTypeError{Value: "empty", Type: reflect.TypeFor[BoolOr[T]]()}
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*u = BoolOption[T](b)
		return nil
	case '{':
		var o T
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		*u = OptionsOf(o)
		return nil
	default:
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeFor[BoolOr[T]]()}
	}
}

func (BoolOr[T]) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "boolean"},
			inlineSchema[T](),
		},
	}
}

// TextDocumentSyncKind defines how the client syncs document changes.
type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

// SaveOptions configures didSave notifications.
type SaveOptions struct {
	IncludeText Optional[bool] `json:"includeText,omitzero"`

	Extra Extra `json:"-"`
}

func (c *SaveOptions) UnmarshalJSON(data []byte) error {
	type plain SaveOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c SaveOptions) MarshalJSON() ([]byte, error) {
	type plain SaveOptions
	return marshalOpen(plain(c), c.Extra)
}

// TextDocumentSyncOptions is the object form of textDocumentSync.
type TextDocumentSyncOptions struct {
	OpenClose         Optional[bool]                 `json:"openClose,omitzero"`
	Change            Optional[TextDocumentSyncKind] `json:"change,omitzero"`
	WillSave          Optional[bool]                 `json:"willSave,omitzero"`
	WillSaveWaitUntil Optional[bool]                 `json:"willSaveWaitUntil,omitzero"`
	Save              BoolOr[SaveOptions]            `json:"save,omitzero"`

	Extra Extra `json:"-"`
}

func (c *TextDocumentSyncOptions) UnmarshalJSON(data []byte) error {
	type plain TextDocumentSyncOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c TextDocumentSyncOptions) MarshalJSON() ([]byte, error) {
	type plain TextDocumentSyncOptions
	return marshalOpen(plain(c), c.Extra)
}

// TextDocumentSync is the textDocumentSync server capability: either a bare
// TextDocumentSyncKind or a TextDocumentSyncOptions record. The zero value is
// absent.
type TextDocumentSync struct {
	kind    TextDocumentSyncKind
	options *TextDocumentSyncOptions
	set     bool
}

// SyncKind returns a TextDocumentSync holding a bare kind.
func SyncKind(k TextDocumentSyncKind) TextDocumentSync {
	return TextDocumentSync{kind: k, set: true}
}

// SyncOptions returns a TextDocumentSync holding an options record.
func SyncOptions(o TextDocumentSyncOptions) TextDocumentSync {
	return TextDocumentSync{options: &o, set: true}
}

func (s TextDocumentSync) IsZero() bool { return !s.set }

// Kind returns the effective change kind. For the options form it is the
// change member, defaulting to None.
func (s TextDocumentSync) Kind() TextDocumentSyncKind {
	if s.options != nil {
		return s.options.Change.ValueOr(TextDocumentSyncKindNone)
	}
	return s.kind
}

// Options returns the options record when the member carried one.
func (s TextDocumentSync) Options() (TextDocumentSyncOptions, bool) {
	if s.options == nil {
		return TextDocumentSyncOptions{}, false
	}
	return *s.options, true
}

func (s TextDocumentSync) MarshalJSON() ([]byte, error) {
	switch {
	case !s.set:
		return jsonNull, nil
	case s.options != nil:
		return json.Marshal(*s.options)
	default:
		return json.Marshal(s.kind)
	}
}

func (s *TextDocumentSync) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var o TextDocumentSyncOptions
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		*s = SyncOptions(o)
		return nil
	}
	var k TextDocumentSyncKind
	if err := json.Unmarshal(data, &k); err != nil || isJSONNull(data) {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeFor[TextDocumentSync]()}
	}
	*s = SyncKind(k)
	return nil
}

func (TextDocumentSync) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer"},
			inlineSchema[TextDocumentSyncOptions](),
		},
	}
}

// jsonKind names the JSON type of a raw value for error messages.
func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case 'n':
		return "null"
	case 't', 'f':
		return "bool"
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return fmt.Sprintf("number %s", data)
	}
}
