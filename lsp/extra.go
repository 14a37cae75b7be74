package lsp

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds the members of an open record that have no typed field. Values
// are kept verbatim and written back on encode so newer protocol features pass
// through untouched.
type Extra map[string]json.RawMessage

// Get returns the raw value stored under key.
func (e Extra) Get(key string) (json.RawMessage, bool) {
	v, ok := e[key]
	return v, ok
}

var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

// knownKeys returns the wire keys declared by the json tags of struct type t,
// lower-cased. encoding/json matches members to fields without regard to case,
// so membership is tested with foldKey.
func knownKeys(t reflect.Type) map[string]struct{} {
	if v, ok := knownKeysCache.Load(t); ok {
		return v.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[foldKey(name)] = struct{}{}
	}
	v, _ := knownKeysCache.LoadOrStore(t, keys)
	return v.(map[string]struct{})
}

func foldKey(k string) string { return strings.ToLower(k) }

// unmarshalOpen decodes data into dst and returns the members dst has no
// field for. dst must be a pointer to a struct without custom unmarshaling.
func unmarshalOpen(data []byte, dst any) (Extra, error) {
	if isJSONNull(data) {
		return nil, &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeOf(dst).Elem()}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	known := knownKeys(reflect.TypeOf(dst).Elem())
	var extra Extra
	for k, v := range members {
		if _, ok := known[foldKey(k)]; ok {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = v
	}
	return extra, nil
}

// marshalOpen encodes v and merges extra members that do not collide with a
// typed field.
func marshalOpen(v any, extra Extra) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, err
	}
	known := knownKeys(reflect.TypeOf(v))
	for k, raw := range extra {
		if _, ok := known[foldKey(k)]; ok {
			continue
		}
		members[k] = raw
	}
	return json.Marshal(members)
}

// decodeOpen resets the record dst points to, decodes data into it and stores
// the residue in *extra.
func decodeOpen(data []byte, dst any, extra *Extra) error {
	reflect.ValueOf(dst).Elem().SetZero()
	ex, err := unmarshalOpen(data, dst)
	if err != nil {
		return err
	}
	*extra = ex
	return nil
}
