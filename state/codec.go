package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Import constructs a new S from caller-supplied values. Every field of S
// tagged required:"true" must have a key in values.
func Import[S any](values map[string]any) (*S, error) {
	s := new(S)
	if err := ImportInto(s, values); err != nil {
		return nil, err
	}
	return s, nil
}

// ImportInto is Import onto an existing value, typically one holding
// defaults. Required fields must still appear in values.
func ImportInto(dst any, values map[string]any) error {
	if err := checkRequired(reflect.TypeOf(dst), values); err != nil {
		return err
	}
	return Merge(dst, values)
}

// Merge decodes a partial mapping into the struct dst points to. Keys
// not present in patch leave their fields untouched; unknown keys are
// ignored.
func Merge(dst any, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  dst,
		TagName: "json",
		Squash:  true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if err := dec.Decode(patch); err != nil {
		return decodeError(err)
	}
	return nil
}

// Export converts s into a plain map of JSON-compatible values.
func Export(s any) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, &SerializationError{Field: offendingField(s), Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("state is not an object: %w", err)}
	}
	for k, v := range out {
		out[k] = plainNumbers(v)
	}
	return out, nil
}

// maxExactFloat is the largest integer magnitude a float64 holds exactly.
const maxExactFloat = 1 << 53

// plainNumbers replaces json.Number with float64, except for integers a
// float64 cannot hold exactly, which stay int64 or uint64.
func plainNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			if i > maxExactFloat || i < -maxExactFloat {
				return i
			}
			return float64(i)
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = plainNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = plainNumbers(e)
		}
		return x
	}
	return v
}

// Lookup reads one field of s by its serialized name.
func Lookup(s any, key string) (any, bool, error) {
	m, err := Export(s)
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Clone deep-copies s through its serialized form.
func Clone[S any](s *S) (*S, error) {
	m, err := Export(s)
	if err != nil {
		return nil, err
	}
	out := new(S)
	if err := Merge(out, m); err != nil {
		return nil, err
	}
	return out, nil
}

type fieldInfo struct {
	name     string
	index    []int
	required bool
}

// fieldsOf lists the serialized fields of a struct type, flattening
// anonymous embedded structs the way encoding/json does.
func fieldsOf(t reflect.Type) []fieldInfo {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				for _, inner := range fieldsOf(ft) {
					inner.index = append([]int{i}, inner.index...)
					out = append(out, inner)
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out = append(out, fieldInfo{
			name:     name,
			index:    []int{i},
			required: f.Tag.Get("required") == "true",
		})
	}
	return out
}

func checkRequired(t reflect.Type, values map[string]any) error {
	for _, f := range fieldsOf(t) {
		if !f.required {
			continue
		}
		if _, ok := values[f.name]; !ok {
			return &ValidationError{Field: f.name, Reason: "required field is missing"}
		}
	}
	return nil
}

// offendingField finds the first field whose value cannot be marshaled.
func offendingField(s any) string {
	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	for _, f := range fieldsOf(v.Type()) {
		fv, err := v.FieldByIndexErr(f.index)
		if err != nil || !fv.CanInterface() {
			continue
		}
		if _, err := json.Marshal(fv.Interface()); err != nil {
			return f.name
		}
	}
	return ""
}

// decodeError turns a mapstructure failure into a ValidationError naming
// the first field it complains about.
func decodeError(err error) error {
	msg := err.Error()
	var merr *mapstructure.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		msg = merr.Errors[0]
	}
	field := ""
	if strings.HasPrefix(msg, "'") {
		if end := strings.Index(msg[1:], "'"); end >= 0 {
			field = msg[1 : end+1]
		}
	}
	return &ValidationError{Field: field, Reason: msg, Err: err}
}
