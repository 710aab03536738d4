package tool

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	ai "github.com/moneypilot/moneypilot"
)

// TypedHandler is a tool body receiving arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (any, error)

// Func builds a Tool whose schema is reflected from the struct T and
// whose arguments are decoded into T before fn runs.
func Func[T any](name, description string, fn TypedHandler[T]) (Tool, error) {
	params, err := ParamsFor[T]()
	if err != nil {
		return nil, fmt.Errorf("tool: %s: %w", name, err)
	}
	schema := ai.ToolSchema{Name: name, Description: description, Parameters: params}

	return New(schema, func(ctx context.Context, raw map[string]any) (any, error) {
		var args T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:  &args,
			TagName: "json",
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(raw); err != nil {
			return nil, &ArgumentsError{Tool: name, Err: err}
		}
		return fn(ctx, args)
	}), nil
}

// MustFunc is like Func but panics on error.
// This is useful for initialization code where errors should be fatal.
func MustFunc[T any](name, description string, fn TypedHandler[T]) Tool {
	t, err := Func(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// ParamsFor reflects tool parameters from the exported fields of struct T.
func ParamsFor[T any]() ([]ai.Parameter, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("arguments must be a struct, got %s", t.Kind())
	}

	var params []ai.Parameter
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		p := ai.Parameter{
			Name:        name,
			Type:        paramType(field.Type),
			Description: field.Tag.Get("desc"),
			Required:    field.Tag.Get("required") == "true",
		}
		if p.Type == ai.TypeArray {
			p.Items = paramType(deref(field.Type).Elem())
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				p.Enum = append(p.Enum, strings.TrimSpace(v))
			}
		}
		params = append(params, p)
	}
	return params, nil
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func paramType(t reflect.Type) ai.ParamType {
	switch deref(t).Kind() {
	case reflect.String:
		return ai.TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ai.TypeInteger
	case reflect.Float32, reflect.Float64:
		return ai.TypeNumber
	case reflect.Bool:
		return ai.TypeBoolean
	case reflect.Slice, reflect.Array:
		return ai.TypeArray
	case reflect.Struct, reflect.Map:
		return ai.TypeObject
	default:
		return ai.TypeString
	}
}
