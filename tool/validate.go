package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strings"

	ai "github.com/moneypilot/moneypilot"
)

// Validate checks args against schema. It reports the first problem as
// a *ParamError: an unknown parameter, a missing required one, a value
// of the wrong type, or a value outside the enum.
func Validate(schema ai.ToolSchema, args map[string]any) error {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := schema.Param(k); !ok {
			return &ParamError{Tool: schema.Name, Param: k, Reason: "is not a known parameter"}
		}
	}

	for _, p := range schema.Parameters {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				return &ParamError{Tool: schema.Name, Param: p.Name, Reason: "is required"}
			}
			continue
		}
		if reason := checkType(p.Type, p.Items, v); reason != "" {
			return &ParamError{Tool: schema.Name, Param: p.Name, Reason: reason}
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, fmt.Sprint(v)) {
			return &ParamError{
				Tool:   schema.Name,
				Param:  p.Name,
				Reason: fmt.Sprintf("must be one of %s, got %v", strings.Join(p.Enum, ", "), v),
			}
		}
	}
	return nil
}

func checkType(want, items ai.ParamType, v any) string {
	got := jsonType(v)
	ok := got == want || (want == ai.TypeNumber && got == ai.TypeInteger)
	if !ok {
		return fmt.Sprintf("must be %s, got %s", article(want), got)
	}
	if want == ai.TypeArray && items != "" {
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if reason := checkType(items, "", rv.Index(i).Interface()); reason != "" {
				return fmt.Sprintf("element %d %s", i, reason)
			}
		}
	}
	return ""
}

// jsonType names the JSON type of a decoded value. Whole floats count
// as integers because JSON decoding yields float64 for every number.
func jsonType(v any) ai.ParamType {
	switch n := v.(type) {
	case string:
		return ai.TypeString
	case bool:
		return ai.TypeBoolean
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return ai.TypeInteger
		}
		return ai.TypeNumber
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return ai.TypeInteger
		}
		return ai.TypeNumber
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return ai.TypeInteger
		}
		return ai.TypeNumber
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ai.TypeInteger
	case reflect.Slice, reflect.Array:
		return ai.TypeArray
	case reflect.Map, reflect.Struct:
		return ai.TypeObject
	}
	return ai.ParamType(fmt.Sprintf("%T", v))
}

func article(t ai.ParamType) string {
	switch t {
	case ai.TypeInteger, ai.TypeArray, ai.TypeObject:
		return "an " + string(t)
	}
	return "a " + string(t)
}
