package moneypilot

import (
	"encoding/json"
	"sort"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Valid reports whether t is one of the known parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Parameter declares one named argument of a tool.
type Parameter struct {
	Name        string    `json:"name" yaml:"name"`
	Type        ParamType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Enum        []string  `json:"enum,omitempty" yaml:"enum,omitempty"`
	// Items is the element type of an array parameter.
	Items ParamType `json:"items,omitempty" yaml:"items,omitempty"`
}

// ToolSchema describes a tool without invoking it. The description is
// what a model reads when deciding whether to call the tool.
type ToolSchema struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters"`
}

// Param returns the named parameter.
func (s ToolSchema) Param(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// RequiredParams returns the names of required parameters in declaration order.
func (s ToolSchema) RequiredParams() []string {
	var names []string
	for _, p := range s.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Properties renders the parameters as a JSON Schema "properties" object.
func (s ToolSchema) Properties() map[string]any {
	props := make(map[string]any, len(s.Parameters))
	for _, p := range s.Parameters {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == TypeArray && p.Items != "" {
			prop["items"] = map[string]any{"type": string(p.Items)}
		}
		props[p.Name] = prop
	}
	return props
}

// JSONSchema renders the parameters as a JSON Schema object, the form
// every provider and MCP expect.
func (s ToolSchema) JSONSchema() map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": s.Properties(),
	}
	if req := s.RequiredParams(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

// RawJSONSchema is JSONSchema encoded as JSON.
func (s ToolSchema) RawJSONSchema() json.RawMessage {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

// SchemaFromJSON builds a ToolSchema from a decoded JSON Schema object.
// Parameters are sorted by name; unknown types fall back to string.
func SchemaFromJSON(name, description string, schema map[string]any) ToolSchema {
	out := ToolSchema{Name: name, Description: description}

	required := map[string]bool{}
	switch req := schema["required"].(type) {
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	case []string:
		for _, s := range req {
			required[s] = true
		}
	}

	props, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		p := Parameter{Name: n, Type: TypeString, Required: required[n]}
		if def, ok := props[n].(map[string]any); ok {
			if t, ok := def["type"].(string); ok && ParamType(t).Valid() {
				p.Type = ParamType(t)
			}
			p.Description, _ = def["description"].(string)
			if enum, ok := def["enum"].([]any); ok {
				for _, e := range enum {
					if s, ok := e.(string); ok {
						p.Enum = append(p.Enum, s)
					}
				}
			}
			if items, ok := def["items"].(map[string]any); ok {
				if t, ok := items["type"].(string); ok && ParamType(t).Valid() {
					p.Items = ParamType(t)
				}
			}
		}
		out.Parameters = append(out.Parameters, p)
	}
	return out
}

// ToolCall is a model's request to invoke a tool.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Arguments is the JSON-encoded argument object.
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one ToolCall.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ToolChoice controls how the model uses tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// NewToolResultMessage wraps tool results in a tool-role message.
func NewToolResultMessage(results ...ToolResult) Message {
	return Message{
		Role:        RoleTool,
		ToolResults: results,
	}
}
