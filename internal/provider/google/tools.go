package google

import (
	"encoding/json"
	"fmt"

	ai "github.com/moneypilot/moneypilot"
	"google.golang.org/genai"
)

var schemaTypes = map[ai.ParamType]genai.Type{
	ai.TypeString:  genai.TypeString,
	ai.TypeInteger: genai.TypeInteger,
	ai.TypeNumber:  genai.TypeNumber,
	ai.TypeBoolean: genai.TypeBoolean,
	ai.TypeArray:   genai.TypeArray,
	ai.TypeObject:  genai.TypeObject,
}

func convertTools(tools []ai.ToolSchema) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	funcs := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  convertSchema(t),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

func convertSchema(t ai.ToolSchema) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(t.Parameters)),
		Required:   t.RequiredParams(),
	}
	for _, p := range t.Parameters {
		prop := &genai.Schema{
			Type:        schemaTypes[p.Type],
			Description: p.Description,
			Enum:        p.Enum,
		}
		if p.Type == ai.TypeArray && p.Items != "" {
			prop.Items = &genai.Schema{Type: schemaTypes[p.Items]}
		}
		schema.Properties[p.Name] = prop
	}
	return schema
}

func convertToolChoice(choice ai.ToolChoice) *genai.ToolConfig {
	mode := genai.FunctionCallingConfigModeAuto
	switch choice {
	case ai.ToolChoiceNone:
		mode = genai.FunctionCallingConfigModeNone
	case ai.ToolChoiceRequired:
		mode = genai.FunctionCallingConfigModeAny
	}
	return &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
	}
}

// extractToolCalls reads function calls out of response parts. Gemini
// omits call IDs on some models, so one is derived from the position.
func extractToolCalls(parts []*genai.Part) []ai.ToolCall {
	var calls []ai.ToolCall
	for i, part := range parts {
		if part.FunctionCall == nil {
			continue
		}
		args, err := json.Marshal(part.FunctionCall.Args)
		if err != nil || part.FunctionCall.Args == nil {
			args = []byte("{}")
		}
		id := part.FunctionCall.ID
		if id == "" {
			id = fmt.Sprintf("call_%d_%s", i, part.FunctionCall.Name)
		}
		calls = append(calls, ai.ToolCall{
			ID:        id,
			Name:      part.FunctionCall.Name,
			Arguments: string(args),
		})
	}
	return calls
}
