package google

import (
	"encoding/json"

	ai "github.com/moneypilot/moneypilot"
	"google.golang.org/genai"
)

// convertMessages splits system prompts out into a system instruction and
// maps the rest onto user and model turns. Tool results travel as user
// turns carrying FunctionResponse parts.
func convertMessages(messages []ai.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   *genai.Content
	)

	for _, msg := range messages {
		if msg.Role == ai.RoleSystem {
			if msg.Content == "" {
				continue
			}
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})
			continue
		}

		role := "user"
		if msg.Role == ai.RoleAssistant {
			role = "model"
		}

		var parts []*genai.Part
		if msg.Content != "" {
			parts = append(parts, &genai.Part{Text: msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			var args map[string]any
			_ = json.Unmarshal([]byte(tc.Arguments), &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
			})
		}
		for _, tr := range msg.ToolResults {
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       tr.ToolCallID,
					Name:     tr.Name,
					Response: responsePayload(tr),
				},
			})
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}

	return contents, system
}

// responsePayload decodes a result's JSON object content. Anything else is
// wrapped under "output", or "error" for failed calls.
func responsePayload(tr ai.ToolResult) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(tr.Content), &obj); err == nil && obj != nil {
		return obj
	}
	if tr.IsError {
		return map[string]any{"error": tr.Content}
	}
	return map[string]any{"output": tr.Content}
}
