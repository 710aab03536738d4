package google

import (
	"errors"
	"fmt"
	"testing"

	ai "github.com/moneypilot/moneypilot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	msgs := []ai.Message{
		ai.SystemMessage("You are a market analyst."),
		ai.UserMessage("How did ABC do?"),
		{
			Role:      ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{{ID: "c1", Name: "get_quote", Arguments: `{"symbol":"ABC"}`}},
		},
		ai.NewToolResultMessage(
			ai.ToolResult{ToolCallID: "c1", Name: "get_quote", Content: `{"price":101.5}`},
			ai.ToolResult{ToolCallID: "c2", Name: "get_news", Content: `"no news"`},
		),
	}

	contents, system := convertMessages(msgs)

	require.NotNil(t, system)
	assert.Equal(t, "You are a market analyst.", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "get_quote", contents[1].Parts[0].FunctionCall.Name)
	assert.Equal(t, map[string]any{"symbol": "ABC"}, contents[1].Parts[0].FunctionCall.Args)

	results := contents[2].Parts
	require.Len(t, results, 2)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "get_quote", results[0].FunctionResponse.Name)
	assert.Equal(t, map[string]any{"price": 101.5}, results[0].FunctionResponse.Response)
	assert.Equal(t, map[string]any{"output": `"no news"`}, results[1].FunctionResponse.Response)
}

func TestConvertSchema(t *testing.T) {
	s := convertSchema(ai.ToolSchema{
		Name: "place_order",
		Parameters: []ai.Parameter{
			{Name: "symbol", Type: ai.TypeString, Required: true},
			{Name: "side", Type: ai.TypeString, Enum: []string{"buy", "sell"}},
			{Name: "tags", Type: ai.TypeArray, Items: ai.TypeString},
		},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"symbol"}, s.Required)
	assert.Equal(t, genai.TypeString, s.Properties["symbol"].Type)
	assert.Equal(t, []string{"buy", "sell"}, s.Properties["side"].Enum)
	require.NotNil(t, s.Properties["tags"].Items)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
}

func TestConvertToolChoice(t *testing.T) {
	assert.Equal(t, genai.FunctionCallingConfigModeAuto, convertToolChoice(ai.ToolChoiceAuto).FunctionCallingConfig.Mode)
	assert.Equal(t, genai.FunctionCallingConfigModeNone, convertToolChoice(ai.ToolChoiceNone).FunctionCallingConfig.Mode)
	assert.Equal(t, genai.FunctionCallingConfigModeAny, convertToolChoice(ai.ToolChoiceRequired).FunctionCallingConfig.Mode)
}

func TestExtractToolCalls(t *testing.T) {
	calls := extractToolCalls([]*genai.Part{
		{Text: "checking"},
		{FunctionCall: &genai.FunctionCall{Name: "get_quote", Args: map[string]any{"symbol": "ABC"}}},
		{FunctionCall: &genai.FunctionCall{ID: "x9", Name: "now"}},
	})

	require.Len(t, calls, 2)
	assert.Equal(t, "call_1_get_quote", calls[0].ID)
	assert.JSONEq(t, `{"symbol":"ABC"}`, calls[0].Arguments)
	assert.Equal(t, "x9", calls[1].ID)
	assert.Equal(t, "{}", calls[1].Arguments)
}

func TestGenerateConfig(t *testing.T) {
	opts := ai.ApplyOptions(ai.WithMaxTokens(100), ai.WithTemperature(0.5), ai.WithTopP(0.9), ai.WithJSON())
	cfg := generateConfig(opts, nil)

	assert.Equal(t, int32(100), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, *cfg.TopP, 1e-6)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Nil(t, cfg.Tools)
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		code int
		want ai.ErrorCategory
	}{
		{429, ai.ErrorTransient},
		{503, ai.ErrorTransient},
		{400, ai.ErrorUserInput},
		{403, ai.ErrorPermanent},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := wrapError(genai.APIError{Code: tt.code, Message: "upstream"})
			assert.Equal(t, tt.want, ai.CategoryOf(err))
		})
	}

	assert.True(t, ai.IsTransient(wrapError(errors.New("connection reset"))))
	assert.NoError(t, wrapError(nil))
}
