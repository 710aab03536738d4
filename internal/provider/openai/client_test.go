package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	ai "github.com/moneypilot/moneypilot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": "",
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "get_quote", "arguments": "{\"symbol\":\"ABC\"}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

func TestChat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion)
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL), WithModel("gpt-test"))
	schema := ai.ToolSchema{
		Name:        "get_quote",
		Description: "Latest price",
		Parameters:  []ai.Parameter{{Name: "symbol", Type: ai.TypeString, Required: true}},
	}
	resp, err := c.Chat(context.Background(),
		[]ai.Message{ai.SystemMessage("be brief"), ai.UserMessage("price of ABC?")},
		ai.WithTools(schema), ai.WithMaxTokens(50), ai.WithTemperature(0.2), ai.WithJSON(),
	)
	require.NoError(t, err)

	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, ai.Usage{InputTokens: 12, OutputTokens: 7}, resp.Usage)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, ai.ToolCall{ID: "call_1", Name: "get_quote", Arguments: `{"symbol":"ABC"}`}, resp.ToolCalls[0])

	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, float64(50), body["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	tools := body["tools"].([]any)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "get_quote", fn["name"])
	assert.Equal(t, []any{"symbol"}, fn["parameters"].(map[string]any)["required"])
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, ai.IsTransient},
		{http.StatusInternalServerError, ai.IsTransient},
		{http.StatusUnauthorized, ai.IsPermanent},
		{http.StatusBadRequest, ai.IsUserInput},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"x"}}`)
			}))
			defer srv.Close()

			_, err := New("k", WithBaseURL(srv.URL)).Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestChatRejectsBadSampling(t *testing.T) {
	_, err := New("k").Chat(context.Background(), []ai.Message{ai.UserMessage("hi")}, ai.WithTemperature(3))
	assert.True(t, ai.IsUserInput(err))
}

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages([]ai.Message{
		ai.UserMessage("hi"),
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "c1", Name: "t", Arguments: "{}"}}},
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "c1", Content: "1"}, ai.ToolResult{ToolCallID: "c2", Content: "2"}),
		{Role: ai.RoleSystem},
	})
	require.Len(t, msgs, 4)
	require.NotNil(t, msgs[1].OfAssistant)
	assert.Equal(t, "c1", msgs[1].OfAssistant.ToolCalls[0].ID)
	require.NotNil(t, msgs[2].OfTool)
	require.NotNil(t, msgs[3].OfTool)
}
