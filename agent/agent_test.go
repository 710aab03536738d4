package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient replays scripted responses and records each request.
type mockClient struct {
	mu        sync.Mutex
	responses []*ai.Response
	err       error
	requests  [][]ai.Message
	options   []*ai.Options
}

func (m *mockClient) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, messages)
	m.options = append(m.options, ai.ApplyOptions(opts...))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &ai.Response{Content: "no more responses"}, nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

type quoteArgs struct {
	Symbol string `json:"symbol" desc:"Ticker symbol" required:"true"`
}

func quoteRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry(nil)
	r.MustRegister(tool.MustFunc("get_quote", "Latest price for a symbol",
		func(ctx context.Context, args quoteArgs) (any, error) {
			return map[string]any{"symbol": args.Symbol, "price": 101.5}, nil
		}))
	return r
}

func TestQueryText(t *testing.T) {
	m := &mockClient{responses: []*ai.Response{{Content: "ABC is flat today.", Usage: ai.Usage{InputTokens: 5, OutputTokens: 3}}}}
	a := New(m, nil)

	res, err := a.Query(context.Background(), Query{Messages: []ai.Message{ai.UserMessage("ABC?")}})
	require.NoError(t, err)

	assert.Equal(t, "ABC is flat today.", res.Content)
	assert.True(t, strings.HasPrefix(res.RequestID, "llm_"))
	assert.Nil(t, res.Data)
	assert.Equal(t, 8, res.Usage.InputTokens+res.Usage.OutputTokens)

	require.Len(t, m.options, 1)
	assert.Equal(t, ai.DefaultMaxTokens, m.options[0].MaxTokens)
	assert.Empty(t, m.options[0].Tools)
	assert.False(t, m.options[0].JSON)
}

func TestQueryValidatesSampling(t *testing.T) {
	hot, wide := 2.5, 1.5
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"negative max tokens", Query{MaxTokens: -1}, "max_tokens must be positive, got -1"},
		{"temperature above 2", Query{Temperature: &hot}, "temperature must be between 0 and 2, got 2.5"},
		{"top_p above 1", Query{TopP: &wide}, "top_p must be between 0 and 1, got 1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockClient{}
			_, err := New(m, nil).Query(context.Background(), tt.q)
			require.Error(t, err)
			assert.True(t, ai.IsUserInput(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, m.requests)
		})
	}
}

func TestQueryUnknownTool(t *testing.T) {
	m := &mockClient{}
	_, err := New(m, quoteRegistry(t)).Query(context.Background(), Query{Tools: []string{"get_news"}})

	var nf *tool.ErrToolNotFound
	require.ErrorAs(t, err, &nf)
	assert.True(t, ai.IsUserInput(err))
	assert.Empty(t, m.requests)
}

func TestQueryToolRound(t *testing.T) {
	m := &mockClient{responses: []*ai.Response{
		{ToolCalls: []ai.ToolCall{{ID: "c1", Name: "get_quote", Arguments: `{"symbol":"ABC"}`}}, Usage: ai.Usage{InputTokens: 10}},
		{Content: `{"symbol":"ABC","signal":"hold"}`, Usage: ai.Usage{InputTokens: 20}},
	}}
	ch := event.NewChannel()
	a := New(m, quoteRegistry(t))

	res, err := a.Query(context.Background(), Query{
		Messages: []ai.Message{ai.UserMessage("Should I buy ABC?")},
		Tools:    []string{"get_quote"},
		JSON:     true,
		Events:   ch,
	})
	require.NoError(t, err)
	close(ch)

	assert.Equal(t, 1, res.ToolRounds)
	assert.Equal(t, 30, res.Usage.InputTokens)
	assert.Equal(t, map[string]any{"symbol": "ABC", "signal": "hold"}, res.Data)
	require.Len(t, res.ToolResults, 1)
	assert.False(t, res.ToolResults[0].IsError)
	assert.JSONEq(t, `{"symbol":"ABC","price":101.5}`, res.ToolResults[0].Content)

	// The follow-up carries the assistant turn and the tool result, and no
	// longer offers tools.
	require.Len(t, m.requests, 2)
	follow := m.requests[1]
	require.Len(t, follow, 3)
	assert.Equal(t, ai.RoleAssistant, follow[1].Role)
	assert.Equal(t, ai.RoleTool, follow[2].Role)
	assert.Len(t, m.options[0].Tools, 1)
	assert.Empty(t, m.options[1].Tools)
	assert.True(t, m.options[1].JSON)

	var types []event.Type
	for ev := range ch {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []event.Type{
		event.ToolCallStart, event.ToolCallResult,
		event.MessageStart, event.MessageDelta, event.MessageEnd,
	}, types)
}

func TestQueryStopsAfterMaxToolRounds(t *testing.T) {
	call := &ai.Response{ToolCalls: []ai.ToolCall{{ID: "c1", Name: "get_quote", Arguments: `{"symbol":"ABC"}`}}}
	m := &mockClient{responses: []*ai.Response{call, call, call}}
	a := New(m, quoteRegistry(t), WithMaxToolRounds(2))

	res, err := a.Query(context.Background(), Query{Tools: []string{"get_quote"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ToolRounds)
	assert.Len(t, m.requests, 3)
	assert.Len(t, m.options[1].Tools, 1)
	assert.Empty(t, m.options[2].Tools)
}

func TestQueryToolFailureIsReportedToModel(t *testing.T) {
	m := &mockClient{responses: []*ai.Response{
		{ToolCalls: []ai.ToolCall{{ID: "c1", Name: "get_quote", Arguments: `{}`}}},
		{Content: "could not fetch quote"},
	}}
	res, err := New(m, quoteRegistry(t)).Query(context.Background(), Query{Tools: []string{"get_quote"}})
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 1)
	assert.True(t, res.ToolResults[0].IsError)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.ToolResults[0].Content), &payload))
	assert.Equal(t, "invalid_parameter", payload["error_type"])
}

func TestQueryClientError(t *testing.T) {
	boom := ai.NewTransientError("overloaded", 503, nil)
	_, err := New(&mockClient{err: boom}, nil).Query(context.Background(), Query{})

	var lerr *LLMError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ai.IsTransient(err))
}

func TestQueryJSONFailures(t *testing.T) {
	t.Run("empty content", func(t *testing.T) {
		m := &mockClient{responses: []*ai.Response{{Content: ""}}}
		_, err := New(m, nil).Query(context.Background(), Query{JSON: true})
		var lerr *LLMError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "LLM returned empty content for JSON response", err.Error())
	})

	t.Run("unparseable content", func(t *testing.T) {
		m := &mockClient{responses: []*ai.Response{{Content: "I cannot answer that."}}}
		_, err := New(m, nil).Query(context.Background(), Query{JSON: true})
		var lerr *LLMError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "I cannot answer that.", lerr.Details)
	})
}

func TestQueryEventsFromContext(t *testing.T) {
	m := &mockClient{responses: []*ai.Response{{Content: "hi"}}}
	ch := event.NewChannel()
	ctx := event.NewContext(context.Background(), ch)

	_, err := New(m, nil).Query(ctx, Query{})
	require.NoError(t, err)
	close(ch)

	var n int
	for ev := range ch {
		assert.NotEmpty(t, ev.MessageID)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestLLMErrorMessage(t *testing.T) {
	assert.Equal(t, "bad answer - Details: raw", (&LLMError{Message: "bad answer", Details: "raw"}).Error())
	assert.Equal(t, "failed to query LLM: boom", (&LLMError{Message: "failed to query LLM", Err: errors.New("boom")}).Error())
}
