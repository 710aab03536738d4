package tool

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu     sync.Mutex
	calls  []string
	failed int
}

func (o *countingObserver) ToolExecuted(name string, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, name)
	if err != nil {
		o.failed++
	}
}

func decodeError(t *testing.T, content string) map[string]string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(content), &m))
	return m
}

func TestExecuteCalls(t *testing.T) {
	r := NewRegistry(nil)
	r.MustRegister(quoteTool())
	obs := &countingObserver{}
	exec := NewExecutor(r, WithObserver(obs))

	calls := []ai.ToolCall{
		{ID: "c1", Name: "get_quote", Arguments: `{"symbol":"ABC"}`},
		{ID: "c2", Name: "get_quote", Arguments: `{}`},
		{ID: "c3", Name: "missing", Arguments: `{}`},
		{ID: "c4", Name: "get_quote", Arguments: `not json`},
		{ID: "c5", Name: "get_quote", Arguments: `["ABC"]`},
	}

	ch := event.NewChannel()
	b := exec.ExecuteCalls(context.Background(), calls, ch)
	close(ch)

	assert.True(t, strings.HasPrefix(b.ID, "tool_"))
	assert.Equal(t, 1, b.Succeeded)
	assert.Equal(t, 4, b.Failed)
	require.Len(t, b.Results, 5)

	for i, res := range b.Results {
		assert.Equal(t, calls[i].ID, res.ToolCallID)
		assert.Equal(t, calls[i].Name, res.Name)
	}

	assert.False(t, b.Results[0].IsError)
	assert.JSONEq(t, `{"symbol":"ABC","price":101.5,"depth":0}`, b.Results[0].Content)

	wantTypes := []string{"", "invalid_parameter", "tool_not_found", "invalid_arguments", "invalid_arguments"}
	for i := 1; i < len(b.Results); i++ {
		assert.True(t, b.Results[i].IsError)
		payload := decodeError(t, b.Results[i].Content)
		assert.Equal(t, wantTypes[i], payload["error_type"])
		assert.Equal(t, calls[i].Name, payload["tool_name"])
		assert.NotEmpty(t, payload["error"])
	}

	assert.Equal(t, []string{"get_quote", "get_quote", "missing", "get_quote", "get_quote"}, obs.calls)
	assert.Equal(t, 4, obs.failed)

	var types []event.Type
	for ev := range ch {
		assert.Equal(t, b.ID, ev.RunID)
		types = append(types, ev.Type)
	}
	assert.Len(t, types, 10)
	assert.Equal(t, event.ToolCallStart, types[0])
	assert.Equal(t, event.ToolCallResult, types[1])

	msgs := b.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, ai.RoleTool, msgs[0].Role)
}

func TestExecuteCallsEmpty(t *testing.T) {
	b := NewExecutor(NewRegistry(nil)).ExecuteCalls(context.Background(), nil, nil)
	assert.Empty(t, b.Results)
	assert.Zero(t, b.Succeeded+b.Failed)
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 250)
	assert.Len(t, preview(long), previewLength+3)
	assert.Equal(t, "short", preview("short"))

	mixed := strings.Repeat("x", previewLength-1) + "€€"
	got := preview(mixed)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", previewLength-1)+"...", got)
}
