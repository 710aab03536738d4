package pricing

import (
	"testing"

	ai "github.com/moneypilot/moneypilot"
	"github.com/stretchr/testify/assert"
)

func TestChatCost(t *testing.T) {
	p := Chat{InputPerMillion: 1.00, OutputPerMillion: 2.00}

	t.Run("standard usage", func(t *testing.T) {
		// 1000/1M * $1 + 500/1M * $2
		assert.InDelta(t, 0.002, p.Cost(ai.Usage{InputTokens: 1000, OutputTokens: 500}), 1e-9)
	})

	t.Run("million tokens", func(t *testing.T) {
		assert.InDelta(t, 3.0, p.Cost(ai.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}), 1e-9)
	})

	t.Run("zero usage", func(t *testing.T) {
		assert.Equal(t, 0.0, p.Cost(ai.Usage{}))
	})
}

func TestLookup(t *testing.T) {
	tests := []struct {
		model string
		input float64
		found bool
	}{
		{"gpt-4", 30.00, true},
		{"gpt-4o-mini", 0.15, true},
		{"claude-sonnet-4-5-20250929", 3.00, true},
		{"gpt-4o-2024-08-06", 2.50, true},
		{"gemini-2.5-flash-lite", 0.075, true},
		{"llama-3-70b", 0, false},
		{"gpt-4x", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, ok := Lookup(tt.model)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.input, p.InputPerMillion)
		})
	}
}

func TestCost(t *testing.T) {
	// Claude Sonnet 4.5: $3/M input, $15/M output
	usage := ai.Usage{InputTokens: 10000, OutputTokens: 5000}
	assert.InDelta(t, 0.105, Cost("claude-sonnet-4-5", usage), 1e-9)
	assert.Zero(t, Cost("unknown-model", usage))
}
