// Package pricing estimates the USD cost of chat requests.
package pricing

import (
	"strings"

	ai "github.com/moneypilot/moneypilot"
)

// Chat is the price per million tokens for a chat model.
type Chat struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost returns the cost of usage at these prices.
func (p Chat) Cost(usage ai.Usage) float64 {
	return float64(usage.InputTokens)/1_000_000*p.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*p.OutputPerMillion
}

// Model pricing last verified: December 14, 2025
var table = map[string]Chat{
	// Anthropic
	"claude-opus-4-5":   {InputPerMillion: 5.00, OutputPerMillion: 25.00},
	"claude-sonnet-4-5": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5":  {InputPerMillion: 1.00, OutputPerMillion: 5.00},
	"claude-sonnet-4":   {InputPerMillion: 3.00, OutputPerMillion: 15.00},

	// OpenAI
	"gpt-4":       {InputPerMillion: 30.00, OutputPerMillion: 60.00},
	"gpt-4-turbo": {InputPerMillion: 10.00, OutputPerMillion: 30.00},
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4.1":     {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"gpt-5":       {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gpt-5-mini":  {InputPerMillion: 0.25, OutputPerMillion: 1.00},
	"gpt-5-nano":  {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gpt-5.1":     {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gpt-5.2":     {InputPerMillion: 1.75, OutputPerMillion: 14.00},
	"o3":          {InputPerMillion: 2.00, OutputPerMillion: 16.00},
	"o4-mini":     {InputPerMillion: 0.50, OutputPerMillion: 2.00},

	// Google
	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":      {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gemini-2.5-flash-lite": {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-3.0-pro":        {InputPerMillion: 2.00, OutputPerMillion: 12.00},
}

// Lookup returns the pricing for model. Pinned versions such as
// "claude-sonnet-4-5-20250929" match their family by the longest known
// prefix.
func Lookup(model string) (Chat, bool) {
	if p, ok := table[model]; ok {
		return p, true
	}
	best := ""
	for id := range table {
		if strings.HasPrefix(model, id+"-") && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return Chat{}, false
	}
	return table[best], true
}

// Cost estimates the cost of usage on model. Unknown models cost zero.
func Cost(model string, usage ai.Usage) float64 {
	p, ok := Lookup(model)
	if !ok {
		return 0
	}
	return p.Cost(usage)
}
