package builtin

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/agent"
	"github.com/moneypilot/moneypilot/state"
	"github.com/moneypilot/moneypilot/workflow"
)

// AnalystWorkflow is the registered name of the analyst workflow.
const AnalystWorkflow = "analyst"

const analystPrompt = `You are a cautious market analyst. Answer the user's question about the given symbol.
Use the available tools for dates and arithmetic instead of guessing.
Do not give buy or sell recommendations.
Respond with a JSON object of the form:
{"summary": "<two or three sentences>", "sentiment": "bullish" | "bearish" | "neutral", "confidence": <number between 0 and 1>}`

// Analysis is the state of the analyst workflow.
type Analysis struct {
	state.Base
	Symbol   string `json:"symbol" required:"true"`
	Question string `json:"question,omitempty"`

	Summary    string   `json:"summary,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Confidence float64  `json:"confidence"`
	ToolCalls  int      `json:"tool_calls"`
	Usage      ai.Usage `json:"usage"`
}

type analystReply struct {
	Summary    string  `json:"summary"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

var sentiments = map[string]bool{"bullish": true, "bearish": true, "neutral": true}

type analyst struct {
	agent *agent.Agent
}

// NewAnalyst defines the analyst workflow around a.
func NewAnalyst(a *agent.Agent) workflow.Definition[Analysis] {
	return analyst{agent: a}
}

func (analyst) Name() string { return AnalystWorkflow }

func (a analyst) Nodes() map[string]workflow.Step[Analysis] {
	return map[string]workflow.Step[Analysis]{
		"prepare": workflow.Update(a.prepare),
		"analyze": agent.NewStep(a.agent, a.query, a.apply),
	}
}

func (analyst) BuildEdges(g *workflow.Graph[Analysis]) error {
	g.SetEntry("prepare").AddEdge("prepare", "analyze").SetFinish("analyze")
	return nil
}

func (analyst) prepare(ctx context.Context, s *Analysis) error {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	if s.Symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if strings.TrimSpace(s.Question) == "" {
		s.Question = fmt.Sprintf("What is the current outlook for %s?", s.Symbol)
	}
	return nil
}

func (analyst) query(ctx context.Context, s *Analysis) (agent.Query, error) {
	temperature := 0.2
	return agent.Query{
		Messages: []ai.Message{
			ai.SystemMessage(analystPrompt),
			ai.UserMessage(fmt.Sprintf("Symbol: %s\nQuestion: %s", s.Symbol, s.Question)),
		},
		JSON:        true,
		Tools:       []string{ToolCurrentTime, ToolPercentChange},
		MaxTokens:   600,
		Temperature: &temperature,
	}, nil
}

func (analyst) apply(ctx context.Context, s *Analysis, res *agent.Result) error {
	reply, err := agent.Decode[analystReply](res.Data)
	if err != nil {
		return err
	}
	s.Summary = reply.Summary
	s.Sentiment = strings.ToLower(reply.Sentiment)
	if !sentiments[s.Sentiment] {
		s.Sentiment = "neutral"
	}
	s.Confidence = min(max(reply.Confidence, 0), 1)
	s.ToolCalls = len(res.ToolResults)
	s.Usage = s.Usage.Add(res.Usage)
	return nil
}
