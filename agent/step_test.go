package agent

import (
	"context"
	"errors"
	"testing"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/state"
	"github.com/moneypilot/moneypilot/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type research struct {
	state.Base
	Symbol  string `json:"symbol" required:"true"`
	Verdict string `json:"verdict"`
}

type verdict struct {
	Signal string `json:"signal"`
}

func verdictStep(a *Agent) workflow.Step[research] {
	return NewStep(a,
		func(ctx context.Context, s *research) (Query, error) {
			if s.Symbol == "" {
				return Query{}, errors.New("no symbol")
			}
			return Query{Messages: []ai.Message{ai.UserMessage("Verdict on " + s.Symbol)}, JSON: true}, nil
		},
		func(ctx context.Context, s *research, res *Result) error {
			v, err := Decode[verdict](res.Data)
			if err != nil {
				return err
			}
			s.Verdict = v.Signal
			return nil
		})
}

func TestStepInWorkflow(t *testing.T) {
	m := &mockClient{responses: []*ai.Response{{Content: "```json\n{\"signal\": \"hold\"}\n```"}}}
	wf, err := workflow.NewGraph[research]("verdict").
		AddNode("analyze", verdictStep(New(m, nil))).
		SetEntry("analyze").
		SetFinish("analyze").
		Compile()
	require.NoError(t, err)

	var types []event.Type
	for ev := range wf.RunStream(context.Background(), &research{Symbol: "ABC"}) {
		types = append(types, ev.Type)
		if ev.Type == event.RunEnd {
			assert.Equal(t, "hold", ev.State["verdict"])
		}
	}

	assert.Contains(t, types, event.MessageDelta)
	assert.Equal(t, event.RunEnd, types[len(types)-1])
}

func TestStepBuildErrorFailsTheStep(t *testing.T) {
	m := &mockClient{}
	wf, err := workflow.NewGraph[research]("verdict").
		AddNode("analyze", verdictStep(New(m, nil))).
		SetEntry("analyze").
		SetFinish("analyze").
		Compile()
	require.NoError(t, err)

	s, err := wf.Run(context.Background(), &research{})
	var serr *workflow.StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "analyze", serr.StepName)
	assert.Equal(t, state.StatusFailed, s.Status)
	assert.Empty(t, m.requests)
}
