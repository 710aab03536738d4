package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/moneypilot/moneypilot/state"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/moneypilot/moneypilot/workflow"
)

// PriceChangeWorkflow is the registered name of the price change workflow.
const PriceChangeWorkflow = "price_change"

// Directions a price change is classified into.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// DefaultFlatBand is the absolute percent move still reported as flat.
const DefaultFlatBand = 0.1

// PriceChange is the state of the price change workflow.
type PriceChange struct {
	state.Base
	Symbol string  `json:"symbol" required:"true"`
	From   float64 `json:"from" required:"true"`
	To     float64 `json:"to" required:"true"`

	// FlatBand overrides DefaultFlatBand when positive.
	FlatBand float64 `json:"flat_band,omitempty"`

	Change    float64 `json:"change"`
	Percent   float64 `json:"percent"`
	Direction string  `json:"direction,omitempty"`
	Summary   string  `json:"summary,omitempty"`
}

type priceChange struct {
	tools *tool.Registry
}

// NewPriceChange defines the price_change workflow. The percent change is
// computed through the percent_change tool in tools.
func NewPriceChange(tools *tool.Registry) workflow.Definition[PriceChange] {
	return priceChange{tools: tools}
}

func (priceChange) Name() string { return PriceChangeWorkflow }

func (priceChange) NewState() *PriceChange {
	return &PriceChange{FlatBand: DefaultFlatBand}
}

func (p priceChange) Nodes() map[string]workflow.Step[PriceChange] {
	return map[string]workflow.Step[PriceChange]{
		"prepare":  workflow.Update(p.prepare),
		"compute":  workflow.Update(p.compute),
		"classify": workflow.Update(p.classify),
		"report":   workflow.Update(p.report),
	}
}

func (priceChange) BuildEdges(g *workflow.Graph[PriceChange]) error {
	g.SetEntry("prepare").
		AddEdge("prepare", "compute").
		AddEdge("compute", "classify").
		AddConditionalEdges("classify", func(s *PriceChange) string { return s.Direction },
			map[string]string{
				DirectionUp:   "report",
				DirectionDown: "report",
				DirectionFlat: "report",
			}).
		SetFinish("report")
	return nil
}

func (priceChange) prepare(ctx context.Context, s *PriceChange) error {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	if s.Symbol == "" {
		return errors.New("symbol is empty")
	}
	if s.From == 0 {
		return ErrZeroBase
	}
	if s.FlatBand <= 0 {
		s.FlatBand = DefaultFlatBand
	}
	return nil
}

func (p priceChange) compute(ctx context.Context, s *PriceChange) error {
	out, err := p.tools.Execute(ctx, ToolPercentChange, map[string]any{"from": s.From, "to": s.To})
	if err != nil {
		return err
	}
	res, ok := out.(ChangeResult)
	if !ok {
		return fmt.Errorf("%s returned %T", ToolPercentChange, out)
	}
	s.Change = res.Change
	s.Percent = res.Percent
	return nil
}

func (priceChange) classify(ctx context.Context, s *PriceChange) error {
	switch {
	case math.Abs(s.Percent) < s.FlatBand:
		s.Direction = DirectionFlat
	case s.Percent > 0:
		s.Direction = DirectionUp
	default:
		s.Direction = DirectionDown
	}
	return nil
}

func (priceChange) report(ctx context.Context, s *PriceChange) error {
	switch s.Direction {
	case DirectionUp:
		s.Summary = fmt.Sprintf("%s rose %.2f%% from %.2f to %.2f", s.Symbol, s.Percent, s.From, s.To)
	case DirectionDown:
		s.Summary = fmt.Sprintf("%s fell %.2f%% from %.2f to %.2f", s.Symbol, -s.Percent, s.From, s.To)
	default:
		s.Summary = fmt.Sprintf("%s was flat at %.2f (%+.2f%%)", s.Symbol, s.To, s.Percent)
	}
	return nil
}
