package builtin

import (
	"github.com/moneypilot/moneypilot/agent"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/moneypilot/moneypilot/workflow"
)

// Register adds the built-in workflows to reg. The analyst workflow is
// skipped when a is nil.
func Register(reg *workflow.Registry, tools *tool.Registry, a *agent.Agent, opts ...workflow.Option) error {
	if err := workflow.Add(reg, NewPriceChange(tools), opts...); err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	return workflow.Add(reg, NewAnalyst(a), opts...)
}
