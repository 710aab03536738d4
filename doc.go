// Package moneypilot is the provider-neutral vocabulary shared by the
// MoneyPilot agent core: chat messages, tool schemas, tool calls and
// results, request options, and categorized errors.
//
// The packages built on top of it are:
//
//   - [github.com/moneypilot/moneypilot/state]: the State contract threaded through runs
//   - [github.com/moneypilot/moneypilot/workflow]: validated workflow graphs and their engine
//   - [github.com/moneypilot/moneypilot/tool]: Tools, the Tool Registry, and the call executor
//   - [github.com/moneypilot/moneypilot/agent]: LLM queries with a tool round, as a workflow step
//   - [github.com/moneypilot/moneypilot/client]: the LLM client over OpenAI, Anthropic, and Google
//
// The package is conventionally imported as ai:
//
//	import ai "github.com/moneypilot/moneypilot"
//
//	schema := ai.ToolSchema{
//	    Name:        "percent_change",
//	    Description: "Percentage change between two prices",
//	    Parameters: []ai.Parameter{
//	        {Name: "from", Type: ai.TypeNumber, Required: true},
//	        {Name: "to", Type: ai.TypeNumber, Required: true},
//	    },
//	}
package moneypilot
