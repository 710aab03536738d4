// Package agent queries an LLM on behalf of workflow steps.
//
// An Agent sends a Query through a chat.Client, offers it the named tools
// from a tool.Registry, runs the tools the model asks for, and returns the
// follow-up answer. In JSON mode the answer is parsed, tolerating the
// markdown fences and trailing commas models tend to produce.
//
//	a := agent.New(client, registry)
//	res, err := a.Query(ctx, agent.Query{
//	    Messages: []ai.Message{ai.UserMessage("Summarize ABC's last quarter")},
//	    Tools:    []string{"get_quote"},
//	    JSON:     true,
//	})
//
// NewStep turns an Agent into a workflow step: one function builds the
// Query from the state and another folds the Result back into it.
package agent
