// Package client wraps an LLM provider adapter with the policies every
// request needs: rate limiting, retry of transient failures, request
// logging, and metrics.
//
//	c, err := client.New(ctx, client.Config{
//	    Provider: client.ProviderOpenAI,
//	    APIKey:   os.Getenv("LLM_API_KEY"),
//	    Model:    "gpt-4",
//	})
//	resp, err := c.Chat(ctx, []ai.Message{ai.UserMessage("Hello")})
//
// Transient errors (rate limits, 5xx, timeouts) are retried with
// exponential backoff; the server's Retry-After is honored when longer.
package client
