// Package google adapts the Gemini API to the chat.Client contract.
package google

import (
	"context"
	"strings"
	"time"

	ai "github.com/moneypilot/moneypilot"
	"google.golang.org/genai"
)

// DefaultModel is used when neither the client nor the request names one.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI SDK.
type Client struct {
	client *genai.Client
	model  string
}

// ClientOption configures the Google client.
type ClientOption func(*config)

type config struct {
	model   string
	baseURL string
	timeout time.Duration
}

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *config) {
		c.model = model
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *config) {
		c.baseURL = url
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *config) {
		c.timeout = d
	}
}

// New creates a Gemini API client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := config{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.baseURL
	}
	if cfg.timeout > 0 {
		timeout := cfg.timeout
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, ai.NewPermanentError("google: creating client", 0, err)
	}
	return &Client{client: client, model: cfg.model}, nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	contents, system := convertMessages(messages)
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, generateConfig(options, system))
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Candidates) == 0 {
		return nil, ai.NewTransientError("google: response has no candidates", 0, nil)
	}

	candidate := resp.Candidates[0]
	out := &ai.Response{FinishReason: string(candidate.FinishReason)}
	if candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		out.Content = text.String()
		out.ToolCalls = extractToolCalls(candidate.Content.Parts)
	}
	if resp.UsageMetadata != nil {
		out.Usage = ai.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func generateConfig(options *ai.Options, system *genai.Content) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if options.TopP != nil {
		topP := float32(*options.TopP)
		config.TopP = &topP
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	if options.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}
