package moneypilot

import "fmt"

// DefaultMaxTokens is the response budget used when a query sets none.
const DefaultMaxTokens = 250

// Options contains configuration for a chat request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	Tools       []ToolSchema
	ToolChoice  ToolChoice
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Option is a functional option for configuring chat requests.
type Option func(*Options)

// WithModel overrides the client's default model.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTopP sets nucleus sampling (0.0 to 1.0).
func WithTopP(p float64) Option {
	return func(o *Options) {
		o.TopP = &p
	}
}

// WithTools offers tools to the model.
func WithTools(tools ...ToolSchema) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tools...)
	}
}

// WithToolChoice controls whether the model may, must, or must not call tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithJSON requests a JSON object response.
func WithJSON() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks sampling parameters before a request is sent.
func (o *Options) Validate() error {
	return ValidateSampling(o.MaxTokens, o.Temperature, o.TopP)
}

// ValidateSampling checks max tokens, temperature, and top_p ranges.
// A zero maxTokens is accepted and means "provider default".
func ValidateSampling(maxTokens int, temperature, topP *float64) error {
	if maxTokens < 0 {
		return NewUserInputError(fmt.Sprintf("max_tokens must be positive, got %d", maxTokens), 0, nil)
	}
	if temperature != nil && (*temperature < 0 || *temperature > 2) {
		return NewUserInputError(fmt.Sprintf("temperature must be between 0 and 2, got %g", *temperature), 0, nil)
	}
	if topP != nil && (*topP < 0 || *topP > 1) {
		return NewUserInputError(fmt.Sprintf("top_p must be between 0 and 1, got %g", *topP), 0, nil)
	}
	return nil
}
