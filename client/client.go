package client

import (
	"context"
	"log/slog"
	"time"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/chat"
	"github.com/moneypilot/moneypilot/internal/provider/anthropic"
	"github.com/moneypilot/moneypilot/internal/provider/google"
	"github.com/moneypilot/moneypilot/internal/provider/openai"
	"github.com/moneypilot/moneypilot/internal/retry"
	"golang.org/x/time/rate"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// Providers lists the backends New can build.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Config selects and tunes the provider.
type Config struct {
	Provider Provider
	APIKey   string
	// BaseURL points OpenAI-compatible or proxied endpoints elsewhere.
	BaseURL string
	// Model is the default model; requests may override it.
	Model   string
	Timeout time.Duration

	// Retry governs transient failures. The zero value uses
	// retry.DefaultConfig.
	Retry retry.Config

	// RateLimit caps requests per second. Zero or less disables it.
	RateLimit float64
}

// Observer receives one notification per Chat call, after retries.
type Observer interface {
	LLMRequest(provider, model string, d time.Duration, usage ai.Usage, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a metrics hook.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client is a chat.Client with rate limiting, retries, and logging.
type Client struct {
	provider chat.Client
	name     Provider
	model    string
	retry    retry.Config
	limiter  *rate.Limiter
	logger   *slog.Logger
	observer Observer
}

var _ chat.Client = (*Client)(nil)

// New builds the configured provider adapter and wraps it.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(p, cfg, opts...), nil
}

func newProvider(ctx context.Context, cfg Config) (chat.Client, error) {
	if !cfg.Provider.Valid() {
		return nil, &ErrUnknownProvider{Provider: cfg.Provider}
	}
	if cfg.APIKey == "" {
		return nil, &ErrMissingAPIKey{Provider: cfg.Provider}
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		opts := []anthropic.ClientOption{anthropic.WithTimeout(cfg.Timeout)}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.APIKey, opts...), nil
	case ProviderGoogle:
		opts := []google.ClientOption{google.WithTimeout(cfg.Timeout)}
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(cfg.BaseURL))
		}
		g, err := google.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		opts := []openai.ClientOption{openai.WithTimeout(cfg.Timeout)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, opts...), nil
	}
}

// Wrap applies the client policies to an existing chat.Client. Only the
// retry, rate limit, and naming fields of cfg are used.
func Wrap(p chat.Client, cfg Config, opts ...Option) *Client {
	rc := cfg.Retry
	if rc.MaxAttempts == 0 {
		rc = retry.DefaultConfig()
	}

	c := &Client{
		provider: p,
		name:     cfg.Provider,
		model:    cfg.Model,
		retry:    rc,
		logger:   slog.Default(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the backend name.
func (c *Client) Provider() Provider { return c.name }

// Model returns the default model.
func (c *Client) Model() string { return c.model }

// Chat sends the conversation, waiting on the rate limiter before each
// attempt and retrying transient failures.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	model := c.model
	if o := ai.ApplyOptions(opts...); o.Model != "" {
		model = o.Model
	}
	log := c.logger.With("provider", string(c.name), "model", model)

	rc := c.retry
	rc.OnRetry = func(a retry.Attempt) {
		log.Warn("llm request failed, retrying",
			"attempt", a.Number,
			"max_attempts", a.MaxAttempts,
			"delay", a.Delay,
			"error", a.Err)
	}

	start := time.Now()
	resp, err := retry.Do(ctx, rc, func(ctx context.Context) (*ai.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return c.provider.Chat(ctx, messages, opts...)
	})
	d := time.Since(start)

	var usage ai.Usage
	if resp != nil {
		usage = resp.Usage
	}
	if c.observer != nil {
		c.observer.LLMRequest(string(c.name), model, d, usage, err)
	}

	if err != nil {
		log.Error("llm request failed", "duration", d, "error", err)
		return nil, err
	}
	log.Debug("llm request completed",
		"duration", d,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"tool_calls", len(resp.ToolCalls))
	return resp, nil
}
