package openai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	ai "github.com/moneypilot/moneypilot"
	"github.com/openai/openai-go"
)

// wrapError categorizes an SDK error by status code and carries any
// Retry-After hint.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// Network failures and timeouts are worth retrying.
		return ai.NewTransientError("openai: request failed", 0, err)
	}
	return ai.NewStatusError("openai: request failed", apiErr.StatusCode, parseRetryAfter(apiErr.Response), err)
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}
