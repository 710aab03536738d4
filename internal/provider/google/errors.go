package google

import (
	"context"
	"errors"

	ai "github.com/moneypilot/moneypilot"
	"google.golang.org/genai"
)

// wrapError categorizes a GenAI error by status code. APIError does not
// expose response headers, so there is no Retry-After hint.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ai.NewStatusError("google: request failed", apiErr.Code, 0, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return ai.NewStatusError("google: request failed", apiErrPtr.Code, 0, err)
	}
	return ai.NewTransientError("google: request failed", 0, err)
}
