package agent

import "fmt"

// LLMError reports a failed query or an answer that could not be used.
// Err, when set, is the underlying client error and keeps its category.
type LLMError struct {
	Message string
	Details string
	Err     error
}

func (e *LLMError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Details != "" {
		msg += " - Details: " + e.Details
	}
	return msg
}

func (e *LLMError) Unwrap() error { return e.Err }
