package state

import "fmt"

// ValidationError reports a state field that is missing or has the wrong shape.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("state: invalid: %s", e.Reason)
	}
	return fmt.Sprintf("state: field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SerializationError reports a state that cannot be exported to a plain map.
type SerializationError struct {
	Field string
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("state: not serializable: %v", e.Err)
	}
	return fmt.Sprintf("state: field %q is not serializable: %v", e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
