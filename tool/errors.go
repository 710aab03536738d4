package tool

import (
	"errors"
	"fmt"
)

// ErrRegistrySealed is returned by Register after Seal or Discover.
var ErrRegistrySealed = errors.New("tool: registry is sealed")

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolExecution wraps errors from tool handler execution.
type ErrToolExecution struct {
	Name string
	Err  error
}

func (e *ErrToolExecution) Error() string {
	return fmt.Sprintf("tool: %s execution failed: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ErrToolExecution) Unwrap() error {
	return e.Err
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ParamError reports one argument that does not satisfy a tool's schema.
type ParamError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("tool: %s: parameter %q %s", e.Tool, e.Param, e.Reason)
}

// ArgumentsError reports raw call arguments that are not a JSON object.
type ArgumentsError struct {
	Tool string
	Err  error
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("tool: %s: invalid arguments: %v", e.Tool, e.Err)
}

func (e *ArgumentsError) Unwrap() error { return e.Err }
