package client

import "fmt"

// ErrMissingAPIKey is returned when a provider is selected but no API key
// is configured for it.
type ErrMissingAPIKey struct {
	Provider Provider
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("client: no API key configured for %s", e.Provider)
}

// ErrUnknownProvider is returned for a provider name New cannot build.
type ErrUnknownProvider struct {
	Provider Provider
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("client: unknown provider %q", e.Provider)
}
