package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound signals an unknown or expired search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyQuery signals a blank query submitted where one is required.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidFilter signals a malformed filter set.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRequest signals malformed search parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyCorpus signals that there are no grants to search at all.
	ErrEmptyCorpus = errors.New("no grants available")

	// ErrTransport signals an unreachable collaborator or a non-2xx reply.
	ErrTransport = errors.New("transport error")
	// ErrSchema signals a reply that does not match the expected JSON shape.
	ErrSchema = errors.New("schema error")

	// ErrAIQuotaExceeded signals an exhausted AI token budget.
	ErrAIQuotaExceeded = errors.New("ai quota exceeded")
	// ErrAIProviderError signals an AI provider failure.
	ErrAIProviderError = errors.New("ai provider error")
	// ErrAINotConfigured signals that no AI provider is wired.
	ErrAINotConfigured = errors.New("ai provider not configured")
)

// StatusError carries the HTTP status of a failed call to a collaborator.
type StatusError struct {
	Service string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", ErrTransport.Error(), e.Service, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// NewStatusError creates a transport error for a non-2xx reply.
func NewStatusError(service string, status int) error {
	return &StatusError{Service: service, Status: status}
}
