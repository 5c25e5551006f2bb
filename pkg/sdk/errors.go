package grantdex

import "github.com/kailas-cloud/grantdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrEmptyQuery      = domain.ErrEmptyQuery
	ErrInvalidFilter   = domain.ErrInvalidFilter
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrEmptyCorpus     = domain.ErrEmptyCorpus
	ErrTransport       = domain.ErrTransport
	ErrSchema          = domain.ErrSchema
	ErrAIQuotaExceeded = domain.ErrAIQuotaExceeded
	ErrAIProviderError = domain.ErrAIProviderError
	ErrAINotConfigured = domain.ErrAINotConfigured
)
