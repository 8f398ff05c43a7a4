package esmodel

import "github.com/kailas-cloud/esmodel/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrIndexMissing     = domain.ErrIndexMissing
	ErrNoClass          = domain.ErrNoClass
	ErrUnknownModel     = domain.ErrUnknownModel
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrInvalidModel     = domain.ErrInvalidModel
	ErrNotImplemented   = domain.ErrNotImplemented
)
