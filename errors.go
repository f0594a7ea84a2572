package richdex

import "github.com/kailas-cloud/richdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidSchema   = domain.ErrInvalidSchema
	ErrFieldNotIndexed = domain.ErrFieldNotIndexed
	ErrTextRange       = domain.ErrTextRange
	ErrMissingID       = domain.ErrMissingID
	ErrFilterNotFound  = domain.ErrFilterNotFound
	ErrFilterUnordered = domain.ErrFilterUnordered
	ErrKindMismatch    = domain.ErrKindMismatch
)
