package domain

import "errors"

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSchema signals an invalid collection declaration.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrFieldNotIndexed signals an equality or range query on a field with no index.
	ErrFieldNotIndexed = errors.New("field not indexed")
	// ErrTextRange signals a range query on a text-kind field.
	ErrTextRange = errors.New("range query unsupported for text fields")
	// ErrMissingID signals a record without an id where auto-assignment is disabled.
	ErrMissingID = errors.New("record has no id")
	// ErrFilterNotFound signals a query against an undeclared filter.
	ErrFilterNotFound = errors.New("filter not found")
	// ErrFilterUnordered signals a range query against a filter with no order field.
	ErrFilterUnordered = errors.New("filter has no order field")
	// ErrKindMismatch signals a record value disagreeing with the declared field kind.
	ErrKindMismatch = errors.New("value kind mismatch")
)
