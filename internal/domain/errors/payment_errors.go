package errors

import "errors"

var (
	// ErrDuplicateReference indicates the storage layer rejected a new record
	// because the reference already exists. The generator makes this
	// practically unreachable; when it fires it points at a generator defect
	// and is surfaced loudly rather than retried.
	ErrDuplicateReference = errors.New("payment reference already exists")

	// ErrPaymentNotFound indicates no record matches the given reference
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidReference indicates a reference that fails format validation
	ErrInvalidReference = errors.New("invalid payment reference format")
)
