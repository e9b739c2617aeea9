// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// Error taxonomy. Services wrap these sentinels so handlers can map them to
// status codes without string matching.
//
//   - ErrValidation: bad input, rejected before any write reaches the store.
//   - ErrInvariant: a query-then-act uniqueness check failed (duplicate open
//     shift, duplicate category/employee name).
//   - ErrOffline: the operation requires connectivity and cannot be queued
//     (shift start, refund). Ordinary writes never surface this — they are
//     redirected to the offline queue instead.
//   - ErrNotFound: the referenced document does not exist.
var (
	ErrValidation = errors.New("validation error")
	ErrInvariant  = errors.New("invariant violation")
	ErrOffline    = errors.New("operation requires connectivity")
	ErrNotFound   = errors.New("not found")
)

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsInvariant(err error) bool  { return errors.Is(err, ErrInvariant) }
func IsOffline(err error) bool    { return errors.Is(err, ErrOffline) }
