package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrCatalogFailure is returned when a catalog search request fails
	ErrCatalogFailure = errors.New("catalog search failed")

	// ErrExpansionFailure is returned when the term expansion provider fails
	ErrExpansionFailure = errors.New("term expansion failed")

	// ErrCollaboratorMisconfigured is returned when a collaborator cannot work at all,
	// e.g. missing or rejected credentials. It aborts the whole comparison.
	ErrCollaboratorMisconfigured = errors.New("collaborator misconfigured")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError describes which input constraint a comparison request violated.
// Index is the zero-based offending item position, or -1 for list-level violations.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

// Path locates the violation in request JSON terms, e.g. items[1].name
func (e *ValidationError) Path() string {
	if e.Index >= 0 {
		return fmt.Sprintf("items[%d].%s", e.Index, e.Field)
	}
	return e.Field
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return e.Path() + " " + e.Reason
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewListValidationError creates a validation error about the item list itself
func NewListValidationError(reason string) *ValidationError {
	return &ValidationError{Field: "items", Index: -1, Reason: reason}
}

// NewItemValidationError creates a validation error about a single item
func NewItemValidationError(index int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: index, Reason: reason}
}
