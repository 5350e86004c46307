package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrTenantMissing = errors.New("tenant is missing")
	ErrUnauthorized  = errors.New("unauthorized")

	// resolution errors
	ErrResolutionFailed = errors.New("user cannot be resolved to a tenant")
	ErrMissingTarget    = errors.New("target tenant cannot be determined")

	// ingestion errors
	ErrValidationFailed = errors.New("payload validation failed")

	// binding errors
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidEmail   = errors.New("email address is invalid")
)
