// Package common defines sentinel errors shared by the storage, service and
// transport layers of the inventory service. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Input errors.
	ErrorValidation = errors.New("validation error")
	ErrorInvalidID  = errors.New("invalid id")

	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrorQuery       = errors.New("query failed")
	ErrorPersistence = errors.New("persistence failure")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
)
