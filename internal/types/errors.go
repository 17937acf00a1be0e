package types

import (
	ierr "github.com/netspire/billing/internal/errors"
)

// NewInvalidEnumError builds the standard validation error for enum fields
func NewInvalidEnumError(field string, value string) error {
	return ierr.NewError("invalid " + field).
		WithHintf("Invalid %s: %s", field, value).
		Mark(ierr.ErrValidation)
}
