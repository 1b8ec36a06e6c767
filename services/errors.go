package services

import (
	"errors"

	"skillboard/backend/database"
	"skillboard/backend/models"
)

var (
	// ErrNotFound is returned when a record, saved filter or report does not exist.
	ErrNotFound = database.ErrNotFound
	// ErrReadOnly is returned by record sources that cannot be written to.
	ErrReadOnly = errors.New("record source is read-only")
	// ErrUnknownResource is returned for resources without a declared schema.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrForbidden is returned when a user acts on something they do not own.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports invalid input field by field.
type ValidationError struct {
	Err    error
	Fields []models.FieldError
}

// NewValidationError wraps err with the offending fields.
func NewValidationError(err error, flds ...models.FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}
