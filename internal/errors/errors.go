// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyImport is returned when an import file carries no data rows.
var ErrEmptyImport = errors.New("file is empty")

// ErrCustomerNotFound is returned when no customer has the requested ID.
type ErrCustomerNotFound struct {
	CustomerID int64
}

func (e *ErrCustomerNotFound) Error() string {
	return fmt.Sprintf("customer with ID %d not found", e.CustomerID)
}

// Helper constructor
func NewCustomerNotFound(id int64) error {
	return &ErrCustomerNotFound{CustomerID: id}
}

// ValidationError reports input that was rejected. Message is meant to be
// shown to the user as-is.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

func NewValidationError(message string, fields ...string) error {
	return &ValidationError{Fields: fields, Message: message}
}

// CorruptDataError means a persisted value exists but could not be decoded.
type CorruptDataError struct {
	Key string
	Err error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("stored data under %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// ImportError wraps a failure to parse an uploaded file. Nothing is merged
// when it is returned.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return "Import failed: " + e.Err.Error()
}

func (e *ImportError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf *ErrCustomerNotFound
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsImport(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie) || errors.Is(err, ErrEmptyImport)
}
