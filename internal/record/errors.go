package record

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable wraps driver errors caused by a lost or never
	// established database connection.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidID is matched by InvalidIDError.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound is returned by deletes of attachment-bearing kinds when no
	// record has the requested id.
	ErrNotFound = errors.New("record not found")
)

// InvalidIDError reports an identifier that is not a 24-character hex string.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q", e.ID)
}

func (e *InvalidIDError) Is(target error) bool { return target == ErrInvalidID }

// ValidationError reports a request that is missing something the kind
// requires, such as the upload on create.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// MissingFile builds the error returned when a create request for an
// attachment-bearing kind carries no file.
func MissingFile(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " file is required"}
}
