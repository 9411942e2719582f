// Package errs defines the error taxonomy shared by all storefront
// collections: invalid input, missing records, and recovered storage
// corruption.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a mutation. The collection is
// never partially updated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a mutation aimed at an id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ErrCorrupt marks an unparseable stored value. It is logged and recovered
// internally (the collection reads as empty); callers never see it.
var ErrCorrupt = errors.New("stored value is corrupt")

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
