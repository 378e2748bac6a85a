package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError carries per-field detail for 400 responses.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError means the input was malformed or out of range. It is
// terminal for the request; clients must not retry unchanged.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError wraps a gin binding failure, unpacking
// go-playground field errors when present.
func NewValidationError(err error) *ValidationError {
	ve := &ValidationError{Message: "invalid request"}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			ve.Fields = append(ve.Fields, FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return ve
	}
	ve.Message = err.Error()
	return ve
}

// NotFoundError covers unknown rows and ownership mismatches; the two
// are deliberately indistinguishable to the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ForbiddenError is returned for missing, mismatched or expired table
// sessions and for role mismatches. The reason stays generic; no
// internal detail leaks to diners.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// TransientInfraError marks datastore or downstream failures that a
// client may retry (reads) or queue (order submission).
type TransientInfraError struct {
	Op  string
	Err error
}

func (e *TransientInfraError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientInfraError) Unwrap() error {
	return e.Err
}
