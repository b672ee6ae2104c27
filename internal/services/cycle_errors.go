package services

import (
	"errors"
	"fmt"
)

var ErrInsufficientHistory = errors.New("insufficient period history")

// ValidationError reports malformed or inconsistent engine input. Handlers map
// it to a 4xx response.
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	if err.Field == "" {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.Field, err.Message)
}

func newValidationError(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InternalComputationError reports date arithmetic that left the supported
// calendar range.
type InternalComputationError struct {
	Operation string
	Err       error
}

func (err *InternalComputationError) Error() string {
	return fmt.Sprintf("cycle computation %s failed: %v", err.Operation, err.Err)
}

func (err *InternalComputationError) Unwrap() error {
	return err.Err
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
