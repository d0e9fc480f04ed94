package service

import (
	"errors"
	"fmt"
	"strings"

	"course-commerce/pkg/validator"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrCapacityExceeded    = errors.New("course capacity exceeded")
	ErrAmountMismatch      = errors.New("order total does not match cart")
	ErrOrderNotFound       = errors.New("transaction not found")
	ErrUnhandledStatus     = errors.New("unknown or unhandled transaction status")
	ErrInvalidSignature    = errors.New("invalid notification signature")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrDuplicateOrderID    = errors.New("order_id already exists")
	ErrOrderIDExhausted    = errors.New("could not allocate a unique order_id")
)

// ValidationError carries the failing fields of a request.
type ValidationError struct {
	Fields []*validator.ErrorResponse
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.Fields[0].FailedField, e.Fields[0].Tag)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationReason(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// CapacityIssue names one course that has no seat left.
type CapacityIssue struct {
	CourseID   uint
	MaxStudent int
}

type CapacityExceededError struct {
	Issues []CapacityIssue
}

func (e *CapacityExceededError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = fmt.Sprintf("Course ID %d has reached maximum student capacity (%d)", is.CourseID, is.MaxStudent)
	}
	return "The following courses have issues: " + strings.Join(parts, ", ")
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }
