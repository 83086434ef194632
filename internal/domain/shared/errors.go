// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")

	// Economy errors
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Engine errors
	ErrUnknownOperation = errors.New("unknown operation")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "store", "syllabus"
	Op      string // Operation that failed, e.g., "Find", "Purchase"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student errors
var (
	ErrStudentNotFound = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrSeatOutOfBounds = NewDomainError("seating", "Move", ErrValueOutOfRange, "seat is outside the classroom grid")
)

// Store errors
var (
	ErrItemNotFound    = NewDomainError("store", "Find", ErrNotFound, "store item not found")
	ErrNotEnoughPoints = NewDomainError("store", "Purchase", ErrInsufficientBalance, "balance is lower than item cost")
)

// Syllabus errors
var (
	ErrWeekNotFound    = NewDomainError("syllabus", "FindWeek", ErrNotFound, "week not found")
	ErrSubjectNotFound = NewDomainError("syllabus", "FindSubject", ErrNotFound, "subject not found")
	ErrLessonNotFound  = NewDomainError("syllabus", "FindLesson", ErrNotFound, "lesson not found")
)

// Logbook errors
var (
	ErrInvalidRating = NewDomainError("logbook", "Validate", ErrValueOutOfRange, "rating must be between 1 and 5")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInsufficientBalance checks if the error is a failed purchase precondition.
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}
