// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrDataUnavailable covers a missing input file or no tick at/after a needed time.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrAmbiguousParse is recorded when a ticker does not yield a strike.
	ErrAmbiguousParse = errors.New("ambiguous instrument parse")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrRunNotFound    = errors.New("run not found")
	ErrDatabaseError  = errors.New("database error")
)

// DataError represents a data-related error for one trading day.
type DataError struct {
	Day     string
	Source  string // spot, options, CE, PE
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Day, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Day, e.Source, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(day, source, message string, err error) *DataError {
	return &DataError{
		Day:     day,
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// Unavailable builds a DataError that matches ErrDataUnavailable.
func Unavailable(day, source, message string) *DataError {
	return NewDataError(day, source, message, ErrDataUnavailable)
}

// ParseError represents an instrument identifier that could not be decoded.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError wrapping ErrAmbiguousParse.
func NewParseError(input string) *ParseError {
	return &ParseError{Input: input, Err: ErrAmbiguousParse}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match validation failures against ErrConfigInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsDataUnavailable reports whether err means the day should be skipped.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
