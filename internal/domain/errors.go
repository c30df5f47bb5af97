package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeImageNotFound ErrorType = "image_not_found"
	ErrorTypeExtraction    ErrorType = "extraction"
	ErrorTypeStructuring   ErrorType = "structuring"
	ErrorTypePublish       ErrorType = "publish"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeIO            ErrorType = "io"
)

// DomainError represents a domain-specific error with context.
// Raw holds the unparsed collaborator reply when there is one (structuring failures).
type DomainError struct {
	Type    ErrorType
	Message string
	Raw     string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ImageNotFoundError(path string, err error) *DomainError {
	return NewError(ErrorTypeImageNotFound, fmt.Sprintf("image not found: %s", path), err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

// StructuringError keeps the raw model reply so it can be logged for diagnosis.
func StructuringError(message, raw string, err error) *DomainError {
	e := NewError(ErrorTypeStructuring, message, err)
	e.Raw = raw
	return e
}

func PublishError(message string, err error) *DomainError {
	return NewError(ErrorTypePublish, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// IsType reports whether any DomainError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Type == errType {
			return true
		}
		err = de.Err
	}
	return false
}

// RawReply returns the raw collaborator reply carried by err, if any.
func RawReply(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Raw
	}
	return ""
}

// StageError names the pipeline stage a failure happened in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
