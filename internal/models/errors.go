package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrRaffleUnavailable    = errors.New("raffle unavailable")
	ErrProvincesUnavailable = errors.New("provinces unavailable")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSubmissionBusy       = errors.New("submission already in progress")
	ErrAlreadySubmitted     = errors.New("order already submitted")
	ErrEmailRequired        = errors.New("email is required")
)

// ValidationError is returned when the order form fails client-side validation
type ValidationError struct {
	Errors ValidationErrors
}

func (e *ValidationError) Error() string {
	if first, ok := e.Errors.First(); ok {
		return fmt.Sprintf("validation failed: %s: %s", first, e.Errors[first])
	}
	return "validation failed"
}

// Field returns the first errored field, used to focus the form
func (e *ValidationError) Field() FieldName {
	first, _ := e.Errors.First()
	return first
}

// RejectionError is returned when the raffle API answered but refused the request
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("request rejected (status %d): %s", e.Status, e.Message)
}

// APIError is returned when the raffle API answered with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("raffle api returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("raffle api returned %d", e.StatusCode)
}

// TransportError is returned when no usable response reached us
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
