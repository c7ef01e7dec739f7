package domain

import "fmt"

// Error types for consistent error handling across the BFA.

// ErrValidation indicates malformed filters, page numbers or request
// input. Never retried; surfaced immediately to the caller.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidInput indicates a malformed argument to an aggregation
// function (nil transaction set, unrecognized period).
type ErrInvalidInput struct {
	Op      string
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid input to %s: %s", e.Op, e.Message)
}

// ErrExternalService indicates a transient failure in an external
// service call (the cashback data backend).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrDataShape indicates a backend payload that decoded but failed
// structural validation. Callers degrade to empty defaults.
type ErrDataShape struct {
	Reason string
}

func (e *ErrDataShape) Error() string {
	return fmt.Sprintf("malformed data payload: %s", e.Reason)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
