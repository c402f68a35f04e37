package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Validation errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidDoor     = fmt.Errorf("%w: door index out of range", ErrInvalidArgument)
	ErrInvalidStrategy = fmt.Errorf("%w: unknown strategy", ErrInvalidArgument)

	// Run lifecycle errors
	ErrAlreadyRunning = errors.New("a simulation run is already in progress")

	// Statistics errors
	ErrInsufficientSample = errors.New("insufficient sample for statistics")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoData            = errors.New("no simulation result available")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, field, reason)
}

func NewDoorError(door int) error {
	return fmt.Errorf("%w: %d", ErrInvalidDoor, door)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsExportError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrNoData)
}
