package monitoring

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a monitored directory that is missing, not a
	// directory, or unreadable.
	ErrConfiguration = errors.New("configuration error")

	// ErrInterrupted is returned by Run when its context is cancelled. It is a
	// normal termination, not a failure.
	ErrInterrupted = errors.New("monitoring interrupted")
)

type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("Error initializing timestamps: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

type MonitoringError struct {
	Err error
}

func (e *MonitoringError) Error() string {
	return fmt.Sprintf("Error monitoring changes: %v", e.Err)
}

func (e *MonitoringError) Unwrap() error {
	return e.Err
}
