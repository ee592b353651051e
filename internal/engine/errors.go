package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy rejects a start while another run is in progress.
	ErrBusy = errors.New("simulation already running")
	// ErrInvalidIterations rejects runs with no trials.
	ErrInvalidIterations = errors.New("iterations must be > 0")
	// ErrInvalidMessage rejects commands other than start.
	ErrInvalidMessage = errors.New("unsupported message type")
	// ErrTransport reports that the worker could not run a job.
	ErrTransport = errors.New("worker transport failed")
)

// ConfigurationError rejects a start before any trial runs.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExecutionError is carried by the terminal error message of a failed run.
type ExecutionError struct {
	RunID string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("simulation %s failed: %v", e.RunID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
