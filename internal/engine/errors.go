package engine

import (
	"errors"
	"fmt"
	"time"
)

// Error is the structured error returned by every Program operation.
//
// Error includes structured fields for diagnostics; Err carries the
// underlying cause when there is one.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Circuit names the affected circuit, if any.
	Circuit string

	// Device names the affected device, if any.
	Device string

	// Status is the remote job status for REMOTE_JOB_ERROR.
	Status string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes Program errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a circuit, register, device record or
	// result is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeCompilation indicates the unroller or mapper rejected a circuit.
	ErrCodeCompilation ErrorCode = "COMPILATION_ERROR"

	// ErrCodeBatchHeterogeneity indicates a remote batch mixed shots or
	// credits.
	ErrCodeBatchHeterogeneity ErrorCode = "BATCH_HETEROGENEITY"

	// ErrCodeRemoteSubmission indicates the remote service refused a batch.
	ErrCodeRemoteSubmission ErrorCode = "REMOTE_SUBMISSION_ERROR"

	// ErrCodeRemoteJob indicates a remote job reached an error state.
	ErrCodeRemoteJob ErrorCode = "REMOTE_JOB_ERROR"

	// ErrCodeTimeout indicates polling gave up on a running job.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeUnknownDevice indicates a device with no execution path.
	ErrCodeUnknownDevice ErrorCode = "UNKNOWN_DEVICE"

	// ErrCodeResultCountMismatch indicates an engine or backend returned a
	// different number of results than jobs. This is an internal invariant
	// breach, never an expected outcome.
	ErrCodeResultCountMismatch ErrorCode = "RESULT_COUNT_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Circuit != "" && e.Device != "":
		msg += fmt.Sprintf(" (circuit=%s, device=%s)", e.Circuit, e.Device)
	case e.Circuit != "":
		msg += fmt.Sprintf(" (circuit=%s)", e.Circuit)
	case e.Device != "":
		msg += fmt.Sprintf(" (device=%s)", e.Device)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound returns true if err is a NOT_FOUND error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsCompilationError returns true if err is a COMPILATION_ERROR.
func IsCompilationError(err error) bool { return hasCode(err, ErrCodeCompilation) }

// IsBatchHeterogeneity returns true if err is a BATCH_HETEROGENEITY error.
func IsBatchHeterogeneity(err error) bool { return hasCode(err, ErrCodeBatchHeterogeneity) }

// IsRemoteSubmissionError returns true if err is a REMOTE_SUBMISSION_ERROR.
func IsRemoteSubmissionError(err error) bool { return hasCode(err, ErrCodeRemoteSubmission) }

// IsRemoteJobError returns true if err is a REMOTE_JOB_ERROR.
func IsRemoteJobError(err error) bool { return hasCode(err, ErrCodeRemoteJob) }

// IsTimeout returns true if err is a TIMEOUT error.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsUnknownDevice returns true if err is an UNKNOWN_DEVICE error.
func IsUnknownDevice(err error) bool { return hasCode(err, ErrCodeUnknownDevice) }

// IsResultCountMismatch returns true if err is a RESULT_COUNT_MISMATCH error.
func IsResultCountMismatch(err error) bool { return hasCode(err, ErrCodeResultCountMismatch) }

// NewNotFoundError creates an Error for a missing entity of the given kind.
func NewNotFoundError(kind, name string) *Error {
	e := &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", kind, name),
		Details: map[string]string{"kind": kind},
	}
	if kind == "circuit" {
		e.Circuit = name
	}
	return e
}

// NewTimeoutError creates an Error for a job still running at the timeout.
func NewTimeoutError(jobID string, elapsed, timeout time.Duration) *Error {
	return &Error{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("job %s still running after %s", jobID, elapsed),
		Details: map[string]string{
			"job_id":  jobID,
			"elapsed": elapsed.String(),
			"timeout": timeout.String(),
		},
	}
}

// NewRemoteJobError creates an Error for a job in a terminal error state.
func NewRemoteJobError(jobID, status string) *Error {
	return &Error{
		Code:    ErrCodeRemoteJob,
		Message: fmt.Sprintf("job %s failed with status %s", jobID, status),
		Status:  status,
		Details: map[string]string{"job_id": jobID},
	}
}
