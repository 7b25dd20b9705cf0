// Package remote talks to hosted quantum backends.
package remote

import (
	"context"
	"fmt"

	"github.com/roach88/qprog/internal/ir"
)

// JobState is the lifecycle state reported by a remote backend.
type JobState string

const (
	StateRunning          JobState = "RUNNING"
	StateCompleted        JobState = "COMPLETED"
	StateErrorCreatingJob JobState = "ERROR_CREATING_JOB"
	StateErrorRunningJob  JobState = "ERROR_RUNNING_JOB"
)

// IsError reports whether s is a terminal failure state.
func (s JobState) IsError() bool {
	return s == StateErrorCreatingJob || s == StateErrorRunningJob
}

// Batch is one remote submission: several compiled sources sharing shots
// and credits.
type Batch struct {
	Device     string
	Shots      int
	MaxCredits int
	Qasms      []string
}

// QasmResult is the per-circuit entry of a job status payload.
type QasmResult struct {
	Qasm   string     `json:"qasm"`
	Result *ir.Result `json:"result"`
	Status ir.Status  `json:"status"`
}

// JobStatus is the payload returned when querying a remote job.
type JobStatus struct {
	ID     string       `json:"id"`
	Status JobState     `json:"status"`
	Qasms  []QasmResult `json:"qasms"`
}

// Backend is the remote execution collaborator.
type Backend interface {
	// SubmitBatch submits all sources as one job and returns its id.
	SubmitBatch(ctx context.Context, batch Batch) (string, error)

	// JobStatus fetches the current status payload of a job.
	JobStatus(ctx context.Context, id string) (*JobStatus, error)
}

// SubmissionError is a submission rejected by the backend itself, as
// opposed to a transport failure.
type SubmissionError struct {
	Device  string
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit to %s: %s", e.Device, e.Message)
}
