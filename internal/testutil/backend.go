package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/remote"
)

// ScriptedBackend is an in-memory remote.Backend.
//
// Each JobStatus call consumes the next state from States; once the script
// runs out the last state repeats. A job with no script completes at once.
// Completed jobs report Results(batch), or one all-zeros count table per
// source when Results is nil.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedBackend struct {
	// States is the status sequence reported for every job.
	States []remote.JobState

	// SubmitErr, when set, fails every submission.
	SubmitErr error

	// StatusErr, when set, fails every status query.
	StatusErr error

	// Results builds the per-source results of a completed job.
	Results func(batch remote.Batch) []remote.QasmResult

	mu          sync.Mutex
	submitted   []remote.Batch
	jobs        map[string]remote.Batch
	statusCalls int
}

var _ remote.Backend = (*ScriptedBackend)(nil)

// SubmitBatch implements remote.Backend.
func (b *ScriptedBackend) SubmitBatch(_ context.Context, batch remote.Batch) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SubmitErr != nil {
		return "", b.SubmitErr
	}
	if b.jobs == nil {
		b.jobs = make(map[string]remote.Batch)
	}
	id := uuid.Must(uuid.NewV7()).String()
	b.jobs[id] = batch
	b.submitted = append(b.submitted, batch)
	return id, nil
}

// JobStatus implements remote.Backend.
func (b *ScriptedBackend) JobStatus(_ context.Context, id string) (*remote.JobStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.StatusErr != nil {
		return nil, b.StatusErr
	}
	batch, ok := b.jobs[id]
	if !ok {
		return nil, fmt.Errorf("unknown job %s", id)
	}

	state := remote.StateCompleted
	if len(b.States) > 0 {
		state = b.States[min(b.statusCalls, len(b.States)-1)]
	}
	b.statusCalls++

	status := &remote.JobStatus{ID: id, Status: state}
	if state == remote.StateCompleted {
		status.Qasms = b.results(batch)
	}
	return status, nil
}

func (b *ScriptedBackend) results(batch remote.Batch) []remote.QasmResult {
	if b.Results != nil {
		return b.Results(batch)
	}
	out := make([]remote.QasmResult, len(batch.Qasms))
	for i, src := range batch.Qasms {
		out[i] = remote.QasmResult{
			Qasm:   src,
			Result: &ir.Result{Data: ir.ResultData{Counts: ir.Counts{"0": batch.Shots}}},
			Status: ir.StatusCompleted,
		}
	}
	return out
}

// Submitted returns every accepted batch in submission order.
func (b *ScriptedBackend) Submitted() []remote.Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]remote.Batch(nil), b.submitted...)
}

// StatusCalls returns how many status queries were answered.
func (b *ScriptedBackend) StatusCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statusCalls
}
